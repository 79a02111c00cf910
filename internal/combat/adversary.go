package combat

import (
	"time"

	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/world"
)

// Combatant is anything the adversary can attack. The player's investigator
// implements it.
type Combatant interface {
	Name() string
	Position() world.Vec
	TakeDamage(amount float64) float64
	IsDead() bool
}

// Adversary is the spawned combat-phase opponent.
type Adversary struct {
	Def    *gamedata.AdversaryDef
	Pos    world.Vec
	Health Damageable
	Break  Breakable
	Rage   Enrage

	attackTimer time.Duration
}

// NewAdversary spawns a fresh adversary from its definition.
func NewAdversary(def *gamedata.AdversaryDef) *Adversary {
	return &Adversary{
		Def:         def,
		Pos:         world.Vec{X: def.Spawn.X, Y: def.Spawn.Y},
		Health:      NewDamageable(def.HP),
		Break:       NewBreakable(def.Break, def.BreakRecovery()),
		attackTimer: def.AttackCooldown(),
	}
}

// Name returns the display name.
func (a *Adversary) Name() string { return a.Def.Name }

// aiStep is what the adversary did during one tick.
type aiStep struct {
	moved    bool
	attacked bool
	damage   float64
}

// think runs one tick of chase-and-attack behaviour against target.
// A broken adversary does nothing.
func (a *Adversary) think(dt time.Duration, target Combatant, arena *world.Arena) aiStep {
	var step aiStep
	if a.Break.IsBroken() || target == nil || target.IsDead() {
		return step
	}

	goal := target.Position()
	if !a.Pos.Within(goal, a.Def.AttackRange) {
		speed := a.Def.MoveSpeed * a.Rage.SpeedMultiplier()
		next := a.stepToward(goal, speed*dt.Seconds(), arena)
		step.moved = next != a.Pos
		a.Pos = next
	}

	a.attackTimer -= time.Duration(float64(dt) * a.Rage.CadenceMultiplier())
	if a.attackTimer > 0 || !a.Pos.Within(goal, a.Def.AttackRange) {
		if a.attackTimer < 0 {
			a.attackTimer = 0
		}
		return step
	}

	a.attackTimer = a.Def.AttackCooldown()
	step.attacked = true
	step.damage = target.TakeDamage(a.Def.AttackDamage)
	return step
}

// stepToward moves up to dist toward goal, following the arena's
// shortest walkable path. Without a path the adversary holds position.
func (a *Adversary) stepToward(goal world.Vec, dist float64, arena *world.Arena) world.Vec {
	stop := a.Def.AttackRange * 0.9
	if arena == nil {
		return a.Pos.MoveToward(goal, dist, stop)
	}
	waypoint, ok := arena.NextWaypoint(a.Pos, goal)
	if !ok {
		return a.Pos
	}
	if waypoint != goal {
		stop = 0
	}
	next := a.Pos.MoveToward(waypoint, dist, stop)
	if !arena.IsPassable(next) {
		return a.Pos
	}
	return next
}
