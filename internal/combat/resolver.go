package combat

import (
	"fmt"

	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/world"
)

// AttackResult describes the outcome of one player attack.
type AttackResult struct {
	Hit         bool
	Damage      float64
	BreakDamage float64
	Broke       bool
	Killed      bool
	Message     string
}

// AttackResolver applies player attacks to the adversary.
type AttackResolver struct {
	attacks map[gamedata.AttackType]gamedata.AttackDef
}

// NewAttackResolver indexes the case's attack definitions.
func NewAttackResolver(attacks []gamedata.AttackDef) *AttackResolver {
	r := &AttackResolver{attacks: make(map[gamedata.AttackType]gamedata.AttackDef, len(attacks))}
	for _, a := range attacks {
		r.attacks[a.Type] = a
	}
	return r
}

// Known reports whether the attack type is defined for the case.
func (r *AttackResolver) Known(t gamedata.AttackType) bool {
	_, ok := r.attacks[t]
	return ok
}

// Resolve applies an attack from origin to target. recoveryMultiplier
// shortens the broken state when this attack breaks the target.
// While the target is broken, health damage still lands but break damage does not.
func (r *AttackResolver) Resolve(t gamedata.AttackType, origin world.Vec, target *Adversary, recoveryMultiplier float64) AttackResult {
	def, ok := r.attacks[t]
	if !ok {
		return AttackResult{Message: fmt.Sprintf("Unknown attack %q", t)}
	}
	if target == nil || target.Health.IsDead() {
		return AttackResult{Message: "Nothing to strike"}
	}
	if def.Range > 0 && !origin.Within(target.Pos, def.Range) {
		return AttackResult{Message: def.Name + " falls short"}
	}

	result := AttackResult{
		Hit:     true,
		Damage:  target.Health.TakeDamage(def.Damage),
		Message: fmt.Sprintf("%s hits %s", def.Name, target.Name()),
	}
	if !target.Break.IsBroken() {
		before := target.Break.Value()
		result.Broke = target.Break.TakeBreakDamage(def.BreakDamage, recoveryMultiplier)
		result.BreakDamage = before - target.Break.Value()
	}
	result.Killed = target.Health.IsDead()

	switch {
	case result.Killed:
		result.Message = target.Name() + " is destroyed!"
	case result.Broke:
		result.Message = target.Name() + " is broken!"
	}
	return result
}
