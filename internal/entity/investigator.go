// Package entity provides the player's investigator.
package entity

import (
	"github.com/samdwyer/parley/internal/combat"
	"github.com/samdwyer/parley/internal/world"
)

// DefaultHP is the investigator's starting health.
const DefaultHP = 60

// Investigator is the player-controlled avatar.
type Investigator struct {
	Handle string
	Symbol rune // Display symbol
	Pos    world.Vec
	Health combat.Damageable

	locked bool
}

// NewInvestigator creates an investigator at the given position.
func NewInvestigator(name string, pos world.Vec) *Investigator {
	return &Investigator{
		Handle: name,
		Symbol: '@',
		Pos:    pos,
		Health: combat.NewDamageable(DefaultHP),
	}
}

// Move steps the investigator through the arena by the given delta.
func (i *Investigator) Move(arena *world.Arena, dx, dy float64) {
	delta := world.Vec{X: dx, Y: dy}
	if arena == nil {
		i.Pos = i.Pos.Add(delta)
		return
	}
	i.Pos = arena.Step(i.Pos, delta)
}

// SetTargetLock records whether the investigator is locked onto the adversary.
func (i *Investigator) SetTargetLock(on bool) { i.locked = on }

// TargetLocked reports whether a target lock is held.
func (i *Investigator) TargetLocked() bool { return i.locked }

// Reset restores health and drops any target lock.
func (i *Investigator) Reset(pos world.Vec) {
	i.Pos = pos
	i.Health.Reset()
	i.locked = false
}

// =============================================================================
// Combatant interface implementation
// =============================================================================

// Name returns the investigator's name.
func (i *Investigator) Name() string { return i.Handle }

// Position returns the current arena position.
func (i *Investigator) Position() world.Vec { return i.Pos }

// TakeDamage reduces health and returns actual damage taken.
func (i *Investigator) TakeDamage(amount float64) float64 {
	return i.Health.TakeDamage(amount)
}

// IsDead returns true once health reaches zero.
func (i *Investigator) IsDead() bool { return i.Health.IsDead() }

// Ensure Investigator implements combat.Combatant
var _ combat.Combatant = (*Investigator)(nil)
