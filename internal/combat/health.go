// Package combat provides the health/break model, attack resolution and the
// combat-phase encounter with the case adversary.
package combat

import "time"

// Damageable is a health value bounded to [0, max]. It is dead at zero.
type Damageable struct {
	hp  float64
	max float64
}

// NewDamageable creates a full health pool.
func NewDamageable(max float64) Damageable {
	if max < 0 {
		max = 0
	}
	return Damageable{hp: max, max: max}
}

// TakeDamage reduces health and returns the amount applied. Negative
// amounts are treated as zero and further damage is ignored once dead.
func (d *Damageable) TakeDamage(amount float64) float64 {
	if amount <= 0 || d.IsDead() {
		return 0
	}
	if amount > d.hp {
		amount = d.hp
	}
	d.hp -= amount
	return amount
}

// IsDead reports whether health has reached zero.
func (d *Damageable) IsDead() bool { return d.hp <= 0 }

// HP returns current health.
func (d *Damageable) HP() float64 { return d.hp }

// Max returns maximum health.
func (d *Damageable) Max() float64 { return d.max }

// Reset restores full health.
func (d *Damageable) Reset() { d.hp = d.max }

// Breakable is a secondary value bounded to [0, max]. Reaching zero puts it
// in a broken state that recovers to max after a duration.
type Breakable struct {
	value    float64
	max      float64
	broken   bool
	recovery time.Duration // unscaled broken duration
	left     time.Duration
}

// NewBreakable creates a full break gauge.
func NewBreakable(max float64, recovery time.Duration) Breakable {
	if max < 0 {
		max = 0
	}
	return Breakable{value: max, max: max, recovery: recovery}
}

// RecoveryDuration returns how long a break lasts under the given
// multiplier. Multipliers below one are treated as one.
func (b *Breakable) RecoveryDuration(multiplier float64) time.Duration {
	if multiplier < 1 {
		multiplier = 1
	}
	return time.Duration(float64(b.recovery) / multiplier)
}

// TakeBreakDamage reduces the gauge and reports whether this hit broke it.
// Damage is ignored while already broken.
func (b *Breakable) TakeBreakDamage(amount, recoveryMultiplier float64) bool {
	if b.broken || amount <= 0 {
		return false
	}
	b.value -= amount
	if b.value > 0 {
		return false
	}
	b.value = 0
	b.broken = true
	b.left = b.RecoveryDuration(recoveryMultiplier)
	return true
}

// Tick counts down the broken state and reports whether it just recovered.
func (b *Breakable) Tick(dt time.Duration) bool {
	if !b.broken {
		return false
	}
	b.left -= dt
	if b.left > 0 {
		return false
	}
	b.left = 0
	b.broken = false
	b.value = b.max
	return true
}

// IsBroken reports whether the gauge is in its broken state.
func (b *Breakable) IsBroken() bool { return b.broken }

// Value returns the current gauge value.
func (b *Breakable) Value() float64 { return b.value }

// Max returns the gauge maximum.
func (b *Breakable) Max() float64 { return b.max }

// Remaining returns the time left in the broken state.
func (b *Breakable) Remaining() time.Duration { return b.left }

// Reset refills the gauge and clears any broken state.
func (b *Breakable) Reset() {
	b.value = b.max
	b.broken = false
	b.left = 0
}
