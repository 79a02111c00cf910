package combat

import "time"

// Enrage is a timed multiplier on movement speed and attack cadence.
type Enrage struct {
	left    time.Duration
	speed   float64
	cadence float64
}

// Trigger starts (or restarts) an enrage window.
func (e *Enrage) Trigger(d time.Duration, speed, cadence float64) {
	if d <= 0 {
		return
	}
	e.left = d
	e.speed = speed
	e.cadence = cadence
}

// Tick counts down the window.
func (e *Enrage) Tick(dt time.Duration) {
	if e.left <= 0 {
		return
	}
	e.left -= dt
	if e.left < 0 {
		e.left = 0
	}
}

// Active reports whether the adversary is enraged.
func (e *Enrage) Active() bool { return e.left > 0 }

// Remaining returns the time left in the window.
func (e *Enrage) Remaining() time.Duration { return e.left }

// SpeedMultiplier scales movement speed; 1 when calm.
func (e *Enrage) SpeedMultiplier() float64 {
	if !e.Active() || e.speed <= 0 {
		return 1
	}
	return e.speed
}

// CadenceMultiplier scales attack frequency; 1 when calm.
func (e *Enrage) CadenceMultiplier() float64 {
	if !e.Active() || e.cadence <= 0 {
		return 1
	}
	return e.cadence
}

// Reset clears the window.
func (e *Enrage) Reset() { *e = Enrage{} }
