package negotiation

import (
	"math/rand"
	"time"
)

// Direction is one ritual input.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

const directionCount = 4

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// Arrow returns a one-rune glyph for the direction.
func (d Direction) Arrow() rune {
	switch d {
	case DirUp:
		return '↑'
	case DirDown:
		return '↓'
	case DirLeft:
		return '←'
	case DirRight:
		return '→'
	default:
		return '?'
	}
}

// RitualStep reports what one input did.
type RitualStep int

const (
	StepAdvanced RitualStep = iota
	StepCompleted
	StepWrong
)

// Ritual is the ordered input sequence that finalizes a seal. Its step
// timer is driven by unscaled time so slow-motion does not stall it.
type Ritual struct {
	sequence []Direction
	index    int
	budget   time.Duration
	left     time.Duration
}

// GenerateSequence builds a random sequence in which no direction
// immediately repeats.
func GenerateSequence(length int, rng *rand.Rand) []Direction {
	seq := make([]Direction, 0, length)
	for i := 0; i < length; i++ {
		d := Direction(rng.Intn(directionCount))
		if i > 0 && d == seq[i-1] {
			// Pick uniformly among the three other directions.
			d = Direction((int(d) + 1 + rng.Intn(directionCount-1)) % directionCount)
		}
		seq = append(seq, d)
	}
	return seq
}

// NewRitual creates a ritual over sequence with a per-step time budget.
func NewRitual(sequence []Direction, budget time.Duration) *Ritual {
	return &Ritual{
		sequence: sequence,
		budget:   budget,
		left:     budget,
	}
}

// Input applies one direction. A correct input resets the step timer.
func (r *Ritual) Input(d Direction) RitualStep {
	if r.Done() || d != r.sequence[r.index] {
		return StepWrong
	}
	r.index++
	r.left = r.budget
	if r.Done() {
		return StepCompleted
	}
	return StepAdvanced
}

// Tick advances the step timer by unscaled time and reports a timeout.
func (r *Ritual) Tick(unscaled time.Duration) bool {
	if r.Done() {
		return false
	}
	r.left -= unscaled
	return r.left <= 0
}

// Done reports whether every step has been entered.
func (r *Ritual) Done() bool { return r.index >= len(r.sequence) }

// Sequence returns a copy of the expected inputs.
func (r *Ritual) Sequence() []Direction {
	return append([]Direction(nil), r.sequence...)
}

// Index returns how many steps have been entered.
func (r *Ritual) Index() int { return r.index }

// Remaining returns the time left for the current step.
func (r *Ritual) Remaining() time.Duration { return r.left }

// Budget returns the per-step time budget.
func (r *Ritual) Budget() time.Duration { return r.budget }
