package rules

import (
	"fmt"
	"time"

	"github.com/samdwyer/parley/internal/gamedata"
)

// detector is the runtime state of one active rule. Each rule owns its own
// detector, so rules of the same kind never share timers.
type detector interface {
	// tick advances time-based state and reports a violation reason, if any.
	tick(dt time.Duration, locked bool) (string, bool)
	// attack observes one fresh attack at the given engine time.
	attack(t gamedata.AttackType, at time.Duration) (string, bool)
	reset()
}

func newDetector(def gamedata.RuleDef) detector {
	switch def.Kind {
	case gamedata.RuleGazeLock:
		return &gazeDetector{threshold: def.Threshold()}
	case gamedata.RuleRepeatedAttack:
		return &repeatDetector{threshold: def.Count, window: def.WindowDuration()}
	default:
		return nil
	}
}

// gazeDetector accumulates while a target lock is held and drains at twice
// that rate otherwise.
type gazeDetector struct {
	threshold time.Duration
	held      time.Duration
}

func (g *gazeDetector) tick(dt time.Duration, locked bool) (string, bool) {
	if locked {
		g.held += dt
	} else {
		g.held -= 2 * dt
		if g.held < 0 {
			g.held = 0
		}
	}
	if g.threshold > 0 && g.held >= g.threshold {
		g.held = 0
		return fmt.Sprintf("target locked for %.1fs", g.threshold.Seconds()), true
	}
	return "", false
}

func (g *gazeDetector) attack(gamedata.AttackType, time.Duration) (string, bool) {
	return "", false
}

func (g *gazeDetector) reset() { g.held = 0 }

// repeatDetector counts consecutive attacks of one type inside a sliding window.
type repeatDetector struct {
	threshold   int
	window      time.Duration
	last        gamedata.AttackType
	count       int
	windowStart time.Duration
}

func (r *repeatDetector) tick(time.Duration, bool) (string, bool) {
	return "", false
}

func (r *repeatDetector) attack(t gamedata.AttackType, at time.Duration) (string, bool) {
	if t != r.last || r.count == 0 || at-r.windowStart > r.window {
		r.last = t
		r.count = 1
		r.windowStart = at
	} else {
		r.count++
	}

	if r.threshold > 0 && r.count >= r.threshold {
		r.count = 0
		r.windowStart = 0
		return fmt.Sprintf("%s attack repeated %d times", t, r.threshold), true
	}
	return "", false
}

func (r *repeatDetector) reset() {
	r.last = ""
	r.count = 0
	r.windowStart = 0
}
