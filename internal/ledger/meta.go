package ledger

import "github.com/samdwyer/parley/internal/gamedata"

// MaxCarry is the upper bound of every Meta counter.
const MaxCarry = 3

// MetaSnapshot is the persisted form of Meta.
type MetaSnapshot struct {
	ContractBoon      bool `json:"contractBoon"`
	TruceDebt         int  `json:"truceDebt"`
	ArbitrationPasses int  `json:"arbitrationPasses"`
	Distortion        int  `json:"distortion"`
}

// Meta holds carryover modifiers derived from past case outcomes.
// Counters are always within [0, MaxCarry].
type Meta struct {
	contractBoon      bool
	truceDebt         int
	arbitrationPasses int
	distortion        int
}

// NewMeta returns an empty ledger.
func NewMeta() *Meta {
	return &Meta{}
}

// ApplyOutcome folds a resolved case outcome into the carryover state.
// Callers must invoke it exactly once per resolution.
func (m *Meta) ApplyOutcome(o gamedata.Outcome) {
	switch o {
	case gamedata.OutcomeContract:
		m.contractBoon = true
		m.truceDebt = clampCarry(m.truceDebt - 1)
		m.distortion = clampCarry(m.distortion - 1)
	case gamedata.OutcomeSeal:
		m.truceDebt = clampCarry(m.truceDebt - 1)
		m.distortion = clampCarry(m.distortion - 1)
	case gamedata.OutcomeTruce:
		m.truceDebt = clampCarry(m.truceDebt + 1)
		m.arbitrationPasses = clampCarry(m.arbitrationPasses + 1)
	case gamedata.OutcomeSlay:
		m.truceDebt = clampCarry(m.truceDebt + 1)
		m.distortion = clampCarry(m.distortion + 1)
	}
}

// SecurityMultiplier scales infiltration difficulty.
func (m *Meta) SecurityMultiplier() float64 {
	return 1 + 0.20*float64(m.truceDebt) + 0.15*float64(m.distortion)
}

// ConsumePass spends one arbitration pass. It reports false, changing
// nothing, when no pass is available.
func (m *Meta) ConsumePass() bool {
	if m.arbitrationPasses <= 0 {
		return false
	}
	m.arbitrationPasses--
	return true
}

// AddTruceDebt applies an emergency or option debt delta.
func (m *Meta) AddTruceDebt(delta int) {
	m.truceDebt = clampCarry(m.truceDebt + delta)
}

// ContractBoon reports whether a past contract grants the boon.
func (m *Meta) ContractBoon() bool { return m.contractBoon }

// TruceDebt returns the current truce debt.
func (m *Meta) TruceDebt() int { return m.truceDebt }

// ArbitrationPasses returns the available arbitration passes.
func (m *Meta) ArbitrationPasses() int { return m.arbitrationPasses }

// Distortion returns the current distortion.
func (m *Meta) Distortion() int { return m.distortion }

// Snapshot returns the persisted form.
func (m *Meta) Snapshot() MetaSnapshot {
	return MetaSnapshot{
		ContractBoon:      m.contractBoon,
		TruceDebt:         m.truceDebt,
		ArbitrationPasses: m.arbitrationPasses,
		Distortion:        m.distortion,
	}
}

// Restore replaces the state with s, clamping every counter.
func (m *Meta) Restore(s MetaSnapshot) {
	m.contractBoon = s.ContractBoon
	m.truceDebt = clampCarry(s.TruceDebt)
	m.arbitrationPasses = clampCarry(s.ArbitrationPasses)
	m.distortion = clampCarry(s.Distortion)
}

// Reset clears all carryover.
func (m *Meta) Reset() {
	*m = Meta{}
}

func clampCarry(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxCarry {
		return MaxCarry
	}
	return v
}
