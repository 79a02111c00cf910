package negotiation

import "github.com/samdwyer/parley/internal/gamedata"

// EvidenceReader is the part of the evidence store the gate reads.
type EvidenceReader interface {
	CountOf(tags []gamedata.EvidenceTag) int
}

// Gate is the evidence-sufficiency check for one option under one stance.
type Gate struct {
	Required      int // before reductions
	Have          int
	StanceReduce  int
	InsightReduce int
	FinalRequired int
	CanSucceed    bool
}

// ComputeGate evaluates an option's gate. It is a pure function of its
// inputs; the same evidence, stance, option and insight always give the same gate.
func ComputeGate(opt *gamedata.OptionDef, stance gamedata.Stance, evidence EvidenceReader, insight, insightPerReduction int) Gate {
	g := Gate{
		Required:     opt.Required(),
		StanceReduce: stance.Reduction(),
	}
	if evidence != nil {
		g.Have = evidence.CountOf(opt.EvidenceTags)
	}
	if insightPerReduction > 0 && insight > 0 {
		g.InsightReduce = insight / insightPerReduction
	}

	g.FinalRequired = g.Required - g.StanceReduce - g.InsightReduce
	if g.FinalRequired < 0 {
		g.FinalRequired = 0
	}
	g.CanSucceed = g.Have >= g.FinalRequired
	return g
}

// AdminCost returns the administrative cost of succeeding under stance,
// scaled by carryover debt and distortion and clamped to [0,1].
func AdminCost(base gamedata.StanceCosts, stance gamedata.Stance, truceDebt, distortion int) float64 {
	cost := base.For(stance) * (1 + 0.25*float64(truceDebt) + 0.15*float64(distortion))
	if cost < 0 {
		return 0
	}
	if cost > 1 {
		return 1
	}
	return cost
}
