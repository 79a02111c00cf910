package negotiation

import "github.com/samdwyer/parley/internal/gamedata"

// findCounterOffer looks for the smallest stance upgrade that lets the same
// option succeed, then for any option that would succeed at Balanced and
// then Concede. Emergency options are never offered.
func (e *Engine) findCounterOffer(idx int) *CounterOffer {
	opt := &e.def.Options[idx]
	for s := e.stance + 1; s <= e.def.ConcessionCap(); s++ {
		if e.gate(opt, s).CanSucceed {
			return &CounterOffer{Option: idx, Label: opt.Label, Stance: s}
		}
	}

	for _, s := range []gamedata.Stance{gamedata.StanceBalanced, gamedata.StanceConcede} {
		if s > e.def.ConcessionCap() {
			break
		}
		for _, j := range e.visible {
			other := &e.def.Options[j]
			if other.Emergency || (j == idx && s <= e.stance) {
				continue
			}
			if e.gate(other, s).CanSucceed {
				return &CounterOffer{Option: j, Label: other.Label, Stance: s}
			}
		}
	}
	return nil
}
