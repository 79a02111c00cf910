package game

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/samdwyer/parley/internal/combat"
	"github.com/samdwyer/parley/internal/entity"
	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/evidence"
	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/infiltration"
	"github.com/samdwyer/parley/internal/ledger"
	"github.com/samdwyer/parley/internal/negotiation"
	"github.com/samdwyer/parley/internal/rules"
	"github.com/samdwyer/parley/internal/save"
	"github.com/samdwyer/parley/internal/world"
)

var (
	// ErrNoPhases is returned when the case has no phase list.
	ErrNoPhases = errors.New("case has no phases")
	// ErrNotAllowed is returned for inputs the current phase does not accept.
	ErrNotAllowed = errors.New("action not allowed in this phase")
	// ErrUnknownEvidence is returned for tags outside the case catalog.
	ErrUnknownEvidence = errors.New("unknown evidence")
	// ErrLockdown is returned when gated evidence is refused during a lockdown.
	ErrLockdown = errors.New("evidence refused during lockdown")
	// ErrNoZone is returned when the investigator is not standing in an evidence zone.
	ErrNoZone = errors.New("nothing to examine here")
)

// Exposure is the detection intensity reported while the investigator
// stands in the shallows during an investigation.
const Exposure = 0.8

// Options configures a CaseSession.
type Options struct {
	Case   gamedata.CaseDef
	Meta   *ledger.Meta // shared across cases; nil starts fresh
	Store  save.Store   // nil keeps saves in memory
	Seed   int64
	Logger *zap.Logger
	Sink   events.Sink
}

// CaseSession owns every subsystem of one case and advances them in a
// fixed order each tick. All state is reached through the session; there
// are no package-level singletons.
type CaseSession struct {
	def    gamedata.CaseDef
	logger *zap.Logger
	sink   events.Sink
	store  save.Store

	meta         *ledger.Meta
	run          *ledger.Run
	lastRun      *ledger.Run
	evidence     *evidence.Store
	rules        *rules.Engine
	encounter    *combat.Encounter
	negotiation  *negotiation.Engine
	infiltration *infiltration.Monitor
	arena        *world.Arena
	player       *entity.Investigator
	director     *Director

	// refusals maps a gated tag to the lockdown that last paid insight for it.
	refusals map[gamedata.EvidenceTag]int

	controls  Controls
	timeScale float64
	elapsed   time.Duration
	start     world.Vec
}

// NewSession builds a session for opts.Case. The case is expected to have
// been validated; a case without phases yields a disabled director.
func NewSession(ctx context.Context, opts Options) *CaseSession {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	meta := opts.Meta
	if meta == nil {
		meta = ledger.NewMeta()
	}
	store := opts.Store
	if store == nil {
		store = save.NewMemoryStore()
	}
	sink := events.OrNop(opts.Sink)
	rng := rand.New(rand.NewSource(opts.Seed))

	s := &CaseSession{
		def:       opts.Case,
		logger:    logger.Named("session"),
		sink:      sink,
		store:     store,
		meta:      meta,
		evidence:  evidence.NewStore(),
		refusals:  make(map[gamedata.EvidenceTag]int),
		timeScale: 1,
	}

	s.arena = world.NewArena(world.DefaultWidth, world.DefaultHeight, rng)
	spawn := world.Vec{X: s.def.Adversary.Spawn.X, Y: s.def.Adversary.Spawn.Y}
	zones := make([]string, len(s.def.Evidence))
	for i, e := range s.def.Evidence {
		zones[i] = string(e.Tag)
	}
	s.arena.Generate(ctx, spawn, zones)
	s.start = s.findStart()
	s.player = entity.NewInvestigator("Investigator", s.start)

	s.rules = rules.NewEngine(logger, sink)
	s.encounter = combat.NewEncounter(s.def.Adversary, s.def.Attacks, logger, sink)
	s.encounter.SetArena(s.arena)
	s.encounter.OnResolved(s.onResolved)
	s.negotiation = negotiation.NewEngine(s.def.Negotiation, s.evidence, s.encounter, meta, rng, logger, sink)
	s.infiltration = infiltration.NewMonitor(s.def.Infiltration, meta, logger, sink)
	s.director = newDirector(s, s.def.Phases, logger)
	return s
}

// findStart picks the first passable cell near the arena's west wall.
func (s *CaseSession) findStart() world.Vec {
	mid := float64(s.arena.Height / 2)
	for x := 2; x < s.arena.Width-1; x++ {
		for dy := 0; dy < s.arena.Height/2; dy++ {
			for _, y := range []float64{mid + float64(dy), mid - float64(dy)} {
				p := world.Vec{X: float64(x), Y: y}
				if s.arena.IsPassable(p) {
					return p
				}
			}
		}
	}
	return world.Vec{X: 2, Y: mid}
}

// StartRun creates a fresh run ledger and binds it to every subsystem.
func (s *CaseSession) StartRun() *ledger.Run {
	s.run = ledger.NewRun(s.def.ID)
	s.bindRun(s.run)
	s.logger.Info("run started", zap.String("case", s.def.ID), zap.String("run", s.run.ID))
	return s.run
}

// EndRun drops the active run ledger. It stays readable through LastRun.
func (s *CaseSession) EndRun() {
	if s.run == nil {
		return
	}
	s.lastRun = s.run
	s.run = nil
	s.bindRun(nil)
}

func (s *CaseSession) bindRun(run *ledger.Run) {
	s.rules.BindRun(run)
	s.encounter.BindRun(run)
	s.negotiation.BindRun(run)
	s.infiltration.BindRun(run)
}

// Tick advances the case by one frame of wall-clock time. Game timers see
// frame scaled by the time scale; the ritual step timer sees frame as is.
func (s *CaseSession) Tick(ctx context.Context, frame time.Duration) {
	if frame <= 0 {
		return
	}
	scaled := time.Duration(float64(frame) * s.timeScale)
	s.elapsed += scaled

	s.rules.SetTargetLock(s.player.TargetLocked())
	s.rules.Tick(scaled)
	s.encounter.Tick(scaled)

	if s.Phase().Kind == gamedata.PhaseInvestigation && s.exposed() {
		s.infiltration.ReportSeen(Exposure)
	}
	s.infiltration.Tick(ctx, scaled)
	s.negotiation.Tick(ctx, scaled, frame)

	if s.encounter.Active() && s.player.IsDead() {
		s.sink.Publish(events.Toast{Text: "You are driven back. The confrontation begins again."})
		s.logger.Info("investigator defeated; restarting phase")
		s.director.reenter(ctx)
	}
}

func (s *CaseSession) exposed() bool {
	x, y := s.player.Pos.Cell()
	return s.arena.GetTile(x, y) == world.TileShallows
}

// SetTimeScale sets the slow-motion factor applied to game timers.
// Non-positive values are ignored.
func (s *CaseSession) SetTimeScale(f float64) {
	if f > 0 {
		s.timeScale = f
	}
}

// TimeScale returns the current slow-motion factor.
func (s *CaseSession) TimeScale() float64 { return s.timeScale }

// onResolved is the continuation of combat resolution: the carryover
// ledger changes exactly once, then the director advances.
func (s *CaseSession) onResolved(ctx context.Context, o gamedata.Outcome) {
	s.director.recordOutcome(o)
	if s.director.metaApplied {
		s.logger.Warn("outcome already applied", zap.String("outcome", string(o)))
	} else {
		s.meta.ApplyOutcome(o)
		s.director.metaApplied = true
		if err := s.store.SaveMeta(ctx, s.meta.Snapshot()); err != nil {
			s.logger.Warn("save meta failed", zap.Error(err))
		}
	}
	s.player.SetTargetLock(false)
	s.director.NextPhase(ctx)
}

// Case returns the case definition.
func (s *CaseSession) Case() gamedata.CaseDef { return s.def }

// Director returns the phase director.
func (s *CaseSession) Director() *Director { return s.director }

// Phase returns the current phase, or a zero PhaseDef before the episode starts.
func (s *CaseSession) Phase() gamedata.PhaseDef { return s.director.Current() }

// Display returns the player-facing phase name.
func (s *CaseSession) Display() Display {
	return DisplayFor(s.Phase().Kind, s.negotiation.IsOpen())
}

// Controls returns the inputs the current phase accepts.
func (s *CaseSession) Controls() Controls { return s.controls }

func (s *CaseSession) Meta() *ledger.Meta                  { return s.meta }
func (s *CaseSession) Run() *ledger.Run                    { return s.run }
func (s *CaseSession) Evidence() *evidence.Store           { return s.evidence }
func (s *CaseSession) Rules() *rules.Engine                { return s.rules }
func (s *CaseSession) Encounter() *combat.Encounter        { return s.encounter }
func (s *CaseSession) Negotiation() *negotiation.Engine    { return s.negotiation }
func (s *CaseSession) Infiltration() *infiltration.Monitor { return s.infiltration }
func (s *CaseSession) Arena() *world.Arena                 { return s.arena }
func (s *CaseSession) Player() *entity.Investigator        { return s.player }
func (s *CaseSession) Store() save.Store                   { return s.store }
func (s *CaseSession) Elapsed() time.Duration              { return s.elapsed }

// LastRun returns the active run, or the most recently ended one.
func (s *CaseSession) LastRun() *ledger.Run {
	if s.run != nil {
		return s.run
	}
	return s.lastRun
}
