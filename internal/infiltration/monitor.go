// Package infiltration tracks how alert the adversary's surroundings are
// and converts a full alert into a timed lockdown.
package infiltration

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/ledger"
	"github.com/samdwyer/parley/internal/telemetry"
)

// alertEpsilon absorbs float drift from summing per-frame increments.
const alertEpsilon = 1e-9

// Monitor accumulates alert from detection reports and runs lockdowns.
// Lockdown itself never blocks evidence; callers check IsLockdownActive.
type Monitor struct {
	def    gamedata.InfiltrationDef
	meta   *ledger.Meta
	run    *ledger.Run
	sink   events.Sink
	logger *zap.Logger

	alert         float64
	intensity     float64
	sinceSeen     time.Duration
	seen          bool
	lockdownLeft  time.Duration
	lockdownCount int
}

// NewMonitor creates a calm monitor. meta supplies the security multiplier.
func NewMonitor(def gamedata.InfiltrationDef, meta *ledger.Meta, logger *zap.Logger, sink events.Sink) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		def:    def,
		meta:   meta,
		sink:   events.OrNop(sink),
		logger: logger.Named("infiltration"),
	}
}

// BindRun directs lockdown costs to run.
func (m *Monitor) BindRun(run *ledger.Run) { m.run = run }

// ReportSeen records that a detector currently sees the player.
// Reports are expected every frame while visible.
func (m *Monitor) ReportSeen(intensity float64) {
	if intensity <= 0 {
		return
	}
	if intensity > 1 {
		intensity = 1
	}
	m.intensity = intensity
	m.sinceSeen = 0
	m.seen = true
}

// Tick rises or decays the alert and counts down any lockdown.
func (m *Monitor) Tick(ctx context.Context, dt time.Duration) {
	if dt <= 0 {
		return
	}

	if m.lockdownLeft > 0 {
		m.lockdownLeft -= dt
		if m.lockdownLeft <= 0 {
			m.lockdownLeft = 0
			m.logger.Info("lockdown ended")
			m.sink.Publish(events.LockdownEnded{})
		}
	}

	secs := dt.Seconds()
	if m.seen && m.sinceSeen <= m.def.Recency() {
		m.alert += m.intensity * m.def.RiseRate * m.securityMultiplier() * secs
	} else {
		m.seen = false
		m.alert -= m.def.DecayRate * secs
	}
	m.sinceSeen += dt
	m.alert = clamp01(m.alert)

	if m.alert >= 1-alertEpsilon {
		m.triggerLockdown(ctx)
	}
}

func (m *Monitor) triggerLockdown(ctx context.Context) {
	_, span := telemetry.Tracer("infiltration").Start(ctx, "infiltration.lockdown")
	defer span.End()

	extended := m.lockdownLeft > 0
	d := m.def.LockdownDuration()
	m.lockdownLeft = d
	m.lockdownCount++
	m.alert = m.def.ResetAlertTo

	if m.run != nil {
		m.run.AddAdminCost(m.def.LockdownAdminCost)
		m.run.AddInsight(m.def.LockdownInsight)
	}

	span.SetAttributes(
		attribute.Bool("extended", extended),
		attribute.Float64("admin_cost", m.def.LockdownAdminCost),
		attribute.Int("count", m.lockdownCount),
	)
	m.logger.Info("lockdown", zap.Duration("duration", d), zap.Bool("extended", extended))
	m.sink.Publish(events.LockdownStarted{Duration: d, Extended: extended})
}

func (m *Monitor) securityMultiplier() float64 {
	if m.meta == nil {
		return 1
	}
	return m.meta.SecurityMultiplier()
}

// IsLockdownActive reports whether a lockdown is running.
func (m *Monitor) IsLockdownActive() bool { return m.lockdownLeft > 0 }

// LockdownRemaining returns the time left in the current lockdown.
func (m *Monitor) LockdownRemaining() time.Duration { return m.lockdownLeft }

// Alert returns the alert level in [0,1].
func (m *Monitor) Alert() float64 { return m.alert }

// LockdownCount returns how many lockdowns have triggered since Reset.
func (m *Monitor) LockdownCount() int { return m.lockdownCount }

// Reset clears alert and any lockdown.
func (m *Monitor) Reset() {
	m.alert = 0
	m.intensity = 0
	m.sinceSeen = 0
	m.seen = false
	m.lockdownLeft = 0
	m.lockdownCount = 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
