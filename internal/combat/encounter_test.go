package combat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/ledger"
	"github.com/samdwyer/parley/internal/world"
)

// mockCombatant is a test implementation of the Combatant interface.
type mockCombatant struct {
	pos world.Vec
	hp  float64
}

func (m *mockCombatant) Name() string        { return "mock" }
func (m *mockCombatant) Position() world.Vec { return m.pos }
func (m *mockCombatant) IsDead() bool        { return m.hp <= 0 }

func (m *mockCombatant) TakeDamage(amount float64) float64 {
	if amount > m.hp {
		amount = m.hp
	}
	m.hp -= amount
	return amount
}

func testAdversary() gamedata.AdversaryDef {
	return gamedata.AdversaryDef{
		ID:                      "ferryman",
		Name:                    "The Ferryman",
		HP:                      50,
		Break:                   20,
		BreakRecoverySeconds:    8,
		MoveSpeed:               2,
		AttackRange:             1.5,
		AttackDamage:            5,
		AttackCooldownSeconds:   1,
		EnrageSeconds:           4,
		EnrageSpeedMultiplier:   2,
		EnrageCadenceMultiplier: 2,
		NegotiationRange:        4,
		Spawn:                   gamedata.Point{X: 10, Y: 5},
	}
}

func testAttacks() []gamedata.AttackDef {
	return []gamedata.AttackDef{
		{Type: gamedata.AttackLight, Name: "Jab", Damage: 5, BreakDamage: 10, Range: 3},
		{Type: gamedata.AttackHeavy, Name: "Smash", Damage: 60, BreakDamage: 0, Range: 3},
	}
}

func newTestEncounter(player *mockCombatant) (*Encounter, *ledger.Run, *events.Recorder, *[]gamedata.Outcome) {
	rec := &events.Recorder{}
	run := ledger.NewRun("test")
	e := NewEncounter(testAdversary(), testAttacks(), nil, rec)
	e.BindRun(run)
	var resolved []gamedata.Outcome
	e.OnResolved(func(_ context.Context, o gamedata.Outcome) { resolved = append(resolved, o) })
	e.BeginCombat(context.Background(), player)
	return e, run, rec, &resolved
}

func TestPlayerAttackBreaksAdversary(t *testing.T) {
	player := &mockCombatant{pos: world.Vec{X: 9, Y: 5}, hp: 100}
	e, run, rec, _ := newTestEncounter(player)
	run.RecordViolation("x", "y", 0) // multiplier 1.25

	ctx := context.Background()
	if r, _ := e.PlayerAttack(ctx, gamedata.AttackLight); r.Broke {
		t.Fatal("first jab should not break a 20 gauge")
	}
	r, err := e.PlayerAttack(ctx, gamedata.AttackLight)
	if err != nil || !r.Broke {
		t.Fatalf("second jab = %+v, %v; want broke", r, err)
	}
	if !e.IsBroken() {
		t.Error("IsBroken() should be true")
	}
	if got := e.Adversary().Break.Remaining(); got != time.Duration(float64(8*time.Second)/1.25) {
		t.Errorf("recovery = %v, want 6.4s", got)
	}
	if rec.Count("adversary_broken") != 1 {
		t.Error("break should be published once")
	}
	if !e.InRange() {
		t.Error("player at distance 1 should be in negotiation range")
	}
}

func TestBrokenAdversaryIsSuppressed(t *testing.T) {
	player := &mockCombatant{pos: world.Vec{X: 9, Y: 5}, hp: 100}
	e, run, _, _ := newTestEncounter(player)

	e.PlayerAttack(context.Background(), gamedata.AttackLight)
	e.PlayerAttack(context.Background(), gamedata.AttackLight)

	for i := 0; i < 50; i++ {
		e.Tick(100 * time.Millisecond)
	}
	if run.HitCount() != 0 {
		t.Errorf("broken adversary landed %d hits, want 0", run.HitCount())
	}
}

func TestAdversaryChasesAndAttacks(t *testing.T) {
	player := &mockCombatant{pos: world.Vec{X: 2, Y: 5}, hp: 100}
	e, run, rec, _ := newTestEncounter(player)

	for i := 0; i < 60; i++ {
		e.Tick(100 * time.Millisecond)
	}
	if !e.Adversary().Pos.Within(player.pos, testAdversary().AttackRange) {
		t.Fatalf("adversary at %v did not close to attack range", e.Adversary().Pos)
	}
	if run.HitCount() == 0 || run.DamageTaken() != player.TakenFrom(100) {
		t.Errorf("hits = %d damage = %v", run.HitCount(), run.DamageTaken())
	}
	if rec.Count("player_hit") != run.HitCount() {
		t.Errorf("player_hit events = %d, hits = %d", rec.Count("player_hit"), run.HitCount())
	}
}

func (m *mockCombatant) TakenFrom(start float64) float64 { return start - m.hp }

func TestEnrageShortensCadence(t *testing.T) {
	calm := &mockCombatant{pos: world.Vec{X: 9, Y: 5}, hp: 1000}
	e1, run1, _, _ := newTestEncounter(calm)

	angry := &mockCombatant{pos: world.Vec{X: 9, Y: 5}, hp: 1000}
	e2, run2, rec, _ := newTestEncounter(angry)
	if !e2.Enrage() {
		t.Fatal("Enrage() should succeed with a spawned adversary")
	}

	for i := 0; i < 30; i++ {
		e1.Tick(100 * time.Millisecond)
		e2.Tick(100 * time.Millisecond)
	}
	if run2.HitCount() <= run1.HitCount() {
		t.Errorf("enraged hits %d should exceed calm hits %d", run2.HitCount(), run1.HitCount())
	}
	if rec.Count("adversary_enraged") != 1 {
		t.Error("enrage should be published")
	}
}

func TestSlayResolvesOnce(t *testing.T) {
	player := &mockCombatant{pos: world.Vec{X: 9, Y: 5}, hp: 100}
	e, _, _, resolved := newTestEncounter(player)

	r, err := e.PlayerAttack(context.Background(), gamedata.AttackHeavy)
	if err != nil || !r.Killed {
		t.Fatalf("heavy attack = %+v, %v; want kill", r, err)
	}
	if e.Outcome() != gamedata.OutcomeSlay || !e.Resolved() || e.Adversary() != nil {
		t.Errorf("after kill: outcome %v resolved %v adversary %v", e.Outcome(), e.Resolved(), e.Adversary())
	}
	if len(*resolved) != 1 || (*resolved)[0] != gamedata.OutcomeSlay {
		t.Errorf("OnResolved calls = %v", *resolved)
	}

	if err := e.ResolveByNegotiation(context.Background(), gamedata.OutcomeSeal); !errors.Is(err, ErrNoAdversary) {
		t.Errorf("second resolution = %v, want ErrNoAdversary", err)
	}
	if _, err := e.PlayerAttack(context.Background(), gamedata.AttackLight); !errors.Is(err, ErrInactive) {
		t.Errorf("attack after resolution = %v, want ErrInactive", err)
	}
	if len(*resolved) != 1 {
		t.Error("combat must resolve exactly once")
	}
}

func TestResolveByNegotiation(t *testing.T) {
	player := &mockCombatant{pos: world.Vec{X: 9, Y: 5}, hp: 100}
	e, _, rec, resolved := newTestEncounter(player)

	if err := e.ResolveByNegotiation(context.Background(), gamedata.OutcomeContract); err != nil {
		t.Fatalf("ResolveByNegotiation() error: %v", err)
	}
	if (*resolved)[0] != gamedata.OutcomeContract {
		t.Errorf("resolved = %v", *resolved)
	}
	if ev, ok := rec.Last("outcome_resolved").(events.OutcomeResolved); !ok || ev.Outcome != gamedata.OutcomeContract {
		t.Errorf("outcome event = %v", rec.Last("outcome_resolved"))
	}
}

func TestPlayerAttackRejections(t *testing.T) {
	player := &mockCombatant{pos: world.Vec{X: 0, Y: 0}, hp: 100}
	e, _, _, _ := newTestEncounter(player)

	if _, err := e.PlayerAttack(context.Background(), gamedata.AttackRanged); !errors.Is(err, ErrUnknownAttack) {
		t.Errorf("undefined attack = %v, want ErrUnknownAttack", err)
	}
	r, err := e.PlayerAttack(context.Background(), gamedata.AttackLight)
	if err != nil || r.Hit {
		t.Errorf("out-of-range attack = %+v, %v; want a miss", r, err)
	}

	e.SetActive(false)
	if _, err := e.PlayerAttack(context.Background(), gamedata.AttackLight); !errors.Is(err, ErrInactive) {
		t.Errorf("inactive attack = %v, want ErrInactive", err)
	}
}

func TestAdversarySidestepsPillar(t *testing.T) {
	player := &mockCombatant{pos: world.Vec{X: 2.5, Y: 5.5}, hp: 100}
	e, _, _, _ := newTestEncounter(player)

	arena := world.NewArena(16, 11, nil)
	arena.Tiles[5][6] = world.TileWall
	e.SetArena(arena)
	e.Adversary().Pos = world.Vec{X: 10.5, Y: 5.5}

	for i := 0; i < 100; i++ {
		e.Tick(100 * time.Millisecond)
	}
	if !e.Adversary().Pos.Within(player.pos, testAdversary().AttackRange) {
		t.Fatalf("adversary stuck at %v behind the pillar", e.Adversary().Pos)
	}
}
