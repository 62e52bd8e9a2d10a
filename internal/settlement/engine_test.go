package settlement

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/miraklik/casino-settlement/internal/bank"
	"github.com/miraklik/casino-settlement/internal/tier"
	"github.com/miraklik/casino-settlement/internal/wager"
	"github.com/miraklik/casino-settlement/pkg/contracts/events"
)

const (
	testOracleID = "oracle-simulator"
	testOwnerID  = "owner"
)

// fakeOracle devolve requestIDs sequenciais previsíveis.
type fakeOracle struct {
	next int
	err  error
}

func (f *fakeOracle) RequestRandomness(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.next++
	return fmt.Sprintf("req-%d", f.next), nil
}

type transfer struct {
	account string
	amount  int64
	ref     string
}

// fakeTreasury registra transferências e permite injetar falhas por ref.
type fakeTreasury struct {
	sends    []transfer
	pulls    []transfer
	failSend func(ref string) error
	failPull func(ref string) error
}

func (f *fakeTreasury) Send(_ context.Context, to string, amount int64, ref string) error {
	if f.failSend != nil {
		if err := f.failSend(ref); err != nil {
			return err
		}
	}
	f.sends = append(f.sends, transfer{to, amount, ref})
	return nil
}

func (f *fakeTreasury) Pull(_ context.Context, from string, amount int64, ref string) error {
	if f.failPull != nil {
		if err := f.failPull(ref); err != nil {
			return err
		}
	}
	f.pulls = append(f.pulls, transfer{from, amount, ref})
	return nil
}

func (f *fakeTreasury) sentTo(account string) int64 {
	var total int64
	for _, s := range f.sends {
		if s.account == account {
			total += s.amount
		}
	}
	return total
}

// recordPublisher acumula os eventos emitidos.
type recordPublisher struct {
	accepted []events.BetAccepted
	resolved []events.BetResolved
	bank     []events.BankUpdated
}

func (r *recordPublisher) BetAccepted(_ context.Context, e events.BetAccepted) error {
	r.accepted = append(r.accepted, e)
	return nil
}

func (r *recordPublisher) BetResolved(_ context.Context, e events.BetResolved) error {
	r.resolved = append(r.resolved, e)
	return nil
}

func (r *recordPublisher) BankUpdated(_ context.Context, e events.BankUpdated) error {
	r.bank = append(r.bank, e)
	return nil
}

type testRig struct {
	engine   *Engine
	wagers   *wager.MemoryStore
	bank     *bank.Ledger
	tiers    *tier.StaticRegistry
	oracle   *fakeOracle
	treasury *fakeTreasury
	publ     *recordPublisher
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	rig := &testRig{
		wagers:   wager.NewMemoryStore(),
		bank:     bank.New(bank.NewMemoryJournal()),
		tiers:    tier.NewStaticRegistry(nil),
		oracle:   &fakeOracle{},
		treasury: &fakeTreasury{},
		publ:     &recordPublisher{},
	}

	engine, err := NewEngine(
		zap.NewNop(),
		rig.wagers,
		rig.bank,
		rig.tiers,
		rig.oracle,
		rig.treasury,
		rig.publ,
		EngineConfig{
			OracleID: testOracleID,
			OwnerID:  testOwnerID,
			Params: Params{
				MinBetMicros: 1_000,     // 0.001 unidade
				MaxBetMicros: 5_000_000, // 5 unidades
				BaseFeeRate:  5,
			},
		},
	)
	require.NoError(t, err)
	rig.engine = engine
	return rig
}

// fundBank credita a reserva direto no ledger, sem passar pelo engine.
func (r *testRig) fundBank(t *testing.T, amount int64) {
	t.Helper()
	_, err := r.bank.Credit(context.Background(), amount, "deposit", "test-fund")
	require.NoError(t, err)
}

func coinflip(guess int) wager.Selection {
	return wager.Selection{Game: wager.GameCoinflip, Guess: guess}
}

func rouletteNumber(n int) wager.Selection {
	return wager.Selection{Game: wager.GameRoulette, HasNumber: true, Number: n}
}
