package settlement

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miraklik/casino-settlement/internal/bank"
	"github.com/miraklik/casino-settlement/internal/tier"
)

func TestResolveRejectsNonOracleCaller(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	_, err := rig.engine.Accept(ctx, "alice", 1_000_000, coinflip(0))
	require.NoError(t, err)

	_, err = rig.engine.Resolve(ctx, "mallory", "req-1", 7)
	assert.ErrorIs(t, err, ErrNotOracle)

	// a aposta continua pendente
	_, err = rig.wagers.Get(ctx, "req-1")
	require.NoError(t, err)
}

func TestResolveLossKeepsFeeAndDeletesWager(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	// cenário: 1 unidade no resultado 0, oráculo devolve 7 -> resultado 1
	_, err := rig.engine.Accept(ctx, "alice", 1_000_000, coinflip(0))
	require.NoError(t, err)

	res, err := rig.engine.Resolve(ctx, testOracleID, "req-1", 7)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Outcome)
	assert.False(t, res.Won)
	assert.Zero(t, res.PayoutMicros)

	// reserva subiu só a taxa; registro apagado
	assert.Equal(t, int64(50_000), rig.bank.Balance())
	n, cerr := rig.wagers.Count(ctx)
	require.NoError(t, cerr)
	assert.Zero(t, n)

	require.Len(t, rig.publ.resolved, 1)
	assert.False(t, rig.publ.resolved[0].Won)
}

func TestResolveCoinflipWinPays2xPlusBonus(t *testing.T) {
	rig := newTestRig(t)
	rig.fundBank(t, 10_000_000)
	ctx := context.Background()

	_, err := rig.engine.Accept(ctx, "alice", 1_000_000, coinflip(0))
	require.NoError(t, err)

	res, err := rig.engine.Resolve(ctx, testOracleID, "req-1", 8) // 8 % 2 == 0
	require.NoError(t, err)

	require.True(t, res.Won)
	// sem tier: 950_000 * 200 / 100
	assert.Equal(t, int64(1_900_000), res.PayoutMicros)
	assert.Equal(t, int64(1_900_000), rig.treasury.sentTo("alice"))
	// reserva: fundo + taxa - prêmio
	assert.Equal(t, int64(10_000_000+50_000-1_900_000), rig.bank.Balance())
}

func TestResolveTier2NumberWin(t *testing.T) {
	rig := newTestRig(t)
	rig.tiers.Set("bob", tier.Tier2)
	rig.fundBank(t, 50_000_000)
	ctx := context.Background()

	_, err := rig.engine.Accept(ctx, "bob", 1_000_000, rouletteNumber(17))
	require.NoError(t, err)

	// 54 % 37 == 17
	res, err := rig.engine.Resolve(ctx, testOracleID, "req-1", 54)
	require.NoError(t, err)

	require.True(t, res.Won)
	assert.Equal(t, 17, res.Outcome)
	// net 930_000, multiplicador 3600 + bônus 10 do tier2
	want := int64(930_000) * (3600 + 10) / 100
	assert.Equal(t, want, res.PayoutMicros)
	assert.Equal(t, int64(50_000_000+20_000)-want, rig.bank.Balance())
}

func TestResolveUsesTierAtResolutionTime(t *testing.T) {
	rig := newTestRig(t)
	rig.fundBank(t, 10_000_000)
	ctx := context.Background()

	// aceita sem tier, ganha tier3 antes da resolução: o bônus de prêmio
	// usa o tier corrente, comportamento aceito
	_, err := rig.engine.Accept(ctx, "alice", 1_000_000, coinflip(0))
	require.NoError(t, err)
	rig.tiers.Set("alice", tier.Tier3)

	res, err := rig.engine.Resolve(ctx, testOracleID, "req-1", 8)
	require.NoError(t, err)

	// net calculado na aceitação (taxa 5%, sem cashback), bônus 15 de agora
	assert.Equal(t, int64(950_000)*(200+15)/100, res.PayoutMicros)
}

func TestResolveUnknownIDIsHardError(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	_, err := rig.engine.Resolve(ctx, testOracleID, "ghost", 1)
	assert.ErrorIs(t, err, ErrUnknownRequest)
}

func TestDoubleResolutionNeverPaysTwice(t *testing.T) {
	rig := newTestRig(t)
	rig.fundBank(t, 10_000_000)
	ctx := context.Background()

	_, err := rig.engine.Accept(ctx, "alice", 1_000_000, coinflip(0))
	require.NoError(t, err)

	res, err := rig.engine.Resolve(ctx, testOracleID, "req-1", 8)
	require.NoError(t, err)
	require.True(t, res.Won)

	paidOnce := rig.treasury.sentTo("alice")

	_, err = rig.engine.Resolve(ctx, testOracleID, "req-1", 8)
	assert.ErrorIs(t, err, ErrUnknownRequest)
	assert.Equal(t, paidOnce, rig.treasury.sentTo("alice"))
}

func TestResolveInsolvencyRejectedNotClamped(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	// só a taxa na reserva, longe do prêmio de 2x
	_, err := rig.engine.Accept(ctx, "alice", 1_000_000, coinflip(0))
	require.NoError(t, err)

	_, err = rig.engine.Resolve(ctx, testOracleID, "req-1", 8)
	assert.ErrorIs(t, err, bank.ErrInsolvent)

	// nenhum efeito: reserva intacta, aposta restaurada
	assert.Equal(t, int64(50_000), rig.bank.Balance())
	_, gerr := rig.wagers.Get(ctx, "req-1")
	require.NoError(t, gerr)

	// depois de capitalizar a banca, o mesmo callback liquida
	rig.fundBank(t, 10_000_000)
	res, err := rig.engine.Resolve(ctx, testOracleID, "req-1", 8)
	require.NoError(t, err)
	assert.True(t, res.Won)
}

func TestResolvePayoutTransferFailureRollsBack(t *testing.T) {
	rig := newTestRig(t)
	rig.fundBank(t, 10_000_000)
	ctx := context.Background()

	_, err := rig.engine.Accept(ctx, "alice", 1_000_000, coinflip(0))
	require.NoError(t, err)

	before := rig.bank.Balance()
	rig.treasury.failSend = func(string) error { return assert.AnError }

	_, err = rig.engine.Resolve(ctx, testOracleID, "req-1", 8)
	require.Error(t, err)

	// débito desfeito e aposta restaurada: sem estado debitado-sem-pago
	assert.Equal(t, before, rig.bank.Balance())
	_, gerr := rig.wagers.Get(ctx, "req-1")
	require.NoError(t, gerr)

	rig.treasury.failSend = nil
	_, err = rig.engine.Resolve(ctx, testOracleID, "req-1", 8)
	require.NoError(t, err)
}

func TestConservationOverRandomSequence(t *testing.T) {
	rig := newTestRig(t)
	rig.fundBank(t, 500_000_000)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	before := rig.bank.Balance()
	var fees, payouts int64

	for i := 0; i < 300; i++ {
		stake := int64(1_000 + rng.Intn(1_000_000))
		res, err := rig.engine.Accept(ctx, "alice", stake, coinflip(rng.Intn(2)))
		require.NoError(t, err)
		fees += res.FeeMicros

		out, err := rig.engine.Resolve(ctx, testOracleID, res.RequestID, rng.Uint64())
		require.NoError(t, err)
		payouts += out.PayoutMicros
	}

	// conservação exata: delta da reserva == taxas - prêmios
	assert.Equal(t, fees-payouts, rig.bank.Balance()-before)
}

func TestCoinflipEmpiricalWinRate(t *testing.T) {
	rig := newTestRig(t)
	rig.fundBank(t, 2_000_000_000)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	const n = 2000
	wins := 0
	for i := 0; i < n; i++ {
		res, err := rig.engine.Accept(ctx, "alice", 10_000, coinflip(0))
		require.NoError(t, err)
		out, err := rig.engine.Resolve(ctx, testOracleID, res.RequestID, rng.Uint64())
		require.NoError(t, err)
		if out.Won {
			wins++
		}
	}

	rate := float64(wins) / float64(n)
	assert.InDelta(t, 0.5, rate, 0.05, "empirical coinflip win rate")
}
