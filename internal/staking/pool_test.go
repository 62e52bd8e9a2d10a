package staking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/miraklik/casino-settlement/pkg/contracts/events"
)

const poolOwner = "owner"

type fakeTreasury struct {
	sends    map[string]int64
	pulls    map[string]int64
	failSend func(ref string) error
	failPull func(ref string) error
}

func newFakeTreasury() *fakeTreasury {
	return &fakeTreasury{sends: map[string]int64{}, pulls: map[string]int64{}}
}

func (f *fakeTreasury) Send(_ context.Context, to string, amount int64, ref string) error {
	if f.failSend != nil {
		if err := f.failSend(ref); err != nil {
			return err
		}
	}
	f.sends[to] += amount
	return nil
}

func (f *fakeTreasury) Pull(_ context.Context, from string, amount int64, ref string) error {
	if f.failPull != nil {
		if err := f.failPull(ref); err != nil {
			return err
		}
	}
	f.pulls[from] += amount
	return nil
}

type recordPublisher struct {
	staked    []events.Staked
	withdrawn []events.Withdrawn
	rewards   []events.RewardPaid
}

func (r *recordPublisher) Staked(_ context.Context, e events.Staked) error {
	r.staked = append(r.staked, e)
	return nil
}

func (r *recordPublisher) Withdrawn(_ context.Context, e events.Withdrawn) error {
	r.withdrawn = append(r.withdrawn, e)
	return nil
}

func (r *recordPublisher) RewardPaid(_ context.Context, e events.RewardPaid) error {
	r.rewards = append(r.rewards, e)
	return nil
}

// poolRig injeta um relógio manual: os testes avançam o tempo com tick().
type poolRig struct {
	pool     *Pool
	treasury *fakeTreasury
	publ     *recordPublisher
	clock    time.Time
}

func newPoolRig(t *testing.T, duration time.Duration) *poolRig {
	t.Helper()
	rig := &poolRig{
		treasury: newFakeTreasury(),
		publ:     &recordPublisher{},
		clock:    time.Unix(1_700_000_000, 0),
	}
	pool, err := NewPool(zap.NewNop(), rig.treasury, rig.publ, PoolConfig{
		OwnerID:  poolOwner,
		Duration: duration,
		Now:      func() time.Time { return rig.clock },
	})
	require.NoError(t, err)
	rig.pool = pool
	return rig
}

func (r *poolRig) tick(d time.Duration) { r.clock = r.clock.Add(d) }

// startProgram aporta fundos e liga um período de 1000s a 1000 micros/s.
func (r *poolRig) startProgram(t *testing.T) {
	t.Helper()
	require.NoError(t, r.pool.Fund(context.Background(), poolOwner, 1_000_000))
	require.NoError(t, r.pool.SetRewardPeriod(poolOwner, 1_000_000))
}

func TestNewPoolRejectsBadDuration(t *testing.T) {
	_, err := NewPool(zap.NewNop(), newFakeTreasury(), &recordPublisher{}, PoolConfig{Duration: 0})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestStakeAccruesLinearly(t *testing.T) {
	rig := newPoolRig(t, 1000*time.Second)
	ctx := context.Background()
	rig.startProgram(t)

	require.NoError(t, rig.pool.Stake(ctx, "alice", 1_000_000))
	assert.Equal(t, int64(1_000_000), rig.treasury.pulls["alice"])

	rig.tick(100 * time.Second)
	v := rig.pool.PositionOf("alice")
	assert.Equal(t, int64(1_000_000), v.PrincipalMicros)
	assert.Equal(t, int64(100_000), v.EarnedMicros) // 100s * 1000/s, única staker
}

func TestRefreshIdempotentWithoutElapsedTime(t *testing.T) {
	rig := newPoolRig(t, 1000*time.Second)
	ctx := context.Background()
	rig.startProgram(t)

	require.NoError(t, rig.pool.Stake(ctx, "alice", 1_000_000))
	rig.tick(100 * time.Second)

	// mutações repetidas no mesmo instante não geram acúmulo extra
	earned := rig.pool.PositionOf("alice").EarnedMicros
	require.NoError(t, rig.pool.Stake(ctx, "alice", 1))
	require.NoError(t, rig.pool.Withdraw(ctx, "alice", 1))
	assert.Equal(t, earned, rig.pool.PositionOf("alice").EarnedMicros)
}

func TestAccrualSplitsByWeight(t *testing.T) {
	rig := newPoolRig(t, 1000*time.Second)
	ctx := context.Background()
	rig.startProgram(t)

	require.NoError(t, rig.pool.Stake(ctx, "alice", 1_000_000))
	rig.tick(100 * time.Second)

	// bob entra com o mesmo peso: o fluxo passa a dividir meio a meio,
	// sem tocar no que alice já acumulou
	require.NoError(t, rig.pool.Stake(ctx, "bob", 1_000_000))
	rig.tick(100 * time.Second)

	assert.Equal(t, int64(150_000), rig.pool.PositionOf("alice").EarnedMicros)
	assert.Equal(t, int64(50_000), rig.pool.PositionOf("bob").EarnedMicros)
	assert.Equal(t, int64(2_000_000), rig.pool.TotalStaked())
}

func TestAccrualStopsAtPeriodEnd(t *testing.T) {
	rig := newPoolRig(t, 1000*time.Second)
	ctx := context.Background()
	rig.startProgram(t)

	require.NoError(t, rig.pool.Stake(ctx, "alice", 1_000_000))
	rig.tick(5000 * time.Second) // muito além do fim

	// só os 1000s do período contam
	assert.Equal(t, int64(1_000_000), rig.pool.PositionOf("alice").EarnedMicros)
}

func TestEmptyPoolBurnsNoRewards(t *testing.T) {
	rig := newPoolRig(t, 1000*time.Second)
	ctx := context.Background()
	rig.startProgram(t)

	// metade do período sem nenhum staker: esse fluxo não vai para ninguém
	rig.tick(500 * time.Second)
	require.NoError(t, rig.pool.Stake(ctx, "alice", 1_000_000))
	rig.tick(500 * time.Second)

	assert.Equal(t, int64(500_000), rig.pool.PositionOf("alice").EarnedMicros)
}

func TestWithdrawFreezesAccrual(t *testing.T) {
	rig := newPoolRig(t, 1000*time.Second)
	ctx := context.Background()
	rig.startProgram(t)

	require.NoError(t, rig.pool.Stake(ctx, "alice", 1_000_000))
	rig.tick(100 * time.Second)
	require.NoError(t, rig.pool.Withdraw(ctx, "alice", 1_000_000))
	assert.Equal(t, int64(1_000_000), rig.treasury.sends["alice"])

	rig.tick(300 * time.Second)
	v := rig.pool.PositionOf("alice")
	assert.Zero(t, v.PrincipalMicros)
	assert.Equal(t, int64(100_000), v.EarnedMicros, "sem principal, nada mais acumula")
}

func TestWithdrawBounds(t *testing.T) {
	rig := newPoolRig(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, rig.pool.Stake(ctx, "alice", 500))
	assert.ErrorIs(t, rig.pool.Withdraw(ctx, "alice", 501), ErrExceedsPrincipal)
	assert.ErrorIs(t, rig.pool.Withdraw(ctx, "ghost", 1), ErrExceedsPrincipal)
	assert.ErrorIs(t, rig.pool.Withdraw(ctx, "alice", 0), ErrInvalidAmount)
	assert.ErrorIs(t, rig.pool.Stake(ctx, "alice", -1), ErrInvalidAmount)
}

func TestWithdrawTransferFailureRollsBack(t *testing.T) {
	rig := newPoolRig(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, rig.pool.Stake(ctx, "alice", 1_000))
	rig.treasury.failSend = func(string) error { return assert.AnError }

	require.Error(t, rig.pool.Withdraw(ctx, "alice", 1_000))
	assert.Equal(t, int64(1_000), rig.pool.PositionOf("alice").PrincipalMicros)
	assert.Equal(t, int64(1_000), rig.pool.TotalStaked())

	rig.treasury.failSend = nil
	require.NoError(t, rig.pool.Withdraw(ctx, "alice", 1_000))
}

func TestClaimPaysAndResets(t *testing.T) {
	rig := newPoolRig(t, 1000*time.Second)
	ctx := context.Background()
	rig.startProgram(t)

	require.NoError(t, rig.pool.Stake(ctx, "alice", 1_000_000))
	rig.tick(100 * time.Second)

	paid, err := rig.pool.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), paid)
	assert.Equal(t, int64(100_000), rig.treasury.sends["alice"])
	assert.Zero(t, rig.pool.PositionOf("alice").EarnedMicros)
	require.Len(t, rig.publ.rewards, 1)

	// sem novo acúmulo, claim de novo é no-op
	paid, err = rig.pool.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, paid)
	require.Len(t, rig.publ.rewards, 1)
}

func TestClaimTransferFailureRestoresAccrued(t *testing.T) {
	rig := newPoolRig(t, 1000*time.Second)
	ctx := context.Background()
	rig.startProgram(t)

	require.NoError(t, rig.pool.Stake(ctx, "alice", 1_000_000))
	rig.tick(100 * time.Second)

	rig.treasury.failSend = func(string) error { return assert.AnError }
	_, err := rig.pool.Claim(ctx, "alice")
	require.Error(t, err)

	rig.treasury.failSend = nil
	paid, err := rig.pool.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), paid)
}

func TestClaimUnknownAccountIsNoop(t *testing.T) {
	rig := newPoolRig(t, time.Hour)
	paid, err := rig.pool.Claim(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Zero(t, paid)
}

func TestSetRewardPeriodGuards(t *testing.T) {
	rig := newPoolRig(t, 1000*time.Second)
	ctx := context.Background()

	assert.ErrorIs(t, rig.pool.SetRewardPeriod("alice", 1_000_000), ErrNotOwner)

	// 500 micros em 1000s trunca para taxa zero
	require.NoError(t, rig.pool.Fund(ctx, poolOwner, 2_000_000))
	assert.ErrorIs(t, rig.pool.SetRewardPeriod(poolOwner, 500), ErrRewardRateZero)

	// programa maior que os fundos aportados
	assert.ErrorIs(t, rig.pool.SetRewardPeriod(poolOwner, 3_000_000), ErrRewardExceedsFunds)

	require.NoError(t, rig.pool.SetRewardPeriod(poolOwner, 2_000_000))
}

func TestSetRewardPeriodRollsForwardRemainder(t *testing.T) {
	rig := newPoolRig(t, 1000*time.Second)
	ctx := context.Background()
	require.NoError(t, rig.pool.Fund(ctx, poolOwner, 2_000_000))
	require.NoError(t, rig.pool.SetRewardPeriod(poolOwner, 1_000_000)) // 1000/s

	require.NoError(t, rig.pool.Stake(ctx, "alice", 1_000_000))
	rig.tick(500 * time.Second)

	// restam 500_000 não distribuídos; novo aporte de 500_000 soma:
	// taxa nova = (500_000 + 500_000) / 1000s = 1000/s por mais 1000s
	require.NoError(t, rig.pool.SetRewardPeriod(poolOwner, 500_000))
	rig.tick(1000 * time.Second)

	assert.Equal(t, int64(1_500_000), rig.pool.PositionOf("alice").EarnedMicros)
}

func TestClaimsExhaustRewardFundsExactly(t *testing.T) {
	rig := newPoolRig(t, 1000*time.Second)
	ctx := context.Background()
	rig.startProgram(t)

	require.NoError(t, rig.pool.Stake(ctx, "alice", 1_000_000))
	rig.tick(100 * time.Second)

	// primeiro claim consome 100_000 dos fundos
	_, err := rig.pool.Claim(ctx, "alice")
	require.NoError(t, err)

	rig.tick(900 * time.Second)
	paid, err := rig.pool.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(900_000), paid)
}

func TestSetPeriodDurationGuards(t *testing.T) {
	rig := newPoolRig(t, 1000*time.Second)
	ctx := context.Background()

	assert.ErrorIs(t, rig.pool.SetPeriodDuration("alice", time.Hour), ErrNotOwner)
	assert.ErrorIs(t, rig.pool.SetPeriodDuration(poolOwner, 0), ErrInvalidDuration)

	rig.startProgram(t)
	require.NoError(t, rig.pool.Stake(ctx, "alice", 1_000))
	assert.ErrorIs(t, rig.pool.SetPeriodDuration(poolOwner, time.Hour), ErrPeriodActive)

	rig.tick(2000 * time.Second)
	require.NoError(t, rig.pool.SetPeriodDuration(poolOwner, time.Hour))
}

func TestFundValidation(t *testing.T) {
	rig := newPoolRig(t, time.Hour)
	assert.ErrorIs(t, rig.pool.Fund(context.Background(), "anyone", 0), ErrInvalidAmount)
}
