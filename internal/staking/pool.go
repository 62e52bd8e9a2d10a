package staking

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/miraklik/casino-settlement/pkg/contracts/events"
)

var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrExceedsPrincipal       = errors.New("withdraw amount exceeds principal")
	ErrNotOwner               = errors.New("caller is not the configured owner")
	ErrPeriodActive           = errors.New("reward period still active")
	ErrInvalidDuration        = errors.New("duration must be positive")
	ErrRewardRateZero         = errors.New("resulting reward rate is zero")
	ErrRewardExceedsFunds     = errors.New("reward program exceeds funds held")
	ErrInsufficientRewardFunds = errors.New("reward funds insufficient for claim")
)

// SCALE é o fator de precisão do acumulador reward-per-unit.
const SCALE = 1_000_000_000_000

var scale = big.NewInt(SCALE)

// Treasury é a primitiva externa de transferência de valor, vista daqui.
type Treasury interface {
	Send(ctx context.Context, to string, amountMicros int64, ref string) error
	Pull(ctx context.Context, from string, amountMicros int64, ref string) error
}

// Publisher emite os eventos do ledger de staking.
type Publisher interface {
	Staked(ctx context.Context, e events.Staked) error
	Withdrawn(ctx context.Context, e events.Withdrawn) error
	RewardPaid(ctx context.Context, e events.RewardPaid) error
}

// Position é a conta de um participante no pool.
type Position struct {
	PrincipalMicros int64
	RewardDebt      *big.Int // valor do acumulador na última interação
	AccruedMicros   int64    // recompensa reservada e ainda não sacada
}

// Pool é o ledger de stake-for-yield com acumulador global preguiçoso:
// o acréscimo por tempo decorrido é dobrado num único reward-per-unit
// monotônico e cobrado de cada conta na próxima interação dela, nunca
// num laço por conta.
type Pool struct {
	mu sync.Mutex

	log      *zap.Logger
	treasury Treasury
	publ     Publisher
	ownerID  string

	totalStaked int64
	ratePerSec  int64 // micros por segundo
	periodEnd   time.Time
	lastUpdate  time.Time
	duration    time.Duration
	cumPerUnit  *big.Int // escalado por SCALE, monotônico não-decrescente
	rewardFunds int64    // fundos disponíveis para pagar recompensas

	positions map[string]*Position
	now       func() time.Time
}

type PoolConfig struct {
	OwnerID  string
	Duration time.Duration
	Now      func() time.Time // opcional, default time.Now
}

func NewPool(log *zap.Logger, treasury Treasury, publ Publisher, cfg PoolConfig) (*Pool, error) {
	if cfg.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Pool{
		log:        log,
		treasury:   treasury,
		publ:       publ,
		ownerID:    cfg.OwnerID,
		duration:   cfg.Duration,
		cumPerUnit: new(big.Int),
		lastUpdate: now(),
		periodEnd:  now(),
		positions:  make(map[string]*Position),
		now:        now,
	}, nil
}

// refresh avança o acumulador global até min(periodEnd, now). Roda no
// topo de toda operação mutante para que mudanças de peso nunca alterem
// retroativamente recompensas já acumuladas. Idempotente sem tempo
// decorrido.
func (p *Pool) refresh() {
	end := p.now()
	if end.After(p.periodEnd) {
		end = p.periodEnd
	}
	if !end.After(p.lastUpdate) {
		return
	}
	if p.totalStaked > 0 {
		elapsed := int64(end.Sub(p.lastUpdate) / time.Second)
		add := new(big.Int).Mul(big.NewInt(p.ratePerSec), big.NewInt(elapsed))
		add.Mul(add, scale)
		add.Div(add, big.NewInt(p.totalStaked))
		p.cumPerUnit.Add(p.cumPerUnit, add)
	}
	p.lastUpdate = end
}

// settleAccount banca a recompensa pendente da conta e zera a dívida
// contra o acumulador atual.
func (p *Pool) settleAccount(pos *Position) {
	pos.AccruedMicros = p.earned(pos)
	pos.RewardDebt = new(big.Int).Set(p.cumPerUnit)
}

// earned = principal * (cum - debt) / SCALE + accrued, sempre >= 0.
func (p *Pool) earned(pos *Position) int64 {
	diff := new(big.Int).Sub(p.cumPerUnit, pos.RewardDebt)
	diff.Mul(diff, big.NewInt(pos.PrincipalMicros))
	diff.Div(diff, scale)
	return pos.AccruedMicros + diff.Int64()
}

func (p *Pool) position(account string) *Position {
	pos, ok := p.positions[account]
	if !ok {
		pos = &Position{RewardDebt: new(big.Int).Set(p.cumPerUnit)}
		p.positions[account] = pos
	}
	return pos
}

// Stake deposita principal no pool. Aberto a qualquer conta.
func (p *Pool) Stake(ctx context.Context, account string, amountMicros int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if amountMicros <= 0 {
		return ErrInvalidAmount
	}
	p.refresh()
	pos := p.position(account)
	p.settleAccount(pos)

	if err := p.treasury.Pull(ctx, account, amountMicros, "stake:"+account); err != nil {
		return fmt.Errorf("pull stake: %w", err)
	}
	pos.PrincipalMicros += amountMicros
	p.totalStaked += amountMicros

	if err := p.publ.Staked(ctx, events.Staked{
		Account:      account,
		AmountMicros: amountMicros,
		TsUnixMs:     p.now().UnixMilli(),
	}); err != nil {
		p.log.Warn("publish staked", zap.String("account", account), zap.Error(err))
	}
	return nil
}

// Withdraw devolve principal ao participante. Efeitos antes da
// transferência; falha na transferência desfaz os efeitos.
func (p *Pool) Withdraw(ctx context.Context, account string, amountMicros int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if amountMicros <= 0 {
		return ErrInvalidAmount
	}
	pos := p.positions[account]
	if pos == nil || amountMicros > pos.PrincipalMicros {
		return ErrExceedsPrincipal
	}
	p.refresh()
	p.settleAccount(pos)

	pos.PrincipalMicros -= amountMicros
	p.totalStaked -= amountMicros

	if err := p.treasury.Send(ctx, account, amountMicros, "unstake:"+account); err != nil {
		pos.PrincipalMicros += amountMicros
		p.totalStaked += amountMicros
		return fmt.Errorf("send principal: %w", err)
	}

	if err := p.publ.Withdrawn(ctx, events.Withdrawn{
		Account:      account,
		AmountMicros: amountMicros,
		TsUnixMs:     p.now().UnixMilli(),
	}); err != nil {
		p.log.Warn("publish withdrawn", zap.String("account", account), zap.Error(err))
	}
	return nil
}

// Claim paga a recompensa acumulada da conta.
func (p *Pool) Claim(ctx context.Context, account string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.refresh()
	pos := p.positions[account]
	if pos == nil {
		return 0, nil
	}
	p.settleAccount(pos)

	reward := pos.AccruedMicros
	if reward == 0 {
		return 0, nil
	}
	if reward > p.rewardFunds {
		return 0, ErrInsufficientRewardFunds
	}

	pos.AccruedMicros = 0
	p.rewardFunds -= reward

	if err := p.treasury.Send(ctx, account, reward, "reward:"+account); err != nil {
		pos.AccruedMicros = reward
		p.rewardFunds += reward
		return 0, fmt.Errorf("send reward: %w", err)
	}

	if err := p.publ.RewardPaid(ctx, events.RewardPaid{
		Account:      account,
		AmountMicros: reward,
		TsUnixMs:     p.now().UnixMilli(),
	}); err != nil {
		p.log.Warn("publish reward_paid", zap.String("account", account), zap.Error(err))
	}
	return reward, nil
}

// Fund aporta fundos para o programa de recompensas. Aberto a qualquer conta.
func (p *Pool) Fund(ctx context.Context, from string, amountMicros int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if amountMicros <= 0 {
		return ErrInvalidAmount
	}
	if err := p.treasury.Pull(ctx, from, amountMicros, "reward-fund:"+from); err != nil {
		return fmt.Errorf("pull reward funds: %w", err)
	}
	p.rewardFunds += amountMicros
	return nil
}

// SetRewardPeriod inicia (ou estende) o período de distribuição. Só o
// owner. Se o período corrente ainda roda, o restante não distribuído é
// rolado para o novo período.
func (p *Pool) SetRewardPeriod(caller string, rewardMicros int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if caller != p.ownerID {
		return ErrNotOwner
	}
	p.refresh()

	now := p.now()
	durationSecs := int64(p.duration / time.Second)
	var rate int64
	if now.Before(p.periodEnd) {
		remaining := int64(p.periodEnd.Sub(now) / time.Second)
		rate = (rewardMicros + remaining*p.ratePerSec) / durationSecs
	} else {
		rate = rewardMicros / durationSecs
	}
	if rate == 0 {
		return ErrRewardRateZero
	}
	if rate*durationSecs > p.rewardFunds {
		return ErrRewardExceedsFunds
	}

	p.ratePerSec = rate
	p.periodEnd = now.Add(p.duration)
	p.lastUpdate = now
	return nil
}

// SetPeriodDuration troca a duração dos períodos futuros. Só o owner, e
// só com o período corrente encerrado.
func (p *Pool) SetPeriodDuration(caller string, d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if caller != p.ownerID {
		return ErrNotOwner
	}
	if d <= 0 {
		return ErrInvalidDuration
	}
	if p.now().Before(p.periodEnd) {
		return ErrPeriodActive
	}
	p.duration = d
	return nil
}

// PositionView é a leitura externa de uma conta.
type PositionView struct {
	PrincipalMicros int64
	EarnedMicros    int64 // recompensa sacável agora
}

// PositionOf calcula a visão corrente da conta sem mutar o pool.
func (p *Pool) PositionOf(account string) PositionView {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos := p.positions[account]
	if pos == nil {
		return PositionView{}
	}
	// projeção do acumulador até agora, sem gravar
	cum := new(big.Int).Set(p.cumPerUnit)
	end := p.now()
	if end.After(p.periodEnd) {
		end = p.periodEnd
	}
	if end.After(p.lastUpdate) && p.totalStaked > 0 {
		elapsed := int64(end.Sub(p.lastUpdate) / time.Second)
		add := new(big.Int).Mul(big.NewInt(p.ratePerSec), big.NewInt(elapsed))
		add.Mul(add, scale)
		add.Div(add, big.NewInt(p.totalStaked))
		cum.Add(cum, add)
	}
	diff := new(big.Int).Sub(cum, pos.RewardDebt)
	diff.Mul(diff, big.NewInt(pos.PrincipalMicros))
	diff.Div(diff, scale)

	return PositionView{
		PrincipalMicros: pos.PrincipalMicros,
		EarnedMicros:    pos.AccruedMicros + diff.Int64(),
	}
}

// TotalStaked expõe o principal agregado do pool.
func (p *Pool) TotalStaked() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalStaked
}
