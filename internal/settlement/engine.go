package settlement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/miraklik/casino-settlement/internal/bank"
	"github.com/miraklik/casino-settlement/internal/tier"
	"github.com/miraklik/casino-settlement/internal/wager"
	"github.com/miraklik/casino-settlement/pkg/contracts/events"
)

// Oracle é o cliente do oráculo de aleatoriedade: a aceitação pede um
// valor e recebe só o requestID; o sorteio chega depois pelo worker.
type Oracle interface {
	RequestRandomness(ctx context.Context) (requestID string, err error)
}

// Treasury é a primitiva externa de transferência de valor.
type Treasury interface {
	// Send envia valor para uma conta (payout, cashback, saque).
	Send(ctx context.Context, to string, amountMicros int64, ref string) error
	// Pull recebe valor de uma conta (stake, depósito).
	Pull(ctx context.Context, from string, amountMicros int64, ref string) error
}

// Publisher emite os eventos de domínio para observadores externos.
type Publisher interface {
	BetAccepted(ctx context.Context, e events.BetAccepted) error
	BetResolved(ctx context.Context, e events.BetResolved) error
	BankUpdated(ctx context.Context, e events.BankUpdated) error
}

// Params são os parâmetros mutáveis de aposta. Mudanças valem só para
// apostas aceitas depois; apostas em voo carregam a matemática feita na
// aceitação.
type Params struct {
	MinBetMicros int64
	MaxBetMicros int64 // teto base, antes do bônus de tier
	BaseFeeRate  int64 // % do stake
}

func (p Params) validate() error {
	if p.MinBetMicros <= 0 || p.MinBetMicros >= p.MaxBetMicros {
		return ErrInvalidLimits
	}
	if p.BaseFeeRate < 0 || p.BaseFeeRate > 100 {
		return ErrInvalidFeeRate
	}
	return nil
}

// Engine orquestra aceitação e resolução de apostas sobre os ledgers
// compartilhados. Um único mutex serializa toda operação mutante, o que
// também bloqueia reentrância durante transferências externas.
type Engine struct {
	mu sync.Mutex

	log      *zap.Logger
	wagers   wager.Store
	bank     *bank.Ledger
	tiers    tier.Registry
	oracle   Oracle
	treasury Treasury
	publ     Publisher

	oracleID string
	ownerID  string
	params   Params
	now      func() time.Time
}

type EngineConfig struct {
	OracleID string
	OwnerID  string
	Params   Params
	Now      func() time.Time // opcional, default time.Now
}

func NewEngine(
	log *zap.Logger,
	wagers wager.Store,
	bankLedger *bank.Ledger,
	tiers tier.Registry,
	oracle Oracle,
	treasury Treasury,
	publ Publisher,
	cfg EngineConfig,
) (*Engine, error) {
	if err := cfg.Params.validate(); err != nil {
		return nil, err
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		log:      log,
		wagers:   wagers,
		bank:     bankLedger,
		tiers:    tiers,
		oracle:   oracle,
		treasury: treasury,
		publ:     publ,
		oracleID: cfg.OracleID,
		ownerID:  cfg.OwnerID,
		params:   cfg.Params,
		now:      now,
	}, nil
}

// AcceptResult devolve ao chamador o que foi retido e o id para consulta.
type AcceptResult struct {
	RequestID      string
	FeeMicros      int64
	CashbackMicros int64
	NetStakeMicros int64
}

// Accept valida e aceita uma aposta: cobra o stake, retém a taxa na banca,
// devolve o cashback do tier e registra a aposta pendente aguardando o
// oráculo. Retorna sem bloquear na resolução.
func (e *Engine) Accept(ctx context.Context, bettor string, stakeMicros int64, sel wager.Selection) (*AcceptResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ValidateSelection(sel); err != nil {
		return nil, err
	}

	t, err := e.tiers.TierOf(ctx, bettor)
	if err != nil {
		return nil, fmt.Errorf("tier lookup: %w", err)
	}
	b := tier.Benefits(t)

	ceiling := e.params.MaxBetMicros + b.MaxBetBonusMicros
	if stakeMicros < e.params.MinBetMicros {
		return nil, ErrBetBelowMinimum
	}
	if stakeMicros > ceiling {
		return nil, ErrBetAboveLimit
	}

	effFee := e.params.BaseFeeRate - b.FeeDiscount
	if effFee < 0 {
		effFee = 0
	}
	fee := stakeMicros * effFee / 100
	cashback := stakeMicros * b.CashbackRate / 100
	net := stakeMicros - fee - cashback

	requestID, err := e.oracle.RequestRandomness(ctx)
	if err != nil {
		return nil, fmt.Errorf("request randomness: %w", err)
	}

	// Interações externas: stake entra, cashback volta. Qualquer falha
	// aqui aborta a aceitação inteira, com compensação do que já saiu.
	if err := e.treasury.Pull(ctx, bettor, stakeMicros, "stake:"+requestID); err != nil {
		return nil, fmt.Errorf("pull stake: %w", err)
	}
	if cashback > 0 {
		if err := e.treasury.Send(ctx, bettor, cashback, "cashback:"+requestID); err != nil {
			if rerr := e.treasury.Send(ctx, bettor, stakeMicros, "refund:"+requestID); rerr != nil {
				e.log.Error("stake refund after cashback failure",
					zap.String("requestId", requestID), zap.Error(rerr))
			}
			return nil, fmt.Errorf("send cashback: %w", err)
		}
	}

	if fee > 0 {
		balance, err := e.bank.Credit(ctx, fee, "fee", requestID)
		if err != nil {
			if rerr := e.treasury.Send(ctx, bettor, stakeMicros-cashback, "refund:"+requestID); rerr != nil {
				e.log.Error("stake refund after fee credit failure",
					zap.String("requestId", requestID), zap.Error(rerr))
			}
			return nil, fmt.Errorf("credit fee: %w", err)
		}
		e.publishBankUpdated(ctx, "CREDIT", fee, balance, "fee", requestID)
	}

	w := wager.PendingWager{
		RequestID:      requestID,
		Bettor:         bettor,
		NetStakeMicros: net,
		Selection:      sel,
		AcceptedAt:     e.now(),
	}
	if err := e.wagers.Put(ctx, w); err != nil {
		// desfaz a taxa pra não deixar estado parcial
		if fee > 0 {
			if _, derr := e.bank.Debit(ctx, fee, "fee_reversal", requestID); derr != nil {
				e.log.Error("fee reversal", zap.String("requestId", requestID), zap.Error(derr))
			}
		}
		if rerr := e.treasury.Send(ctx, bettor, stakeMicros-cashback, "refund:"+requestID); rerr != nil {
			e.log.Error("stake refund after record failure",
				zap.String("requestId", requestID), zap.Error(rerr))
		}
		return nil, fmt.Errorf("record wager: %w", err)
	}

	if err := e.publ.BetAccepted(ctx, events.BetAccepted{
		RequestID:      requestID,
		Bettor:         bettor,
		Game:           string(sel.Game),
		StakeMicros:    stakeMicros,
		FeeMicros:      fee,
		CashbackMicros: cashback,
		NetStakeMicros: net,
		TsUnixMs:       e.now().UnixMilli(),
	}); err != nil {
		e.log.Warn("publish bet_accepted", zap.String("requestId", requestID), zap.Error(err))
	}

	e.log.Info("bet accepted",
		zap.String("requestId", requestID),
		zap.String("bettor", bettor),
		zap.String("game", string(sel.Game)),
		zap.String("tier", t.String()),
		zap.Int64("stake", stakeMicros),
		zap.Int64("net", net),
	)

	return &AcceptResult{
		RequestID:      requestID,
		FeeMicros:      fee,
		CashbackMicros: cashback,
		NetStakeMicros: net,
	}, nil
}

// Deposit credita valor direto na reserva (aberto a qualquer conta).
func (e *Engine) Deposit(ctx context.Context, from string, amountMicros int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amountMicros <= 0 {
		return 0, bank.ErrInvalidAmount
	}
	ref := "deposit:" + from
	if err := e.treasury.Pull(ctx, from, amountMicros, ref); err != nil {
		return 0, fmt.Errorf("pull deposit: %w", err)
	}
	balance, err := e.bank.Credit(ctx, amountMicros, "deposit", from)
	if err != nil {
		if rerr := e.treasury.Send(ctx, from, amountMicros, "refund-"+ref); rerr != nil {
			e.log.Error("deposit refund", zap.String("from", from), zap.Error(rerr))
		}
		return 0, err
	}
	e.publishBankUpdated(ctx, "CREDIT", amountMicros, balance, "deposit", from)
	return balance, nil
}

// WithdrawReserve saca fundos da reserva para um endereço. Só o owner.
// Débito e transferência são atômicos em conjunto: falha na transferência
// desfaz o débito.
func (e *Engine) WithdrawReserve(ctx context.Context, caller, to string, amountMicros int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.ownerID {
		return 0, ErrNotOwner
	}
	balance, err := e.bank.Debit(ctx, amountMicros, "owner_withdraw", to)
	if err != nil {
		return 0, err
	}
	if err := e.treasury.Send(ctx, to, amountMicros, "reserve-withdraw"); err != nil {
		if _, cerr := e.bank.Credit(ctx, amountMicros, "withdraw_reversal", to); cerr != nil {
			e.log.Error("withdraw reversal", zap.String("to", to), zap.Error(cerr))
		}
		return 0, fmt.Errorf("send withdrawal: %w", err)
	}
	e.publishBankUpdated(ctx, "DEBIT", amountMicros, balance, "owner_withdraw", to)
	return balance, nil
}

// SetBetLimits troca min/max para apostas futuras. Só o owner.
func (e *Engine) SetBetLimits(caller string, minMicros, maxMicros int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.ownerID {
		return ErrNotOwner
	}
	next := e.params
	next.MinBetMicros = minMicros
	next.MaxBetMicros = maxMicros
	if err := next.validate(); err != nil {
		return err
	}
	e.params = next
	return nil
}

// SetBaseFeeRate troca a taxa base para apostas futuras. Só o owner.
func (e *Engine) SetBaseFeeRate(caller string, rate int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.ownerID {
		return ErrNotOwner
	}
	next := e.params
	next.BaseFeeRate = rate
	if err := next.validate(); err != nil {
		return err
	}
	e.params = next
	return nil
}

// Params retorna uma cópia dos parâmetros vigentes.
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// BankBalance expõe a reserva para a API de consulta.
func (e *Engine) BankBalance() int64 { return e.bank.Balance() }

// PendingCount expõe o total de apostas aguardando o oráculo.
func (e *Engine) PendingCount(ctx context.Context) (int, error) {
	return e.wagers.Count(ctx)
}

func (e *Engine) publishBankUpdated(ctx context.Context, op string, amount, balance int64, reason, ref string) {
	if err := e.publ.BankUpdated(ctx, events.BankUpdated{
		Operation:        op,
		AmountMicros:     amount,
		NewBalanceMicros: balance,
		Reason:           reason,
		Ref:              ref,
		TsUnixMs:         e.now().UnixMilli(),
	}); err != nil {
		e.log.Warn("publish bank_updated", zap.String("ref", ref), zap.Error(err))
	}
}
