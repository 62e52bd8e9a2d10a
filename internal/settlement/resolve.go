package settlement

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/miraklik/casino-settlement/internal/bank"
	"github.com/miraklik/casino-settlement/internal/tier"
	"github.com/miraklik/casino-settlement/internal/wager"
	"github.com/miraklik/casino-settlement/pkg/contracts/events"
)

// ErrUnknownRequest indica callback para um requestID desconhecido ou já
// resolvido. Erro duro: pagar de novo nunca é inofensivo.
var ErrUnknownRequest = errors.New("unknown or already resolved request id")

// ResolveResult descreve o desfecho de uma aposta.
type ResolveResult struct {
	RequestID    string
	Bettor       string
	Outcome      int
	Won          bool
	PayoutMicros int64
}

// Resolve consome o valor sorteado e liquida a aposta pendente. Chamado
// exclusivamente pelo caminho do oráculo; qualquer outro remetente é
// rejeitado. O registro pendente é removido de forma atômica e restaurado
// se a liquidação não completar, então nenhuma falha deixa estado parcial.
func (e *Engine) Resolve(ctx context.Context, caller, requestID string, randomValue uint64) (*ResolveResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.oracleID {
		return nil, ErrNotOracle
	}

	w, err := e.wagers.Take(ctx, requestID)
	if errors.Is(err, wager.ErrNotFound) {
		return nil, ErrUnknownRequest
	}
	if err != nil {
		return nil, fmt.Errorf("take wager: %w", err)
	}

	// bônus de prêmio do tier *na resolução* — pode divergir do tier na
	// aceitação, comportamento aceito
	t, err := e.tiers.TierOf(ctx, w.Bettor)
	if err != nil {
		e.restoreWager(ctx, w)
		return nil, fmt.Errorf("tier lookup: %w", err)
	}
	b := tier.Benefits(t)

	outcome := DrawOutcome(w.Selection.Game, randomValue)
	won, payout := Evaluate(w.Selection, outcome, w.NetStakeMicros, b.WinBonusRate)

	if payout > 0 {
		balance, err := e.bank.Debit(ctx, payout, "payout", requestID)
		if err != nil {
			e.restoreWager(ctx, w)
			if errors.Is(err, bank.ErrInsolvent) {
				e.log.Error("bank insolvent on payout",
					zap.String("requestId", requestID),
					zap.Int64("payout", payout),
					zap.Int64("reserve", e.bank.Balance()),
				)
			}
			return nil, fmt.Errorf("debit payout: %w", err)
		}
		if err := e.treasury.Send(ctx, w.Bettor, payout, "payout:"+requestID); err != nil {
			// débito sem pagamento não pode sobreviver
			if _, cerr := e.bank.Credit(ctx, payout, "payout_reversal", requestID); cerr != nil {
				e.log.Error("payout reversal", zap.String("requestId", requestID), zap.Error(cerr))
			}
			e.restoreWager(ctx, w)
			return nil, fmt.Errorf("send payout: %w", err)
		}
		e.publishBankUpdated(ctx, "DEBIT", payout, balance, "payout", requestID)
	}

	if err := e.publ.BetResolved(ctx, events.BetResolved{
		RequestID:      requestID,
		Bettor:         w.Bettor,
		Game:           string(w.Selection.Game),
		NetStakeMicros: w.NetStakeMicros,
		Outcome:        outcome,
		Won:            won,
		PayoutMicros:   payout,
		TsUnixMs:       e.now().UnixMilli(),
	}); err != nil {
		e.log.Warn("publish bet_resolved", zap.String("requestId", requestID), zap.Error(err))
	}

	e.log.Info("bet resolved",
		zap.String("requestId", requestID),
		zap.String("bettor", w.Bettor),
		zap.Int("outcome", outcome),
		zap.Bool("won", won),
		zap.Int64("payout", payout),
	)

	return &ResolveResult{
		RequestID:    requestID,
		Bettor:       w.Bettor,
		Outcome:      outcome,
		Won:          won,
		PayoutMicros: payout,
	}, nil
}

// restoreWager devolve o registro removido quando a resolução aborta,
// para que o callback possa ser reprocessado.
func (e *Engine) restoreWager(ctx context.Context, w wager.PendingWager) {
	if err := e.wagers.Put(ctx, w); err != nil {
		e.log.Error("restore pending wager", zap.String("requestId", w.RequestID), zap.Error(err))
	}
}
