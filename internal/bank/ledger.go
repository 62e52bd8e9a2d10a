package bank

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrInsolvent sinaliza débito maior que a reserva. Condição de alarme:
	// indica subcolateralização da banca, não um erro recuperável do apostador.
	ErrInsolvent = errors.New("bank reserve insufficient")

	ErrInvalidAmount = errors.New("amount must be positive")
)

// Entry é uma linha da trilha de auditoria append-only da banca.
type Entry struct {
	Operation     string // "CREDIT" | "DEBIT"
	AmountMicros  int64
	BalanceMicros int64 // saldo após a operação
	Reason        string // "fee" | "deposit" | "payout" | "owner_withdraw"
	Ref           string // id da aposta/saque relacionado
	At            time.Time
}

// Journal persiste a trilha de auditoria. Toda mutação da reserva gera
// exatamente uma entrada.
type Journal interface {
	Append(ctx context.Context, e Entry) error
}

// Ledger mantém a reserva única da banca. A reserva nunca fica negativa;
// débitos que excederiam o saldo são rejeitados, nunca ajustados.
type Ledger struct {
	mu      sync.Mutex
	reserve int64
	journal Journal
	now     func() time.Time
}

func New(journal Journal) *Ledger {
	return &Ledger{journal: journal, now: time.Now}
}

// NewWithClock injeta o relógio, usado nos testes.
func NewWithClock(journal Journal, now func() time.Time) *Ledger {
	return &Ledger{journal: journal, now: now}
}

// Credit soma à reserva e registra na trilha. Retorna o novo saldo.
func (l *Ledger) Credit(ctx context.Context, amount int64, reason, ref string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	newBalance := l.reserve + amount
	if err := l.journal.Append(ctx, Entry{
		Operation:     "CREDIT",
		AmountMicros:  amount,
		BalanceMicros: newBalance,
		Reason:        reason,
		Ref:           ref,
		At:            l.now(),
	}); err != nil {
		return l.reserve, fmt.Errorf("journal credit: %w", err)
	}
	l.reserve = newBalance
	return newBalance, nil
}

// Debit subtrai da reserva. Falha com ErrInsolvent se amount > reserva,
// sem nenhum efeito observável.
func (l *Ledger) Debit(ctx context.Context, amount int64, reason, ref string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if amount > l.reserve {
		return l.reserve, ErrInsolvent
	}

	newBalance := l.reserve - amount
	if err := l.journal.Append(ctx, Entry{
		Operation:     "DEBIT",
		AmountMicros:  amount,
		BalanceMicros: newBalance,
		Reason:        reason,
		Ref:           ref,
		At:            l.now(),
	}); err != nil {
		return l.reserve, fmt.Errorf("journal debit: %w", err)
	}
	l.reserve = newBalance
	return newBalance, nil
}

// Balance é leitura pura da reserva.
func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reserve
}
