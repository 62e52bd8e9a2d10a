package bank

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
)

// PostgresJournal grava a trilha de auditoria na tabela bank_journal.
type PostgresJournal struct{ db *sql.DB }

func NewPostgresJournal(db *sql.DB) *PostgresJournal { return &PostgresJournal{db: db} }

func (p *PostgresJournal) Append(ctx context.Context, e Entry) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bank_journal (id, operation, amount_micros, balance_micros, reason, ref, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		uuid.NewString(), e.Operation, e.AmountMicros, e.BalanceMicros, e.Reason, e.Ref, e.At,
	)
	return err
}

// MemoryJournal acumula entradas em memória (testes e execução local).
type MemoryJournal struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryJournal() *MemoryJournal { return &MemoryJournal{} }

func (m *MemoryJournal) Append(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *MemoryJournal) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
