package wager

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore persiste apostas pendentes na tabela pending_wagers.
// Take usa DELETE ... RETURNING: a remoção atômica é o que impede
// resolução dupla mesmo com múltiplos workers.
type PostgresStore struct{ db *sql.DB }

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (p *PostgresStore) Put(ctx context.Context, w PendingWager) error {
	sel, err := json.Marshal(w.Selection)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO pending_wagers (request_id, bettor, net_stake_micros, selection, accepted_at)
		VALUES ($1,$2,$3,$4,$5)`,
		w.RequestID, w.Bettor, w.NetStakeMicros, sel, w.AcceptedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (p *PostgresStore) Take(ctx context.Context, requestID string) (PendingWager, error) {
	row := p.db.QueryRowContext(ctx, `
		DELETE FROM pending_wagers WHERE request_id=$1
		RETURNING request_id, bettor, net_stake_micros, selection, accepted_at`, requestID)
	return scanWager(row)
}

func (p *PostgresStore) Get(ctx context.Context, requestID string) (PendingWager, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT request_id, bettor, net_stake_micros, selection, accepted_at
		FROM pending_wagers WHERE request_id=$1`, requestID)
	return scanWager(row)
}

func (p *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_wagers`).Scan(&n)
	return n, err
}

func scanWager(row *sql.Row) (PendingWager, error) {
	var w PendingWager
	var sel []byte
	err := row.Scan(&w.RequestID, &w.Bettor, &w.NetStakeMicros, &sel, &w.AcceptedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return PendingWager{}, ErrNotFound
	}
	if err != nil {
		return PendingWager{}, err
	}
	if err := json.Unmarshal(sel, &w.Selection); err != nil {
		return PendingWager{}, fmt.Errorf("unmarshal selection: %w", err)
	}
	return w, nil
}
