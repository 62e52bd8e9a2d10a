package wager

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indica resolução de um requestID desconhecido ou já
	// resolvido. Tratado como erro duro: nunca se paga duas vezes.
	ErrNotFound = errors.New("pending wager not found")

	// ErrDuplicate indica tentativa de regravar um requestID ainda pendente.
	ErrDuplicate = errors.New("request id already pending")
)

type Game string

const (
	GameCoinflip Game = "coinflip"
	GameRoulette Game = "roulette"
)

type Color string

const (
	ColorNone  Color = ""
	ColorRed   Color = "red"
	ColorBlack Color = "black"
)

// Selection carrega a escolha do apostador. Coinflip usa só Guess;
// roleta usa qualquer combinação válida das pernas.
type Selection struct {
	Game Game `json:"game"`

	// coinflip
	Guess int `json:"guess,omitempty"` // 0 ou 1

	// roleta
	HasNumber bool  `json:"has_number,omitempty"`
	Number    int   `json:"number,omitempty"` // 0..36
	Color     Color `json:"color,omitempty"`
	Even      bool  `json:"even,omitempty"`
	Odd       bool  `json:"odd,omitempty"`
	Zero      bool  `json:"zero,omitempty"`
}

// PendingWager é o registro de uma aposta em voo, criado na aceitação e
// removido exatamente uma vez na resolução.
type PendingWager struct {
	RequestID      string
	Bettor         string
	NetStakeMicros int64 // valor em risco, já líquido de taxa e cashback
	Selection      Selection
	AcceptedAt     time.Time // só para auditoria/eventos, fora da matemática de prêmio
}

// Store guarda as apostas pendentes por requestID.
type Store interface {
	// Put registra uma nova aposta pendente; falha com ErrDuplicate se o id existir.
	Put(ctx context.Context, w PendingWager) error
	// Take remove e retorna a aposta de forma atômica; ErrNotFound se ausente.
	// É o que garante resolução no máximo uma vez por id.
	Take(ctx context.Context, requestID string) (PendingWager, error)
	// Get lê sem remover.
	Get(ctx context.Context, requestID string) (PendingWager, error)
	// Count retorna o total de apostas pendentes.
	Count(ctx context.Context) (int, error)
}
