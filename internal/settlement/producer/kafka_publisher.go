package producer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/miraklik/casino-settlement/pkg/contracts/events"
)

// KafkaPublisher emite os eventos de domínio do settlement em tópicos
// separados, chaveados pelo requestID pra manter ordem por aposta.
type KafkaPublisher struct {
	Accepted *kafka.Writer
	Resolved *kafka.Writer
	Bank     *kafka.Writer
}

func NewKafkaPublisher(accepted, resolved, bankW *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Accepted: accepted, Resolved: resolved, Bank: bankW}
}

func (p *KafkaPublisher) BetAccepted(ctx context.Context, e events.BetAccepted) error {
	return writeJSON(ctx, p.Accepted, e.RequestID, e)
}

func (p *KafkaPublisher) BetResolved(ctx context.Context, e events.BetResolved) error {
	return writeJSON(ctx, p.Resolved, e.RequestID, e)
}

func (p *KafkaPublisher) BankUpdated(ctx context.Context, e events.BankUpdated) error {
	return writeJSON(ctx, p.Bank, e.Ref, e)
}

func writeJSON(ctx context.Context, w *kafka.Writer, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b})
}
