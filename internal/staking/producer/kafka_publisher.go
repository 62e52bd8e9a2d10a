package producer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/miraklik/casino-settlement/pkg/contracts/events"
)

// KafkaPublisher emite os eventos do ledger de staking, chaveados pela
// conta pra manter ordem por participante.
type KafkaPublisher struct {
	StakedW    *kafka.Writer
	WithdrawnW *kafka.Writer
	RewardW    *kafka.Writer
}

func NewKafkaPublisher(staked, withdrawn, reward *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{StakedW: staked, WithdrawnW: withdrawn, RewardW: reward}
}

func (p *KafkaPublisher) Staked(ctx context.Context, e events.Staked) error {
	return writeJSON(ctx, p.StakedW, e.Account, e)
}

func (p *KafkaPublisher) Withdrawn(ctx context.Context, e events.Withdrawn) error {
	return writeJSON(ctx, p.WithdrawnW, e.Account, e)
}

func (p *KafkaPublisher) RewardPaid(ctx context.Context, e events.RewardPaid) error {
	return writeJSON(ctx, p.RewardW, e.Account, e)
}

func writeJSON(ctx context.Context, w *kafka.Writer, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b})
}
