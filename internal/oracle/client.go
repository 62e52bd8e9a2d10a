package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/miraklik/casino-settlement/pkg/contracts/events"
)

// KafkaClient pede aleatoriedade publicando no tópico randomness_requested.
// O requestID é gerado aqui e correlaciona o pedido com o callback que o
// oráculo publica em randomness_fulfilled.
type KafkaClient struct {
	Writer *kafka.Writer
}

func NewKafkaClient(w *kafka.Writer) *KafkaClient { return &KafkaClient{Writer: w} }

func (c *KafkaClient) RequestRandomness(ctx context.Context) (string, error) {
	requestID := uuid.NewString()
	b, err := json.Marshal(events.RandomnessRequested{
		RequestID: requestID,
		TsUnixMs:  time.Now().UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	if err := c.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(requestID),
		Value: b,
	}); err != nil {
		return "", fmt.Errorf("publish randomness request: %w", err)
	}
	return requestID, nil
}
