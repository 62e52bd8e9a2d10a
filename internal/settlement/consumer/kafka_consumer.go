package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/miraklik/casino-settlement/internal/settlement"
	"github.com/miraklik/casino-settlement/internal/shared/kafka"
	"github.com/miraklik/casino-settlement/pkg/contracts/events"
)

// Consumer consome randomness_fulfilled e dirige o caminho de resolução.
// Roda no mesmo processo do engine: os ledgers compartilhados são
// serializados pelo mutex do engine, não por coordenação entre processos.
type Consumer struct {
	log    *zap.Logger
	engine *settlement.Engine
	reader *kafkago.Reader
	dlq    *kafkago.Writer // opcional
}

func New(log *zap.Logger, engine *settlement.Engine, reader *kafkago.Reader, dlq *kafkago.Writer) *Consumer {
	return &Consumer{log: log, engine: engine, reader: reader, dlq: dlq}
}

// Run processa callbacks até o contexto encerrar.
func (c *Consumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var fulfilled events.RandomnessFulfilled
		if jerr := json.Unmarshal(msg.Value, &fulfilled); jerr != nil {
			c.log.Error("unmarshal randomness_fulfilled", zap.Error(jerr))
			c.toDLQ(ctx, msg.Key, msg.Value)
			continue
		}

		if err := c.processOne(ctx, &fulfilled); err != nil {
			c.log.Error("resolve bet",
				zap.String("requestId", fulfilled.RequestID), zap.Error(err))
			// Backoff simples para evitar flood em caso de erro transitório
			if !permanent(err) {
				time.Sleep(500 * time.Millisecond)
			}
		}
	}
}

// processOne resolve uma aposta; erros permanentes (remetente não é o
// oráculo, id desconhecido) vão pra DLQ e não são retentados.
func (c *Consumer) processOne(ctx context.Context, f *events.RandomnessFulfilled) error {
	_, err := c.engine.Resolve(ctx, f.OracleID, f.RequestID, f.RandomValue)
	if err == nil {
		return nil
	}
	if permanent(err) {
		payload, _ := json.Marshal(f)
		c.toDLQ(ctx, []byte(f.RequestID), payload)
	}
	return err
}

func permanent(err error) bool {
	return errors.Is(err, settlement.ErrNotOracle) ||
		errors.Is(err, settlement.ErrUnknownRequest)
}

func (c *Consumer) toDLQ(ctx context.Context, key, value []byte) {
	if c.dlq == nil {
		return
	}
	if err := kafka.WriteJSON(ctx, c.dlq, string(key), value); err != nil {
		c.log.Error("write dlq", zap.Error(err))
	}
}
