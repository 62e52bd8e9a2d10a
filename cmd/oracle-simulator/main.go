package main

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/miraklik/casino-settlement/internal/oracle"
	"github.com/miraklik/casino-settlement/internal/shared/config"
	"github.com/miraklik/casino-settlement/internal/shared/kafka"
	"github.com/miraklik/casino-settlement/internal/shared/logger"
	"github.com/miraklik/casino-settlement/internal/shared/metrics"
	"github.com/miraklik/casino-settlement/pkg/contracts/events"
)

// Simulador do oráculo de aleatoriedade: consome os pedidos, sorteia um
// valor uniforme e publica o callback carimbado com a identidade do
// oráculo. Garante um único callback por requestID porque cada pedido é
// consumido exatamente uma vez pelo group.
func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRandomnessRequested, "oracle-simulator")
	defer reader.Close()

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRandomnessFulfilled)
	defer writer.Close()

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })

	log.Info("oracle-simulator started",
		zap.String("consume", cfg.TopicRandomnessRequested),
		zap.String("publish", cfg.TopicRandomnessFulfilled),
		zap.String("identity", cfg.OracleID),
	)

	ctx := context.Background()
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var req events.RandomnessRequested
		if jerr := json.Unmarshal(msg.Value, &req); jerr != nil {
			log.Error("unmarshal randomness_requested", zap.Error(jerr))
			continue
		}

		value, err := oracle.DrawUniform()
		if err != nil {
			log.Error("draw", zap.String("requestId", req.RequestID), zap.Error(err))
			continue
		}

		payload, _ := json.Marshal(events.RandomnessFulfilled{
			RequestID:   req.RequestID,
			RandomValue: value,
			OracleID:    cfg.OracleID,
			TsUnixMs:    time.Now().UnixMilli(),
		})
		if err := kafka.WriteJSON(ctx, writer, req.RequestID, payload); err != nil {
			log.Error("publish fulfilled", zap.String("requestId", req.RequestID), zap.Error(err))
			continue
		}

		log.Info("randomness fulfilled",
			zap.String("requestId", req.RequestID),
			zap.Uint64("value", value),
		)
	}
}
