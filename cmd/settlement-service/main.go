package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/miraklik/casino-settlement/internal/bank"
	"github.com/miraklik/casino-settlement/internal/oracle"
	"github.com/miraklik/casino-settlement/internal/settlement"
	"github.com/miraklik/casino-settlement/internal/settlement/consumer"
	shttp "github.com/miraklik/casino-settlement/internal/settlement/http"
	"github.com/miraklik/casino-settlement/internal/settlement/producer"
	"github.com/miraklik/casino-settlement/internal/shared/cache"
	"github.com/miraklik/casino-settlement/internal/shared/config"
	"github.com/miraklik/casino-settlement/internal/shared/db"
	"github.com/miraklik/casino-settlement/internal/shared/kafka"
	"github.com/miraklik/casino-settlement/internal/shared/logger"
	"github.com/miraklik/casino-settlement/internal/shared/metrics"
	"github.com/miraklik/casino-settlement/internal/tier"
	"github.com/miraklik/casino-settlement/internal/wager"
	"github.com/miraklik/casino-settlement/internal/walletclient"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres: apostas pendentes + trilha de auditoria da banca
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis: registro de tiers
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	// Kafka writers
	randomnessW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRandomnessRequested)
	defer randomnessW.Close()
	acceptedW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetAccepted)
	defer acceptedW.Close()
	resolvedW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetResolved)
	defer resolvedW.Close()
	bankW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBankUpdated)
	defer bankW.Close()

	// deps do engine
	wagers := wager.NewPostgresStore(pg)
	bankLedger := bank.New(bank.NewPostgresJournal(pg))
	registry := tier.NewRedisRegistry(rdb)
	oracleCli := oracle.NewKafkaClient(randomnessW)
	treasury := walletclient.New(cfg.WalletURL)
	publ := producer.NewKafkaPublisher(acceptedW, resolvedW, bankW)

	engine, err := settlement.NewEngine(log, wagers, bankLedger, registry, oracleCli, treasury, publ, settlement.EngineConfig{
		OracleID: cfg.OracleID,
		OwnerID:  cfg.OwnerID,
		Params: settlement.Params{
			MinBetMicros: cfg.MinBetMicros,
			MaxBetMicros: cfg.MaxBetMicros,
			BaseFeeRate:  cfg.BaseFeeRate,
		},
	})
	if err != nil {
		log.Fatal("engine", zap.Error(err))
	}

	// Consumer de resolução: callbacks do oráculo chegam por Kafka e são
	// liquidados aqui mesmo, no processo que detém os ledgers
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRandomnessFulfilled, "settlement")
	defer reader.Close()
	dlqW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRandomnessFulfilledDLQ)
	defer dlqW.Close()

	go consumer.New(log, engine, reader, dlqW).Run(context.Background())

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	// HTTP público
	api := shttp.NewServer(log, engine, cfg.OwnerID, cfg.OwnerToken)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	log.Info("settlement-service listening",
		zap.String("addr", apiSrv.Addr),
		zap.String("oracle", cfg.OracleID),
	)
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
