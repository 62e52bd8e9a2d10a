package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/miraklik/casino-settlement/internal/shared/config"
	"github.com/miraklik/casino-settlement/internal/shared/kafka"
	"github.com/miraklik/casino-settlement/internal/shared/logger"
	"github.com/miraklik/casino-settlement/internal/shared/metrics"
	"github.com/miraklik/casino-settlement/internal/staking"
	sthttp "github.com/miraklik/casino-settlement/internal/staking/http"
	"github.com/miraklik/casino-settlement/internal/staking/producer"
	"github.com/miraklik/casino-settlement/internal/walletclient"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	stakedW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicStaked)
	defer stakedW.Close()
	withdrawnW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWithdrawn)
	defer withdrawnW.Close()
	rewardW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRewardPaid)
	defer rewardW.Close()

	treasury := walletclient.New(cfg.WalletURL)
	publ := producer.NewKafkaPublisher(stakedW, withdrawnW, rewardW)

	pool, err := staking.NewPool(log, treasury, publ, staking.PoolConfig{
		OwnerID:  cfg.OwnerID,
		Duration: cfg.RewardDuration,
	})
	if err != nil {
		log.Fatal("pool", zap.Error(err))
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })

	api := sthttp.NewServer(log, pool, cfg.OwnerID, cfg.OwnerToken)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	log.Info("staking-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
