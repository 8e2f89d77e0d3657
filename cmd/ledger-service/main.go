package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/engine"
	lhttp "github.com/radieske/parimutuel-ledger-poc/internal/ledger/http"
	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/producer"
	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/snapshot"
	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/transport"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/config"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/db"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/kafka"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/logger"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("ledger-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "ledger-service"), zap.String("env", cfg.Env))

	// Postgres (snapshot do engine)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Transporte de valor: wallet-service (pull) ou custódia em memória (local)
	var tr engine.Transport
	switch cfg.TransportMode {
	case "memory":
		tr = transport.NewMemory()
		log.Warn("using in-memory transport; balances vanish on restart")
	default:
		tr = transport.NewWalletClient(cfg.WalletURL)
	}

	eng := engine.New(cfg.FeeBps, cfg.OperatorAccount, tr)

	// Restaura o último snapshot antes de aceitar tráfego
	snapRepo := snapshot.NewRepo(pg)
	if state, ok, err := snapRepo.Load(context.Background()); err != nil {
		log.Fatal("snapshot load", zap.Error(err))
	} else if ok {
		if err := eng.Restore(state); err != nil {
			log.Fatal("snapshot restore", zap.Error(err))
		}
		log.Info("engine restored", zap.Int64("current_round", eng.CurrentRound()))
	}

	// Kafka writers, um por tópico do ledger
	stakeW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicStakePlaced)
	defer stakeW.Close()
	settledW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundSettled)
	defer settledW.Close()
	claimedW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWinningsClaimed)
	defer claimedW.Close()
	feesW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicFeesWithdrawn)
	defer feesW.Close()

	publ := &producer.KafkaPublisher{
		StakePlaced:     stakeW,
		RoundSettled:    settledW,
		WinningsClaimed: claimedW,
		FeesWithdrawn:   feesW,
	}

	// Métricas Prometheus por operação
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_ops_total", Help: "operações aceitas"}, []string{"op"})
	opErrors := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_op_errors_total", Help: "operações rejeitadas"}, []string{"op"})
	prometheus.MustRegister(ops, opErrors)

	api := lhttp.NewServer(log, eng, cfg.OperatorToken, snapRepo, publ)
	api.OnOp = func(op string) { ops.WithLabelValues(op).Inc() }
	api.OnError = func(op string) { opErrors.WithLabelValues(op).Inc() }

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("ledger-service listening",
		zap.String("addr", apiSrv.Addr),
		zap.Int64("fee_bps", cfg.FeeBps),
		zap.String("transport", cfg.TransportMode),
	)
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
