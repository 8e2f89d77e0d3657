package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/parimutuel-ledger-poc/internal/history"
	hcache "github.com/radieske/parimutuel-ledger-poc/internal/history/cache"
	"github.com/radieske/parimutuel-ledger-poc/internal/history/consumer"
	"github.com/radieske/parimutuel-ledger-poc/internal/history/pubsub"
	"github.com/radieske/parimutuel-ledger-poc/internal/history/repository"
	sharedcache "github.com/radieske/parimutuel-ledger-poc/internal/shared/cache"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/config"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/db"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/kafka"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/logger"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("ledger-history-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Cache de rodadas liquidadas (sem TTL curto: histórico imutável)
	rcache := hcache.NewRedisCache(redisClient, 24*time.Hour)
	repo := repository.NewPostgresRepo(pg)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "history_messages_consumed_total", Help: "mensagens consumidas"}, []string{"topic"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "history_cache_sets_total", Help: "sets no cache"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "history_db_writes_total", Help: "escritas no banco"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "history_errors_total", Help: "erros por estágio"}, []string{"topic", "stage"})
	prometheus.MustRegister(consumed, cached, persist, errorsBy)

	handlers := &history.Handlers{
		Log:         log,
		Repo:        repo,
		Cache:       rcache,
		Broadcaster: broadcaster,
		OnCached:    func() { cached.Inc() },
		OnPersist:   func() { persist.Inc() },
	}

	// Um loop de consumo por tópico do ledger
	loops := []*consumer.Loop{
		{
			Log:    log,
			Topic:  cfg.TopicRoundSettled,
			Reader: kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRoundSettled, "ledger-history"),
			Handle: handlers.HandleRoundSettled,
		},
		{
			Log:    log,
			Topic:  cfg.TopicWinningsClaimed,
			Reader: kafka.NewReader(cfg.KafkaBrokers, cfg.TopicWinningsClaimed, "ledger-history"),
			Handle: handlers.HandleWinningsClaimed,
		},
		{
			Log:    log,
			Topic:  cfg.TopicFeesWithdrawn,
			Reader: kafka.NewReader(cfg.KafkaBrokers, cfg.TopicFeesWithdrawn, "ledger-history"),
			Handle: handlers.HandleFeesWithdrawn,
		},
	}
	for _, l := range loops {
		topic := l.Topic
		l.OnConsumed = func() { consumed.WithLabelValues(topic).Inc() }
		l.OnError = func(stage string) { errorsBy.WithLabelValues(topic, stage).Inc() }
		defer l.Reader.Close()
	}

	// Servidor HTTP para métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	log.Info("metrics/health listening", zap.String("addr", ":"+cfg.MetricsPort))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("ledger-history-worker started")

	var wg sync.WaitGroup
	for _, l := range loops {
		wg.Add(1)
		go func(l *consumer.Loop) {
			defer wg.Done()
			if err := l.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("consumer loop stopped with error", zap.String("topic", l.Topic), zap.Error(err))
			}
		}(l)
	}
	wg.Wait()

	log.Info("ledger-history-worker stopped")
}
