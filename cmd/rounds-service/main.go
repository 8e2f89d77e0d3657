package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	rcache "github.com/radieske/parimutuel-ledger-poc/internal/rounds-service/cache"
	httpapi "github.com/radieske/parimutuel-ledger-poc/internal/rounds-service/http"
	rrepo "github.com/radieske/parimutuel-ledger-poc/internal/rounds-service/repo"
	"github.com/radieske/parimutuel-ledger-poc/internal/rounds-service/ws"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/cache"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/config"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/db"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/logger"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("rounds-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "rounds-service"), zap.String("env", cfg.Env))

	// Postgres (histórico de rodadas escrito pelo history worker)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis (cache de rodadas + pub/sub do broadcast)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	api := &httpapi.API{
		ReadRepo: &rrepo.ReadRepo{DB: pg},
		Cache:    rcache.New(redisClient),
	}

	// Hub WebSocket alimentado pelo Redis Pub/Sub
	hub := ws.NewHub(func(r *http.Request) bool { return true }) // PoC: aceita qualquer origem
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ws.StartRedisSubscriber(ctx, redisClient, hub)

	mux := http.NewServeMux()
	mux.Handle("/", api.Router())
	mux.HandleFunc("/ws", hub.HandleWS)

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: mux,
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(hctx context.Context) error {
		if err := pg.PingContext(hctx); err != nil {
			return err
		}
		return redisClient.Ping(hctx).Err()
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	go func() {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = apiSrv.Shutdown(sctx)
	}()

	log.Info("rounds-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
