package history

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/parimutuel-ledger-poc/internal/history/cache"
	"github.com/radieske/parimutuel-ledger-poc/internal/history/pubsub"
	"github.com/radieske/parimutuel-ledger-poc/internal/history/repository"
	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/events"
)

// Handlers liga os tópicos do ledger ao cache, ao histórico e ao broadcast.
type Handlers struct {
	Log         *zap.Logger
	Repo        *repository.PostgresRepo
	Cache       *cache.RedisCache
	Broadcaster *pubsub.RedisBroadcaster

	OnCached  func() // métricas
	OnPersist func() // métricas
}

// HandleRoundSettled atualiza cache, persiste a rodada e faz o broadcast WS.
func (h *Handlers) HandleRoundSettled(ctx context.Context, _ []byte, value []byte) error {
	var ev events.RoundSettled
	if err := json.Unmarshal(value, &ev); err != nil {
		return err
	}

	// Atualiza cache Redis com a rodada liquidada
	if err := h.Cache.SetRound(ctx, ev); err != nil {
		h.Log.Warn("redis set failed", zap.Error(err))
		// não bloqueia persistência se falhar o cache
	} else if h.OnCached != nil {
		h.OnCached()
	}

	if err := h.Repo.UpsertRound(ctx, ev); err != nil {
		return err
	}
	if h.OnPersist != nil {
		h.OnPersist()
	}

	// Após persistir, envia update para o WebSocket via Redis Pub/Sub
	msg := pubsub.WSUpdate{Round: ev.Round, Payload: ev}
	b, _ := json.Marshal(msg)

	bctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := h.Broadcaster.Publish(bctx, pubsub.ChannelRoundBroadcast, b); err != nil {
		h.Log.Warn("ws broadcast publish failed", zap.Error(err))
	}

	return nil
}

// HandleWinningsClaimed registra o saque no histórico.
func (h *Handlers) HandleWinningsClaimed(ctx context.Context, _ []byte, value []byte) error {
	var ev events.WinningsClaimed
	if err := json.Unmarshal(value, &ev); err != nil {
		return err
	}
	if err := h.Repo.InsertClaim(ctx, ev); err != nil {
		return err
	}
	if h.OnPersist != nil {
		h.OnPersist()
	}
	return nil
}

// HandleFeesWithdrawn registra o saque de taxas no histórico.
func (h *Handlers) HandleFeesWithdrawn(ctx context.Context, _ []byte, value []byte) error {
	var ev events.FeesWithdrawn
	if err := json.Unmarshal(value, &ev); err != nil {
		return err
	}
	if err := h.Repo.InsertFeeWithdrawal(ctx, ev); err != nil {
		return err
	}
	if h.OnPersist != nil {
		h.OnPersist()
	}
	return nil
}
