package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/events"
)

// KafkaPublisher publica os eventos do ledger, um writer por tópico.
type KafkaPublisher struct {
	StakePlaced     *kafka.Writer
	RoundSettled    *kafka.Writer
	WinningsClaimed *kafka.Writer
	FeesWithdrawn   *kafka.Writer
}

func (p *KafkaPublisher) PublishStakePlaced(ctx context.Context, e events.StakePlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.StakePlaced.WriteMessages(ctx, kafka.Message{Key: []byte(e.UserID), Value: b})
}

func (p *KafkaPublisher) PublishRoundSettled(ctx context.Context, e events.RoundSettled) error {
	b, _ := json.Marshal(e)
	key := strconv.FormatInt(e.Round, 10)
	return p.RoundSettled.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b})
}

func (p *KafkaPublisher) PublishWinningsClaimed(ctx context.Context, e events.WinningsClaimed) error {
	b, _ := json.Marshal(e)
	return p.WinningsClaimed.WriteMessages(ctx, kafka.Message{Key: []byte(e.UserID), Value: b})
}

func (p *KafkaPublisher) PublishFeesWithdrawn(ctx context.Context, e events.FeesWithdrawn) error {
	b, _ := json.Marshal(e)
	return p.FeesWithdrawn.WriteMessages(ctx, kafka.Message{Value: b})
}
