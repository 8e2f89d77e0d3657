package consumer

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type HandleFunc func(ctx context.Context, key, value []byte) error

// Loop consome um tópico Kafka e delega cada mensagem ao Handle.
// Callbacks de métricas podem ser usadas para monitoramento.
type Loop struct {
	Log    *zap.Logger
	Topic  string
	Reader *kafka.Reader
	Handle HandleFunc

	OnConsumed func()       // métricas (counter++)
	OnError    func(string) // métricas por fase
}

// Run inicia o loop de consumo; retorna quando o contexto é cancelado.
func (l *Loop) Run(ctx context.Context) error {
	for {
		m, err := l.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			l.Log.Warn("kafka read failed", zap.String("topic", l.Topic), zap.Error(err))
			if l.OnError != nil {
				l.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if l.OnConsumed != nil {
			l.OnConsumed()
		}

		if err := l.Handle(ctx, m.Key, m.Value); err != nil {
			l.Log.Warn("message handling failed", zap.String("topic", l.Topic), zap.Error(err))
			if l.OnError != nil {
				l.OnError("handle")
			}
		}
	}
}
