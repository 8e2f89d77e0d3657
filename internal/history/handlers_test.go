package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestHandlers_RejectMalformedPayloads(t *testing.T) {
	h := &Handlers{Log: zap.NewNop()}
	ctx := context.Background()

	// payload quebrado falha antes de tocar cache/banco
	assert.Error(t, h.HandleRoundSettled(ctx, nil, []byte("{not json")))
	assert.Error(t, h.HandleWinningsClaimed(ctx, nil, []byte("")))
	assert.Error(t, h.HandleFeesWithdrawn(ctx, nil, []byte("[]")))
}
