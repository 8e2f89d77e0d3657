package engine

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/transport"
)

func TestSnapshot_RestoreRoundtrip(t *testing.T) {
	eng, _ := newTestEngine(t, 500)
	ctx := context.Background()

	_, err := eng.Deposit(ctx, "u1", 100, SideA)
	require.NoError(t, err)
	_, err = eng.Deposit(ctx, "u2", 200, SideB)
	require.NoError(t, err)
	_, err = eng.Deposit(ctx, "u3", 50, SideB)
	require.NoError(t, err)
	eng.CloseBetting()
	_, err = eng.Settle(SideB)
	require.NoError(t, err)
	_, err = eng.StartNewRound()
	require.NoError(t, err)
	_, err = eng.Deposit(ctx, "u1", 50, SideB)
	require.NoError(t, err)
	// u2 saca antes do snapshot; u3 fica pendente
	_, err = eng.ClaimAll(ctx, "u2")
	require.NoError(t, err)

	snap := eng.Snapshot()

	// o snapshot sobrevive ao vai-e-vem de JSON (formato do ledger_snapshots)
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded State
	require.NoError(t, json.Unmarshal(raw, &decoded))

	mem := transport.NewMemory()
	restored := New(500, "operator", mem)
	require.NoError(t, restored.Restore(decoded))

	assert.Equal(t, snap, restored.Snapshot())
	assert.Equal(t, eng.CurrentRound(), restored.CurrentRound())

	// comportamento preservado: u2 já sacou, u3 ainda tem a rodada 1 pendente
	_, err = restored.ClaimAll(ctx, "u2")
	assert.ErrorIs(t, err, ErrNothingToClaim)

	info, ok := restored.RoundInfo(1)
	require.True(t, ok)
	ratio, ok := new(big.Int).SetString(info.PayoutRatio, 10)
	require.True(t, ok)
	want := new(big.Int).Mul(big.NewInt(48), ratio) // stake líquida do u3
	want.Quo(want, Scale)

	res, err := restored.ClaimAll(ctx, "u3")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, res.Rounds)
	assert.Equal(t, want.Int64(), res.TotalCents)
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	eng, _ := newTestEngine(t, 500)
	_, err := eng.Deposit(context.Background(), "u1", 100, SideA)
	require.NoError(t, err)

	snap := eng.Snapshot()
	snap.Rounds[0].TotalStakedACents = 999
	snap.Watermarks["u1"] = 42

	fresh := eng.Snapshot()
	assert.Equal(t, int64(95), fresh.Rounds[0].TotalStakedACents)
	assert.NotContains(t, fresh.Watermarks, "u1")
}

func TestRestore_RejectsInvalidSnapshots(t *testing.T) {
	mem := transport.NewMemory()

	cases := []struct {
		name string
		s    State
	}{
		{"current round zero", State{CurrentRound: 0}},
		{"current round missing", State{CurrentRound: 2, Rounds: []RoundState{{Round: 1}}}},
		{"bad winning side", State{
			CurrentRound: 1,
			Rounds:       []RoundState{{Round: 1, Settled: true, WinningSide: "X", PayoutRatio: "1"}},
		}},
		{"bad payout ratio", State{
			CurrentRound: 1,
			Rounds:       []RoundState{{Round: 1, Settled: true, WinningSide: "A", PayoutRatio: "not-a-number"}},
		}},
		{"bad stake side", State{
			CurrentRound: 1,
			Rounds:       []RoundState{{Round: 1, BettingOpen: true}},
			Stakes:       []StakeState{{Round: 1, UserID: "u1", Side: "Z"}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eng := New(500, "operator", mem)
			assert.Error(t, eng.Restore(tc.s))
		})
	}
}
