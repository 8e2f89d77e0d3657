package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/engine"
	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/http/dto"
	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/transport"
)

const testToken = "secret-op-token"

func newTestServer(t *testing.T) (*httptest.Server, *transport.Memory) {
	t.Helper()
	mem := transport.NewMemory()
	mem.Fund("u1", 1_000_000)
	mem.Fund("u2", 1_000_000)

	eng := engine.New(500, "operator", mem)
	srv := NewServer(zap.NewNop(), eng, testToken, nil, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, mem
}

func post(t *testing.T, url string, body any, token string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Operator-Token", token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestServer_FullRoundFlow(t *testing.T) {
	ts, mem := newTestServer(t)

	// depósitos dos dois lados
	res := post(t, ts.URL+"/rounds/deposit", dto.DepositRequest{UserID: "u1", AmountCents: 100, Side: "A"}, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	dep := decode[dto.DepositResponse](t, res)
	assert.Equal(t, int64(1), dep.Round)
	assert.Equal(t, int64(5), dep.FeeCents)
	assert.Equal(t, int64(95), dep.NetCents)

	res = post(t, ts.URL+"/rounds/deposit", dto.DepositRequest{UserID: "u2", AmountCents: 100, Side: "B"}, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	// fecha e liquida (operador)
	res = post(t, ts.URL+"/rounds/close", nil, testToken)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = post(t, ts.URL+"/rounds/settle", dto.SettleRequest{WinningSide: "A"}, testToken)
	require.Equal(t, http.StatusOK, res.StatusCode)
	round := decode[dto.RoundResponse](t, res)
	assert.True(t, round.Settled)
	assert.Equal(t, "A", round.WinningSide)
	assert.Equal(t, "2000000000000000000", round.PayoutRatio)

	// vencedor saca
	res = post(t, ts.URL+"/claims", dto.ClaimRequest{UserID: "u1"}, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	claim := decode[dto.ClaimResponse](t, res)
	assert.Equal(t, int64(190), claim.TotalCents)
	assert.Equal(t, []int64{1}, claim.Rounds)
	assert.Equal(t, int64(1_000_000-100+190), mem.Balance("u1"))

	// operador saca as taxas
	res = post(t, ts.URL+"/fees/withdraw", nil, testToken)
	require.Equal(t, http.StatusOK, res.StatusCode)
	fees := decode[dto.ClaimResponse](t, res)
	assert.Equal(t, int64(10), fees.TotalCents)
	assert.Equal(t, int64(10), mem.Balance("operator"))

	// abre a rodada seguinte
	res = post(t, ts.URL+"/rounds/next", nil, testToken)
	require.Equal(t, http.StatusOK, res.StatusCode)
	next := decode[map[string]int64](t, res)
	assert.Equal(t, int64(2), next["round"])
}

func TestServer_OperatorRoutesRequireToken(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, route := range []string{"/rounds/close", "/rounds/settle", "/rounds/next", "/fees/withdraw"} {
		res := post(t, ts.URL+route, nil, "")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, route)
		res.Body.Close()

		res = post(t, ts.URL+route, nil, "wrong-token")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, route)
		res.Body.Close()
	}
}

func TestServer_ErrorMapping(t *testing.T) {
	ts, _ := newTestServer(t)

	// valor zero → 400
	res := post(t, ts.URL+"/rounds/deposit", dto.DepositRequest{UserID: "u1", AmountCents: 0, Side: "A"}, "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()

	// lado inválido → 400
	res = post(t, ts.URL+"/rounds/deposit", dto.DepositRequest{UserID: "u1", AmountCents: 10, Side: "C"}, "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()

	// nada a sacar → 404
	res = post(t, ts.URL+"/claims", dto.ClaimRequest{UserID: "u1"}, "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()

	// sem saldo na custódia → 502
	res = post(t, ts.URL+"/rounds/deposit", dto.DepositRequest{UserID: "broke", AmountCents: 10, Side: "A"}, "")
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	res.Body.Close()

	// liquidação dupla → 409
	res = post(t, ts.URL+"/rounds/settle", dto.SettleRequest{WinningSide: "A"}, testToken)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()
	res = post(t, ts.URL+"/rounds/settle", dto.SettleRequest{WinningSide: "B"}, testToken)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()

	// rodada liquidada não aceita depósito → 409
	res = post(t, ts.URL+"/rounds/deposit", dto.DepositRequest{UserID: "u1", AmountCents: 10, Side: "A"}, "")
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()
}

func TestServer_Queries(t *testing.T) {
	ts, _ := newTestServer(t)

	res := post(t, ts.URL+"/rounds/deposit", dto.DepositRequest{UserID: "u1", AmountCents: 100, Side: "A"}, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res, err := http.Get(ts.URL + "/rounds/current")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	cur := decode[dto.RoundResponse](t, res)
	assert.Equal(t, int64(1), cur.Round)
	assert.True(t, cur.BettingOpen)
	assert.Equal(t, int64(95), cur.TotalStakedACents)

	res, err = http.Get(ts.URL + "/rounds/1/stakes?userId=u1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	st := decode[dto.StakeResponse](t, res)
	assert.Equal(t, "A", st.Side)
	assert.Equal(t, int64(95), st.NetCents)
	assert.False(t, st.Claimed)

	// stake inexistente e rodada inexistente → 404
	res, err = http.Get(ts.URL + "/rounds/1/stakes?userId=nobody")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()

	res, err = http.Get(ts.URL + "/rounds/99")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()

	res, err = http.Get(ts.URL + "/config")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	cfg := decode[dto.ConfigResponse](t, res)
	assert.Equal(t, int64(500), cfg.FeeBps)
	assert.Equal(t, int64(1), cfg.CurrentRound)
}
