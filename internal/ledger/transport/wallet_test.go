package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walletdto "github.com/radieske/parimutuel-ledger-poc/internal/ledger/transport/dto"
)

// fakeWallet grava as chamadas recebidas e permite forçar falha por rota.
type fakeWallet struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *fakeWallet) handler() http.Handler {
	mux := http.NewServeMux()
	for _, path := range []string{"/wallet/hold", "/wallet/capture", "/wallet/release", "/wallet/credit"} {
		p := path
		mux.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.calls = append(f.calls, p)
			failing := f.fail[p]
			f.mu.Unlock()
			if failing {
				http.Error(w, "boom", http.StatusConflict)
				return
			}
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(walletdto.HoldResponse{HoldID: "h1", Status: "OK"})
		})
	}
	return mux
}

func (f *fakeWallet) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestWalletClient_DebitHoldsThenCaptures(t *testing.T) {
	fw := &fakeWallet{fail: map[string]bool{}}
	srv := httptest.NewServer(fw.handler())
	defer srv.Close()

	c := NewWalletClient(srv.URL)
	require.NoError(t, c.Debit(context.Background(), "u1", 100, "stake:x"))
	assert.Equal(t, []string{"/wallet/hold", "/wallet/capture"}, fw.recorded())
}

func TestWalletClient_DebitReleasesOnCaptureFailure(t *testing.T) {
	fw := &fakeWallet{fail: map[string]bool{"/wallet/capture": true}}
	srv := httptest.NewServer(fw.handler())
	defer srv.Close()

	c := NewWalletClient(srv.URL)
	err := c.Debit(context.Background(), "u1", 100, "stake:x")
	require.Error(t, err)
	assert.Equal(t, []string{"/wallet/hold", "/wallet/capture", "/wallet/release"}, fw.recorded())
}

func TestWalletClient_DebitStopsWhenHoldFails(t *testing.T) {
	fw := &fakeWallet{fail: map[string]bool{"/wallet/hold": true}}
	srv := httptest.NewServer(fw.handler())
	defer srv.Close()

	c := NewWalletClient(srv.URL)
	err := c.Debit(context.Background(), "u1", 100, "stake:x")
	require.Error(t, err)
	assert.Equal(t, []string{"/wallet/hold"}, fw.recorded())
}

func TestWalletClient_Credit(t *testing.T) {
	fw := &fakeWallet{fail: map[string]bool{}}
	srv := httptest.NewServer(fw.handler())
	defer srv.Close()

	c := NewWalletClient(srv.URL)
	require.NoError(t, c.Credit(context.Background(), "u1", 190, "claim:x"))
	assert.Equal(t, []string{"/wallet/credit"}, fw.recorded())

	fw.fail["/wallet/credit"] = true
	assert.Error(t, c.Credit(context.Background(), "u1", 190, "claim:y"))
}
