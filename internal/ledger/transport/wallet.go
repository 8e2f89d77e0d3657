package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	walletdto "github.com/radieske/parimutuel-ledger-poc/internal/ledger/transport/dto"
)

// WalletClient é o adaptador de transporte "token": o valor é puxado do
// usuário via wallet-service (hold + capture), pull-based e idempotente pelo
// external_ref.
type WalletClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewWalletClient(base string) *WalletClient {
	return &WalletClient{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// Debit puxa o valor: cria um hold e captura em seguida. Se a captura falhar,
// libera o hold (best-effort) para não prender saldo do usuário.
func (c *WalletClient) Debit(ctx context.Context, userID string, amountCents int64, ref string) error {
	body, _ := json.Marshal(walletdto.HoldRequest{UserID: userID, AmountCents: amountCents, ExternalRef: ref})
	if err := c.post(ctx, "/wallet/hold", body); err != nil {
		return err
	}

	capBody, _ := json.Marshal(walletdto.CaptureRequest{UserID: userID, ExternalRef: ref})
	if err := c.post(ctx, "/wallet/capture", capBody); err != nil {
		relBody, _ := json.Marshal(walletdto.ReleaseRequest{UserID: userID, ExternalRef: ref})
		_ = c.post(ctx, "/wallet/release", relBody)
		return err
	}
	return nil
}

// Credit empurra o pagamento para a carteira do usuário.
func (c *WalletClient) Credit(ctx context.Context, userID string, amountCents int64, ref string) error {
	body, _ := json.Marshal(walletdto.CreditRequest{UserID: userID, AmountCents: amountCents, ExternalRef: ref})
	return c.post(ctx, "/wallet/credit", body)
}

func (c *WalletClient) post(ctx context.Context, path string, body []byte) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("wallet %s http %d", path, res.StatusCode)
	}
	return nil
}
