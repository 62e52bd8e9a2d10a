package walletclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client fala com o wallet service externo, a primitiva de transferência
// de valor. Custódia e saldo de usuário vivem lá, não aqui.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

type transferRequest struct {
	Account      string `json:"account"`
	AmountMicros int64  `json:"amount_micros"`
	ExternalRef  string `json:"external_ref"`
}

// Send credita valor na conta destino (payout, cashback, saque).
func (c *Client) Send(ctx context.Context, to string, amountMicros int64, ref string) error {
	return c.post(ctx, "/wallet/credit", transferRequest{Account: to, AmountMicros: amountMicros, ExternalRef: ref})
}

// Pull debita valor da conta origem (stake, depósito).
func (c *Client) Pull(ctx context.Context, from string, amountMicros int64, ref string) error {
	return c.post(ctx, "/wallet/debit", transferRequest{Account: from, AmountMicros: amountMicros, ExternalRef: ref})
}

func (c *Client) post(ctx context.Context, path string, body transferRequest) error {
	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
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
