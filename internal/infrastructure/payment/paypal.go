package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/ports"
)

const (
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	LiveBaseURL    = "https://api-m.paypal.com"

	tokenPath  = "/v1/oauth2/token"
	ordersPath = "/v2/checkout/orders"

	statusCompleted = "COMPLETED"
)

var errProvider = errors.New("paypal: unexpected response")

// PayPalConfig holds REST API credentials.
type PayPalConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// PayPal implements ports.PaymentGateway against the PayPal Orders v2 API
// using the client-credentials grant.
type PayPal struct {
	cfg    PayPalConfig
	client *http.Client
	log    zerolog.Logger

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewPayPal(cfg PayPalConfig, log zerolog.Logger) *PayPal {
	if cfg.BaseURL == "" {
		cfg.BaseURL = SandboxBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &PayPal{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceID string `json:"reference_id,omitempty"`
	Amount      amount `json:"amount"`
}

type createOrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		Name struct {
			GivenName string `json:"given_name"`
			Surname   string `json:"surname"`
		} `json:"name"`
	} `json:"payer"`
}

// CreateOrder opens a CAPTURE-intent order for the given amount.
func (p *PayPal) CreateOrder(ctx context.Context, req ports.PaymentRequest) (string, error) {
	body := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: req.Reference,
			Amount:      amount{CurrencyCode: req.Currency, Value: req.Amount},
		}},
	}
	var out orderResponse
	if err := p.do(ctx, http.MethodPost, ordersPath, body, &out); err != nil {
		return "", fmt.Errorf("paypal create order: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("paypal create order: %w: missing id", errProvider)
	}
	p.log.Debug().Str("paypal_order", out.ID).Str("status", out.Status).Msg("paypal order created")
	return out.ID, nil
}

// Capture captures an approved order. Any status other than COMPLETED is an
// error.
func (p *PayPal) Capture(ctx context.Context, providerOrderID string) (*ports.PaymentCapture, error) {
	path := ordersPath + "/" + url.PathEscape(providerOrderID) + "/capture"
	var out orderResponse
	if err := p.do(ctx, http.MethodPost, path, struct{}{}, &out); err != nil {
		return nil, fmt.Errorf("paypal capture: %w", err)
	}
	if out.Status != statusCompleted {
		return nil, fmt.Errorf("paypal capture: %w: status %s", errProvider, out.Status)
	}
	return &ports.PaymentCapture{
		ProviderOrderID: out.ID,
		Status:          out.Status,
		PayerName:       strings.TrimSpace(out.Payer.Name.GivenName + " " + out.Payer.Name.Surname),
		CapturedAt:      time.Now().UTC(),
	}, nil
}

func (p *PayPal) do(ctx context.Context, method, path string, in, out any) error {
	tok, err := p.accessToken(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: %d %s", errProvider, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached OAuth token, refreshing it a minute before it
// expires.
func (p *PayPal) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.expires) {
		return p.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token: %w: %d", errProvider, resp.StatusCode)
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("paypal token: %w", err)
	}
	p.token = out.AccessToken
	p.expires = time.Now().Add(time.Duration(out.ExpiresIn)*time.Second - time.Minute)
	return p.token, nil
}
