// Package notify delivers templated e-mails.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kompu/storefront/internal/core/ports"
)

const EmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJS sends notifications through the EmailJS REST API. The template
// parameters are forwarded unchanged.
type EmailJS struct {
	endpoint   string
	privateKey string
	client     *http.Client
}

// NewEmailJS returns an EmailJS notifier. privateKey is the optional access
// token required when the account enforces it.
func NewEmailJS(endpoint, privateKey string, timeout time.Duration) *EmailJS {
	if endpoint == "" {
		endpoint = EmailJSEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EmailJS{endpoint: endpoint, privateKey: privateKey, client: &http.Client{Timeout: timeout}}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

func (e *EmailJS) Send(ctx context.Context, n ports.Notification) error {
	payload, err := json.Marshal(emailJSRequest{
		ServiceID:      n.ServiceID,
		TemplateID:     n.TemplateID,
		UserID:         n.PublicKey,
		AccessToken:    e.privateKey,
		TemplateParams: n.Params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
