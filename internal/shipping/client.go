// Package shipping integrates with the Melhor Envio carrier-aggregation API:
// rate quotation for checkout and the label purchase saga for fulfilment.
package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Client talks to the Melhor Envio API. All store-origin identity comes from
// the injected configuration; nothing is read from the environment at call
// time.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	platform   string
	sender     config.SenderConfig
	pickup     config.PickupConfig
	logger     zerolog.Logger
}

// NewClient creates a new Melhor Envio client.
func NewClient(cfg config.MelhorEnvioConfig, sender config.SenderConfig, pickup config.PickupConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		userAgent:  cfg.UserAgent,
		platform:   cfg.Platform,
		sender:     sender,
		pickup:     pickup,
		logger:     logger.With().Str("client", "melhor_envio").Logger(),
	}
}

// post sends an authenticated JSON request and returns the raw response. The
// caller owns status handling; bodies are fully read so the transport can
// reuse connections.
func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	return resp.StatusCode, data, nil
}

// money tolerates the API returning monetary values as either JSON numbers
// or quoted strings ("28.90").
type money float64

func (m *money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid monetary value %q: %w", s, err)
	}
	*m = money(v)
	return nil
}

func (c *Client) checkConfigured() error {
	if c.token == "" {
		return model.NewConfigurationError("Melhor Envio API token not configured")
	}
	return nil
}
