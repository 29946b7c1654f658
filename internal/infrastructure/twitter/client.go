package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ASongADay/internal/config"
	"ASongADay/internal/domain"
	"ASongADay/internal/ports"
)

const (
	defaultBaseURL = "https://api.twitter.com"
	maxErrorBody   = 4096
)

// Client talks to the Twitter v2 API: token refresh, user timeline, posting.
type Client struct {
	baseURL      string
	userID       string
	clientID     string
	clientSecret string
	http         *http.Client
}

var (
	_ ports.TokenIssuer  = (*Client)(nil)
	_ ports.HistoryPager = (*Client)(nil)
	_ ports.Publisher    = (*Client)(nil)
)

// NewClient builds a client from configuration; a nil http client gets a
// default with a timeout.
func NewClient(cfg config.TwitterConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL:      base,
		userID:       cfg.UserID,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http:         httpClient,
	}
}

func (c *Client) do(req *http.Request, endpoint string, ok func(int) bool, v any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.APIError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		}
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", "ASongADay/1.0")
	return req, nil
}

func isOK(status int) bool {
	return status == http.StatusOK
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
