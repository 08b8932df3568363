package bazaar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gem-profit/internal/pricing"
)

var (
	ErrBadStatus    = errors.New("bazaar: unexpected status")
	ErrUnsuccessful = errors.New("bazaar: response not successful")
)

type response struct {
	Success     bool             `json:"success"`
	Cause       string           `json:"cause"`
	LastUpdated int64            `json:"lastUpdated"`
	Products    pricing.Snapshot `json:"products"`
}

// Client fetches the bazaar product list. It has no timeout of its own beyond
// the one on the underlying http.Client.
type Client struct {
	url    string
	httpc  *http.Client
	logger *slog.Logger
}

func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url:    url,
		httpc:  &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch returns the current snapshot. Any error means nothing usable was received.
func (c *Client) Fetch(ctx context.Context) (pricing.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bazaar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}
	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode bazaar: %w", err)
	}
	if !body.Success {
		return nil, fmt.Errorf("%w: %s", ErrUnsuccessful, body.Cause)
	}
	if c.logger != nil {
		c.logger.Debug("bazaar fetched",
			slog.Int("products", len(body.Products)),
			slog.Duration("took", time.Since(start)),
		)
	}
	return body.Products, nil
}
