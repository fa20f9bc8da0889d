package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/anmol-28/livedatatest/internal/model"
)

// ErrUnavailable marks a transport-level fetch failure: timeout, connection
// error, or a non-200 response.
var ErrUnavailable = errors.New("upstream unavailable")

const maxBodyBytes = 64 * 1024

// Client fetches the current satellite position from the upstream REST
// endpoint with a bounded per-request timeout.
type Client struct {
	url    string
	client *http.Client
	clock  clockwork.Clock
}

func NewClient(url string, timeout time.Duration, clock clockwork.Clock) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout, Transport: transport},
		clock:  clock,
	}
}

// FetchPosition performs one GET against the upstream endpoint and returns
// the normalized event. Transport failures and non-200 statuses wrap
// ErrUnavailable; well-formed responses that fail validation wrap
// model.ErrMalformed.
func (c *Client) FetchPosition(ctx context.Context) (model.PositionEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return model.PositionEvent{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return model.PositionEvent{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.PositionEvent{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return model.PositionEvent{}, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	return model.ParseObservation(body, c.clock.Now())
}
