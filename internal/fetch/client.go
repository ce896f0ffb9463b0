// Package fetch performs the plain HTTP GETs every section relies on.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/reinarrr/TLR-web-cfpages/internal/metrics"
)

// maxBody caps every document read from upstream.
const maxBody = 2 << 20

// ErrNotFound is returned when the upstream answers 404.
var ErrNotFound = errors.New("document not found")

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d from %s: %s", e.Status, e.URL, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

type Client struct {
	HTTPClient *http.Client
}

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// JSON fetches rawURL and decodes the body into out.
func (c *Client) JSON(ctx context.Context, source, rawURL string, out any) error {
	body, err := c.get(ctx, source, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode json from %s: %w", rawURL, err)
	}
	return nil
}

// Text fetches rawURL and returns the body as a string.
func (c *Client) Text(ctx context.Context, source, rawURL string) (string, error) {
	body, err := c.get(ctx, source, rawURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, source, rawURL string) (body []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveFetch(source, time.Since(start), err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer res.Body.Close()

	body, err = io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet := body
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, &StatusError{URL: rawURL, Status: res.StatusCode, Body: string(snippet)}
	}
	return body, nil
}
