// Package appwrite is a minimal HTTP client for an Appwrite-compatible
// remote document store: accounts and sessions, database documents with
// equality-filter queries, and URL derivation for initials avatars and
// stored files. One Client is constructed per process and shared; it is
// read-only after construction.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config carries the full connection surface: endpoint, project and
// platform identifiers, the server API key, and the per-resource
// collection/bucket identifiers.
type Config struct {
	Endpoint             string // base URL including the version prefix, e.g. https://cloud.appwrite.io/v1
	Project              string
	Platform             string // application/bundle identifier
	Key                  string // server API key; used when no session is set
	DatabaseID           string
	UserCollectionID     string
	ServicesCollectionID string
	BookingCollectionID  string
	StorageBucketID      string
	Timeout              time.Duration
}

type Client struct {
	cfg     Config
	http    *http.Client
	session string
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("appwrite: endpoint required")
	}
	if strings.TrimSpace(cfg.Project) == "" {
		return nil, errors.New("appwrite: project required")
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

func (c *Client) Config() Config { return c.cfg }

// WithSession returns a view of the client that authenticates with the
// given session secret instead of the server key. The underlying HTTP
// transport is shared, so views are cheap to create per request.
func (c *Client) WithSession(secret string) *Client {
	clone := *c
	clone.session = secret
	return &clone
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Type: "encode", Message: err.Error(), wrapped: err}
		}
		rd = bytes.NewReader(data)
	}

	u := c.cfg.Endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return &Error{Type: "request", Message: err.Error(), wrapped: err}
	}
	req.Header.Set("X-Appwrite-Project", c.cfg.Project)
	req.Header.Set("X-Appwrite-Response-Format", "1.5.0")
	if c.cfg.Platform != "" {
		req.Header.Set("Origin", "appwrite-client://"+c.cfg.Platform)
	}
	if c.session != "" {
		req.Header.Set("X-Appwrite-Session", c.session)
	} else if c.cfg.Key != "" {
		req.Header.Set("X-Appwrite-Key", c.cfg.Key)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Type: "network", Message: err.Error(), wrapped: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Type: "decode", Message: err.Error(), wrapped: err}
	}
	return nil
}

// ReadyCheck reports whether the remote store is reachable. Any HTTP
// response counts as reachable; only transport failures are errors.
func ReadyCheck(c *Client) func(context.Context) error {
	return func(ctx context.Context) error {
		err := c.call(ctx, http.MethodGet, "/health", nil, nil, nil)
		var aerr *Error
		if errors.As(err, &aerr) && aerr.Status > 0 {
			return nil
		}
		return err
	}
}
