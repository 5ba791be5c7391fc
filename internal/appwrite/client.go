// Package appwrite is a small REST client for the parts of the Appwrite API
// the app uses: account, tables and health.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	headerProject = "X-Appwrite-Project"
	headerKey     = "X-Appwrite-Key"
	headerSession = "X-Appwrite-Session"
)

// Observer wraps every backend call, typically to record metrics.
type Observer interface {
	ObserveBackend(op string, fn func() error) error
}

type Config struct {
	Endpoint   string
	ProjectID  string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Observer   Observer
	// Breaker, when set, fails calls fast while the backend is down.
	Breaker *Breaker
}

type Client struct {
	endpoint string
	project  string
	apiKey   string
	http     *http.Client
	observer Observer
	breaker  *Breaker
	tracer   trace.Tracer

	mu      sync.RWMutex
	session string
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		project:  cfg.ProjectID,
		apiKey:   cfg.APIKey,
		http:     hc,
		observer: cfg.Observer,
		breaker:  cfg.Breaker,
		tracer:   otel.Tracer("github.com/geocoder89/todohub/internal/appwrite"),
	}
}

// Clone returns a client sharing configuration and transport but holding no
// session. Each browser session works on its own clone.
func (c *Client) Clone() *Client {
	return &Client{
		endpoint: c.endpoint,
		project:  c.project,
		apiKey:   c.apiKey,
		http:     c.http,
		observer: c.observer,
		breaker:  c.breaker,
		tracer:   c.tracer,
	}
}

func (c *Client) SetSession(secret string) {
	c.mu.Lock()
	c.session = secret
	c.mu.Unlock()
}

func (c *Client) SessionSecret() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.session
}

func (c *Client) ProjectID() string {
	return c.project
}

// Ping checks the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Version string `json:"version"`
	}

	_, err := c.call(ctx, request{op: "health.version", method: http.MethodGet, path: "/health/version"}, &out)

	return err
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	// admin requests carry the API key instead of the user's session
	admin bool
}

func (c *Client) call(ctx context.Context, req request, out any) (http.Header, error) {
	var header http.Header

	run := func() error {
		h, err := c.do(ctx, req, out)
		header = h
		return err
	}

	if c.breaker != nil {
		inner := run
		run = func() error { return c.breaker.Do(inner) }
	}

	if c.observer == nil {
		return header, run()
	}

	return header, c.observer.ObserveBackend(req.op, run)
}

func (c *Client) do(ctx context.Context, req request, out any) (http.Header, error) {
	ctx, span := c.tracer.Start(ctx, "appwrite "+req.op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	target := c.endpoint + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", req.op, err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", req.op, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(headerProject, c.project)

	if req.admin {
		if c.apiKey != "" {
			httpReq.Header.Set(headerKey, c.apiKey)
		}
	} else if secret := c.SessionSecret(); secret != "" {
		httpReq.Header.Set(headerSession, secret)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(
		attribute.String("appwrite.op", req.op),
		attribute.Int("http.response.status_code", resp.StatusCode),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.Header, fmt.Errorf("read %s response: %w", req.op, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp.StatusCode, raw)
		span.SetStatus(codes.Error, apiErr.Type)
		return resp.Header, apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return resp.Header, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return resp.Header, fmt.Errorf("decode %s response: %w", req.op, err)
	}

	return resp.Header, nil
}
