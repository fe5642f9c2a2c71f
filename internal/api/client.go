package api

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
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/config"
)

const requestIDHeader = "X-Request-Id"

// Error is a non-2xx answer from the backend. Message carries the backend's
// {"error": ...} text and is empty when the body had none.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, msg)
}

// StatusOf returns the HTTP status of a backend error, or 0 when err did not
// come from a backend response.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the error text the backend sent, or "" when it sent none.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client talks to the Grace Mobility REST backend.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg config.BackendConfig, log zerolog.Logger) *Client {
	return NewClientWithHTTP(cfg.BaseURL, &http.Client{Timeout: cfg.RequestTimeout()}, log)
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

type call struct {
	method string
	path   string
	token  string
	query  url.Values
	body   any
	out    any
}

func (c *Client) do(ctx context.Context, cl call) error {
	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", cl.method, cl.path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", cl.method, cl.path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestIDFrom(ctx))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", cl.method).
		Str("path", cl.path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Str("request_id", req.Header.Get(requestIDHeader)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if cl.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", cl.method, cl.path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var eb errorBody
	msg := ""
	if err := json.Unmarshal(raw, &eb); err == nil {
		msg = eb.Error
		if msg == "" {
			msg = eb.Message
		}
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}

type requestIDKey struct{}

// WithRequestID makes outgoing backend calls reuse id, so a gateway request
// and the calls it causes share one X-Request-Id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
