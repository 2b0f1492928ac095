// Package riskapi is the HTTP client for the risk scoring service: predictions,
// feedback and pre-rendered visualizations. Calls are never retried.
package riskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/okian/riskboard/internal/domain/model"
	"github.com/okian/riskboard/pkg/logger"
	"github.com/okian/riskboard/pkg/metrics"
	"github.com/okian/riskboard/pkg/requestid"
)

// Upstream paths.
const (
	PathPredict  = "/predict_default"
	PathFeedback = "/feedback"
	PathDataviz  = "/get_dataviz"
)

// Operation names used in logs and metrics.
const (
	OpPredict  = "predict"
	OpFeedback = "feedback"
	OpDataviz  = "dataviz"
)

const (
	maxErrorBody = 64 << 10
	maxJSONBody  = 4 << 20

	// DefaultMaxMarkupBytes caps a visualization body.
	DefaultMaxMarkupBytes = 32 << 20
)

// Client defines the risk service operations.
type Client interface {
	// Predict fetches the raw prediction for a client.
	Predict(ctx context.Context, id model.ClientID) (model.RawPrediction, error)
	// SendFeedback posts one feedback submission.
	SendFeedback(ctx context.Context, fb model.FeedbackSubmission) error
	// Dataviz fetches embeddable markup for a visualization request.
	Dataviz(ctx context.Context, req model.VisualizationRequest) (string, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each call. Zero keeps the transport default (no timeout).
// It applies on top of WithHTTPClient regardless of order.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxMarkupBytes caps the visualization body. Larger bodies are rejected
// with ErrBodyTooLarge rather than truncated.
func WithMaxMarkupBytes(n int64) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.markupLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *httpClient) {
		if l != nil {
			c.log = l
		}
	}
}

type httpClient struct {
	baseURL     string
	http        *http.Client
	timeout     time.Duration
	markupLimit int64
	log         logger.Logger
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{},
		markupLimit: DefaultMaxMarkupBytes,
		log:         logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

func (c *httpClient) Predict(ctx context.Context, id model.ClientID) (model.RawPrediction, error) {
	q := url.Values{}
	q.Set("client_id", id.String())

	var out model.RawPrediction
	body, err := c.do(ctx, OpPredict, http.MethodGet, PathPredict, q, nil, maxJSONBody)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%s: %w: %v", OpPredict, ErrDecode, err)
	}
	return out, nil
}

func (c *httpClient) SendFeedback(ctx context.Context, fb model.FeedbackSubmission) error {
	payload, err := json.Marshal(fb)
	if err != nil {
		return eris.Wrap(err, "feedback: marshal")
	}
	_, err = c.do(ctx, OpFeedback, http.MethodPost, PathFeedback, nil, payload, maxErrorBody)
	return err
}

func (c *httpClient) Dataviz(ctx context.Context, req model.VisualizationRequest) (string, error) {
	body, err := c.do(ctx, OpDataviz, http.MethodGet, PathDataviz, req.Query(), nil, c.markupLimit)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// do issues one request and returns the body of a 200 answer. A body over
// limit is an error.
func (c *httpClient) do(ctx context.Context, op, method, path string, q url.Values, payload []byte, limit int64) ([]byte, error) {
	ctx, reqID := requestid.Ensure(ctx)
	start := time.Now()

	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, &TransportError{Operation: op, Err: eris.Wrapf(err, "%s: build request", op)}
	}
	req.Header.Set(requestid.Header, reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(ctx, op, method, path, reqID, 0, "transport_error", start, err)
		return nil, &TransportError{Operation: op, Err: eris.Wrapf(err, "%s %s", method, path)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Operation: op, StatusCode: resp.StatusCode, Body: string(body)}
		c.observe(ctx, op, method, path, reqID, resp.StatusCode, "http_error", start, apiErr)
		return nil, apiErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		c.observe(ctx, op, method, path, reqID, resp.StatusCode, "transport_error", start, err)
		return nil, &TransportError{Operation: op, Err: eris.Wrapf(err, "%s %s: read body", method, path)}
	}
	if int64(len(body)) > limit {
		tooLarge := fmt.Errorf("%s: %w: over %d bytes", op, ErrBodyTooLarge, limit)
		c.observe(ctx, op, method, path, reqID, resp.StatusCode, "too_large", start, tooLarge)
		return nil, tooLarge
	}
	c.observe(ctx, op, method, path, reqID, resp.StatusCode, "ok", start, nil)
	return body, nil
}

func (c *httpClient) observe(ctx context.Context, op, method, path, reqID string, status int, outcome string, start time.Time, err error) {
	elapsed := time.Since(start)
	metrics.RecordUpstream(op, outcome, float64(elapsed.Milliseconds()))

	fields := []logger.Field{
		logger.String("operation", op),
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", status),
		logger.Duration("elapsed", elapsed),
		logger.String("request_id", reqID),
	}
	if err != nil {
		c.log.Warn(ctx, "risk service call failed", append(fields, logger.Error(err))...)
		return
	}
	c.log.Debug(ctx, "risk service call", fields...)
}
