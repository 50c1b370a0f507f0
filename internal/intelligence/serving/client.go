// Package serving is the HTTP client for the model-serving sidecar that
// hosts the non-deterministic NLP models: zero-shot phrase classification,
// sentiment, semantic similarity, and keyword ranking.  The deterministic
// pipeline never depends on it; callers feed it post-exclusion text and pass
// its outputs through unmodified.
package serving

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// Client talks to the serving sidecar.
type Client interface {
	Health(ctx context.Context) error
	Classify(ctx context.Context, texts, labels []string) ([]Classification, error)
	Sentiment(ctx context.Context, texts []string) ([]SentimentScore, error)
	Similarity(ctx context.Context, a, b string) (float64, error)
	RankKeywords(ctx context.Context, topic string, keywords []string) ([]RankedKeyword, error)
}

type clientImpl struct {
	baseURL    string
	httpClient *http.Client
	batchSize  int
	retryMax   int
	retryWait  time.Duration
	logger     logging.Logger
}

// Option customizes the client.
type Option func(*clientImpl)

// WithHTTPClient swaps the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientImpl) { c.httpClient = hc }
}

// WithBatchSize bounds how many texts go into a single request.  Results
// are per-item, so batch boundaries never change the output, only the
// number of round trips.
func WithBatchSize(n int) Option {
	return func(c *clientImpl) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithRetry sets how many times a failed call is retried and the wait
// between attempts.  Transport errors and 5xx responses are retried;
// 4xx responses are not.
func WithRetry(max int, wait time.Duration) Option {
	return func(c *clientImpl) {
		if max >= 0 {
			c.retryMax = max
		}
		if wait > 0 {
			c.retryWait = wait
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l logging.Logger) Option {
	return func(c *clientImpl) { c.logger = l }
}

// NewClient validates baseURL and builds a client.
func NewClient(baseURL string, opts ...Option) (Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New(errors.CodeConfiguration, "serving base URL is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, errors.Newf(errors.CodeConfiguration, "serving base URL %q must be http or https", baseURL)
	}
	c := &clientImpl{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		batchSize:  32,
		retryMax:   2,
		retryWait:  500 * time.Millisecond,
		logger:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *clientImpl) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "build health request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CodeServingUnhealthy, "serving health check failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.CodeServingUnhealthy, "serving health check returned %d", resp.StatusCode)
	}
	return nil
}

func (c *clientImpl) Classify(ctx context.Context, texts, labels []string) ([]Classification, error) {
	if len(labels) == 0 {
		return nil, errors.New(errors.CodeInvalidParam, "classification labels are required")
	}
	out := make([]Classification, 0, len(texts))
	for _, batch := range chunk(texts, c.batchSize) {
		var resp classifyResponse
		if err := c.post(ctx, "/v1/classify", classifyRequest{Texts: batch, Labels: labels}, &resp); err != nil {
			return nil, err
		}
		if len(resp.Results) != len(batch) {
			return nil, errors.Newf(errors.CodeServiceBadPayload,
				"classify returned %d results for %d texts", len(resp.Results), len(batch))
		}
		out = append(out, resp.Results...)
	}
	return out, nil
}

func (c *clientImpl) Sentiment(ctx context.Context, texts []string) ([]SentimentScore, error) {
	out := make([]SentimentScore, 0, len(texts))
	for _, batch := range chunk(texts, c.batchSize) {
		var resp sentimentResponse
		if err := c.post(ctx, "/v1/sentiment", sentimentRequest{Texts: batch}, &resp); err != nil {
			return nil, err
		}
		if len(resp.Results) != len(batch) {
			return nil, errors.Newf(errors.CodeServiceBadPayload,
				"sentiment returned %d results for %d texts", len(resp.Results), len(batch))
		}
		out = append(out, resp.Results...)
	}
	return out, nil
}

func (c *clientImpl) Similarity(ctx context.Context, a, b string) (float64, error) {
	var resp similarityResponse
	if err := c.post(ctx, "/v1/similarity", similarityRequest{A: a, B: b}, &resp); err != nil {
		return 0, err
	}
	if resp.Similarity < 0 || resp.Similarity > 1 {
		return 0, errors.Newf(errors.CodeServiceBadPayload,
			"similarity %f outside [0,1]", resp.Similarity)
	}
	return resp.Similarity, nil
}

func (c *clientImpl) RankKeywords(ctx context.Context, topic string, keywords []string) ([]RankedKeyword, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	var resp rankResponse
	if err := c.post(ctx, "/v1/rank_keywords", rankRequest{Topic: topic, Keywords: keywords}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *clientImpl) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "encode serving request")
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying serving call",
				logging.String("path", path),
				logging.Int("attempt", attempt),
				logging.Err(lastErr),
			)
			select {
			case <-time.After(c.retryWait):
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), errors.CodeExternalService, fmt.Sprintf("serving call %s canceled", path))
			}
		}

		retry, err := c.attempt(ctx, path, payload, out)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// attempt issues one request.  The bool result reports whether the failure
// is worth retrying.
func (c *clientImpl) attempt(ctx context.Context, path string, payload []byte, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return false, errors.Wrap(err, errors.CodeInternal, "build serving request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, errors.Wrap(err, errors.CodeExternalService, fmt.Sprintf("serving call %s failed", path))
	}
	defer resp.Body.Close()

	c.logger.Debug("serving call finished",
		logging.String("path", path),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode >= http.StatusInternalServerError, c.errorFromResponse(path, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, errors.Wrap(err, errors.CodeServiceBadPayload, fmt.Sprintf("decode serving response from %s", path))
	}
	return false, nil
}

func (c *clientImpl) errorFromResponse(path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && er.Message != "" {
		return errors.Newf(errors.CodeExternalService,
			"serving call %s failed with %d: %s", path, resp.StatusCode, er.Message)
	}
	return errors.Newf(errors.CodeExternalService,
		"serving call %s failed with %d", path, resp.StatusCode)
}

func chunk(items []string, size int) [][]string {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]string{items}
	}
	var batches [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
