package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ixp-tracker/core/metrics"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// Registry endpoints.
const (
	EndpointIX       = "ix"
	EndpointNet      = "net"
	EndpointNetIXLan = "netixlan"
)

// ErrFetch reports a transport or decode failure that aborted a fetch.
var ErrFetch = errors.New("registry fetch failed")

// Processor consumes one page of records. Pages already processed stay applied
// when a later page fails.
type Processor func(ctx context.Context, records []Record) error

// Client pages through registry endpoints.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// A wrapper around zap.Logger to make it compatible with
// retryablehttp.LeveledLogger interface.
type retryableHTTPLogger struct {
	inner *zap.Logger
}

func (r retryableHTTPLogger) Error(msg string, args ...any) { r.inner.Sugar().Errorw(msg, args...) }
func (r retryableHTTPLogger) Info(msg string, args ...any)  { r.inner.Sugar().Infow(msg, args...) }
func (r retryableHTTPLogger) Warn(msg string, args ...any)  { r.inner.Sugar().Warnw(msg, args...) }
func (r retryableHTTPLogger) Debug(msg string, args ...any) { r.inner.Sugar().Debugw(msg, args...) }

// NewClient creates a registry client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = cfg.RetryMax
	httpClient.HTTPClient.Timeout = cfg.Timeout()
	httpClient.Logger = retryableHTTPLogger{inner: logger}
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

type page struct {
	Data []Record `json:"data"`
}

// Fetch requests endpoint and hands every page to process.
// With pageSize > 0 it pages with limit/skip until an empty page is returned,
// otherwise it issues a single request. since, when set, filters on updated__gte.
func (c *Client) Fetch(ctx context.Context, endpoint string, pageSize int, since *time.Time, process Processor) error {
	query := url.Values{}
	if since != nil {
		query.Set("updated__gte", since.UTC().Format("2006-01-02"))
	}
	skip := 0

	for {
		if pageSize > 0 {
			query.Set("limit", strconv.Itoa(pageSize))
			query.Set("skip", strconv.Itoa(skip))
		}

		records, err := c.get(ctx, endpoint, query)
		if err != nil {
			return err
		}
		metrics.PagesFetched.WithLabelValues(endpoint).Inc()
		c.logger.Debug("Fetched registry page",
			zap.String("endpoint", endpoint),
			zap.Int("skip", skip),
			zap.Int("records", len(records)))

		if err := process(ctx, records); err != nil {
			return fmt.Errorf("failed to process %s page at skip %d: %w", endpoint, skip, err)
		}

		if pageSize <= 0 || len(records) == 0 {
			return nil
		}
		skip += pageSize
	}
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]Record, error) {
	target := c.baseURL + "/" + endpoint
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Api-Key "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.FetchFailures.WithLabelValues(endpoint, "transport").Inc()
		c.logger.Warn("Cannot retrieve data", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		metrics.FetchFailures.WithLabelValues(endpoint, "status").Inc()
		c.logger.Warn("Cannot retrieve data", zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, endpoint, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var body page
	if err := dec.Decode(&body); err != nil {
		metrics.FetchFailures.WithLabelValues(endpoint, "decode").Inc()
		c.logger.Warn("Cannot decode json data", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, endpoint, err)
	}
	return body.Data, nil
}
