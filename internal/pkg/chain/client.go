package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/lidofinance/blockview/internal/connectors/metrics"
	"github.com/lidofinance/blockview/internal/pkg/chain/entity"
)

const RetryDelay = 75 * time.Millisecond
const MaxDelay = 5 * time.Second

// Caller sends one JSON-RPC request and returns the raw result.
type Caller interface {
	Send(ctx context.Context, method string, params []any) (json.RawMessage, error)
}

// Client is a JSON-RPC 2.0 client bound to one node endpoint. It is safe for
// concurrent use.
type Client struct {
	jsonRpcUrl  string
	httpClient  *http.Client
	metrics     *metrics.Store
	log         *slog.Logger
	limiter     *rate.Limiter
	maxAttempts uint

	lastID atomic.Uint64
}

type Option func(*Client)

// WithMaxAttempts enables retries of temporary transport failures.
func WithMaxAttempts(attempts uint) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limiter.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			burst := int(perSecond)
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

func NewClient(jsonRpcUrl string, httpClient *http.Client, metricsStore *metrics.Store, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		jsonRpcUrl:  jsonRpcUrl,
		httpClient:  httpClient,
		metrics:     metricsStore,
		log:         log,
		maxAttempts: 1,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Send issues method with params and returns the raw result. A JSON null
// result is returned as is. Failures are logged and returned to the caller.
func (c *Client) Send(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	result, err := retry.DoWithData(
		func() (json.RawMessage, error) {
			return c.do(ctx, method, params)
		},
		retry.Attempts(c.maxAttempts),
		retry.Delay(RetryDelay),
		retry.MaxDelay(MaxDelay),
		retry.DelayType(retry.CombineDelay(
			retry.BackOffDelay,
			retry.RandomDelay,
		)),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		c.log.Error("Failed to fetch blockchain data",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return result, nil
}

func (c *Client) do(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Method: method, Err: err}
		}
	}

	rpcRequest := entity.RpcRequest{
		JsonRpc: entity.JsonRpcVersion,
		Method:  method,
		Params:  params,
		ID:      c.lastID.Add(1),
	}

	payload, marshalErr := json.Marshal(rpcRequest)
	if marshalErr != nil {
		return nil, fmt.Errorf("could not marshal %s request: %w", method, marshalErr)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.jsonRpcUrl, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	status := metrics.StatusFail
	start := time.Now()
	defer func() {
		c.metrics.SummaryHandlers.With(prometheus.Labels{metrics.Method: method}).Observe(time.Since(start).Seconds())
		c.metrics.RpcRequests.With(prometheus.Labels{metrics.Method: method, metrics.Status: status}).Inc()
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Method: method, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("could not read response body: %w", err)}
	}

	var p entity.RpcResponse[json.RawMessage]
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("could not unmarshal response: %w", err)}
	}

	if p.Error != nil {
		return nil, &RpcError{Method: method, Code: p.Error.Code, Message: p.Error.Message}
	}

	if len(p.Result) == 0 {
		return nil, fmt.Errorf("%s rpcResponse.Result is missing. payload %s: %w", method, string(payload), ErrEmptyResponse)
	}

	status = metrics.StatusOk
	return p.Result, nil
}

// Call sends method and unmarshals the result into T. A null result yields
// (nil, nil).
func Call[T any](ctx context.Context, caller Caller, method string, params ...any) (*T, error) {
	raw, err := caller.Send(ctx, method, params)
	if err != nil {
		return nil, err
	}

	if isNull(raw) {
		return nil, nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("could not unmarshal %s result: %w", method, err)
	}

	return &v, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
