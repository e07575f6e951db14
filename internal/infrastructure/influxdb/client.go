package influxdb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/foorschtbar/BeamerControl/internal/infrastructure/config"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = 10 // seconds

	// retryBufferPoints bounds what is kept while the server is down. At one
	// poll per second this is a bit over an hour.
	retryBufferPoints = 4000
	maxRetries        = 5
	requestTimeout    = 5 // seconds

	msPerSecond = 1000
)

// Client writes projector telemetry to InfluxDB.
//
// The bridge often boots before the network or the server is up, so New
// never contacts the server. Points are batched and the library retries
// them until the retry buffer fills; Ping reports reachability for logs.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	url      string

	closed    atomic.Bool
	closeOnce sync.Once

	mu      sync.RWMutex
	onError func(err error)
}

// New builds a client for cfg without connecting.
//
// Returns:
//   - ErrDisabled when telemetry is switched off
//   - ErrInvalidConfig when the URL, org or bucket is missing
func New(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if cfg.URL == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: url, org and bucket are required", ErrInvalidConfig)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}

	// #nosec G115 -- values forced positive above
	opts := influxdb2.DefaultOptions().
		SetBatchSize(uint(batchSize)).
		SetFlushInterval(uint(flushInterval) * msPerSecond).
		SetRetryBufferLimit(retryBufferPoints).
		SetMaxRetries(maxRetries).
		SetHTTPRequestTimeout(requestTimeout)

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)
	c := &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		url:      cfg.URL,
	}
	go c.forwardErrors(c.writeAPI.Errors())

	return c, nil
}

func (c *Client) forwardErrors(errs <-chan error) {
	for err := range errs {
		c.mu.RLock()
		callback := c.onError
		c.mu.RUnlock()

		if callback != nil {
			callback(err)
		}
	}
}

// Ping asks the server whether it is ready to accept writes.
func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}

	healthy, err := c.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnreachable, c.url, err)
	}
	if !healthy {
		return fmt.Errorf("%w: %s: server not ready", ErrUnreachable, c.url)
	}
	return nil
}

// SetOnError sets the callback for failed batch writes. Writes are
// asynchronous, so this is the only place their errors show up.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	c.onError = callback
	c.mu.Unlock()
}

// Flush sends buffered points now. No-op after Close.
func (c *Client) Flush() {
	if c.closed.Load() {
		return
	}
	c.writeAPI.Flush()
}

// Close flushes what is buffered and releases the client. Safe to call
// more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.writeAPI.Flush()
		c.client.Close()
	})
	return nil
}
