// Package opensearch indexes analyzed documents and finds similar ones with
// more_like_this queries.
package opensearch

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/opensearch-project/opensearch-go/v3"
	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/turtacn/InsureDoc-Intelligence/internal/config"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

var ErrInvalidConfig = errors.New(errors.ErrCodeValidation, "opensearch addresses required")

const (
	defaultIndex          = "insuredoc-documents"
	defaultRequestTimeout = 10 * time.Second
	defaultMaxRetries     = 3
)

// Client is an OpenSearch connection bound to the documents index.
type Client struct {
	api     *opensearchapi.Client
	index   string
	timeout time.Duration
	logger  logging.Logger
	healthy atomic.Bool
}

// NewClient creates the client and verifies the cluster answers a ping.
func NewClient(cfg config.OpenSearchConfig, logger logging.Logger) (*Client, error) {
	c, err := newClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}
	logger.Info("OpenSearch client connected",
		logging.Strings("addresses", cfg.Addresses),
		logging.String("index", c.index))
	return c, nil
}

func newClient(cfg config.OpenSearchConfig, logger logging.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, ErrInvalidConfig
	}
	if cfg.Index == "" {
		cfg.Index = defaultIndex
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: cfg.RequestTimeout,
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for dev clusters
	}

	api, err := opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearch.Config{
			Addresses:     cfg.Addresses,
			Username:      cfg.Username,
			Password:      cfg.Password,
			Transport:     transport,
			MaxRetries:    defaultMaxRetries,
			RetryOnStatus: []int{502, 503, 504, 429},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchError, "failed to create opensearch client")
	}
	return &Client{api: api, index: cfg.Index, timeout: cfg.RequestTimeout, logger: logger}, nil
}

// Index returns the documents index name.
func (c *Client) Index() string { return c.index }

// Ping checks the cluster.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.api.Ping(ctx, nil)
	if err != nil {
		c.healthy.Store(false)
		c.logger.Warn("OpenSearch ping failed", logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "opensearch unreachable")
	}
	if resp.IsError() {
		c.healthy.Store(false)
		return errors.Newf(errors.ErrCodeServiceUnavailable, "opensearch ping returned %d", resp.StatusCode)
	}
	c.healthy.Store(true)
	return nil
}

// IsHealthy reports the result of the last ping.
func (c *Client) IsHealthy() bool {
	return c.healthy.Load()
}
