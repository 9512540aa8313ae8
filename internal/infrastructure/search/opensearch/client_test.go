package opensearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InsureDoc-Intelligence/internal/config"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := newClient(config.OpenSearchConfig{
		Addresses: []string{srv.URL},
		Index:     "docs-test",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresAddresses(t *testing.T) {
	_, err := NewClient(config.OpenSearchConfig{}, logging.NewNopLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewClient_DefaultIndex(t *testing.T) {
	c, err := newClient(config.OpenSearchConfig{Addresses: []string{"http://localhost:9200"}}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, defaultIndex, c.Index())
}

func TestPing(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":{"number":"2.11.0"}}`))
		})
		require.NoError(t, c.Ping(context.Background()))
		assert.True(t, c.IsHealthy())
	})

	t.Run("unavailable", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		err := c.Ping(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
		assert.False(t, c.IsHealthy())
	})
}
