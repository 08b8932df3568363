package bazaar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
  "success": true,
  "lastUpdated": 1748779200000,
  "products": {
    "FINE_RUBY_GEM": {
      "product_id": "FINE_RUBY_GEM",
      "sell_summary": [{"amount": 10, "pricePerUnit": 4900.1, "orders": 1}],
      "buy_summary": [],
      "quick_status": {"productId": "FINE_RUBY_GEM", "sellPrice": 4900.1, "buyPrice": 5012.7, "buyVolume": 1200}
    },
    "ENCHANTED_COAL": {
      "product_id": "ENCHANTED_COAL",
      "quick_status": {"productId": "ENCHANTED_COAL", "buyPrice": 3.2}
    }
  }
}`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, nil)
	snap, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, snap, 2)

	ruby := snap["FINE_RUBY_GEM"]
	assert.True(t, ruby.QuickStatus.BuyPrice.Equal(decimal.RequireFromString("5012.7")))
	assert.Equal(t, "FINE_RUBY_GEM", ruby.ProductID)
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, nil).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadStatus)
}

func TestFetchUnsuccessful(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "cause": "rate limited"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, nil).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrUnsuccessful)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestFetchMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": tru`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, nil).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode bazaar")
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second, nil).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bazaar request")
}
