package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/liquidity-vector/internal/apperror"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestUSDPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simple/price" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("ids") != "avalanche-2" || r.URL.Query().Get("vs_currencies") != "usd" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"avalanche-2":{"usd":35.12}}`))
	})

	price, err := c.USDPrice(context.Background(), "avalanche-2")
	if err != nil {
		t.Fatal(err)
	}
	if !price.Equal(decimal.RequireFromString("35.12")) {
		t.Errorf("price = %s", price)
	}
}

func TestUSDPriceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"rate limited", http.StatusTooManyRequests, ``, apperror.IsRateLimited},
		{"server error", http.StatusBadGateway, ``, func(err error) bool {
			return apperror.GetCode(err) == apperror.CodePriceFetchFailed
		}},
		{"missing token", http.StatusOK, `{}`, func(err error) bool {
			return apperror.GetCode(err) == apperror.CodeInvalidResponse
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.USDPrice(context.Background(), "ethereum")
			if err == nil || !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}
