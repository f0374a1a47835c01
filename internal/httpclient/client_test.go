package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fd1az/liquidity-vector/internal/apperror"
)

type countingWaiter struct{ n atomic.Int32 }

func (w *countingWaiter) Wait(context.Context) error {
	w.n.Add(1)
	return nil
}

func TestRequestDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/quote" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("fromChain"); got != "1" {
			t.Errorf("fromChain = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		w.Write([]byte(`{"tool":"stargate"}`))
	}))
	defer srv.Close()

	waiter := &countingWaiter{}
	c, err := NewInstrumentedClient(
		WithBaseURL(srv.URL+"/v1"),
		WithProviderName("lifi"),
		WithHeaders(map[string]string{"Accept": "application/json"}),
		WithLimiter(waiter),
	)
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Tool string `json:"tool"`
	}
	resp, err := c.NewRequest().
		SetQueryParam("fromChain", "1").
		SetResult(&out).
		Get(context.Background(), "/quote")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusOK || out.Tool != "stargate" {
		t.Errorf("status %d, tool %q", resp.StatusCode, out.Tool)
	}
	if waiter.n.Load() != 1 {
		t.Errorf("limiter waited %d times", waiter.n.Load())
	}
}

func TestRequestStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/limited":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
		}
	}))
	defer srv.Close()

	c, err := NewInstrumentedClient(
		WithBaseURL(srv.URL),
		WithProviderName("coingecko"),
		WithStatusMapper(func(status int, _ []byte) error {
			if status == http.StatusTooManyRequests {
				return apperror.RateLimited("coingecko")
			}
			return nil
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.NewRequest().Get(context.Background(), "/limited")
	if !apperror.IsRateLimited(err) {
		t.Errorf("expected rate limited error, got %v", err)
	}

	_, err = c.NewRequest().Get(context.Background(), "/down")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway || se.Body != "upstream down" {
		t.Errorf("expected StatusError 502, got %v", err)
	}
	if StatusCodeOf(err) != http.StatusBadGateway {
		t.Errorf("StatusCodeOf = %d", StatusCodeOf(err))
	}
}

func TestRequestInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c, err := NewInstrumentedClient(WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	var out map[string]any
	_, err = c.NewRequest().SetResult(&out).Get(context.Background(), "/")
	if apperror.GetCode(err) != apperror.CodeInvalidResponse {
		t.Errorf("expected invalid response, got %v", err)
	}
}

func TestRequestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"0x1"}`))
	}))
	defer srv.Close()

	c, err := NewInstrumentedClient(WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Result string `json:"result"`
	}
	_, err = c.NewRequest().
		SetBody(map[string]any{"method": "eth_chainId"}).
		SetResult(&out).
		Post(context.Background(), "")
	if err != nil || out.Result != "0x1" {
		t.Errorf("result %q, err %v", out.Result, err)
	}
}
