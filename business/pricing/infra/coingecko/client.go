// Package coingecko adapts the CoinGecko simple price API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/liquidity-vector/business/pricing/app"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/httpclient"
)

const (
	tracerName = "github.com/fd1az/liquidity-vector/business/pricing/infra/coingecko"

	simplePriceEndpoint = "/simple/price"
	providerName        = "coingecko"
)

// Config holds configuration for the CoinGecko client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns the public API settings.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.coingecko.com/api/v3",
		Timeout: 5 * time.Second,
	}
}

// Client implements app.PriceOracle.
type Client struct {
	http   httpclient.Client
	tracer trace.Tracer
}

var _ app.PriceOracle = (*Client)(nil)

// NewClient creates a CoinGecko client. limiter may be nil.
func NewClient(cfg Config, limiter httpclient.Waiter) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	opts := []httpclient.ClientOption{
		httpclient.WithProviderName(providerName),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
		httpclient.WithStatusMapper(mapStatus),
	}
	if limiter != nil {
		opts = append(opts, httpclient.WithLimiter(limiter))
	}

	client, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{http: client, tracer: otel.Tracer(tracerName)}, nil
}

func mapStatus(status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return apperror.RateLimited(providerName)
	case status == http.StatusBadRequest:
		return apperror.New(apperror.CodeValidationError,
			apperror.WithContext(fmt.Sprintf("coingecko rejected request: %s", body)))
	default:
		return apperror.New(apperror.CodePriceFetchFailed,
			apperror.WithContext(fmt.Sprintf("coingecko status %d", status)))
	}
}

// USDPrice returns the USD price of tokenID.
func (c *Client) USDPrice(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "coingecko.usd_price",
		trace.WithAttributes(attribute.String("token", tokenID)),
	)
	defer span.End()

	var out map[string]map[string]json.Number
	_, err := c.http.NewRequest().
		SetQueryParam("ids", tokenID).
		SetQueryParam("vs_currencies", "usd").
		SetResult(&out).
		Get(ctx, simplePriceEndpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		if apperror.IsAppError(err) {
			return decimal.Zero, err
		}
		return decimal.Zero, apperror.External(apperror.CodePriceFetchFailed, tokenID, err)
	}

	raw, ok := out[tokenID]["usd"]
	if !ok {
		err := apperror.New(apperror.CodeInvalidResponse,
			apperror.WithContext(fmt.Sprintf("no usd price for %s", tokenID)))
		span.RecordError(err)
		return decimal.Zero, err
	}

	price, err := decimal.NewFromString(raw.String())
	if err != nil || !price.IsPositive() {
		return decimal.Zero, apperror.New(apperror.CodeInvalidResponse,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("bad price %q for %s", raw, tokenID)))
	}

	span.SetAttributes(attribute.String("usd", price.String()))
	span.SetStatus(codes.Ok, "fetched")
	return price, nil
}
