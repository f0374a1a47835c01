// Package defillama adapts the DefiLlama yields API.
package defillama

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/liquidity-vector/business/yield/app"
	"github.com/fd1az/liquidity-vector/business/yield/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/httpclient"
)

const (
	tracerName = "github.com/fd1az/liquidity-vector/business/yield/infra/defillama"

	poolsEndpoint = "/pools"
	providerName  = "defillama"
)

// Config holds configuration for the yields client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns the public API settings.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://yields.llama.fi",
		Timeout: 5 * time.Second,
	}
}

// Client implements app.PoolSource.
type Client struct {
	http   httpclient.Client
	tracer trace.Tracer
}

var _ app.PoolSource = (*Client)(nil)

// NewClient creates a yields client.
func NewClient(cfg Config) (*Client, error) {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(providerName),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
		httpclient.WithStatusMapper(mapStatus),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{http: client, tracer: otel.Tracer(tracerName)}, nil
}

func mapStatus(status int, _ []byte) error {
	if status == http.StatusTooManyRequests {
		return apperror.RateLimited(providerName)
	}
	return apperror.New(apperror.CodePoolsFetchFailed,
		apperror.WithContext(fmt.Sprintf("defillama status %d", status)))
}

type poolsResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Chain   string   `json:"chain"`
		Project string   `json:"project"`
		Symbol  string   `json:"symbol"`
		TVLUSD  *float64 `json:"tvlUsd"`
		APY     *float64 `json:"apy"`
		Pool    string   `json:"pool"`
	} `json:"data"`
}

// Pools lists every pool. A null APY or TVL reads as zero.
func (c *Client) Pools(ctx context.Context) ([]domain.RawPool, error) {
	ctx, span := c.tracer.Start(ctx, "defillama.pools")
	defer span.End()

	var out poolsResponse
	_, err := c.http.NewRequest().
		SetResult(&out).
		Get(ctx, poolsEndpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.External(apperror.CodePoolsFetchFailed, "pools", err)
	}

	pools := make([]domain.RawPool, 0, len(out.Data))
	for _, p := range out.Data {
		pools = append(pools, domain.RawPool{
			Chain:   p.Chain,
			Project: p.Project,
			Symbol:  p.Symbol,
			TVLUSD:  value(p.TVLUSD),
			APY:     value(p.APY),
			ID:      p.Pool,
		})
	}

	span.SetAttributes(attribute.Int("pools", len(pools)))
	span.SetStatus(codes.Ok, "fetched")
	return pools, nil
}

func value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
