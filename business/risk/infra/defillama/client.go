// Package defillama adapts the DefiLlama bridges API.
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

	"github.com/fd1az/liquidity-vector/business/risk/app"
	"github.com/fd1az/liquidity-vector/business/risk/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/httpclient"
)

const (
	tracerName = "github.com/fd1az/liquidity-vector/business/risk/infra/defillama"

	bridgesEndpoint = "/bridges"
	providerName    = "defillama"
)

// Config holds configuration for the bridges client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns the public API settings.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://bridges.llama.fi",
		Timeout: 10 * time.Second,
	}
}

// Client implements app.TVLSource.
type Client struct {
	http   httpclient.Client
	tracer trace.Tracer
}

var _ app.TVLSource = (*Client)(nil)

// NewClient creates a bridges client.
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
	return apperror.New(apperror.CodeTVLFetchFailed,
		apperror.WithContext(fmt.Sprintf("defillama status %d", status)))
}

type bridgesResponse struct {
	Bridges []struct {
		Name             string   `json:"name"`
		DisplayName      string   `json:"displayName"`
		LastDailyVolume  *float64 `json:"lastDailyVolume"`
		CurrentDayVolume *float64 `json:"currentDayVolume"`
		Change1d         *float64 `json:"change_1d"`
		Chains           []string `json:"chains"`
	} `json:"bridges"`
}

// BridgeVolumes lists every bridge. Missing numbers read as zero and a
// missing display name repeats the name.
func (c *Client) BridgeVolumes(ctx context.Context) ([]domain.BridgeVolume, error) {
	ctx, span := c.tracer.Start(ctx, "defillama.bridges")
	defer span.End()

	var out bridgesResponse
	_, err := c.http.NewRequest().
		SetResult(&out).
		Get(ctx, bridgesEndpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.External(apperror.CodeTVLFetchFailed, "bridges", err)
	}

	volumes := make([]domain.BridgeVolume, 0, len(out.Bridges))
	for _, b := range out.Bridges {
		v := domain.BridgeVolume{
			Name:            b.Name,
			DisplayName:     b.DisplayName,
			LastDailyVolume: value(b.LastDailyVolume),
			CurrentVolume:   value(b.CurrentDayVolume),
			Change1d:        value(b.Change1d),
			Chains:          b.Chains,
		}
		if v.Name == "" {
			v.Name = "Unknown"
		}
		if v.DisplayName == "" {
			v.DisplayName = v.Name
		}
		volumes = append(volumes, v)
	}

	span.SetAttributes(attribute.Int("bridges", len(volumes)))
	span.SetStatus(codes.Ok, "fetched")
	return volumes, nil
}

func value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
