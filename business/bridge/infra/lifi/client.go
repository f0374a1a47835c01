// Package lifi adapts the Li.Fi quote API.
package lifi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/liquidity-vector/business/bridge/app"
	"github.com/fd1az/liquidity-vector/business/bridge/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/httpclient"
)

const (
	tracerName = "github.com/fd1az/liquidity-vector/business/bridge/infra/lifi"
	meterName  = "github.com/fd1az/liquidity-vector/business/bridge/infra/lifi"

	quoteEndpoint = "/quote"
	providerName  = "lifi"
)

// Config holds configuration for the Li.Fi client.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Slippage decimal.Decimal
}

// DefaultConfig returns the public API settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:  "https://li.quest/v1",
		Timeout:  10 * time.Second,
		Slippage: decimal.RequireFromString("0.005"),
	}
}

type metrics struct {
	quotes   metric.Int64Counter
	feeUSD   metric.Float64Histogram
	duration metric.Int64Histogram
}

// Client implements app.QuoteProvider.
type Client struct {
	http     httpclient.Client
	slippage string
	tracer   trace.Tracer
	metrics  *metrics
}

var _ app.QuoteProvider = (*Client)(nil)

// NewClient creates a Li.Fi client.
func NewClient(cfg Config) (*Client, error) {
	def := DefaultConfig()
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Slippage.IsZero() {
		cfg.Slippage = def.Slippage
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

	m, err := initMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return &Client{
		http:     client,
		slippage: cfg.Slippage.String(),
		tracer:   otel.Tracer(tracerName),
		metrics:  m,
	}, nil
}

func initMetrics() (*metrics, error) {
	meter := otel.Meter(meterName)

	quotes, err := meter.Int64Counter("bridge_quotes_total",
		metric.WithDescription("Bridge quotes requested by outcome"),
		metric.WithUnit("{quote}"),
	)
	if err != nil {
		return nil, err
	}

	feeUSD, err := meter.Float64Histogram("bridge_quote_fee_usd",
		metric.WithDescription("Quoted bridge fee in USD"),
		metric.WithUnit("USD"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Int64Histogram("bridge_quote_duration_seconds",
		metric.WithDescription("Quoted execution duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{quotes: quotes, feeUSD: feeUSD, duration: duration}, nil
}

// mapStatus turns Li.Fi error statuses into routing errors. 4xx bodies that
// talk about the amount or liquidity mean the route exists but cannot carry
// the amount.
func mapStatus(status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return apperror.RateLimited(providerName)
	case status == http.StatusNotFound:
		return apperror.New(apperror.CodeRouteUnavailable, apperror.WithContext("no route found"))
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		lower := bytes.ToLower(body)
		if bytes.Contains(lower, []byte("amount")) || bytes.Contains(lower, []byte("liquidity")) {
			return apperror.New(apperror.CodeInsufficientLiquidity, apperror.WithContext(truncate(body)))
		}
		return apperror.New(apperror.CodeRouteUnavailable, apperror.WithContext(truncate(body)))
	case status >= 400 && status < 500:
		return apperror.New(apperror.CodeRouteUnavailable,
			apperror.WithContext(fmt.Sprintf("lifi status %d", status)))
	default:
		return apperror.External(apperror.CodeQuoteFetchFailed, fmt.Sprintf("lifi status %d", status), nil)
	}
}

func truncate(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}

type quoteResponse struct {
	Tool        string `json:"tool"`
	ToolDetails struct {
		Name string `json:"name"`
	} `json:"toolDetails"`
	Action struct {
		FromAmount *decimal.Decimal `json:"fromAmount"`
	} `json:"action"`
	Estimate struct {
		ToAmount          *decimal.Decimal `json:"toAmount"`
		ToAmountMin       *decimal.Decimal `json:"toAmountMin"`
		ExecutionDuration *decimal.Decimal `json:"executionDuration"`
		GasCosts          []struct {
			AmountUSD *decimal.Decimal `json:"amountUSD"`
		} `json:"gasCosts"`
	} `json:"estimate"`
}

// Quote requests a USDC to USDC route.
func (c *Client) Quote(ctx context.Context, req app.QuoteRequest) (domain.Quote, error) {
	ctx, span := c.tracer.Start(ctx, "lifi.quote",
		trace.WithAttributes(
			attribute.String("from", string(req.From)),
			attribute.String("to", string(req.To)),
			attribute.String("amount_usd", req.AmountUSD.String()),
		),
	)
	defer span.End()

	fromUnits := chain.USDCToBaseUnits(req.AmountUSD)

	var out quoteResponse
	_, err := c.http.NewRequest().
		SetQueryParams(map[string]string{
			"fromChain":   strconv.FormatUint(req.From.ID(), 10),
			"toChain":     strconv.FormatUint(req.To.ID(), 10),
			"fromToken":   req.From.Info().USDC.Hex(),
			"toToken":     req.To.Info().USDC.Hex(),
			"fromAmount":  fromUnits.String(),
			"fromAddress": req.Wallet,
			"slippage":    c.slippage,
		}).
		SetResult(&out).
		Get(ctx, quoteEndpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quote failed")
		c.metrics.quotes.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", string(apperror.GetCode(err))),
		))
		if apperror.IsAppError(err) {
			return domain.Quote{}, err
		}
		return domain.Quote{}, apperror.External(apperror.CodeQuoteFetchFailed,
			fmt.Sprintf("%s->%s", req.From, req.To), err)
	}

	q := parseQuote(out, decimal.NewFromBigInt(fromUnits, 0))

	c.metrics.quotes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	c.metrics.feeUSD.Record(ctx, q.TotalFeeUSD.InexactFloat64(),
		metric.WithAttributes(attribute.String("bridge", q.BridgeName)))
	c.metrics.duration.Record(ctx, int64(q.DurationSec))

	span.SetAttributes(
		attribute.String("bridge", q.BridgeName),
		attribute.String("fee_usd", q.TotalFeeUSD.String()),
	)
	span.SetStatus(codes.Ok, "quoted")
	return q, nil
}

// parseQuote fills missing amounts the way Li.Fi documents them: the input
// amount defaults to what was asked and the outputs default to the input.
func parseQuote(r quoteResponse, requested decimal.Decimal) domain.Quote {
	from := orDefault(r.Action.FromAmount, requested)
	to := orDefault(r.Estimate.ToAmount, from)
	toMin := orDefault(r.Estimate.ToAmountMin, from)

	gas := make([]decimal.Decimal, 0, len(r.Estimate.GasCosts))
	for _, g := range r.Estimate.GasCosts {
		if g.AmountUSD != nil {
			gas = append(gas, *g.AmountUSD)
		}
	}

	duration := 0
	if r.Estimate.ExecutionDuration != nil {
		duration = int(r.Estimate.ExecutionDuration.IntPart())
	}

	name := r.ToolDetails.Name
	if name == "" {
		name = r.Tool
	}
	if name == "" {
		name = "Unknown"
	}

	return domain.NewAggregatorQuote(name, domain.AggregatorAmounts{
		FromAmount:  from,
		ToAmount:    to,
		ToAmountMin: toMin,
		GasCostsUSD: gas,
		DurationSec: duration,
	})
}

func orDefault(v *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if v == nil {
		return def
	}
	return *v
}
