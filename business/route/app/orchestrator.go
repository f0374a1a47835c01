package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	blockchainDomain "github.com/fd1az/liquidity-vector/business/blockchain/domain"
	bridgeDomain "github.com/fd1az/liquidity-vector/business/bridge/domain"
	"github.com/fd1az/liquidity-vector/business/route/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/fetch"
	"github.com/fd1az/liquidity-vector/internal/logger"
)

const instrumentationName = "github.com/fd1az/liquidity-vector/business/route"

// Orchestrator runs route analyses.
type Orchestrator struct {
	gas    GasEstimator
	quotes QuoteSource
	risk   RiskAssessor
	log    logger.LoggerInterface

	tracer   trace.Tracer
	analyses metric.Int64Counter
	duration metric.Float64Histogram

	now   func() time.Time
	newID func() uuid.UUID
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(gas GasEstimator, quotes QuoteSource, risk RiskAssessor, log logger.LoggerInterface) *Orchestrator {
	meter := otel.Meter(instrumentationName)
	analyses, _ := meter.Int64Counter("route.analyses",
		metric.WithDescription("Route analyses by outcome"))
	duration, _ := meter.Float64Histogram("route.analysis.duration",
		metric.WithDescription("Route analysis duration"),
		metric.WithUnit("s"))

	return &Orchestrator{
		gas:      gas,
		quotes:   quotes,
		risk:     risk,
		log:      log,
		tracer:   otel.Tracer(instrumentationName),
		analyses: analyses,
		duration: duration,
		now:      time.Now,
		newID:    uuid.New,
	}
}

// Analyze prices moving req's capital to its destination and back, scores
// the bridge and derives the economics. Quote failures fall back to an
// estimated quote; a gas estimate failure on either chain fails the
// analysis, since an understated gas cost would misstate the result.
func (o *Orchestrator) Analyze(ctx context.Context, req domain.Request) (domain.Result, error) {
	if err := req.Validate(); err != nil {
		return domain.Result{}, err
	}

	ctx, span := o.tracer.Start(ctx, "route.Analyze", trace.WithAttributes(
		attribute.String("route.source", req.Source.String()),
		attribute.String("route.dest", req.Dest.String()),
	))
	defer span.End()
	start := time.Now()

	if req.SameChain() {
		o.record(ctx, start, "native")
		span.SetStatus(codes.Ok, "")
		return domain.BuildResult(o.newID(), o.now(), domain.NativeInputs(req)), nil
	}

	var (
		srcGas, dstGas blockchainDomain.GasEstimate
		srcErr, dstErr error
		entry, exit    fetch.Result[bridgeDomain.QuoteSet]
	)

	// Branches store their own outcome and never fail the group.
	var g errgroup.Group
	g.Go(func() error {
		srcGas, srcErr = o.gas.Estimate(ctx, req.Source, req.Wallet)
		return nil
	})
	g.Go(func() error {
		dstGas, dstErr = o.gas.Estimate(ctx, req.Dest, req.Wallet)
		return nil
	})
	g.Go(func() error {
		entry = o.quotes.Quote(ctx, req.Source, req.Dest, req.CapitalUSD, req.Wallet)
		return nil
	})
	g.Go(func() error {
		exit = o.quotes.Quote(ctx, req.Dest, req.Source, req.CapitalUSD, req.Wallet)
		return nil
	})
	_ = g.Wait()

	if srcErr != nil || dstErr != nil {
		cause := errors.Join(srcErr, dstErr)
		err := apperror.DependencyUnavailable("gas", cause).InSpan(ctx)
		o.log.Error(ctx, "route analysis failed: gas unavailable",
			append([]any{"source", req.Source, "dest", req.Dest}, err.ToLog()...)...)
		span.RecordError(cause)
		span.SetStatus(codes.Error, "gas unavailable")
		o.record(ctx, start, "gas_unavailable")
		return domain.Result{}, err
	}

	entry = o.quoteOrFallback(ctx, entry, req, "entry")
	exit = o.quoteOrFallback(ctx, exit, req, "exit")
	quote := entry.Value.Selected

	assessment := o.risk.Assess(ctx, req.Source, req.Dest, quote.BridgeName)

	costs := domain.RoundTrip(
		domain.NewLeg(quote.TotalFeeUSD, srcGas.TotalCostUSD, dstGas.TotalCostUSD),
		domain.NewLeg(
			exit.Value.Selected.TotalFeeUSD,
			dstGas.TotalCostUSD,
			domain.ExitDestGas(srcGas.TotalCostUSD, req.Source, req.Dest),
		),
	)

	result := domain.BuildResult(o.newID(), o.now(), domain.Inputs{
		Request:    req,
		Costs:      costs,
		Quote:      quote,
		Assessment: assessment,
		Provenance: domain.Provenance{
			SourceGas:    srcGas.Source,
			DestGas:      dstGas.Source,
			EntryQuote:   entry.Source,
			ExitQuote:    exit.Source,
			TVL:          assessment.Provenance.TVL,
			Verification: assessment.Provenance.Verification,
			Exploits:     assessment.Provenance.Exploits,
		},
	})

	outcome := "ok"
	if result.Provenance.Degraded() {
		outcome = "degraded"
	}
	o.record(ctx, start, outcome)
	span.SetAttributes(
		attribute.String("route.bridge", result.BridgeName),
		attribute.Int("route.risk_score", result.RiskScore),
		attribute.Bool("route.degraded", outcome == "degraded"),
	)
	span.SetStatus(codes.Ok, "")

	o.log.Info(ctx, "route analyzed",
		"analysis_id", result.AnalysisID,
		"source", req.Source,
		"dest", req.Dest,
		"bridge", result.BridgeName,
		"total_cost", result.TotalCost.StringFixed(2),
		"risk_score", result.RiskScore,
		"outcome", outcome)

	return result, nil
}

func (o *Orchestrator) quoteOrFallback(ctx context.Context, res fetch.Result[bridgeDomain.QuoteSet], req domain.Request, leg string) fetch.Result[bridgeDomain.QuoteSet] {
	if !res.Failed() {
		return res
	}
	o.log.Warn(ctx, "using fallback quote", "leg", leg, "code", apperror.GetCode(res.Err), "error", res.Err)
	return fetch.Fallback(bridgeDomain.FallbackQuote(req.CapitalUSD), res.Err)
}

func (o *Orchestrator) record(ctx context.Context, start time.Time, outcome string) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	o.analyses.Add(ctx, 1, attrs)
	o.duration.Record(ctx, time.Since(start).Seconds(), attrs)
}
