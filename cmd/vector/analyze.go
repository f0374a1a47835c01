package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/fd1az/liquidity-vector/business/route/app"
	routeDI "github.com/fd1az/liquidity-vector/business/route/di"
	"github.com/fd1az/liquidity-vector/business/route/domain"
	"github.com/fd1az/liquidity-vector/business/route/infra"
	yieldApp "github.com/fd1az/liquidity-vector/business/yield/app"
	yieldDI "github.com/fd1az/liquidity-vector/business/yield/di"
	yieldDomain "github.com/fd1az/liquidity-vector/business/yield/domain"
	"github.com/fd1az/liquidity-vector/internal/config"
	"github.com/fd1az/liquidity-vector/internal/di"
	"github.com/fd1az/liquidity-vector/internal/logger"
	"github.com/fd1az/liquidity-vector/internal/monolith"
)

// analyzer runs one analysis plus its pre-flight checks for the flags.
type analyzer struct {
	orchestrator *app.Orchestrator
	sentinel     *app.Sentinel
	inspector    *app.CircuitInspector
	yield        *yieldApp.YieldService
	defaults     config.AnalysisConfig
	log          logger.LoggerInterface
	opts         options
}

func newAnalyzer(sr di.ServiceRegistry, opts options) *analyzer {
	return &analyzer{
		orchestrator: routeDI.GetOrchestrator(sr),
		sentinel:     routeDI.GetSentinel(sr),
		inspector:    routeDI.GetCircuitInspector(sr),
		yield:        yieldDI.GetYieldService(sr),
		defaults:     di.GetToken(sr, monolith.ConfigToken).Analysis,
		log:          di.GetToken(sr, monolith.LoggerToken),
		opts:         opts,
	}
}

func (a *analyzer) run(ctx context.Context) (app.Analysis, error) {
	var pools []yieldDomain.Pool
	if a.opts.pool != "" {
		var err error
		if pools, err = a.yield.TopPools(ctx); err != nil {
			a.log.Warn(ctx, "pool lookup failed, using flags only", "pool", a.opts.pool, "error", err)
		}
	}

	req, err := buildParams(a.opts, a.defaults, pools).Request()
	if err != nil {
		return app.Analysis{}, err
	}

	res, err := a.orchestrator.Analyze(ctx, req)
	if err != nil {
		return app.Analysis{}, err
	}

	in := app.PreflightInputFor(req)
	in.RiskScore = res.RiskScore
	return app.Analysis{Result: res, Preflight: a.sentinel.Preflight(ctx, in)}, nil
}

// buildParams merges the flags with the matching pool and the configured
// defaults, in that order of precedence.
func buildParams(opts options, defaults config.AnalysisConfig, pools []yieldDomain.Pool) domain.Params {
	p := domain.Params{
		Source:  opts.source,
		Dest:    opts.dest,
		Capital: opts.capital,
		PoolID:  opts.pool,
		PoolAPY: opts.apy,
		Project: opts.project,
		Symbol:  opts.symbol,
		PoolTVL: opts.tvl,
		Wallet:  opts.wallet,
	}

	for _, pool := range pools {
		if pool.ID != opts.pool {
			continue
		}
		if p.Dest == "" {
			p.Dest = pool.Chain.String()
		}
		if p.PoolAPY < 0 {
			p.PoolAPY = pool.APY
		}
		if p.Project == "" {
			p.Project = pool.Project
		}
		if p.Symbol == "" {
			p.Symbol = pool.Symbol
		}
		if p.PoolTVL == 0 {
			p.PoolTVL = pool.TVLUSD
		}
		break
	}

	if p.Capital == 0 {
		p.Capital = defaults.Capital
	}
	if p.PoolAPY < 0 {
		p.PoolAPY = defaults.PoolAPY
	}
	if p.Wallet == "" {
		p.Wallet = defaults.DefaultWallet
	}
	return p
}

func runOnce(ctx context.Context, sr di.ServiceRegistry, opts options) error {
	a := newAnalyzer(sr, opts)

	var reporter app.Reporter = infra.NewConsoleReporter()
	if opts.json {
		reporter = infra.NewJSONReporter()
	}
	if err := reporter.Start(ctx); err != nil {
		return err
	}
	defer reporter.Stop()

	analysis, err := a.run(ctx)
	if err != nil {
		reporter.ReportError(err)
		return err
	}
	reporter.Report(analysis)
	reporter.UpdateCircuits(a.inspector.CircuitStates())
	return nil
}

func listPools(ctx context.Context, sr di.ServiceRegistry, asJSON bool, out io.Writer) error {
	pools, err := yieldDI.GetYieldService(sr).TopPools(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(pools)
	}
	fmt.Fprintln(out, poolsTable(pools))
	return nil
}

func poolsTable(pools []yieldDomain.Pool) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#374151"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("CHAIN", "PROJECT", "SYMBOL", "APY", "TVL", "POOL")

	for _, p := range pools {
		t.Row(
			p.Chain.String(),
			p.Project,
			p.Symbol,
			decimal.NewFromFloat(p.APY).StringFixed(2)+"%",
			"$"+compactUSD(p.TVLUSD),
			p.ID,
		)
	}
	return t.Render()
}

func compactUSD(v float64) string {
	d := decimal.NewFromFloat(v)
	switch {
	case v >= 1e9:
		return d.Div(decimal.NewFromInt(1e9)).StringFixed(2) + "B"
	case v >= 1e6:
		return d.Div(decimal.NewFromInt(1e6)).StringFixed(2) + "M"
	case v >= 1e3:
		return d.Div(decimal.NewFromInt(1e3)).StringFixed(1) + "K"
	default:
		return d.StringFixed(0)
	}
}
