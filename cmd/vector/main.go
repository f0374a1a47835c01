// Package main is the entry point for the liquidity migration analyzer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fd1az/liquidity-vector/business/blockchain"
	"github.com/fd1az/liquidity-vector/business/bridge"
	"github.com/fd1az/liquidity-vector/business/pricing"
	"github.com/fd1az/liquidity-vector/business/risk"
	"github.com/fd1az/liquidity-vector/business/route"
	routeDI "github.com/fd1az/liquidity-vector/business/route/di"
	"github.com/fd1az/liquidity-vector/business/yield"
	"github.com/fd1az/liquidity-vector/internal/apm"
	"github.com/fd1az/liquidity-vector/internal/circuitbreaker"
	"github.com/fd1az/liquidity-vector/internal/config"
	"github.com/fd1az/liquidity-vector/internal/health"
	"github.com/fd1az/liquidity-vector/internal/logger"
	"github.com/fd1az/liquidity-vector/internal/metrics"
	"github.com/fd1az/liquidity-vector/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type options struct {
	configPath string
	source     string
	dest       string
	capital    float64
	apy        float64
	pool       string
	project    string
	symbol     string
	tvl        float64
	wallet     string

	pools    bool
	watch    bool
	interval time.Duration
	json     bool
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.source, "source", "", "Chain the capital sits on")
	flag.StringVar(&opts.dest, "dest", "", "Chain to migrate to")
	flag.Float64Var(&opts.capital, "capital", 0, "Capital in USD (default from config)")
	flag.Float64Var(&opts.apy, "apy", -1, "Target pool APY in percent (default from pool or config)")
	flag.StringVar(&opts.pool, "pool", "", "Target pool id on the yield aggregator")
	flag.StringVar(&opts.project, "project", "", "Target protocol name")
	flag.StringVar(&opts.symbol, "symbol", "", "Token symbol")
	flag.Float64Var(&opts.tvl, "tvl", 0, "Target pool TVL in USD")
	flag.StringVar(&opts.wallet, "wallet", "", "Wallet used for quotes and gas probes")
	flag.BoolVar(&opts.pools, "pools", false, "List the top USDC pools and exit")
	flag.BoolVar(&opts.watch, "watch", false, "Re-run the analysis on an interval in a dashboard")
	flag.DurationVar(&opts.interval, "interval", time.Minute, "Watch mode refresh interval")
	flag.BoolVar(&opts.json, "json", false, "Print results as JSON")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("liquidity-vector %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The dashboard owns the terminal.
	var out io.Writer = os.Stderr
	if opts.watch {
		out = io.Discard
	}
	log := logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	log.Info(ctx, "starting liquidity vector", "version", version, "environment", cfg.App.Environment)

	traceProvider, err := apm.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer traceProvider.Stop()

	meterProvider, err := metrics.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to set up metrics: %w", err)
	}
	defer meterProvider.Shutdown(context.Background())

	if cfg.Telemetry.Enabled && cfg.Telemetry.PrometheusPort > 0 {
		ms := metrics.NewServer(cfg.Telemetry.PrometheusPort, log)
		ms.Start()
		defer ms.Stop(context.Background())
	}

	mono, err := monolith.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&pricing.Module{},    // native token prices
		&blockchain.Module{}, // gas, depends on pricing
		&bridge.Module{},     // quotes and profiles
		&risk.Module{},       // depends on bridge and blockchain
		&yield.Module{},      // pool discovery
		&route.Module{},      // depends on all of the above
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if cfg.Health.Enabled {
		hs := health.NewServer(cfg.Health.Port, version, log)
		inspector := routeDI.GetCircuitInspector(mono.Services())
		hs.RegisterCheck("circuits", func(context.Context) (bool, string) {
			states := inspector.CircuitStates()
			for _, b := range states.Breakers {
				if b.State == circuitbreaker.StateOpen {
					return false, b.Name + " circuit open"
				}
			}
			return true, fmt.Sprintf("%d breakers closed", len(states.Breakers))
		})
		if mono.SharedConnected() {
			hs.RegisterCheck("shared_cache", func(ctx context.Context) (bool, string) {
				if err := mono.PingShared(ctx); err != nil {
					return false, err.Error()
				}
				return true, "connected"
			})
		}
		hs.RegisterReport("/circuits", func(context.Context) any {
			return inspector.CircuitStates()
		})
		if err := hs.Start(); err != nil {
			log.Warn(ctx, "failed to start health server", "error", err)
		} else {
			defer hs.Stop(context.Background())
		}
	}

	if opts.watch {
		return runWatch(ctx, mono, modules, opts)
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	if opts.pools {
		return listPools(ctx, mono.Services(), opts.json, os.Stdout)
	}
	return runOnce(ctx, mono.Services(), opts)
}
