package main

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/liquidity-vector/business/route/infra"
	"github.com/fd1az/liquidity-vector/internal/di"
	"github.com/fd1az/liquidity-vector/internal/monolith"
	"github.com/fd1az/liquidity-vector/pkg/ui"
)

type starter interface {
	StartModules(ctx context.Context, modules ...monolith.Module) error
	Services() di.ServiceRegistry
}

func runWatch(ctx context.Context, mono starter, modules []monolith.Module, opts options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.interval <= 0 {
		opts.interval = time.Minute
	}

	var paused atomic.Bool
	refresh := make(chan struct{}, 1)
	ui.OnPause = paused.Store
	ui.OnRefresh = func() {
		select {
		case refresh <- struct{}{}:
		default:
		}
	}

	// Create the program first so startup progress shows immediately.
	p := tea.NewProgram(ui.New(), tea.WithAltScreen(), tea.WithContext(ctx))
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		errCh <- watchLoop(ctx, mono, modules, opts, &paused, refresh)
	}()

	_, err := p.Run()
	cancel()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return <-errCh
}

func watchLoop(ctx context.Context, mono starter, modules []monolith.Module, opts options, paused *atomic.Bool, refresh <-chan struct{}) error {
	for _, m := range modules {
		name := moduleName(m)
		ui.Send(ui.StartupMsg{Step: name, Status: "connecting"})
		if err := mono.StartModules(ctx, m); err != nil {
			ui.Send(ui.StartupMsg{Step: name, Status: "failed"})
			ui.Send(ui.ErrorMsg{Error: err})
			return fmt.Errorf("failed to start modules: %w", err)
		}
		ui.Send(ui.StartupMsg{Step: name, Status: "connected"})
	}

	reporter := infra.NewTUIReporter()
	if err := reporter.Start(ctx); err != nil {
		return err
	}
	defer reporter.Stop()

	a := newAnalyzer(mono.Services(), opts)
	cycle := func() {
		analysis, err := a.run(ctx)
		if err != nil {
			if ctx.Err() == nil {
				reporter.ReportError(err)
			}
		} else {
			reporter.Report(analysis)
		}
		reporter.UpdateCircuits(a.inspector.CircuitStates())
	}

	cycle()

	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-refresh:
			cycle()
		case <-ticker.C:
			if paused.Load() {
				reporter.UpdateCircuits(a.inspector.CircuitStates())
				continue
			}
			cycle()
		}
	}
}

// moduleName turns *pricing.Module into "pricing".
func moduleName(m monolith.Module) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", m), "*")
	return strings.TrimSuffix(name, ".Module")
}
