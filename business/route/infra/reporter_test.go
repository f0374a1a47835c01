package infra

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	bridgeDomain "github.com/fd1az/liquidity-vector/business/bridge/domain"
	riskDomain "github.com/fd1az/liquidity-vector/business/risk/domain"
	"github.com/fd1az/liquidity-vector/business/route/app"
	"github.com/fd1az/liquidity-vector/business/route/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/circuitbreaker"
	"github.com/fd1az/liquidity-vector/internal/fetch"
	"github.com/fd1az/liquidity-vector/pkg/ui"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleAnalysis() app.Analysis {
	req := domain.Request{
		Source:     chain.Ethereum,
		Dest:       chain.Arbitrum,
		CapitalUSD: d("10000"),
		PoolAPY:    d("36.5"),
		Project:    "aave-v3",
		Symbol:     "USDC",
		PoolTVLUSD: d("500000000"),
	}
	entry := domain.NewLeg(d("10"), d("4"), d("1"))
	exit := domain.NewLeg(d("8"), d("1"), d("10"))

	res := domain.BuildResult(uuid.Nil, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), domain.Inputs{
		Request: req,
		Costs:   domain.RoundTrip(entry, exit),
		Quote:   bridgeDomain.Quote{BridgeName: "across", TotalFeeUSD: d("10")},
		Assessment: riskDomain.Assessment{
			EstimatedTime: "~1 min",
			Breakdown:     riskDomain.Breakdown{OverallScore: 64, Warnings: []string{"Bridge had a past exploit"}},
		},
		Provenance: domain.Provenance{
			SourceGas: fetch.SourceLive, DestGas: fetch.SourceLive,
			EntryQuote: fetch.SourceFallback, ExitQuote: fetch.SourceLive,
			TVL: fetch.SourceLive, Verification: fetch.SourceLive, Exploits: fetch.SourceLive,
		},
	})

	return app.Analysis{
		Result: res,
		Preflight: domain.NewReport([]domain.Check{
			domain.LiquidityDepth(10000, 500000000),
			domain.GasUnverified(),
		}),
	}
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporterTo(&buf)

	r.Report(sampleAnalysis())
	out := buf.String()

	for _, want := range []string{
		"MIGRATION Ethereum -> Arbitrum",
		"across (~1 min)",
		"Round trip:     $34.00",
		"Breakeven:      3.4 days",
		"PROFITABILITY",
		"Score:          64/100 (level 4)",
		"Bridge had a past exploit",
		"Liquidity Depth",
		"Could not verify gas conditions",
		"DATA SOURCES",
		"quotes fallback/live",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestConsoleReporterCircuits(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporterTo(&buf)

	r.UpdateCircuits(app.CircuitStates{Breakers: []circuitbreaker.Snapshot{
		{Name: "rpc", State: circuitbreaker.StateClosed},
		{Name: "lifi", State: circuitbreaker.StateOpen, ConsecutiveFailures: 5, FailMax: 5},
	}})

	out := buf.String()
	if strings.Contains(out, "rpc") {
		t.Error("closed breakers should not be printed")
	}
	if !strings.Contains(out, "circuit lifi") || !strings.Contains(out, "(5/5 failures)") {
		t.Errorf("output = %q", out)
	}
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterTo(&buf)

	r.Report(sampleAnalysis())
	r.ReportError(errors.New("gas unavailable"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var doc struct {
		Result struct {
			TotalCost    string `json:"total_cost"`
			TargetChain  string `json:"target_chain"`
			HasBreakeven bool   `json:"has_breakeven"`
		} `json:"result"`
		Preflight struct {
			Overall string `json:"overall_status"`
		} `json:"preflight"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Result.TotalCost != "34" || doc.Result.TargetChain != "Arbitrum" || !doc.Result.HasBreakeven {
		t.Errorf("result = %+v", doc.Result)
	}
	if doc.Preflight.Overall != "warn" {
		t.Errorf("overall = %q, want warn", doc.Preflight.Overall)
	}
	if lines[1] != `{"error":"gas unavailable"}` {
		t.Errorf("error line = %s", lines[1])
	}
}

func TestJSONReporterCodedError(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterTo(&buf)

	r.ReportError(apperror.DependencyUnavailable("gas", errors.New("rpc down")))

	var doc struct {
		Error  string `json:"error"`
		Detail struct {
			Code    string `json:"code"`
			Context string `json:"context"`
		} `json:"detail"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Detail.Code != string(apperror.CodeDependencyUnavailable) || doc.Detail.Context != "gas" {
		t.Errorf("detail = %+v", doc.Detail)
	}
	if !strings.Contains(doc.Error, "rpc down") {
		t.Errorf("error = %q", doc.Error)
	}
}

func TestTUIReporter(t *testing.T) {
	var sent []any
	r := &TUIReporter{send: func(msg any) { sent = append(sent, msg) }}

	_ = r.Start(t.Context())
	r.Report(sampleAnalysis())
	r.ReportError(errors.New("boom"))
	r.UpdateCircuits(app.CircuitStates{})

	if len(sent) != 4 {
		t.Fatalf("sent %d messages, want 4", len(sent))
	}
	if _, ok := sent[0].(ui.ReadyMsg); !ok {
		t.Errorf("first message = %T", sent[0])
	}
	if m, ok := sent[1].(ui.AnalysisMsg); !ok || m.Analysis.Result.BridgeName != "across" {
		t.Errorf("second message = %#v", sent[1])
	}
	if _, ok := sent[2].(ui.ErrorMsg); !ok {
		t.Errorf("third message = %T", sent[2])
	}
	if _, ok := sent[3].(ui.CircuitsMsg); !ok {
		t.Errorf("fourth message = %T", sent[3])
	}
}
