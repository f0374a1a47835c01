package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	bridgeDomain "github.com/fd1az/liquidity-vector/business/bridge/domain"
	"github.com/fd1az/liquidity-vector/business/risk/domain"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/circuitbreaker"
	"github.com/fd1az/liquidity-vector/internal/fetch"
	"github.com/fd1az/liquidity-vector/internal/logger"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

type fakeTVL struct {
	calls   atomic.Int32
	volumes []domain.BridgeVolume
	err     error
}

func (f *fakeTVL) BridgeVolumes(context.Context) ([]domain.BridgeVolume, error) {
	f.calls.Add(1)
	return f.volumes, f.err
}

type fakeExplorer struct {
	calls atomic.Int32
	info  domain.ContractInfo
	err   error
	last  common.Address
}

func (f *fakeExplorer) Contract(_ context.Context, _ chain.Chain, addr common.Address) (domain.ContractInfo, error) {
	f.calls.Add(1)
	f.last = addr
	return f.info, f.err
}

type fakeClock struct {
	at  time.Time
	err error
}

func (f fakeClock) TxTime(context.Context, chain.Chain, common.Hash) (time.Time, error) {
	return f.at, f.err
}

type fakeExploits map[string]domain.ExploitHistory

func (f fakeExploits) History(name string) domain.ExploitHistory { return f[name] }

type fixture struct {
	tvl      *fakeTVL
	explorer *fakeExplorer
	clock    fakeClock
	exploits fakeExploits
	profiles []bridgeDomain.Profile
}

func newFixture() *fixture {
	return &fixture{
		tvl:      &fakeTVL{},
		explorer: &fakeExplorer{},
		clock:    fakeClock{at: now.AddDate(0, 0, -1095)},
		exploits: fakeExploits{},
		profiles: bridgeDomain.DefaultProfiles(),
	}
}

func (f *fixture) engine() *Engine {
	llama := circuitbreaker.New(circuitbreaker.Config{Name: "defillama", FailMax: 5, ResetTimeout: time.Minute})
	explorer := circuitbreaker.New(circuitbreaker.Config{Name: "explorer", FailMax: 5, ResetTimeout: time.Minute})

	e := NewEngine(f.profiles, Sources{
		TVL:       f.tvl,
		Explorer:  f.explorer,
		Clock:     f.clock,
		Exploits:  f.exploits,
		Volumes:   fetch.New[[]domain.BridgeVolume](fetch.CacheConfig{Name: "bridge_tvl", Capacity: 8, TTL: time.Minute}, llama),
		Contracts: fetch.New[domain.ContractInfo](fetch.CacheConfig{Name: "contract", Capacity: 8, TTL: time.Minute}, explorer),
	}, logger.NewNop())
	e.now = func() time.Time { return now }
	return e
}

func TestAssessSameChain(t *testing.T) {
	f := newFixture()
	a := f.engine().Assess(context.Background(), chain.Polygon, chain.Polygon, "Across")

	if a.Breakdown.OverallScore != 100 || a.BridgeLabel != "Native Transfer" || a.EstimatedTime != "Instant" {
		t.Errorf("assessment = %+v", a)
	}
	if f.tvl.calls.Load() != 0 || f.explorer.calls.Load() != 0 {
		t.Error("same chain must not reach any source")
	}
}

func TestAssessLive(t *testing.T) {
	f := newFixture()
	f.tvl.volumes = []domain.BridgeVolume{
		{Name: "hop", DisplayName: "Hop", LastDailyVolume: 9e6},
		{Name: "across", DisplayName: "Across", LastDailyVolume: 1.2e9},
	}
	f.explorer.info = domain.ContractInfo{Verified: true, CreationTx: "0xabc"}
	e := f.engine()

	a := e.Assess(context.Background(), chain.Ethereum, chain.Arbitrum, "across")

	if a.Profile.Name != "Across Protocol" || a.BridgeLabel != "Across Protocol (Intent)" || a.EstimatedTime != "~1 min" {
		t.Errorf("profile %q label %q time %q", a.Profile.Name, a.BridgeLabel, a.EstimatedTime)
	}
	if a.TVLUSD != 1.2e9 || a.AgeYears != 3 || !a.Verified {
		t.Errorf("tvl %v age %v verified %v", a.TVLUSD, a.AgeYears, a.Verified)
	}
	want := domain.Provenance{TVL: fetch.SourceLive, Verification: fetch.SourceLive, Exploits: fetch.SourceDefault}
	if a.Provenance != want {
		t.Errorf("provenance = %+v", a.Provenance)
	}
	// Intent 22 + age 12 + tvl 20 + no exploits 20 + verified 10 + mature 5
	if a.Breakdown.OverallScore != 89 || a.Breakdown.Level != 2 {
		t.Errorf("score %d level %d", a.Breakdown.OverallScore, a.Breakdown.Level)
	}
	if f.explorer.last != a.Profile.Contract {
		t.Errorf("explorer asked about %s", f.explorer.last.Hex())
	}

	again := e.Assess(context.Background(), chain.Ethereum, chain.Arbitrum, "across")
	if again.Provenance.TVL != fetch.SourceCached || again.Provenance.Verification != fetch.SourceCached {
		t.Errorf("second provenance = %+v", again.Provenance)
	}
	if f.tvl.calls.Load() != 1 || f.explorer.calls.Load() != 1 {
		t.Errorf("tvl calls %d explorer calls %d", f.tvl.calls.Load(), f.explorer.calls.Load())
	}
}

func TestAssessFallsBackToProfile(t *testing.T) {
	f := newFixture()
	f.tvl.err = errors.New("connection refused")
	f.explorer.err = errors.New("connection refused")

	a := f.engine().Assess(context.Background(), chain.Ethereum, chain.Arbitrum, "Across")

	if a.TVLUSD != 450e6 || a.AgeYears != 2.5 || !a.Verified {
		t.Errorf("tvl %v age %v verified %v", a.TVLUSD, a.AgeYears, a.Verified)
	}
	if a.Provenance.TVL != fetch.SourceFallback || a.Provenance.Verification != fetch.SourceFallback {
		t.Errorf("provenance = %+v", a.Provenance)
	}
	// Intent 22 + age 10 + tvl 12 + 20 + 10 + 5
	if a.Breakdown.OverallScore != 79 {
		t.Errorf("score = %d", a.Breakdown.OverallScore)
	}
}

func TestAssessUnlistedBridgeKeepsProfileTVL(t *testing.T) {
	f := newFixture()
	f.tvl.volumes = []domain.BridgeVolume{{Name: "celer", DisplayName: "cBridge", LastDailyVolume: 1}}
	f.explorer.info = domain.ContractInfo{Verified: false}

	a := f.engine().Assess(context.Background(), chain.Ethereum, chain.Arbitrum, "Hop")

	if a.TVLUSD != 65e6 || a.Provenance.TVL != fetch.SourceFallback {
		t.Errorf("tvl %v from %s", a.TVLUSD, a.Provenance.TVL)
	}
	// Verified comes from the explorer; without a creation time the profile age stands.
	if a.Verified || a.AgeYears != 4 || a.Provenance.Verification != fetch.SourceLive {
		t.Errorf("verified %v age %v from %s", a.Verified, a.AgeYears, a.Provenance.Verification)
	}
	found := false
	for _, w := range a.Breakdown.Warnings {
		if w == "Contract not verified on block explorer" {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %q", a.Breakdown.Warnings)
	}
}

func TestAssessCreationTimeFailureUsesProfileAge(t *testing.T) {
	f := newFixture()
	f.explorer.info = domain.ContractInfo{Verified: true, CreationTx: "0xdef"}
	f.clock.err = errors.New("not found")

	a := f.engine().Assess(context.Background(), chain.Ethereum, chain.Arbitrum, "Synapse")
	if a.AgeYears != 3.5 || a.Provenance.Verification != fetch.SourceLive {
		t.Errorf("age %v from %s", a.AgeYears, a.Provenance.Verification)
	}
}

func TestAssessExploitHistory(t *testing.T) {
	f := newFixture()
	f.tvl.err = errors.New("down")
	f.exploits["Nomad"] = domain.NewExploitHistory([]domain.ExploitRecord{
		{Protocol: "Nomad", LostUSD: 190e6, RecoveredUSD: 36e6},
	})

	a := f.engine().Assess(context.Background(), chain.Arbitrum, chain.Optimism, "nomad")

	if !a.HasExploits() || a.Breakdown.Factors[domain.FactorExploits] != 0 {
		t.Errorf("exploit points = %d", a.Breakdown.Factors[domain.FactorExploits])
	}
	if f.explorer.calls.Load() != 0 {
		t.Error("profile without contract must not reach the explorer")
	}
	if a.Provenance.Verification != fetch.SourceFallback {
		t.Errorf("verification source = %s", a.Provenance.Verification)
	}
}

func TestAssessWithoutProfiles(t *testing.T) {
	f := newFixture()
	f.profiles = nil
	f.tvl.err = errors.New("down")

	a := f.engine().Assess(context.Background(), chain.Base, chain.Avalanche, "Mystery")

	if a.BridgeLabel != "Mystery (Liquidity)" {
		t.Errorf("label = %q", a.BridgeLabel)
	}
	if a.TVLUSD != domain.DefaultTVLUSD || a.AgeYears != domain.DefaultAgeYears || !a.Verified {
		t.Errorf("tvl %v age %v verified %v", a.TVLUSD, a.AgeYears, a.Verified)
	}
	if a.Provenance.TVL != fetch.SourceDefault || a.Provenance.Verification != fetch.SourceDefault {
		t.Errorf("provenance = %+v", a.Provenance)
	}
	// Liquidity 15 + age 4 + tvl 8 + 20 + 10 + newer chains 1
	if a.Breakdown.OverallScore != 58 || a.Breakdown.Level != 4 {
		t.Errorf("score %d level %d", a.Breakdown.OverallScore, a.Breakdown.Level)
	}
}
