// Package app assesses bridge risk from the bridge profiles and live
// enrichment sources.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	bridgeDomain "github.com/fd1az/liquidity-vector/business/bridge/domain"
	"github.com/fd1az/liquidity-vector/business/risk/domain"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/fetch"
	"github.com/fd1az/liquidity-vector/internal/logger"
)

// tvlKey caches the whole bridges listing under one entry.
const tvlKey = "all"

// Sources groups the enrichment dependencies of the engine.
type Sources struct {
	TVL       TVLSource
	Explorer  ContractExplorer
	Clock     BlockClock
	Exploits  ExploitDB
	Volumes   *fetch.Fetcher[[]domain.BridgeVolume]
	Contracts *fetch.Fetcher[domain.ContractInfo]
}

// Engine scores bridges. Every value it scores comes from the best tier
// available: live (or cached), then the bridge profile, then the defaults.
type Engine struct {
	profiles []bridgeDomain.Profile
	src      Sources
	now      func() time.Time
	log      logger.LoggerInterface
}

// NewEngine creates an Engine over the known bridge profiles.
func NewEngine(profiles []bridgeDomain.Profile, src Sources, log logger.LoggerInterface) *Engine {
	return &Engine{
		profiles: profiles,
		src:      src,
		now:      time.Now,
		log:      log,
	}
}

// Assess scores the bridge used between src and dst. bridgeName, usually the
// bridge the quote aggregator picked, selects the profile when it matches
// one; otherwise the route decides.
func (e *Engine) Assess(ctx context.Context, src, dst chain.Chain, bridgeName string) domain.Assessment {
	if src == dst {
		return domain.NativeAssessment()
	}

	profile, known := bridgeDomain.Select(e.profiles, src, dst, bridgeName)
	if !known {
		profile = unknownProfile(bridgeName)
	}

	var (
		volumes  fetch.Result[[]domain.BridgeVolume]
		contract fetch.Result[domain.ContractInfo]
		history  domain.ExploitHistory
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		volumes = e.volumes(gctx)
		return nil
	})
	if known && profile.HasContract() {
		g.Go(func() error {
			contract = e.contract(gctx, profile.ContractChain, profile.Contract)
			return nil
		})
	} else {
		contract = fetch.Failed[domain.ContractInfo](nil)
	}
	g.Go(func() error {
		history = e.src.Exploits.History(profile.Name)
		return nil
	})
	_ = g.Wait()

	a := domain.Assessment{
		Profile:       profile,
		BridgeLabel:   profile.Label(),
		EstimatedTime: bridgeDomain.EstimatedTime(profile, src, dst),
		Exploits:      history,
		Provenance:    domain.Provenance{Exploits: fetch.SourceDefault},
	}

	match, listed := domain.BridgeVolume{}, false
	if !volumes.Failed() {
		match, listed = domain.MatchVolume(volumes.Value, profile)
	}
	switch {
	case listed:
		a.TVLUSD, a.Provenance.TVL = match.LastDailyVolume, volumes.Source
	case known:
		a.TVLUSD, a.Provenance.TVL = profile.TVLUSD, fetch.SourceFallback
	default:
		a.TVLUSD, a.Provenance.TVL = domain.DefaultTVLUSD, fetch.SourceDefault
	}

	switch {
	case !contract.Failed():
		a.Verified, a.Provenance.Verification = contract.Value.Verified, contract.Source
		a.AgeYears = profile.AgeYears
		if contract.Value.HasCreation() {
			a.AgeYears = contract.Value.AgeYears(e.now())
		}
	case known:
		a.Verified, a.AgeYears, a.Provenance.Verification = true, profile.AgeYears, fetch.SourceFallback
	default:
		a.Verified, a.AgeYears, a.Provenance.Verification = true, domain.DefaultAgeYears, fetch.SourceDefault
	}

	a.Breakdown = domain.Score(domain.Inputs{
		Architecture:   profile.Architecture,
		TVLUSD:         a.TVLUSD,
		AgeYears:       a.AgeYears,
		HasExploits:    a.HasExploits(),
		ExploitLossUSD: history.NetLossUSD,
		Verified:       a.Verified,
		Source:         src,
		Dest:           dst,
	})

	e.log.Info(ctx, "risk assessed",
		"bridge", profile.Name,
		"score", a.Breakdown.OverallScore,
		"level", a.Breakdown.Level,
		"tvl_source", a.Provenance.TVL,
		"verification_source", a.Provenance.Verification)

	return a
}

func (e *Engine) volumes(ctx context.Context) fetch.Result[[]domain.BridgeVolume] {
	res := e.src.Volumes.Fetch(ctx, tvlKey, e.src.TVL.BridgeVolumes)
	if res.Failed() {
		e.log.Warn(ctx, "bridge tvl unavailable", "error", res.Err)
	}
	return res
}

// contract reads verification from the explorer and the creation time from
// the chain. An unknown creation time leaves CreatedAt zero.
func (e *Engine) contract(ctx context.Context, c chain.Chain, addr common.Address) fetch.Result[domain.ContractInfo] {
	key := c.Slug() + ":" + strings.ToLower(addr.Hex())
	res := e.src.Contracts.Fetch(ctx, key, func(ctx context.Context) (domain.ContractInfo, error) {
		info, err := e.src.Explorer.Contract(ctx, c, addr)
		if err != nil {
			return domain.ContractInfo{}, err
		}
		if info.CreationTx == "" {
			return info, nil
		}
		created, err := e.src.Clock.TxTime(ctx, c, common.HexToHash(info.CreationTx))
		if err != nil {
			e.log.Warn(ctx, "contract creation time unavailable", "chain", c, "tx", info.CreationTx, "error", err)
			return info, nil
		}
		info.CreatedAt = created
		return info, nil
	})
	if res.Failed() {
		e.log.Warn(ctx, "contract verification unavailable", "chain", c, "address", addr.Hex(), "error", res.Err)
	}
	return res
}

func unknownProfile(name string) bridgeDomain.Profile {
	if strings.TrimSpace(name) == "" {
		name = "Unknown"
	}
	return bridgeDomain.Profile{Name: name, Architecture: bridgeDomain.Liquidity}
}
