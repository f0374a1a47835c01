package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/liquidity-vector/business/route/domain"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/logger"
)

// PreflightInput is what the pre-flight checks look at.
type PreflightInput struct {
	AmountUSD  decimal.Decimal
	PoolTVLUSD decimal.Decimal
	Chain      chain.Chain
	Project    string
	RiskScore  int
}

// PreflightInputFor describes req with the default protocol score.
func PreflightInputFor(req domain.Request) PreflightInput {
	return PreflightInput{
		AmountUSD:  req.CapitalUSD,
		PoolTVLUSD: req.PoolTVLUSD,
		Chain:      req.Dest,
		Project:    req.Project,
		RiskScore:  domain.DefaultProtocolScore,
	}
}

type check func(ctx context.Context) (domain.Check, error)

// Sentinel runs the advisory go/no-go checks before a migration.
type Sentinel struct {
	gas GasPricer
	log logger.LoggerInterface
}

// NewSentinel creates a Sentinel.
func NewSentinel(gas GasPricer, log logger.LoggerInterface) *Sentinel {
	return &Sentinel{gas: gas, log: log}
}

// Preflight runs the liquidity, protocol, concentration and gas checks in
// parallel. Checks come back in that order whatever their completion order.
func (s *Sentinel) Preflight(ctx context.Context, in PreflightInput) domain.Report {
	amount := in.AmountUSD.InexactFloat64()
	tvl := in.PoolTVLUSD.InexactFloat64()
	project := in.Project
	if project == "" {
		project = "Target protocol"
	}

	report := domain.NewReport(s.run(ctx, []check{
		func(context.Context) (domain.Check, error) { return domain.LiquidityDepth(amount, tvl), nil },
		func(context.Context) (domain.Check, error) { return domain.ProtocolSafety(project, in.RiskScore), nil },
		func(context.Context) (domain.Check, error) { return domain.Concentration(amount, tvl), nil },
		s.gasCheck(in.Chain),
	}))

	s.log.Info(ctx, "preflight complete", "chain", in.Chain, "overall", report.Overall)
	return report
}

func (s *Sentinel) run(ctx context.Context, checks []check) []domain.Check {
	out := make([]domain.Check, len(checks))

	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					out[i] = domain.ErrorCheck(fmt.Errorf("%v", r))
				}
			}()
			res, err := c(ctx)
			if err != nil {
				s.log.Warn(ctx, "preflight check failed", "index", i, "error", err)
				res = domain.ErrorCheck(err)
			}
			out[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Sentinel) gasCheck(c chain.Chain) check {
	return func(ctx context.Context) (domain.Check, error) {
		if err := ctx.Err(); err != nil {
			return domain.Check{}, err
		}
		res := s.gas.GasPrice(ctx, c)
		if res.Failed() || res.Value == nil {
			s.log.Warn(ctx, "gas check failed", "chain", c, "error", res.Err)
			return domain.GasUnverified(), nil
		}
		gwei := chain.WeiToGwei(res.Value).InexactFloat64()
		return domain.GasConditions(gwei, c.Info().NormalGasGwei), nil
	}
}
