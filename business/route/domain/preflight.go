package domain

import (
	"fmt"
)

// Status is the outcome of a pre-flight check.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Pre-flight thresholds.
const (
	LiquidityWarnRatio     = 0.05
	LiquidityFailRatio     = 0.10
	ConcentrationWarnRatio = 0.05
	ConcentrationFailRatio = 0.10
	ProtocolWarnScore      = 70
	ProtocolFailScore      = 50
	GasAnomalyFactor       = 2.0

	// DefaultProtocolScore is assumed when no score is supplied.
	DefaultProtocolScore = 75

	checkErrorMessageLen = 50
)

// Check names, in report order.
const (
	CheckLiquidityDepth = "Liquidity Depth"
	CheckProtocolSafety = "Protocol Safety"
	CheckConcentration  = "Concentration Risk"
	CheckGasConditions  = "Gas Conditions"
	CheckError          = "Check Error"
)

// Check is one pre-flight result. Severity runs from 1 to 5 (most severe).
type Check struct {
	Name     string `json:"name"`
	Status   Status `json:"status"`
	Message  string `json:"message"`
	Severity int    `json:"severity"`
}

// Report is the ordered set of checks with their combined status.
type Report struct {
	Checks  []Check `json:"checks"`
	Overall Status  `json:"overall_status"`
}

// NewReport combines checks: fail if any failed, warn if any warned.
func NewReport(checks []Check) Report {
	return Report{Checks: checks, Overall: OverallStatus(checks)}
}

// OverallStatus is the worst status of checks.
func OverallStatus(checks []Check) Status {
	overall := StatusPass
	for _, c := range checks {
		switch c.Status {
		case StatusFail:
			return StatusFail
		case StatusWarn:
			overall = StatusWarn
		}
	}
	return overall
}

// LiquidityDepth flags migrations that are large next to the pool.
func LiquidityDepth(amount, poolTVL float64) Check {
	if poolTVL <= 0 {
		return Check{CheckLiquidityDepth, StatusWarn, "Unable to verify pool TVL", 3}
	}
	ratio := amount / poolTVL
	switch {
	case ratio >= LiquidityFailRatio:
		return Check{CheckLiquidityDepth, StatusFail,
			fmt.Sprintf("Migration is %.1f%% of pool TVL - high slippage risk", ratio*100), 5}
	case ratio >= LiquidityWarnRatio:
		return Check{CheckLiquidityDepth, StatusWarn,
			fmt.Sprintf("Migration is %.1f%% of pool TVL - moderate slippage expected", ratio*100), 3}
	default:
		return Check{CheckLiquidityDepth, StatusPass,
			fmt.Sprintf("Migration is %.2f%% of pool TVL - adequate liquidity", ratio*100), 1}
	}
}

// ProtocolSafety grades the protocol's safety score.
func ProtocolSafety(protocol string, score int) Check {
	switch {
	case score < ProtocolFailScore:
		return Check{CheckProtocolSafety, StatusFail,
			fmt.Sprintf("%s has a low safety score (%d/100)", protocol, score), 5}
	case score < ProtocolWarnScore:
		return Check{CheckProtocolSafety, StatusWarn,
			fmt.Sprintf("%s has a moderate safety score (%d/100)", protocol, score), 3}
	default:
		return Check{CheckProtocolSafety, StatusPass,
			fmt.Sprintf("%s has a good safety score (%d/100)", protocol, score), 1}
	}
}

// Concentration flags positions that would dominate the pool.
func Concentration(amount, poolTVL float64) Check {
	if poolTVL <= 0 {
		return Check{CheckConcentration, StatusWarn, "Unable to verify position concentration", 2}
	}
	ratio := amount / poolTVL
	switch {
	case ratio >= ConcentrationFailRatio:
		return Check{CheckConcentration, StatusFail,
			fmt.Sprintf("Position would be %.1f%% of pool - excessive concentration", ratio*100), 4}
	case ratio >= ConcentrationWarnRatio:
		return Check{CheckConcentration, StatusWarn,
			fmt.Sprintf("Position would be %.1f%% of pool - elevated concentration", ratio*100), 3}
	default:
		return Check{CheckConcentration, StatusPass,
			fmt.Sprintf("Position would be %.2f%% of pool - well distributed", ratio*100), 1}
	}
}

// GasConditions compares the current gas price with the chain's normal one.
func GasConditions(gwei, normalGwei float64) Check {
	if gwei > normalGwei*GasAnomalyFactor {
		return Check{CheckGasConditions, StatusWarn,
			fmt.Sprintf("Gas is elevated (%.1f Gwei) - consider waiting", gwei), 2}
	}
	return Check{CheckGasConditions, StatusPass, fmt.Sprintf("Gas is normal (%.1f Gwei)", gwei), 1}
}

// GasUnverified is the gas check when no gas price could be read.
func GasUnverified() Check {
	return Check{CheckGasConditions, StatusWarn, "Could not verify gas conditions", 2}
}

// ErrorCheck stands in for a check that could not run.
func ErrorCheck(err error) Check {
	msg := []rune(err.Error())
	if len(msg) > checkErrorMessageLen {
		msg = msg[:checkErrorMessageLen]
	}
	return Check{CheckError, StatusWarn, "Could not complete check: " + string(msg), 2}
}
