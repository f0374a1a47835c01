package chain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	weiPerGwei  = decimal.New(1, 9)
	usdcDecimal = int32(6)
)

// WeiToNative converts wei to whole native tokens.
func WeiToNative(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -18)
}

// WeiToGwei converts wei to gwei.
func WeiToGwei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, 0).Div(weiPerGwei)
}

// GweiToWei converts gwei to wei, truncating sub-wei precision.
func GweiToWei(gwei decimal.Decimal) *big.Int {
	return gwei.Mul(weiPerGwei).BigInt()
}

// USDCToBaseUnits converts a USD amount to 6-decimal USDC units.
func USDCToBaseUnits(amount decimal.Decimal) *big.Int {
	return amount.Shift(usdcDecimal).Truncate(0).BigInt()
}

// USDCFromBaseUnits converts 6-decimal USDC units to a USD amount.
func USDCFromBaseUnits(units *big.Int) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -usdcDecimal)
}
