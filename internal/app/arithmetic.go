package app

import (
	"math"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"piverse/internal/types"
)

// treasuryPercent of every attempt price goes to the dev wallet; the rest
// funds the jackpot.
const treasuryPercent = 20

func addUint64Checked(a, b uint64, field string) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, errorsmod.Wrapf(types.ErrOverflow, "%s overflows uint64", field)
	}
	return a + b, nil
}

func addInt64Checked(base, delta int64, field string) (int64, error) {
	if delta > 0 && base > math.MaxInt64-delta {
		return 0, errorsmod.Wrapf(types.ErrOverflow, "%s overflows int64", field)
	}
	if delta < 0 && base < math.MinInt64-delta {
		return 0, errorsmod.Wrapf(types.ErrOverflow, "%s underflows int64", field)
	}
	return base + delta, nil
}

// splitAttemptPrice returns (treasury, jackpot) shares. The treasury share is
// floored and the jackpot takes the remainder, so the two always sum to price.
func splitAttemptPrice(price uint64) (treasury, jackpot uint64) {
	t := sdkmath.NewIntFromUint64(price).MulRaw(treasuryPercent).QuoRaw(100)
	treasury = t.Uint64()
	return treasury, price - treasury
}

// parimutuelPayout returns floor(amount * (poolFail+poolBreach) / winningPool)
// with a wide intermediate.
func parimutuelPayout(amount, poolFail, poolBreach, winningPool uint64) (uint64, error) {
	if winningPool == 0 {
		return 0, errorsmod.Wrap(types.ErrInvalidRequest, "winning pool is empty")
	}
	payout := sdkmath.NewIntFromUint64(amount).Mul(poolTotal(poolFail, poolBreach)).Quo(sdkmath.NewIntFromUint64(winningPool))
	if !payout.IsUint64() {
		return 0, errorsmod.Wrapf(types.ErrOverflow, "payout %s overflows uint64", payout)
	}
	return payout.Uint64(), nil
}

func poolTotal(poolFail, poolBreach uint64) sdkmath.Int {
	return sdkmath.NewIntFromUint64(poolFail).Add(sdkmath.NewIntFromUint64(poolBreach))
}

// impliedMultiplier is total/side as a decimal string, "0" for an empty side.
func impliedMultiplier(total sdkmath.Int, side uint64) string {
	if side == 0 {
		return "0"
	}
	return sdkmath.LegacyNewDecFromInt(total).Quo(sdkmath.LegacyNewDecFromInt(sdkmath.NewIntFromUint64(side))).String()
}
