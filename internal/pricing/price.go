// Package pricing holds the pure auction math: the target-period price
// model and the balance smoother. Everything here is a function of its
// arguments; the stateful pair lives in internal/auction.
package pricing

import (
	"math/big"
	"time"
)

// WAD is the fixed-point scale used for the smoothing factor: 1e18 equals
// a fraction of exactly 1.
var WAD = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// MinPrice is the protocol price floor. The committed price is clamped up
// to it so a stalled auction decays toward, but never reaches, zero. A
// zero price would let every following auction be captured for free.
var MinPrice = big.NewInt(1_000_000)

// MaxPrice is the sentinel returned when no time has elapsed since the
// last auction: the pair is effectively unavailable this instant, so a
// second swap in the same instant cannot re-capture the stale price.
// It doubles as the cap on any committed price.
var MaxPrice = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 192), big.NewInt(1))

// ComputePrice returns the current auction price. The price decays in
// inverse proportion to the time since the last auction and equals
// lastPrice exactly when one full target period has elapsed.
func ComputePrice(lastAuctionAt time.Time, lastPrice *big.Int, targetPeriod time.Duration, now time.Time) *big.Int {
	elapsed := now.Unix() - lastAuctionAt.Unix()
	if elapsed <= 0 {
		return new(big.Int).Set(MaxPrice)
	}

	price := new(big.Int).Mul(big.NewInt(int64(targetPeriod/time.Second)), lastPrice)
	price.Quo(price, big.NewInt(elapsed))

	if price.Cmp(MinPrice) < 0 {
		price.Set(MinPrice)
	}
	if price.Cmp(MaxPrice) > 0 {
		price.Set(MaxPrice)
	}

	return price
}

// ComputeTimeForPrice is the integer-division inverse of ComputePrice: the
// instant at which the auction will reach the given price. Estimation only;
// the swap path never calls it. Floor rounding may diverge from
// ComputePrice by up to one second at small magnitudes.
func ComputeTimeForPrice(lastAuctionAt time.Time, lastPrice *big.Int, targetPeriod time.Duration, price *big.Int) time.Time {
	if price == nil || price.Sign() <= 0 {
		return lastAuctionAt
	}

	wait := new(big.Int).Mul(big.NewInt(int64(targetPeriod/time.Second)), lastPrice)
	wait.Quo(wait, price)
	// time.Duration caps out around 292 years.
	if maxWait := big.NewInt(1 << 33); wait.Cmp(maxWait) > 0 {
		wait.Set(maxWait)
	}

	return lastAuctionAt.Add(time.Duration(wait.Int64()) * time.Second)
}
