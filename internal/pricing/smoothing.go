package pricing

import "math/big"

// AvailableAmount applies the balance smoother: the fraction of a raw
// balance exposed to the current auction is (1 - smoothingFactor), floor
// rounded at WAD scale. At zero smoothing the whole balance is exposed;
// higher smoothing withholds part of whatever remains each call, damping
// bursty inflows into steadier per-auction sizes.
func AvailableAmount(rawBalance, smoothingFactor *big.Int) *big.Int {
	if rawBalance == nil || rawBalance.Sign() <= 0 {
		return new(big.Int)
	}
	if smoothingFactor == nil || smoothingFactor.Sign() == 0 {
		return new(big.Int).Set(rawBalance)
	}

	exposed := new(big.Int).Sub(WAD, smoothingFactor)
	exposed.Mul(exposed, rawBalance)
	exposed.Quo(exposed, WAD)

	return exposed
}
