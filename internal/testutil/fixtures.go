package testutil

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Common addresses used across component tests.
var (
	TokenIn  = common.HexToAddress("0x0000000000000000000000000000000000000A01")
	TokenOut = common.HexToAddress("0x0000000000000000000000000000000000000A02")
	Buyer    = common.HexToAddress("0x0000000000000000000000000000000000000B01")
	Custody  = common.HexToAddress("0x0000000000000000000000000000000000000C01")
	Treasury = common.HexToAddress("0x0000000000000000000000000000000000000C02")
	Router   = common.HexToAddress("0x0000000000000000000000000000000000000D01")
)

// FakeClock is a manually advanced clock for pair tests.
type FakeClock struct {
	Current time.Time
}

// NewFakeClock starts at a fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{Current: time.Unix(1_700_000_000, 0)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time { return c.Current }

// Advance moves the clock forward.
func (c *FakeClock) Advance(d time.Duration) { c.Current = c.Current.Add(d) }

// Wad returns n * 1e18.
func Wad(n int64) *big.Int {
	w := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return w.Mul(w, big.NewInt(n))
}

// WadFraction returns (num/den) * 1e18, floor rounded.
func WadFraction(num, den int64) *big.Int {
	w := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	w.Mul(w, big.NewInt(num))
	return w.Quo(w, big.NewInt(den))
}
