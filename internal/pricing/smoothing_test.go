package pricing

import (
	"math/big"
	"testing"
)

func wadFraction(num, den int64) *big.Int {
	f := new(big.Int).Mul(WAD, big.NewInt(num))
	return f.Quo(f, big.NewInt(den))
}

func TestAvailableAmount(t *testing.T) {
	tests := []struct {
		name      string
		balance   *big.Int
		smoothing *big.Int
		expect    *big.Int
	}{
		{
			name:      "zero-smoothing-exposes-everything",
			balance:   big.NewInt(1_000_000),
			smoothing: new(big.Int),
			expect:    big.NewInt(1_000_000),
		},
		{
			name:      "half-smoothing-exposes-half",
			balance:   big.NewInt(1_000_000),
			smoothing: wadFraction(1, 2),
			expect:    big.NewInt(500_000),
		},
		{
			name:      "flooring-on-uneven-split",
			balance:   big.NewInt(3),
			smoothing: wadFraction(1, 2),
			expect:    big.NewInt(1),
		},
		{
			name:      "ninety-percent-withheld",
			balance:   big.NewInt(1_000),
			smoothing: wadFraction(9, 10),
			expect:    big.NewInt(100),
		},
		{
			name:      "zero-balance",
			balance:   new(big.Int),
			smoothing: wadFraction(1, 2),
			expect:    new(big.Int),
		},
		{
			name:      "nil-balance",
			balance:   nil,
			smoothing: wadFraction(1, 2),
			expect:    new(big.Int),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AvailableAmount(tt.balance, tt.smoothing)
			if got.Cmp(tt.expect) != 0 {
				t.Fatalf("AvailableAmount = %s, want %s", got, tt.expect)
			}
		})
	}
}

func TestAvailableAmountMonotonicity(t *testing.T) {
	smoothings := []*big.Int{
		new(big.Int),
		wadFraction(1, 10),
		wadFraction(1, 2),
		wadFraction(99, 100),
	}
	balances := []*big.Int{
		big.NewInt(1),
		big.NewInt(1_000),
		big.NewInt(1_000_000_000),
	}

	// Non-decreasing in balance for every smoothing.
	for _, s := range smoothings {
		prev := new(big.Int).Neg(big.NewInt(1))
		for _, b := range balances {
			got := AvailableAmount(b, s)
			if got.Cmp(prev) < 0 {
				t.Fatalf("smoothing %s: available decreased from %s to %s as balance grew", s, prev, got)
			}
			prev = got
		}
	}

	// Non-increasing in smoothing for every balance.
	for _, b := range balances {
		prev := new(big.Int).Add(b, big.NewInt(1))
		for _, s := range smoothings {
			got := AvailableAmount(b, s)
			if got.Cmp(prev) > 0 {
				t.Fatalf("balance %s: available increased from %s to %s as smoothing grew", b, prev, got)
			}
			prev = got
		}
	}
}

func TestAvailableAmountGeometricDecay(t *testing.T) {
	// Repeated auctions against a static balance converge toward zero
	// without ever draining it in finitely many calls.
	balance := big.NewInt(1 << 40)
	smoothing := wadFraction(1, 2)

	for i := 0; i < 30; i++ {
		exposed := AvailableAmount(balance, smoothing)
		if exposed.Cmp(balance) >= 0 && balance.Sign() > 0 {
			t.Fatalf("iteration %d: exposed %s not smaller than balance %s", i, exposed, balance)
		}
		balance.Sub(balance, exposed)
		if balance.Sign() < 0 {
			t.Fatalf("iteration %d: balance went negative", i)
		}
	}

	if balance.Sign() <= 0 {
		t.Fatal("static balance fully drained by smoothed auctions")
	}
}
