package pricing

import (
	"math/big"
	"testing"
	"time"
)

func TestComputePrice(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	period := time.Hour
	p0 := big.NewInt(1_000_000_000_000_000_000) // 1e18

	tests := []struct {
		name      string
		lastPrice *big.Int
		elapsed   time.Duration
		expect    *big.Int
	}{
		{
			name:      "steady-state-at-target-period",
			lastPrice: p0,
			elapsed:   period,
			expect:    p0,
		},
		{
			name:      "double-elapsed-halves-price",
			lastPrice: p0,
			elapsed:   2 * period,
			expect:    new(big.Int).Quo(p0, big.NewInt(2)),
		},
		{
			name:      "half-elapsed-doubles-price",
			lastPrice: p0,
			elapsed:   period / 2,
			expect:    new(big.Int).Mul(p0, big.NewInt(2)),
		},
		{
			name:      "odd-division-floors",
			lastPrice: big.NewInt(10_000_001),
			elapsed:   3 * period,
			expect:    big.NewInt(3_333_333),
		},
		{
			name:      "zero-elapsed-returns-sentinel",
			lastPrice: p0,
			elapsed:   0,
			expect:    MaxPrice,
		},
		{
			name:      "decay-clamped-at-min-price",
			lastPrice: big.NewInt(2_000_000),
			elapsed:   1000 * period,
			expect:    MinPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePrice(t0, tt.lastPrice, period, t0.Add(tt.elapsed))
			if got.Cmp(tt.expect) != 0 {
				t.Fatalf("ComputePrice = %s, want %s", got, tt.expect)
			}
		})
	}
}

func TestComputePriceDoesNotMutateLastPrice(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	last := big.NewInt(12345)
	before := new(big.Int).Set(last)

	ComputePrice(t0, last, time.Hour, t0.Add(time.Minute))

	if last.Cmp(before) != 0 {
		t.Fatalf("lastPrice mutated: %s -> %s", before, last)
	}
}

func TestComputeTimeForPriceRoundTrip(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	period := time.Hour
	p0 := big.NewInt(1_000_000_000_000_000_000)

	for _, elapsed := range []time.Duration{
		time.Second, 17 * time.Second, 900 * time.Second, period, 2 * period, 7 * period,
	} {
		now := t0.Add(elapsed)
		price := ComputePrice(t0, p0, period, now)
		back := ComputeTimeForPrice(t0, p0, period, price)

		// Floor rounding in both directions may lose at most the
		// division remainder.
		diff := now.Unix() - back.Unix()
		if diff < -1 || diff > 1 {
			t.Fatalf("elapsed %s: recovered %d, want within 1s of %d", elapsed, back.Unix(), now.Unix())
		}
	}
}

func TestComputeTimeForPriceZeroPrice(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	got := ComputeTimeForPrice(t0, big.NewInt(1), time.Hour, new(big.Int))
	if !got.Equal(t0) {
		t.Fatalf("zero price: got %s, want last auction time", got)
	}
}
