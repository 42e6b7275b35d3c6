package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimClock(t *testing.T) {
	clock := &simClock{current: time.Unix(1_700_000_000, 0)}

	start := clock.Now()
	clock.Advance(15 * time.Minute)

	assert.Equal(t, 15*time.Minute, clock.Now().Sub(start))
	assert.Equal(t, start.Add(15*time.Minute), clock.Now())
}

func TestSimulateCommandRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "non-numeric-initial-price",
			args: []string{"simulate", "--initial-price", "expensive"},
		},
		{
			name: "zero-buy-threshold",
			args: []string{"simulate", "--buy-below", "0"},
		},
		{
			name: "negative-amount-out",
			args: []string{"simulate", "--amount-out", "-5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd.SetArgs(tt.args)
			err := rootCmd.Execute()
			assert.Error(t, err)
		})
	}
}
