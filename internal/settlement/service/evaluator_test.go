package service

import (
	"testing"

	"golang-signal-settler/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateBuy(t *testing.T) {
	tests := []struct {
		name     string
		tp, sl   float64
		current  float64
		expected entity.SignalStatus
	}{
		{"hits take profit", 2050, 1980, 2055, entity.StatusWon},
		{"exactly at take profit", 2050, 1980, 2050, entity.StatusWon},
		{"hits stop loss", 1.30, 1.25, 1.20, entity.StatusLost},
		{"exactly at stop loss", 1.30, 1.25, 1.25, entity.StatusLost},
		{"between stop and target", 2050, 1980, 2010, entity.StatusPending},
		{"just below target", 2050, 1980, 2049.99, entity.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(entity.DirectionBuy, tt.tp, tt.sl, tt.current)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluateSell(t *testing.T) {
	tests := []struct {
		name     string
		tp, sl   float64
		current  float64
		expected entity.SignalStatus
	}{
		{"hits take profit", 1.08, 1.12, 1.07, entity.StatusWon},
		{"exactly at take profit", 1.08, 1.12, 1.08, entity.StatusWon},
		{"hits stop loss", 1.08, 1.12, 1.13, entity.StatusLost},
		{"exactly at stop loss", 1.08, 1.12, 1.12, entity.StatusLost},
		{"between target and stop", 1.08, 1.12, 1.09, entity.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(entity.DirectionSell, tt.tp, tt.sl, tt.current)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// A gapped quote can satisfy target and stop at once; the target wins in
// both directions.
func TestEvaluateGapPrefersWin(t *testing.T) {
	// BUY where stop sits above target: any price >= target also breaches
	// the stop condition.
	assert.Equal(t, entity.StatusWon, Evaluate(entity.DirectionBuy, 100, 200, 150))

	// SELL mirror case.
	assert.Equal(t, entity.StatusWon, Evaluate(entity.DirectionSell, 200, 100, 150))
}

func TestEvaluateNonEvaluable(t *testing.T) {
	// Zero target or stop never settles, whatever the quote says.
	assert.Equal(t, entity.StatusPending, Evaluate(entity.DirectionBuy, 0, 1980, 99999))
	assert.Equal(t, entity.StatusPending, Evaluate(entity.DirectionBuy, 2050, 0, 1))
	assert.Equal(t, entity.StatusPending, Evaluate(entity.DirectionSell, 0, 0, 1.0))
}

func TestEvaluateUnknownDirection(t *testing.T) {
	assert.Equal(t, entity.StatusPending, Evaluate(entity.SignalDirection("HOLD"), 2050, 1980, 2100))
}

func TestEvaluable(t *testing.T) {
	assert.True(t, Evaluable(&entity.Signal{TPPrice: 2050, SLPrice: 1980}))
	assert.False(t, Evaluable(&entity.Signal{TPPrice: 0, SLPrice: 1980}))
	assert.False(t, Evaluable(&entity.Signal{TPPrice: 2050, SLPrice: 0}))
}
