package service

import (
	"golang-signal-settler/internal/entity"
)

// Evaluable reports whether a signal carries enough price data to be
// settled. A zero or missing target or stop makes the signal
// non-evaluable; callers skip settlement and warn instead of guessing.
func Evaluable(signal *entity.Signal) bool {
	return signal.TPPrice > 0 && signal.SLPrice > 0
}

// Evaluate decides the outcome of a signal against the current price.
//
// The take-profit check runs before the stop-loss check in both
// directions. When a price gap satisfies both at once the signal settles
// WON; this ordering is a policy choice and must not be reordered.
func Evaluate(direction entity.SignalDirection, tpPrice, slPrice, currentPrice float64) entity.SignalStatus {
	if tpPrice <= 0 || slPrice <= 0 {
		return entity.StatusPending
	}

	switch direction {
	case entity.DirectionBuy:
		if currentPrice >= tpPrice {
			return entity.StatusWon
		}
		if currentPrice <= slPrice {
			return entity.StatusLost
		}
	case entity.DirectionSell:
		if currentPrice <= tpPrice {
			return entity.StatusWon
		}
		if currentPrice >= slPrice {
			return entity.StatusLost
		}
	}

	return entity.StatusPending
}
