package telegram

import (
	"fmt"
	"strings"
	"time"
)

// FormatSettlementAlert formats a single settled signal for the ops chat.
func FormatSettlementAlert(pair, direction, outcome string, currentPrice, targetPrice, stopPrice float64) string {
	icon := "🤑"
	hit := "take profit"
	if outcome == "LOST" {
		icon = "🔻"
		hit = "stop loss"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s *%s %s → %s*\n", icon, pair, direction, outcome))
	b.WriteString(fmt.Sprintf("💰 Price: `%g` (%s)\n", currentPrice, hit))
	b.WriteString(fmt.Sprintf("🎯 TP: `%g` | 🛑 SL: `%g`", targetPrice, stopPrice))
	return b.String()
}

// FormatCycleSummary formats the end-of-cycle report for the ops chat.
func FormatCycleSummary(settled, pending, skipped, failed int, elapsed time.Duration) string {
	var b strings.Builder
	b.WriteString("🔍 *Settlement cycle finished*\n")
	b.WriteString(fmt.Sprintf("✅ Settled: %d\n", settled))
	b.WriteString(fmt.Sprintf("⏳ Still pending: %d\n", pending))
	b.WriteString(fmt.Sprintf("⏭ Skipped: %d\n", skipped))
	b.WriteString(fmt.Sprintf("⚠️ Failed: %d\n", failed))
	b.WriteString(fmt.Sprintf("⏱ Took: %s", elapsed.Round(time.Millisecond)))
	return b.String()
}
