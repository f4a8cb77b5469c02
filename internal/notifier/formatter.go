package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"SignalDesk/internal/model"
)

var directionIcon = map[model.Direction]string{
	model.Buy:     "🟢",
	model.Sell:    "🔴",
	model.Neutral: "⚪",
}

// FormatSignal renders a trading signal as a Telegram HTML message.
func FormatSignal(sig *model.TradingSignal) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s <b>%s %s</b> | %s\n\n",
		directionIcon[sig.Signal], html.EscapeString(sig.Asset), sig.Signal, sig.Timeframe))
	b.WriteString(fmt.Sprintf("Strength: %.0f%% | Confidence: %.0f%%\n", sig.Strength, sig.Confidence))
	b.WriteString(fmt.Sprintf("Risk: %s | Expiry: %ds\n", sig.RiskLevel, sig.ExpectedDuration))
	b.WriteString(fmt.Sprintf("Time: %s UTC\n", time.UnixMilli(sig.Timestamp).UTC().Format("2006-01-02 15:04:05")))

	var votes []string
	for _, ind := range sig.Indicators {
		if ind.Signal == sig.Signal {
			votes = append(votes, ind.Name)
		}
	}
	if len(votes) > 0 {
		b.WriteString(fmt.Sprintf("\n<b>Agreeing:</b> %s\n", html.EscapeString(strings.Join(votes, ", "))))
	}

	if len(sig.Reasoning) > 0 {
		b.WriteString("\n<b>Reasoning:</b>\n")
		for _, r := range sig.Reasoning {
			b.WriteString("  • " + html.EscapeString(r) + "\n")
		}
	}
	return b.String()
}

// FormatPerformance formats win/loss statistics for display.
func FormatPerformance(p *model.Performance) string {
	scope := "all assets"
	if p.Asset != "" {
		scope = p.Asset
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>Performance</b> | %s\n\n", html.EscapeString(scope)))
	b.WriteString(fmt.Sprintf("Signals: %d\n", p.Total))
	b.WriteString(fmt.Sprintf("Wins: %d | Losses: %d | Draws: %d\n", p.Wins, p.Losses, p.Draws))
	b.WriteString(fmt.Sprintf("Pending: %d\n", p.Pending))
	b.WriteString(fmt.Sprintf("Win rate: %.1f%%\n", p.WinRate))
	return b.String()
}

// FormatAssets lists assets grouped by type, in the order given.
func FormatAssets(assets []model.Asset) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 <b>Assets</b> (%d)\n", len(assets)))
	var current model.AssetClass
	for _, a := range assets {
		if a.Type != current {
			current = a.Type
			b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", current))
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n", html.EscapeString(a.Symbol), html.EscapeString(a.Name)))
	}
	return b.String()
}
