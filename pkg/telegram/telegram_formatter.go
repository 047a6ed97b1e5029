package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/tracker/dto"
	"golang-stock-tracker/pkg/utils"

	"github.com/shopspring/decimal"
)

// FormatTriggeredLevelAlert formats a triggered level of a position into a Markdown string for Telegram.
func FormatTriggeredLevelAlert(position entity.Position, price decimal.Decimal, levels dto.TriggeredLevels, at time.Time) string {
	var sb strings.Builder

	var title, emoji, target string
	switch levels.RecommendedAction {
	case dto.ActionTriggerStopLoss:
		title = "Stop Loss Triggered!"
		emoji = "⚠️"
		target = levels.TriggerPrices.StopLoss.StringFixed(2)
	case dto.ActionSellSecondThird:
		title = "Second Target Reached - Sell Second Third"
		emoji = "🎯"
		target = levels.TriggerPrices.SecondTarget.StringFixed(2)
	case dto.ActionSellFirstThird:
		title = "First Target Reached - Sell First Third"
		emoji = "🎯"
		target = levels.TriggerPrices.FirstTarget.StringFixed(2)
	default:
		title = "Price Alert"
		emoji = "🔔"
		target = "-"
	}

	change := decimal.Zero
	if position.BuyPrice.IsPositive() {
		change = price.Sub(position.BuyPrice).Div(position.BuyPrice).Mul(decimal.NewFromInt(100)).Round(2)
	}
	changeStr := fmt.Sprintf("(%s%%)", change.StringFixed(2))
	if change.IsPositive() {
		changeStr = fmt.Sprintf("(+%s%%)", change.StringFixed(2))
	}

	sb.WriteString(fmt.Sprintf("%s *[%s] %s*\n", emoji, position.Ticker, title))
	sb.WriteString(fmt.Sprintf("💰 Buy: $%s | Current: $%s %s\n", position.BuyPrice.StringFixed(2), price.StringFixed(2), changeStr))
	sb.WriteString(fmt.Sprintf("📍 Trigger: $%s\n", target))
	sb.WriteString(fmt.Sprintf("📦 Shares remaining: %d of %d\n", position.RemainingShares, position.OriginalShares))
	sb.WriteString(fmt.Sprintf("🛡 Stop Loss: $%s (%s)\n", position.StopLoss.Price.StringFixed(2), position.StopLoss.Status))
	sb.WriteString(fmt.Sprintf("📅 _%s_\n", utils.PrettyDate(at)))

	return sb.String()
}

// FormatErrorAlertMessage formats a failure of a background job.
func FormatErrorAlertMessage(at time.Time, errType string, errMsg string) string {
	return fmt.Sprintf("📛 [ERROR ALERT]\n%s\n🔧 %s\n⚠️ %s\n", utils.PrettyDate(at), errType, errMsg)
}
