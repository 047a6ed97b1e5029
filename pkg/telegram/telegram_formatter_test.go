package telegram

import (
	"testing"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/tracker/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatTriggeredLevelAlert(t *testing.T) {
	position := entity.Position{
		Ticker:          "AAPL",
		BuyPrice:        decimal.NewFromInt(150),
		OriginalShares:  300,
		RemainingShares: 200,
		StopLoss: entity.StopLoss{
			Price:  decimal.NewFromInt(150),
			Status: entity.StopLossStatusBreakeven,
		},
	}
	prices := dto.TriggerPrices{
		FirstTarget:  decimal.NewFromInt(225),
		SecondTarget: decimal.NewFromInt(300),
		StopLoss:     decimal.NewFromInt(150),
	}
	at := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		price    decimal.Decimal
		action   dto.RecommendedAction
		contains []string
	}{
		{
			name:     "second target",
			price:    decimal.NewFromInt(310),
			action:   dto.ActionSellSecondThird,
			contains: []string{"[AAPL] Second Target Reached", "Trigger: $300.00", "(+106.67%)"},
		},
		{
			name:     "stop loss",
			price:    decimal.NewFromInt(140),
			action:   dto.ActionTriggerStopLoss,
			contains: []string{"Stop Loss Triggered!", "Trigger: $150.00", "(-6.67%)"},
		},
		{
			name:     "first target",
			price:    decimal.NewFromInt(225),
			action:   dto.ActionSellFirstThird,
			contains: []string{"First Target Reached", "Shares remaining: 200 of 300", "breakeven"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels := dto.TriggeredLevels{RecommendedAction: tt.action, TriggerPrices: prices}
			msg := FormatTriggeredLevelAlert(position, tt.price, levels, at)
			for _, want := range tt.contains {
				assert.Contains(t, msg, want)
			}
			assert.Contains(t, msg, "Tue, 05 Mar 2024 14:30 UTC")
		})
	}
}

func TestNewLimiterUnlimited(t *testing.T) {
	l := newLimiter(0)
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow())
	}
}

func TestFormatErrorAlertMessage(t *testing.T) {
	at := time.Date(2024, time.January, 2, 15, 0, 0, 0, time.UTC)

	msg := FormatErrorAlertMessage(at, "Alert evaluation failed", "storage unavailable")

	assert.Equal(t, "📛 [ERROR ALERT]\nTue, 02 Jan 2024 15:00 UTC\n🔧 Alert evaluation failed\n⚠️ storage unavailable\n", msg)
}
