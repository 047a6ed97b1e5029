package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfitLossMetrics is the value of one position at a given price.
type ProfitLossMetrics struct {
	TotalValue              decimal.Decimal `json:"total_value"`
	TotalCost               decimal.Decimal `json:"total_cost"`
	UnrealizedProfit        decimal.Decimal `json:"unrealized_profit"`
	UnrealizedProfitPercent decimal.Decimal `json:"unrealized_profit_percent"`
	RealizedProfit          decimal.Decimal `json:"realized_profit"`
	TotalProfit             decimal.Decimal `json:"total_profit"`
	TotalProfitPercent      decimal.Decimal `json:"total_profit_percent"`
}

// RecommendedAction is what the strategy suggests at a given price.
type RecommendedAction string

const (
	ActionHold            RecommendedAction = "hold"
	ActionSellFirstThird  RecommendedAction = "sell_first_third"
	ActionSellSecondThird RecommendedAction = "sell_second_third"
	ActionTriggerStopLoss RecommendedAction = "trigger_stop_loss"
)

// TriggerPrices echoes the levels a price was compared against.
type TriggerPrices struct {
	FirstTarget  decimal.Decimal `json:"first_target"`
	SecondTarget decimal.Decimal `json:"second_target"`
	StopLoss     decimal.Decimal `json:"stop_loss"`
}

// TriggeredLevels reports which levels a price has crossed.
type TriggeredLevels struct {
	IsAtFirstTarget   bool              `json:"is_at_first_target"`
	IsAtSecondTarget  bool              `json:"is_at_second_target"`
	IsAtStopLoss      bool              `json:"is_at_stop_loss"`
	RecommendedAction RecommendedAction `json:"recommended_action"`
	TriggerPrices     TriggerPrices     `json:"trigger_prices"`
}

// PortfolioMetrics aggregates every stored position.
type PortfolioMetrics struct {
	TotalPositions       int             `json:"total_positions"`
	TotalValue           decimal.Decimal `json:"total_value"`
	TotalCost            decimal.Decimal `json:"total_cost"`
	TotalProfit          decimal.Decimal `json:"total_profit"`
	TotalProfitPercent   decimal.Decimal `json:"total_profit_percent"`
	RealizedProfit       decimal.Decimal `json:"realized_profit"`
	UnrealizedProfit     decimal.Decimal `json:"unrealized_profit"`
	PositionsAtTarget    int             `json:"positions_at_target"`
	PositionsAtStopLoss  int             `json:"positions_at_stop_loss"`
	AverageReturnPercent decimal.Decimal `json:"average_return_percent"`
	CalculatedAt         time.Time       `json:"calculated_at"`
}

// StorageHealth describes the state of the storage backend.
type StorageHealth struct {
	Available      bool   `json:"available"`
	SpaceUsed      int64  `json:"space_used"`
	SpaceRemaining int64  `json:"space_remaining"`
	QuotaExceeded  bool   `json:"quota_exceeded"`
	Backend        string `json:"backend"`
}

// AlertResult is the outcome of evaluating one position in an alert run.
type AlertResult struct {
	Ticker string            `json:"ticker"`
	Action RecommendedAction `json:"action"`
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
}

const (
	AlertStatusSent    = "SENT"
	AlertStatusSkipped = "SKIPPED"
	AlertStatusHold    = "HOLD"
	AlertStatusNoPrice = "NO_PRICE"
	AlertStatusFailed  = "FAILED"
)
