package dto

import (
	"math"

	"golang-stock-tracker/internal/entity"
)

// ErrorResponse represents a generic error response body. Errors is set for validation failures.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Errors []FieldError `json:"errors,omitempty"`
}

// RecordTradeRequest is the body of POST /positions/{id}/trades.
type RecordTradeRequest struct {
	SharesSold *float64         `json:"shares_sold"`
	SellPrice  *float64         `json:"sell_price"`
	TradeType  entity.TradeType `json:"trade_type,omitempty"`
}

// PriceRequest carries a single price.
type PriceRequest struct {
	Price *float64 `json:"price"`
}

// Value returns the price, or NaN when it was omitted so validation reports it as required.
func (r PriceRequest) Value() float64 {
	if r.Price == nil {
		return math.NaN()
	}
	return *r.Price
}

// PortfolioMetricsRequest maps tickers to current prices. Tickers not listed fall back
// to the last stored market price.
type PortfolioMetricsRequest struct {
	CurrentPrices map[string]float64 `json:"current_prices"`
}

// PositionResponse is a position with its derived status.
type PositionResponse struct {
	entity.Position
	Status entity.PositionStatus `json:"status"`
}

// PriceScenarioResponse shows a position valued at a scenario price.
type PriceScenarioResponse struct {
	Position PositionResponse  `json:"position"`
	Metrics  ProfitLossMetrics `json:"metrics"`
	Levels   TriggeredLevels   `json:"levels"`
}

// RecordTradeResponse is the post-trade position and the trade just written.
type RecordTradeResponse struct {
	Position PositionResponse `json:"position"`
	Trade    entity.Trade     `json:"trade"`
}
