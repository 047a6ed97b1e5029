package dto

import (
	"golang-stock-tracker/internal/entity"
)

// CreatePositionParams carries raw user input for opening a position.
// Numbers stay float64 so fractional inputs can be reported; nil means omitted.
type CreatePositionParams struct {
	Ticker         string   `json:"ticker"`
	BuyPrice       *float64 `json:"buy_price"`
	OriginalShares *float64 `json:"original_shares"`
}

// RecordTradeParams carries raw user input for a sale. An empty TradeType is inferred.
type RecordTradeParams struct {
	PositionID string           `json:"position_id"`
	SharesSold *float64         `json:"shares_sold"`
	SellPrice  *float64         `json:"sell_price"`
	TradeType  entity.TradeType `json:"trade_type,omitempty"`
}

// RecordTradeResult is the post-trade position together with the trade just written.
type RecordTradeResult struct {
	Position entity.Position `json:"position"`
	Trade    entity.Trade    `json:"trade"`
}
