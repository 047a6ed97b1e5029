package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeType tells which leg of the strategy a sale belongs to.
type TradeType string

const (
	TradeTypeFirstTarget  TradeType = "first_target"
	TradeTypeSecondTarget TradeType = "second_target"
	TradeTypeStopLoss     TradeType = "stop_loss"
	TradeTypeManual       TradeType = "manual"
)

// IsValid reports whether t is one of the known trade types.
func (t TradeType) IsValid() bool {
	switch t {
	case TradeTypeFirstTarget, TradeTypeSecondTarget, TradeTypeStopLoss, TradeTypeManual:
		return true
	}
	return false
}

// IsTarget reports whether the trade sold a profit-taking third.
func (t TradeType) IsTarget() bool {
	return t == TradeTypeFirstTarget || t == TradeTypeSecondTarget
}

// Trade is an immutable record of a partial or full sale of a position.
type Trade struct {
	ID            string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	PositionID    string          `gorm:"type:varchar(64);not null;index" json:"position_id"`
	SharesSold    int64           `gorm:"not null" json:"shares_sold"`
	SellPrice     decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"sell_price"`
	TotalValue    decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total_value"`
	Profit        decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"profit"`
	ProfitPercent decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"profit_percent"`
	ExecutedAt    time.Time       `gorm:"not null;index" json:"executed_at"`
	TradeType     TradeType       `gorm:"type:varchar(16);not null" json:"trade_type"`
}

func (Trade) TableName() string {
	return "trades"
}
