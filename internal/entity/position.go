package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PositionStatus describes how much of a position has been sold.
type PositionStatus string

const (
	PositionStatusActive        PositionStatus = "active"
	PositionStatusPartiallySold PositionStatus = "partially_sold"
	PositionStatusMostlySold    PositionStatus = "mostly_sold"
	PositionStatusClosed        PositionStatus = "closed"
)

// SellTargets holds the two profit-taking prices and the share split across the thirds.
// Computed once when the position is opened.
type SellTargets struct {
	FirstTarget        decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"first_target"`
	SecondTarget       decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"second_target"`
	FirstTargetShares  int64           `gorm:"not null" json:"first_target_shares"`
	SecondTargetShares int64           `gorm:"not null" json:"second_target_shares"`
	RemainingShares    int64           `gorm:"not null" json:"remaining_shares"`
}

// Position is a single holding tracked under the sell-in-thirds strategy.
type Position struct {
	ID              string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Ticker          string          `gorm:"type:varchar(5);not null;index" json:"ticker"`
	BuyPrice        decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"buy_price"`
	OriginalShares  int64           `gorm:"not null" json:"original_shares"`
	RemainingShares int64           `gorm:"not null" json:"remaining_shares"`
	SellTargets     SellTargets     `gorm:"embedded;embeddedPrefix:sell_targets_" json:"sell_targets"`
	StopLoss        StopLoss        `gorm:"embedded;embeddedPrefix:stop_loss_" json:"stop_loss"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`

	// CurrentPrice is a scenario price for the current view only.
	CurrentPrice *decimal.Decimal `gorm:"-" json:"current_price,omitempty"`
}

func (Position) TableName() string {
	return "positions"
}

// Clone returns a deep copy so callers can mutate the result freely.
func (p Position) Clone() Position {
	out := p
	out.StopLoss = p.StopLoss.Clone()
	if p.CurrentPrice != nil {
		price := *p.CurrentPrice
		out.CurrentPrice = &price
	}
	return out
}

// WithoutTransient strips fields that must never reach storage.
func (p Position) WithoutTransient() Position {
	out := p.Clone()
	out.CurrentPrice = nil
	return out
}

// SoldShares is the number of shares already sold through trades.
func (p Position) SoldShares() int64 {
	return p.OriginalShares - p.RemainingShares
}

// StopLossStatus is the progression stage of a stop-loss.
type StopLossStatus string

const (
	StopLossStatusInitial   StopLossStatus = "initial"
	StopLossStatusBreakeven StopLossStatus = "breakeven"
	StopLossStatusCustom    StopLossStatus = "custom"
)

// StopLossHistoryEntry records one stop-loss change.
type StopLossHistoryEntry struct {
	Price     decimal.Decimal `json:"price"`
	Status    StopLossStatus  `json:"status"`
	ChangedAt time.Time       `json:"changed_at"`
	Reason    string          `json:"reason"`
}

// StopLoss is the current trigger price and its append-only history.
type StopLoss struct {
	Price              decimal.Decimal                          `gorm:"type:numeric(18,2);not null" json:"price"`
	Status             StopLossStatus                           `gorm:"type:varchar(16);not null" json:"status"`
	ProgressionHistory datatypes.JSONSlice[StopLossHistoryEntry] `json:"progression_history"`
}

// Clone copies the history so appends never alias the source slice.
func (s StopLoss) Clone() StopLoss {
	out := s
	if s.ProgressionHistory != nil {
		out.ProgressionHistory = make(datatypes.JSONSlice[StopLossHistoryEntry], len(s.ProgressionHistory))
		copy(out.ProgressionHistory, s.ProgressionHistory)
	}
	return out
}
