package service

import (
	"fmt"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/tracker/dto"

	"github.com/shopspring/decimal"
)

const breakevenReason = "First third sold - moved to breakeven"

var (
	firstTargetMultiplier  = decimal.RequireFromString("1.5")
	secondTargetMultiplier = decimal.RequireFromString("2.0")
	stopLossMultiplier     = decimal.RequireFromString("0.8")
	hundred                = decimal.NewFromInt(100)
)

// CalculationService holds the pure financial math of the sell-in-thirds strategy.
type CalculationService interface {
	CalculateSellTargets(buyPrice decimal.Decimal, originalShares int64) (entity.SellTargets, error)
	CalculateInitialStopLoss(buyPrice decimal.Decimal) (decimal.Decimal, error)
	CalculateProfitLoss(position entity.Position, currentPrice decimal.Decimal, completedTrades []entity.Trade) (dto.ProfitLossMetrics, error)
	AnalyzeTriggeredLevels(position entity.Position, currentPrice decimal.Decimal) (dto.TriggeredLevels, error)
	CalculateProgressedStopLoss(position entity.Position, completedTrades []entity.Trade) entity.StopLoss
}

// NewCalculationService creates a calculation service. now stamps stop-loss history entries.
func NewCalculationService(now func() time.Time) CalculationService {
	if now == nil {
		now = time.Now
	}
	return &calculationService{now: now}
}

type calculationService struct {
	now func() time.Time
}

// Round2 rounds to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CalculateSellTargets returns the +50% and +100% targets and splits the shares into thirds.
// The last third absorbs the remainder of the integer division.
func (s *calculationService) CalculateSellTargets(buyPrice decimal.Decimal, originalShares int64) (entity.SellTargets, error) {
	if !buyPrice.IsPositive() {
		return entity.SellTargets{}, fmt.Errorf("%w: buy price must be positive", ErrInvalidArgument)
	}
	if originalShares <= 0 {
		return entity.SellTargets{}, fmt.Errorf("%w: original shares must be a positive integer", ErrInvalidArgument)
	}

	third := originalShares / 3

	return entity.SellTargets{
		FirstTarget:        Round2(buyPrice.Mul(firstTargetMultiplier)),
		SecondTarget:       Round2(buyPrice.Mul(secondTargetMultiplier)),
		FirstTargetShares:  third,
		SecondTargetShares: third,
		RemainingShares:    originalShares - third - third,
	}, nil
}

// CalculateInitialStopLoss returns the -20% stop.
func (s *calculationService) CalculateInitialStopLoss(buyPrice decimal.Decimal) (decimal.Decimal, error) {
	if !buyPrice.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: buy price must be positive", ErrInvalidArgument)
	}
	return Round2(buyPrice.Mul(stopLossMultiplier)), nil
}

// CalculateProfitLoss values a position at currentPrice. Trades belonging to other
// positions are ignored, so callers may pass the full trade set.
func (s *calculationService) CalculateProfitLoss(position entity.Position, currentPrice decimal.Decimal, completedTrades []entity.Trade) (dto.ProfitLossMetrics, error) {
	if !currentPrice.IsPositive() {
		return dto.ProfitLossMetrics{}, fmt.Errorf("%w: current price must be positive", ErrInvalidArgument)
	}
	if !position.BuyPrice.IsPositive() {
		return dto.ProfitLossMetrics{}, fmt.Errorf("%w: position %s has a non-positive buy price", ErrInvalidState, position.ID)
	}

	remaining := decimal.NewFromInt(position.RemainingShares)
	totalValue := remaining.Mul(currentPrice)
	totalCost := decimal.NewFromInt(position.OriginalShares).Mul(position.BuyPrice)
	if totalCost.IsZero() {
		return dto.ProfitLossMetrics{}, fmt.Errorf("%w: position %s has zero cost basis", ErrInvalidState, position.ID)
	}

	priceDiff := currentPrice.Sub(position.BuyPrice)
	unrealizedProfit := Round2(priceDiff.Mul(remaining))
	unrealizedProfitPercent := Round2(priceDiff.Div(position.BuyPrice).Mul(hundred))

	realizedProfit := decimal.Zero
	for _, trade := range tradesFor(position.ID, completedTrades) {
		realizedProfit = realizedProfit.Add(trade.Profit)
	}

	totalProfit := Round2(realizedProfit.Add(unrealizedProfit))

	return dto.ProfitLossMetrics{
		TotalValue:              Round2(totalValue),
		TotalCost:               Round2(totalCost),
		UnrealizedProfit:        unrealizedProfit,
		UnrealizedProfitPercent: unrealizedProfitPercent,
		RealizedProfit:          Round2(realizedProfit),
		TotalProfit:             totalProfit,
		TotalProfitPercent:      Round2(totalProfit.Div(totalCost).Mul(hundred)),
	}, nil
}

// AnalyzeTriggeredLevels compares currentPrice with the targets and the stop.
// A triggered stop outranks any target, then the second target outranks the first.
func (s *calculationService) AnalyzeTriggeredLevels(position entity.Position, currentPrice decimal.Decimal) (dto.TriggeredLevels, error) {
	if !currentPrice.IsPositive() {
		return dto.TriggeredLevels{}, fmt.Errorf("%w: current price must be positive", ErrInvalidArgument)
	}

	levels := dto.TriggeredLevels{
		IsAtFirstTarget:  currentPrice.GreaterThanOrEqual(position.SellTargets.FirstTarget),
		IsAtSecondTarget: currentPrice.GreaterThanOrEqual(position.SellTargets.SecondTarget),
		IsAtStopLoss:     currentPrice.LessThanOrEqual(position.StopLoss.Price),
		TriggerPrices: dto.TriggerPrices{
			FirstTarget:  position.SellTargets.FirstTarget,
			SecondTarget: position.SellTargets.SecondTarget,
			StopLoss:     position.StopLoss.Price,
		},
	}

	switch {
	case levels.IsAtStopLoss:
		levels.RecommendedAction = dto.ActionTriggerStopLoss
	case levels.IsAtSecondTarget:
		levels.RecommendedAction = dto.ActionSellSecondThird
	case levels.IsAtFirstTarget:
		levels.RecommendedAction = dto.ActionSellFirstThird
	default:
		levels.RecommendedAction = dto.ActionHold
	}

	return levels, nil
}

// CalculateProgressedStopLoss moves an initial stop to breakeven once any target third
// has been sold. Breakeven and custom stops are never changed here, which keeps
// repeated calls with the same trades from adding history entries.
func (s *calculationService) CalculateProgressedStopLoss(position entity.Position, completedTrades []entity.Trade) entity.StopLoss {
	positionTrades := tradesFor(position.ID, completedTrades)
	if len(positionTrades) == 0 {
		return position.StopLoss.Clone()
	}

	targetTrades := 0
	for _, trade := range positionTrades {
		if trade.TradeType.IsTarget() {
			targetTrades++
		}
	}

	if targetTrades == 0 || position.StopLoss.Status != entity.StopLossStatusInitial {
		return position.StopLoss.Clone()
	}

	progressed := position.StopLoss.Clone()
	progressed.Price = position.BuyPrice
	progressed.Status = entity.StopLossStatusBreakeven
	progressed.ProgressionHistory = append(progressed.ProgressionHistory, entity.StopLossHistoryEntry{
		Price:     position.BuyPrice,
		Status:    entity.StopLossStatusBreakeven,
		ChangedAt: s.now(),
		Reason:    breakevenReason,
	})

	return progressed
}

// tradesFor filters trades down to one position, preserving order.
func tradesFor(positionID string, trades []entity.Trade) []entity.Trade {
	var out []entity.Trade
	for _, trade := range trades {
		if trade.PositionID == positionID {
			out = append(out, trade)
		}
	}
	return out
}
