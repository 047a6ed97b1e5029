package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/tracker/dto"
	"golang-stock-tracker/internal/tracker/repository"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/utils"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const initialStopLossReason = "Initial stop-loss set at -20%"

// mostlySoldPercent is the sold share of a position at which it counts as mostly sold.
var mostlySoldPercent = decimal.NewFromInt(66)

// PositionService manages the position and trade lifecycle over a StorageRepository.
// Mutating operations are serialized; each one loads, mutates and saves whole collections.
type PositionService interface {
	CreatePosition(ctx context.Context, params dto.CreatePositionParams) (*entity.Position, error)
	GetAllPositions(ctx context.Context) ([]entity.Position, error)
	GetPosition(ctx context.Context, id string) (*entity.Position, error)
	UpdateCurrentPrice(ctx context.Context, id string, price float64) (*entity.Position, error)
	RecordTrade(ctx context.Context, params dto.RecordTradeParams) (*dto.RecordTradeResult, error)
	ListTrades(ctx context.Context, positionID string) ([]entity.Trade, error)
	DeletePosition(ctx context.Context, id string) error
	CalculatePortfolioMetrics(ctx context.Context, currentPrices map[string]decimal.Decimal) (*dto.PortfolioMetrics, error)
	CalculatePositionMetrics(ctx context.Context, id string, price float64) (*dto.ProfitLossMetrics, error)
	AnalyzePosition(ctx context.Context, id string, price float64) (*dto.TriggeredLevels, error)
	GetPositionStatus(position entity.Position) entity.PositionStatus
	StorageHealth(ctx context.Context) dto.StorageHealth
	ClearAll(ctx context.Context) error
}

// PositionOption customizes a PositionService.
type PositionOption func(*positionService)

// WithClock overrides the time source used for createdAt, executedAt and calculatedAt.
func WithClock(now func() time.Time) PositionOption {
	return func(s *positionService) {
		s.now = now
	}
}

// WithIDGenerator overrides how position and trade ids are generated.
func WithIDGenerator(newID func() string) PositionOption {
	return func(s *positionService) {
		s.newID = newID
	}
}

// NewPositionService creates a new position service.
func NewPositionService(
	storage repository.StorageRepository,
	calc CalculationService,
	validator ValidationService,
	log *logger.Logger,
	opts ...PositionOption,
) PositionService {
	s := &positionService{
		storage:   storage,
		calc:      calc,
		validator: validator,
		logger:    log,
		now:       utils.TimeNow,
		newID:     utils.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type positionService struct {
	mu        sync.RWMutex
	storage   repository.StorageRepository
	calc      CalculationService
	validator ValidationService
	logger    *logger.Logger
	now       func() time.Time
	newID     func() string
}

func (s *positionService) CreatePosition(ctx context.Context, params dto.CreatePositionParams) (*entity.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions, err := s.loadPositions(ctx)
	if err != nil {
		return nil, err
	}

	tickers := make([]string, 0, len(positions))
	for _, p := range positions {
		tickers = append(tickers, p.Ticker)
	}

	result := s.validator.ValidateCreatePosition(params, tickers)
	if !result.IsValid {
		return nil, newValidationError(result)
	}

	buyPrice := decimal.NewFromFloat(*params.BuyPrice)
	originalShares := int64(*params.OriginalShares)

	targets, err := s.calc.CalculateSellTargets(buyPrice, originalShares)
	if err != nil {
		return nil, err
	}
	stopPrice, err := s.calc.CalculateInitialStopLoss(buyPrice)
	if err != nil {
		return nil, err
	}

	createdAt := s.now()
	position := entity.Position{
		ID:              s.newID(),
		Ticker:          params.Ticker,
		BuyPrice:        buyPrice,
		OriginalShares:  originalShares,
		RemainingShares: originalShares,
		SellTargets:     targets,
		StopLoss: entity.StopLoss{
			Price:  stopPrice,
			Status: entity.StopLossStatusInitial,
			ProgressionHistory: datatypes.JSONSlice[entity.StopLossHistoryEntry]{{
				Price:     stopPrice,
				Status:    entity.StopLossStatusInitial,
				ChangedAt: createdAt,
				Reason:    initialStopLossReason,
			}},
		},
		CreatedAt: createdAt,
	}

	if err := s.storage.SavePositions(ctx, append(positions, position)); err != nil {
		s.logger.Error("Failed to save positions", logger.ErrorField(err), logger.StringField("ticker", position.Ticker))
		return nil, fmt.Errorf("failed to save position: %w", err)
	}

	s.logger.InfoContext(ctx, "Position created",
		logger.StringField("position_id", position.ID),
		logger.StringField("ticker", position.Ticker),
		logger.StringField("buy_price", position.BuyPrice.String()),
		logger.Int64Field("shares", position.OriginalShares),
	)

	return &position, nil
}

func (s *positionService) GetAllPositions(ctx context.Context) ([]entity.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadPositions(ctx)
}

func (s *positionService) GetPosition(ctx context.Context, id string) (*entity.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findPosition(ctx, id)
}

// UpdateCurrentPrice returns the position with a scenario price attached. Nothing is persisted.
func (s *positionService) UpdateCurrentPrice(ctx context.Context, id string, price float64) (*entity.Position, error) {
	if result := s.validator.ValidatePriceInput(price); !result.IsValid {
		return nil, newValidationError(result)
	}

	position, err := s.GetPosition(ctx, id)
	if err != nil {
		return nil, err
	}

	position.CurrentPrice = utils.ToPointer(decimal.NewFromFloat(price))
	return position, nil
}

func (s *positionService) RecordTrade(ctx context.Context, params dto.RecordTradeParams) (*dto.RecordTradeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions, err := s.loadPositions(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(positions, params.PositionID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: position %s", ErrNotFound, params.PositionID)
	}
	position := positions[idx]

	result := s.validator.ValidateRecordTrade(params, &position)
	if !result.IsValid {
		return nil, newValidationError(result)
	}

	trades, err := s.loadTrades(ctx)
	if err != nil {
		return nil, err
	}

	sharesSold := int64(*params.SharesSold)
	sellPrice := decimal.NewFromFloat(*params.SellPrice)
	shares := decimal.NewFromInt(sharesSold)
	priceDiff := sellPrice.Sub(position.BuyPrice)

	tradeType := params.TradeType
	if tradeType == "" {
		tradeType = inferTradeType(position, sellPrice)
	}

	trade := entity.Trade{
		ID:            s.newID(),
		PositionID:    position.ID,
		SharesSold:    sharesSold,
		SellPrice:     sellPrice,
		TotalValue:    Round2(shares.Mul(sellPrice)),
		Profit:        Round2(priceDiff.Mul(shares)),
		ProfitPercent: Round2(priceDiff.Div(position.BuyPrice).Mul(hundred)),
		ExecutedAt:    s.now(),
		TradeType:     tradeType,
	}

	updatedTrades := append(cloneTrades(trades), trade)

	updated := position.WithoutTransient()
	updated.RemainingShares -= sharesSold
	previousStatus := updated.StopLoss.Status
	updated.StopLoss = s.calc.CalculateProgressedStopLoss(updated, updatedTrades)

	updatedPositions := make([]entity.Position, len(positions))
	copy(updatedPositions, positions)
	updatedPositions[idx] = updated

	if err := s.persist(ctx, trades, updatedPositions, updatedTrades); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Trade recorded",
		logger.StringField("position_id", updated.ID),
		logger.StringField("ticker", updated.Ticker),
		logger.StringField("trade_type", string(trade.TradeType)),
		logger.Int64Field("shares_sold", trade.SharesSold),
		logger.Int64Field("remaining_shares", updated.RemainingShares),
	)
	if updated.StopLoss.Status != previousStatus {
		s.logger.InfoContext(ctx, "Stop-loss progressed",
			logger.StringField("position_id", updated.ID),
			logger.StringField("status", string(updated.StopLoss.Status)),
			logger.StringField("price", updated.StopLoss.Price.String()),
		)
	}

	return &dto.RecordTradeResult{Position: updated, Trade: trade}, nil
}

// ListTrades returns the trades of one position ordered by execution time.
func (s *positionService) ListTrades(ctx context.Context, positionID string) ([]entity.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.findPosition(ctx, positionID); err != nil {
		return nil, err
	}

	trades, err := s.loadTrades(ctx)
	if err != nil {
		return nil, err
	}

	out := tradesFor(positionID, trades)
	if out == nil {
		out = []entity.Trade{}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExecutedAt.Before(out[j].ExecutedAt)
	})
	return out, nil
}

// DeletePosition removes the position and every trade recorded against it.
// Deleting an unknown id is not an error.
func (s *positionService) DeletePosition(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions, err := s.loadPositions(ctx)
	if err != nil {
		return err
	}
	trades, err := s.loadTrades(ctx)
	if err != nil {
		return err
	}

	keptPositions := make([]entity.Position, 0, len(positions))
	for _, p := range positions {
		if p.ID != id {
			keptPositions = append(keptPositions, p)
		}
	}
	keptTrades := make([]entity.Trade, 0, len(trades))
	for _, t := range trades {
		if t.PositionID != id {
			keptTrades = append(keptTrades, t)
		}
	}

	if len(keptPositions) == len(positions) && len(keptTrades) == len(trades) {
		return nil
	}

	if err := s.persist(ctx, trades, keptPositions, keptTrades); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Position deleted",
		logger.StringField("position_id", id),
		logger.IntField("trades_removed", len(trades)-len(keptTrades)),
	)
	return nil
}

func (s *positionService) CalculatePortfolioMetrics(ctx context.Context, currentPrices map[string]decimal.Decimal) (*dto.PortfolioMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions, err := s.loadPositions(ctx)
	if err != nil {
		return nil, err
	}
	trades, err := s.loadTrades(ctx)
	if err != nil {
		return nil, err
	}

	totalValue := decimal.Zero
	totalCost := decimal.Zero
	realizedProfit := decimal.Zero
	atTarget, atStopLoss := 0, 0

	for _, position := range positions {
		totalCost = totalCost.Add(decimal.NewFromInt(position.OriginalShares).Mul(position.BuyPrice))

		price, ok := resolvePrice(position, currentPrices)
		if !ok {
			continue
		}

		metrics, err := s.calc.CalculateProfitLoss(position, price, trades)
		if err != nil {
			return nil, err
		}
		totalValue = totalValue.Add(metrics.TotalValue)
		realizedProfit = realizedProfit.Add(metrics.RealizedProfit)

		levels, err := s.calc.AnalyzeTriggeredLevels(position, price)
		if err != nil {
			return nil, err
		}
		if levels.IsAtFirstTarget || levels.IsAtSecondTarget {
			atTarget++
		}
		if levels.IsAtStopLoss {
			atStopLoss++
		}
	}

	capitalReturned := decimal.Zero
	for _, trade := range trades {
		capitalReturned = capitalReturned.Add(decimal.NewFromInt(trade.SharesSold).Mul(trade.SellPrice))
	}

	unrealizedProfit := totalValue.Sub(totalCost.Sub(capitalReturned))
	totalProfit := realizedProfit.Add(unrealizedProfit)

	totalProfitPercent := decimal.Zero
	if !totalCost.IsZero() {
		totalProfitPercent = totalProfit.Div(totalCost).Mul(hundred)
	}
	averageReturnPercent := decimal.Zero
	if len(positions) > 0 {
		averageReturnPercent = totalProfitPercent.Div(decimal.NewFromInt(int64(len(positions))))
	}

	return &dto.PortfolioMetrics{
		TotalPositions:       len(positions),
		TotalValue:           Round2(totalValue),
		TotalCost:            Round2(totalCost),
		UnrealizedProfit:     Round2(unrealizedProfit),
		RealizedProfit:       Round2(realizedProfit),
		TotalProfit:          Round2(totalProfit),
		TotalProfitPercent:   Round2(totalProfitPercent),
		PositionsAtTarget:    atTarget,
		PositionsAtStopLoss:  atStopLoss,
		AverageReturnPercent: Round2(averageReturnPercent),
		CalculatedAt:         s.now(),
	}, nil
}

func (s *positionService) CalculatePositionMetrics(ctx context.Context, id string, price float64) (*dto.ProfitLossMetrics, error) {
	if result := s.validator.ValidatePriceInput(price); !result.IsValid {
		return nil, newValidationError(result)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	position, err := s.findPosition(ctx, id)
	if err != nil {
		return nil, err
	}
	trades, err := s.loadTrades(ctx)
	if err != nil {
		return nil, err
	}

	metrics, err := s.calc.CalculateProfitLoss(*position, decimal.NewFromFloat(price), trades)
	if err != nil {
		return nil, err
	}
	return &metrics, nil
}

func (s *positionService) AnalyzePosition(ctx context.Context, id string, price float64) (*dto.TriggeredLevels, error) {
	if result := s.validator.ValidatePriceInput(price); !result.IsValid {
		return nil, newValidationError(result)
	}

	position, err := s.GetPosition(ctx, id)
	if err != nil {
		return nil, err
	}

	levels, err := s.calc.AnalyzeTriggeredLevels(*position, decimal.NewFromFloat(price))
	if err != nil {
		return nil, err
	}
	return &levels, nil
}

func (s *positionService) GetPositionStatus(position entity.Position) entity.PositionStatus {
	if position.RemainingShares == 0 {
		return entity.PositionStatusClosed
	}
	if position.OriginalShares <= 0 {
		return entity.PositionStatusActive
	}

	soldPercent := decimal.NewFromInt(position.SoldShares()).
		Div(decimal.NewFromInt(position.OriginalShares)).
		Mul(hundred)

	switch {
	case soldPercent.GreaterThanOrEqual(mostlySoldPercent):
		return entity.PositionStatusMostlySold
	case soldPercent.IsPositive():
		return entity.PositionStatusPartiallySold
	default:
		return entity.PositionStatusActive
	}
}

func (s *positionService) StorageHealth(ctx context.Context) dto.StorageHealth {
	return s.storage.Health(ctx)
}

func (s *positionService) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.ClearAll(ctx); err != nil {
		s.logger.Error("Failed to clear storage", logger.ErrorField(err))
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	s.logger.InfoContext(ctx, "Storage cleared")
	return nil
}

// persist writes both collections as one unit. Backends without snapshot support get
// trades first, then positions; if the position write fails the previous trades are restored.
func (s *positionService) persist(ctx context.Context, previousTrades []entity.Trade, positions []entity.Position, trades []entity.Trade) error {
	if writer, ok := s.storage.(repository.SnapshotWriter); ok {
		if err := writer.SaveSnapshot(ctx, positions, trades); err != nil {
			s.logger.Error("Failed to save snapshot", logger.ErrorField(err))
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		return nil
	}

	if err := s.storage.SaveTrades(ctx, trades); err != nil {
		s.logger.Error("Failed to save trades", logger.ErrorField(err))
		return fmt.Errorf("failed to save trades: %w", err)
	}

	if err := s.storage.SavePositions(ctx, positions); err != nil {
		s.logger.Error("Failed to save positions", logger.ErrorField(err))
		if rbErr := s.storage.SaveTrades(ctx, previousTrades); rbErr != nil {
			s.logger.Error("Failed to restore trades after position write failure", logger.ErrorField(rbErr))
			return fmt.Errorf("failed to save positions: %w", errors.Join(err, rbErr))
		}
		return fmt.Errorf("failed to save positions: %w", err)
	}
	return nil
}

func (s *positionService) loadPositions(ctx context.Context) ([]entity.Position, error) {
	positions, err := s.storage.LoadPositions(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCorruptedData) {
			s.logger.Warn("Stored positions are corrupted, starting empty", logger.ErrorField(err))
			return []entity.Position{}, nil
		}
		s.logger.Error("Failed to load positions", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	return positions, nil
}

func (s *positionService) loadTrades(ctx context.Context) ([]entity.Trade, error) {
	trades, err := s.storage.LoadTrades(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCorruptedData) {
			s.logger.Warn("Stored trades are corrupted, starting empty", logger.ErrorField(err))
			return []entity.Trade{}, nil
		}
		s.logger.Error("Failed to load trades", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	return trades, nil
}

func (s *positionService) findPosition(ctx context.Context, id string) (*entity.Position, error) {
	positions, err := s.loadPositions(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(positions, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: position %s", ErrNotFound, id)
	}
	position := positions[idx].Clone()
	return &position, nil
}

// inferTradeType picks the strategy leg a sale belongs to from its price.
func inferTradeType(position entity.Position, sellPrice decimal.Decimal) entity.TradeType {
	switch {
	case sellPrice.GreaterThanOrEqual(position.SellTargets.SecondTarget):
		return entity.TradeTypeSecondTarget
	case sellPrice.GreaterThanOrEqual(position.SellTargets.FirstTarget):
		return entity.TradeTypeFirstTarget
	case sellPrice.LessThanOrEqual(position.StopLoss.Price):
		return entity.TradeTypeStopLoss
	default:
		return entity.TradeTypeManual
	}
}

// resolvePrice prefers the supplied price map and falls back to the transient price.
func resolvePrice(position entity.Position, currentPrices map[string]decimal.Decimal) (decimal.Decimal, bool) {
	if price, ok := currentPrices[position.Ticker]; ok && price.IsPositive() {
		return price, true
	}
	if position.CurrentPrice != nil && position.CurrentPrice.IsPositive() {
		return *position.CurrentPrice, true
	}
	return decimal.Zero, false
}

func indexOf(positions []entity.Position, id string) int {
	for i, p := range positions {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneTrades(trades []entity.Trade) []entity.Trade {
	out := make([]entity.Trade, len(trades))
	copy(out, trades)
	return out
}
