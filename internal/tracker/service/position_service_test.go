package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/tracker/dto"
	"golang-stock-tracker/internal/tracker/repository"
	"golang-stock-tracker/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialIDs) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func newTestPositionService(storage repository.StorageRepository) PositionService {
	ids := &sequentialIDs{}
	return NewPositionService(
		storage,
		newTestCalculation(),
		NewValidationService(),
		logger.NewNop(),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(ids.next),
	)
}

func createAAPL(t *testing.T, svc PositionService) *entity.Position {
	t.Helper()
	position, err := svc.CreatePosition(context.Background(), dto.CreatePositionParams{
		Ticker:         "AAPL",
		BuyPrice:       num(150),
		OriginalShares: num(300),
	})
	require.NoError(t, err)
	return position
}

func TestCreatePosition(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryRepository(0)
	svc := newTestPositionService(storage)

	position := createAAPL(t, svc)

	assert.Equal(t, "id-1", position.ID)
	assert.Equal(t, "AAPL", position.Ticker)
	assertDecimal(t, "150", position.BuyPrice)
	assert.Equal(t, int64(300), position.OriginalShares)
	assert.Equal(t, int64(300), position.RemainingShares)
	assertDecimal(t, "225", position.SellTargets.FirstTarget)
	assertDecimal(t, "300", position.SellTargets.SecondTarget)
	assert.Equal(t, int64(100), position.SellTargets.FirstTargetShares)
	assert.Equal(t, int64(100), position.SellTargets.SecondTargetShares)
	assert.Equal(t, int64(100), position.SellTargets.RemainingShares)
	assertDecimal(t, "120", position.StopLoss.Price)
	assert.Equal(t, entity.StopLossStatusInitial, position.StopLoss.Status)
	require.Len(t, position.StopLoss.ProgressionHistory, 1)
	assert.Equal(t, "Initial stop-loss set at -20%", position.StopLoss.ProgressionHistory[0].Reason)
	assert.Equal(t, fixedNow, position.CreatedAt)

	stored, err := storage.LoadPositions(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, position.ID, stored[0].ID)
}

func TestCreatePosition_ValidationFailure(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryRepository(0)
	svc := newTestPositionService(storage)

	_, err := svc.CreatePosition(ctx, dto.CreatePositionParams{Ticker: "INVALID123", BuyPrice: num(-150), OriginalShares: num(0)})
	require.ErrorIs(t, err, ErrValidationFailed)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Len(t, vErr.Result.Errors, 3)

	stored, err := storage.LoadPositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestCreatePosition_DuplicateTicker(t *testing.T) {
	svc := newTestPositionService(repository.NewMemoryRepository(0))
	createAAPL(t, svc)

	_, err := svc.CreatePosition(context.Background(), dto.CreatePositionParams{Ticker: "AAPL", BuyPrice: num(10), OriginalShares: num(3)})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	fe, ok := vErr.Result.ErrorFor("ticker")
	require.True(t, ok)
	assert.Equal(t, dto.ErrorCodeDuplicateTicker, fe.Code)
}

func TestCreatePosition_QuotaExceeded(t *testing.T) {
	svc := newTestPositionService(repository.NewMemoryRepository(32))

	_, err := svc.CreatePosition(context.Background(), dto.CreatePositionParams{Ticker: "AAPL", BuyPrice: num(150), OriginalShares: num(300)})
	assert.ErrorIs(t, err, repository.ErrStorageQuotaExceeded)
}

func TestRecordTrade_FirstTargetScenario(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryRepository(0)
	svc := newTestPositionService(storage)
	position := createAAPL(t, svc)

	result, err := svc.RecordTrade(ctx, dto.RecordTradeParams{
		PositionID: position.ID,
		SharesSold: num(100),
		SellPrice:  num(225),
		TradeType:  entity.TradeTypeFirstTarget,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(200), result.Position.RemainingShares)
	assertDecimal(t, "150", result.Position.StopLoss.Price)
	assert.Equal(t, entity.StopLossStatusBreakeven, result.Position.StopLoss.Status)
	assert.Len(t, result.Position.StopLoss.ProgressionHistory, 2)

	assert.Equal(t, position.ID, result.Trade.PositionID)
	assert.Equal(t, int64(100), result.Trade.SharesSold)
	assertDecimal(t, "22500", result.Trade.TotalValue)
	assertDecimal(t, "7500", result.Trade.Profit)
	assertDecimal(t, "50", result.Trade.ProfitPercent)
	assert.Equal(t, entity.TradeTypeFirstTarget, result.Trade.TradeType)
	assert.Equal(t, fixedNow, result.Trade.ExecutedAt)

	stored, err := svc.GetPosition(ctx, position.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), stored.RemainingShares)
	assert.Equal(t, entity.StopLossStatusBreakeven, stored.StopLoss.Status)

	trades, err := svc.ListTrades(ctx, position.ID)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, result.Trade.ID, trades[0].ID)
}

func TestRecordTrade_InfersTradeType(t *testing.T) {
	tests := []struct {
		price float64
		want  entity.TradeType
	}{
		{price: 300, want: entity.TradeTypeSecondTarget},
		{price: 350, want: entity.TradeTypeSecondTarget},
		{price: 225, want: entity.TradeTypeFirstTarget},
		{price: 120, want: entity.TradeTypeStopLoss},
		{price: 100, want: entity.TradeTypeStopLoss},
		{price: 160, want: entity.TradeTypeManual},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			svc := newTestPositionService(repository.NewMemoryRepository(0))
			position := createAAPL(t, svc)

			result, err := svc.RecordTrade(context.Background(), dto.RecordTradeParams{
				PositionID: position.ID,
				SharesSold: num(10),
				SellPrice:  num(tt.price),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Trade.TradeType)
		})
	}
}

func TestRecordTrade_ManualSaleKeepsInitialStop(t *testing.T) {
	svc := newTestPositionService(repository.NewMemoryRepository(0))
	position := createAAPL(t, svc)

	result, err := svc.RecordTrade(context.Background(), dto.RecordTradeParams{
		PositionID: position.ID,
		SharesSold: num(50),
		SellPrice:  num(160),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StopLossStatusInitial, result.Position.StopLoss.Status)
	assertDecimal(t, "120", result.Position.StopLoss.Price)
	assertDecimal(t, "500", result.Trade.Profit)
	assertDecimal(t, "6.67", result.Trade.ProfitPercent)
}

func TestRecordTrade_NotFound(t *testing.T) {
	svc := newTestPositionService(repository.NewMemoryRepository(0))

	_, err := svc.RecordTrade(context.Background(), dto.RecordTradeParams{PositionID: "missing", SharesSold: num(1), SellPrice: num(1)})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidationFailed)
}

func TestRecordTrade_InsufficientSharesLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryRepository(0)
	svc := newTestPositionService(storage)
	position := createAAPL(t, svc)

	_, err := svc.RecordTrade(ctx, dto.RecordTradeParams{PositionID: position.ID, SharesSold: num(301), SellPrice: num(200)})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Len(t, vErr.Result.Errors, 1)
	assert.Equal(t, dto.ErrorCodeInsufficientShares, vErr.Result.Errors[0].Code)

	trades, err := storage.LoadTrades(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestRecordTrade_RemainingSharesNeverIncrease(t *testing.T) {
	ctx := context.Background()
	svc := newTestPositionService(repository.NewMemoryRepository(0))
	position := createAAPL(t, svc)

	remaining := position.RemainingShares
	for _, sale := range []float64{100, 50, 400, 0, 100, 50, 1} {
		result, err := svc.RecordTrade(ctx, dto.RecordTradeParams{PositionID: position.ID, SharesSold: num(sale), SellPrice: num(230)})
		current, getErr := svc.GetPosition(ctx, position.ID)
		require.NoError(t, getErr)
		assert.LessOrEqual(t, current.RemainingShares, remaining)
		if err == nil {
			assert.Equal(t, remaining-int64(sale), result.Position.RemainingShares)
		}
		remaining = current.RemainingShares
	}
	assert.Equal(t, int64(0), remaining)
}

func TestRecordTrade_ConcurrentTradesAreSerialized(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryRepository(0)
	svc := newTestPositionService(storage)
	position := createAAPL(t, svc)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordTrade(ctx, dto.RecordTradeParams{PositionID: position.ID, SharesSold: num(10), SellPrice: num(200)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := svc.GetPosition(ctx, position.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.RemainingShares)

	trades, err := storage.LoadTrades(ctx)
	require.NoError(t, err)
	assert.Len(t, trades, 30)
}

// splitStore is a StorageRepository without snapshot support whose position writes can be made to fail.
type splitStore struct {
	repository.StorageRepository
	failPositions error
}

func (s *splitStore) SavePositions(ctx context.Context, positions []entity.Position) error {
	if s.failPositions != nil {
		return s.failPositions
	}
	return s.StorageRepository.SavePositions(ctx, positions)
}

func TestRecordTrade_RestoresTradesWhenPositionWriteFails(t *testing.T) {
	ctx := context.Background()
	store := &splitStore{StorageRepository: repository.NewMemoryRepository(0)}
	svc := newTestPositionService(store)
	position := createAAPL(t, svc)

	store.failPositions = fmt.Errorf("%w: disk full", repository.ErrStorageQuotaExceeded)

	_, err := svc.RecordTrade(ctx, dto.RecordTradeParams{PositionID: position.ID, SharesSold: num(100), SellPrice: num(225)})
	require.ErrorIs(t, err, repository.ErrStorageQuotaExceeded)

	trades, err := store.LoadTrades(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades, "trade must not survive without its position update")

	stored, err := svc.GetPosition(ctx, position.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), stored.RemainingShares)
	assert.Equal(t, entity.StopLossStatusInitial, stored.StopLoss.Status)
}

// corruptStore reports corrupted data on every load.
type corruptStore struct {
	repository.StorageRepository
}

func (s *corruptStore) LoadPositions(ctx context.Context) ([]entity.Position, error) {
	return nil, repository.ErrCorruptedData
}

func (s *corruptStore) LoadTrades(ctx context.Context) ([]entity.Trade, error) {
	return nil, repository.ErrCorruptedData
}

func TestLoad_CorruptedDataDegradesToEmpty(t *testing.T) {
	svc := newTestPositionService(&corruptStore{StorageRepository: repository.NewMemoryRepository(0)})

	positions, err := svc.GetAllPositions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, positions)

	metrics, err := svc.CalculatePortfolioMetrics(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.TotalPositions)
}

func TestDeletePosition_CascadesTrades(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryRepository(0)
	svc := newTestPositionService(storage)

	aapl := createAAPL(t, svc)
	msft, err := svc.CreatePosition(ctx, dto.CreatePositionParams{Ticker: "MSFT", BuyPrice: num(100), OriginalShares: num(30)})
	require.NoError(t, err)

	_, err = svc.RecordTrade(ctx, dto.RecordTradeParams{PositionID: aapl.ID, SharesSold: num(100), SellPrice: num(225)})
	require.NoError(t, err)
	_, err = svc.RecordTrade(ctx, dto.RecordTradeParams{PositionID: msft.ID, SharesSold: num(10), SellPrice: num(150)})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePosition(ctx, aapl.ID))

	positions, err := svc.GetAllPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, msft.ID, positions[0].ID)

	trades, err := storage.LoadTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, msft.ID, trades[0].PositionID)

	_, err = svc.GetPosition(ctx, aapl.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, svc.DeletePosition(ctx, aapl.ID), "delete is idempotent")
	assert.NoError(t, svc.DeletePosition(ctx, "never-existed"))
}

func TestCalculatePortfolioMetrics(t *testing.T) {
	ctx := context.Background()
	svc := newTestPositionService(repository.NewMemoryRepository(0))

	aapl := createAAPL(t, svc)
	_, err := svc.CreatePosition(ctx, dto.CreatePositionParams{Ticker: "MSFT", BuyPrice: num(100), OriginalShares: num(30)})
	require.NoError(t, err)
	_, err = svc.CreatePosition(ctx, dto.CreatePositionParams{Ticker: "TSLA", BuyPrice: num(50), OriginalShares: num(10)})
	require.NoError(t, err)

	_, err = svc.RecordTrade(ctx, dto.RecordTradeParams{PositionID: aapl.ID, SharesSold: num(100), SellPrice: num(225)})
	require.NoError(t, err)

	metrics, err := svc.CalculatePortfolioMetrics(ctx, map[string]decimal.Decimal{
		"AAPL": d("200"),
		"MSFT": d("80"),
	})
	require.NoError(t, err)

	// AAPL: 200 remaining at 200 = 40000, realized 7500, cost 45000
	// MSFT: 30 at 80 = 2400, cost 3000, at stop-loss
	// TSLA: no price, cost 500
	assert.Equal(t, 3, metrics.TotalPositions)
	assertDecimal(t, "42400", metrics.TotalValue)
	assertDecimal(t, "48500", metrics.TotalCost)
	assertDecimal(t, "7500", metrics.RealizedProfit)
	// 42400 - (48500 - 22500)
	assertDecimal(t, "16400", metrics.UnrealizedProfit)
	assertDecimal(t, "23900", metrics.TotalProfit)
	assertDecimal(t, "49.28", metrics.TotalProfitPercent)
	assertDecimal(t, "16.43", metrics.AverageReturnPercent)
	assert.Equal(t, 0, metrics.PositionsAtTarget)
	assert.Equal(t, 1, metrics.PositionsAtStopLoss)
	assert.Equal(t, fixedNow, metrics.CalculatedAt)
}

func TestCalculatePortfolioMetrics_Empty(t *testing.T) {
	svc := newTestPositionService(repository.NewMemoryRepository(0))

	metrics, err := svc.CalculatePortfolioMetrics(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.TotalPositions)
	assert.True(t, metrics.TotalProfitPercent.IsZero())
	assert.True(t, metrics.AverageReturnPercent.IsZero())
}

func TestUpdateCurrentPrice(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryRepository(0)
	svc := newTestPositionService(storage)
	position := createAAPL(t, svc)

	updated, err := svc.UpdateCurrentPrice(ctx, position.ID, 230.5)
	require.NoError(t, err)
	require.NotNil(t, updated.CurrentPrice)
	assertDecimal(t, "230.5", *updated.CurrentPrice)

	stored, err := storage.LoadPositions(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored[0].CurrentPrice, "scenario price is never persisted")

	_, err = svc.UpdateCurrentPrice(ctx, position.ID, -1)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.UpdateCurrentPrice(ctx, "missing", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCalculatePositionMetricsAndAnalyze(t *testing.T) {
	ctx := context.Background()
	svc := newTestPositionService(repository.NewMemoryRepository(0))
	position := createAAPL(t, svc)

	metrics, err := svc.CalculatePositionMetrics(ctx, position.ID, 225)
	require.NoError(t, err)
	assertDecimal(t, "67500", metrics.TotalValue)
	assertDecimal(t, "22500", metrics.UnrealizedProfit)
	assertDecimal(t, "50", metrics.UnrealizedProfitPercent)

	levels, err := svc.AnalyzePosition(ctx, position.ID, 225)
	require.NoError(t, err)
	assert.Equal(t, dto.ActionSellFirstThird, levels.RecommendedAction)

	_, err = svc.AnalyzePosition(ctx, position.ID, 0)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGetPositionStatus(t *testing.T) {
	svc := newTestPositionService(repository.NewMemoryRepository(0))

	tests := []struct {
		remaining int64
		want      entity.PositionStatus
	}{
		{remaining: 300, want: entity.PositionStatusActive},
		{remaining: 299, want: entity.PositionStatusPartiallySold},
		{remaining: 200, want: entity.PositionStatusPartiallySold},
		{remaining: 102, want: entity.PositionStatusMostlySold},
		{remaining: 1, want: entity.PositionStatusMostlySold},
		{remaining: 0, want: entity.PositionStatusClosed},
	}

	for _, tt := range tests {
		got := svc.GetPositionStatus(entity.Position{OriginalShares: 300, RemainingShares: tt.remaining})
		assert.Equal(t, tt.want, got, "remaining %d", tt.remaining)
	}
}

func TestClearAllAndHealth(t *testing.T) {
	ctx := context.Background()
	svc := newTestPositionService(repository.NewMemoryRepository(1 << 20))
	createAAPL(t, svc)

	health := svc.StorageHealth(ctx)
	assert.True(t, health.Available)
	assert.Positive(t, health.SpaceUsed)

	require.NoError(t, svc.ClearAll(ctx))
	positions, err := svc.GetAllPositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions)
}
