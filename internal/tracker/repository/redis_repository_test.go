package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository_KeysExpireTogether(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedis(t)
	repo := NewRedisRepository(client, time.Hour, 0, logger.NewNop())

	position := samplePosition("p1", "AAPL")
	position.RemainingShares = 200
	require.NoError(t, repo.(SnapshotWriter).SaveSnapshot(ctx,
		[]entity.Position{position},
		[]entity.Trade{sampleTrade("t1", "p1")},
	))

	mr.FastForward(40 * time.Minute)
	require.NoError(t, repo.SavePositions(ctx, []entity.Position{position, samplePosition("p2", "MSFT")}))
	assert.Equal(t, time.Hour, mr.TTL(common.RedisKeyTrades))
	assert.Equal(t, time.Hour, mr.TTL(common.RedisKeyPositions))

	mr.FastForward(30 * time.Minute)

	positions, err := repo.LoadPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	trades, err := repo.LoadTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)

	var sold int64
	for _, trade := range trades {
		sold += trade.SharesSold
	}
	assert.Equal(t, positions[0].OriginalShares-sold, positions[0].RemainingShares)
}

func TestRedisRepository_SaveTradesRenewsPositions(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedis(t)
	repo := NewRedisRepository(client, time.Hour, 0, logger.NewNop())

	require.NoError(t, repo.SavePositions(ctx, []entity.Position{samplePosition("p1", "AAPL")}))
	mr.FastForward(50 * time.Minute)
	require.NoError(t, repo.SaveTrades(ctx, []entity.Trade{sampleTrade("t1", "p1")}))

	assert.Equal(t, time.Hour, mr.TTL(common.RedisKeyPositions))
	assert.Equal(t, time.Hour, mr.TTL(common.RedisKeyTrades))
}

func TestRedisRepository_SessionExpiresAsOneUnit(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedis(t)
	repo := NewRedisRepository(client, time.Hour, 0, logger.NewNop())

	require.NoError(t, repo.SavePositions(ctx, []entity.Position{samplePosition("p1", "AAPL")}))
	require.NoError(t, repo.SaveTrades(ctx, []entity.Trade{sampleTrade("t1", "p1")}))
	mr.FastForward(61 * time.Minute)

	positions, err := repo.LoadPositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions)
	trades, err := repo.LoadTrades(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestRedisRepository_NoTTLKeepsKeys(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedis(t)
	repo := NewRedisRepository(client, 0, 0, logger.NewNop())

	require.NoError(t, repo.SaveTrades(ctx, []entity.Trade{sampleTrade("t1", "p1")}))
	require.NoError(t, repo.SavePositions(ctx, []entity.Position{samplePosition("p1", "AAPL")}))

	assert.Zero(t, mr.TTL(common.RedisKeyPositions))
	assert.Zero(t, mr.TTL(common.RedisKeyTrades))
}

func TestRedisRepository_QuotaCountsBothKeys(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedis(t)

	trades := []entity.Trade{sampleTrade("t1", "p1")}
	tradeData, err := encode(trades)
	require.NoError(t, err)

	repo := NewRedisRepository(client, time.Hour, int64(len(tradeData))+64, logger.NewNop())
	require.NoError(t, repo.SaveTrades(ctx, trades))

	err = repo.SavePositions(ctx, []entity.Position{samplePosition("p1", "AAPL")})
	require.ErrorIs(t, err, ErrStorageQuotaExceeded)
	assert.False(t, mr.Exists(common.RedisKeyPositions))

	err = repo.(SnapshotWriter).SaveSnapshot(ctx, []entity.Position{samplePosition("p1", "AAPL")}, trades)
	require.ErrorIs(t, err, ErrStorageQuotaExceeded)

	health := repo.Health(ctx)
	assert.True(t, health.Available)
	assert.Equal(t, int64(len(tradeData)), health.SpaceUsed)
	assert.Equal(t, int64(64), health.SpaceRemaining)
}

func TestRedisRepository_CorruptedValuesLoadEmpty(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedis(t)
	repo := NewRedisRepository(client, time.Hour, 0, logger.NewNop())

	require.NoError(t, mr.Set(common.RedisKeyPositions, "{not json"))
	require.NoError(t, mr.Set(common.RedisKeyTrades, "[{"))

	positions, err := repo.LoadPositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions)

	trades, err := repo.LoadTrades(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestRedisRepository_Unreachable(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedis(t)
	repo := NewRedisRepository(client, time.Hour, 0, logger.NewNop())
	mr.Close()

	_, err := repo.LoadPositions(ctx)
	require.ErrorIs(t, err, ErrStorageUnavailable)

	err = repo.SaveTrades(ctx, nil)
	require.ErrorIs(t, err, ErrStorageUnavailable)

	health := repo.Health(ctx)
	assert.False(t, health.Available)
	assert.Equal(t, "redis", health.Backend)
}

func TestRedisPriceRepository(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedis(t)
	repo := NewRedisPriceRepository(client, 10*time.Minute)

	require.NoError(t, repo.SetPrice(ctx, "aapl", decimal.RequireFromString("187.35")))

	key := "last_price:AAPL"
	assert.Equal(t, "187.35", mr.HGet(key, "price"))
	ts, err := strconv.ParseInt(mr.HGet(key, "timestamp"), 10, 64)
	require.NoError(t, err)
	assert.Positive(t, ts)
	assert.Equal(t, 10*time.Minute, mr.TTL(key))

	prices, err := repo.GetPrices(ctx, []string{"AAPL", "msft"})
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.True(t, prices["AAPL"].Equal(decimal.RequireFromString("187.35")))

	mr.FastForward(11 * time.Minute)
	prices, err = repo.GetPrices(ctx, []string{"AAPL"})
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestRedisPriceRepository_SkipsInvalidValues(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedis(t)
	repo := NewRedisPriceRepository(client, 0)

	mr.HSet("last_price:MSFT", "price", "not-a-number")
	mr.HSet("last_price:TSLA", "price", "-3")
	require.NoError(t, repo.SetPrice(ctx, "NVDA", decimal.NewFromInt(900)))

	prices, err := repo.GetPrices(ctx, []string{"MSFT", "TSLA", "NVDA"})
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.True(t, prices["NVDA"].Equal(decimal.NewFromInt(900)))
	assert.Zero(t, mr.TTL("last_price:NVDA"))

	empty, err := repo.GetPrices(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
