package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-stock-tracker/pkg/common"
	redisPkg "golang-stock-tracker/pkg/redis"
	"golang-stock-tracker/pkg/utils"

	"github.com/patrickmn/go-cache"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// PriceRepository keeps the last known market price per ticker.
type PriceRepository interface {
	SetPrice(ctx context.Context, ticker string, price decimal.Decimal) error
	// GetPrices returns the known prices for tickers. Unknown tickers are absent from the map.
	GetPrices(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error)
}

// NewRedisPriceRepository stores prices as last_price:<TICKER> hashes that expire after ttl.
func NewRedisPriceRepository(client *redisPkg.Client, ttl time.Duration) PriceRepository {
	return &redisPriceRepository{client: client, ttl: ttl}
}

type redisPriceRepository struct {
	client *redisPkg.Client
	ttl    time.Duration
}

func (r *redisPriceRepository) SetPrice(ctx context.Context, ticker string, price decimal.Decimal) error {
	key := fmt.Sprintf(common.RedisKeyLastPrice, strings.ToUpper(ticker))
	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"price":     price.String(),
		"timestamp": utils.TimeNow().Unix(),
	})
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return classifyRedisError(err)
	}
	return nil
}

func (r *redisPriceRepository) GetPrices(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(tickers))
	if len(tickers) == 0 {
		return prices, nil
	}

	pipe := r.client.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(tickers))
	for _, ticker := range tickers {
		cmds[ticker] = pipe.HGet(ctx, fmt.Sprintf(common.RedisKeyLastPrice, strings.ToUpper(ticker)), "price")
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, classifyRedisError(err)
	}

	for ticker, cmd := range cmds {
		raw, err := cmd.Result()
		if err != nil {
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil || !price.IsPositive() {
			continue
		}
		prices[ticker] = price
	}
	return prices, nil
}

// NewMemoryPriceRepository keeps prices in process memory, expiring after ttl.
func NewMemoryPriceRepository(ttl time.Duration) PriceRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &memoryPriceRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

type memoryPriceRepository struct {
	cache *cache.Cache
}

func (r *memoryPriceRepository) SetPrice(ctx context.Context, ticker string, price decimal.Decimal) error {
	r.cache.SetDefault(strings.ToUpper(ticker), price)
	return nil
}

func (r *memoryPriceRepository) GetPrices(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(tickers))
	for _, ticker := range tickers {
		if v, ok := r.cache.Get(strings.ToUpper(ticker)); ok {
			prices[ticker] = v.(decimal.Decimal)
		}
	}
	return prices, nil
}
