package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/tracker/dto"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"
	redisPkg "golang-stock-tracker/pkg/redis"

	redis "github.com/redis/go-redis/v9"
)

// NewRedisRepository creates a session store in Redis. Both keys expire after
// sessionTTL of inactivity; zero keeps them forever.
func NewRedisRepository(client *redisPkg.Client, sessionTTL time.Duration, maxBytes int64, log *logger.Logger) StorageRepository {
	return &redisRepository{
		client:     client,
		sessionTTL: sessionTTL,
		maxBytes:   maxBytes,
		logger:     log,
	}
}

type redisRepository struct {
	client     *redisPkg.Client
	sessionTTL time.Duration
	maxBytes   int64
	logger     *logger.Logger
}

func (r *redisRepository) LoadPositions(ctx context.Context) ([]entity.Position, error) {
	data, err := r.get(ctx, common.RedisKeyPositions)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []entity.Position{}, nil
	}
	positions, err := decodePositions(data)
	if err != nil {
		r.logger.Warn("Stored positions are corrupted, starting empty", logger.ErrorField(err))
		return []entity.Position{}, nil
	}
	return positions, nil
}

func (r *redisRepository) SavePositions(ctx context.Context, positions []entity.Position) error {
	data, err := encode(clonePositions(positions))
	if err != nil {
		return err
	}
	if err := r.checkSize(ctx, common.RedisKeyPositions, len(data)); err != nil {
		return err
	}
	return r.set(ctx, common.RedisKeyPositions, data)
}

func (r *redisRepository) LoadTrades(ctx context.Context) ([]entity.Trade, error) {
	data, err := r.get(ctx, common.RedisKeyTrades)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []entity.Trade{}, nil
	}
	trades, err := decodeTrades(data)
	if err != nil {
		r.logger.Warn("Stored trades are corrupted, starting empty", logger.ErrorField(err))
		return []entity.Trade{}, nil
	}
	return trades, nil
}

func (r *redisRepository) SaveTrades(ctx context.Context, trades []entity.Trade) error {
	data, err := encode(trades)
	if err != nil {
		return err
	}
	if err := r.checkSize(ctx, common.RedisKeyTrades, len(data)); err != nil {
		return err
	}
	return r.set(ctx, common.RedisKeyTrades, data)
}

// SaveSnapshot writes both keys inside MULTI/EXEC.
func (r *redisRepository) SaveSnapshot(ctx context.Context, positions []entity.Position, trades []entity.Trade) error {
	positionData, err := encode(clonePositions(positions))
	if err != nil {
		return err
	}
	tradeData, err := encode(trades)
	if err != nil {
		return err
	}
	if err := checkQuota(r.maxBytes, int64(len(positionData)+len(tradeData))); err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, common.RedisKeyPositions, positionData, r.sessionTTL)
		pipe.Set(ctx, common.RedisKeyTrades, tradeData, r.sessionTTL)
		return nil
	})
	return classifyRedisError(err)
}

func (r *redisRepository) ClearAll(ctx context.Context) error {
	return classifyRedisError(r.client.Del(ctx, common.RedisKeyPositions, common.RedisKeyTrades).Err())
}

func (r *redisRepository) Health(ctx context.Context) dto.StorageHealth {
	if err := r.client.Ping(ctx).Err(); err != nil {
		r.logger.Warn("Redis storage is unreachable", logger.ErrorField(err))
		return newHealth("redis", false, 0, r.maxBytes)
	}

	pipe := r.client.Pipeline()
	positions := pipe.StrLen(ctx, common.RedisKeyPositions)
	trades := pipe.StrLen(ctx, common.RedisKeyTrades)
	if _, err := pipe.Exec(ctx); err != nil {
		return newHealth("redis", false, 0, r.maxBytes)
	}
	return newHealth("redis", true, positions.Val()+trades.Val(), r.maxBytes)
}

// set writes key and renews the expiry of its sibling in the same MULTI, so
// positions and trades always expire together.
func (r *redisRepository) set(ctx context.Context, key string, data []byte) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, r.sessionTTL)
		if r.sessionTTL > 0 {
			pipe.Expire(ctx, siblingKey(key), r.sessionTTL)
		} else {
			pipe.Persist(ctx, siblingKey(key))
		}
		return nil
	})
	return classifyRedisError(err)
}

func siblingKey(key string) string {
	if key == common.RedisKeyTrades {
		return common.RedisKeyPositions
	}
	return common.RedisKeyTrades
}

func (r *redisRepository) get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyRedisError(err)
	}
	return data, nil
}

// checkSize projects the total size with key replaced by size bytes.
func (r *redisRepository) checkSize(ctx context.Context, key string, size int) error {
	if r.maxBytes <= 0 {
		return nil
	}
	otherSize, err := r.client.StrLen(ctx, siblingKey(key)).Result()
	if err != nil {
		return classifyRedisError(err)
	}
	return checkQuota(r.maxBytes, otherSize+int64(size))
}

func classifyRedisError(err error) error {
	if err == nil {
		return nil
	}
	if strings.HasPrefix(err.Error(), "OOM") {
		return fmt.Errorf("%w: %v", ErrStorageQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
