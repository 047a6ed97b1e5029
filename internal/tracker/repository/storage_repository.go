package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/tracker/dto"
)

var (
	// ErrStorageUnavailable is returned when the backend cannot be reached or written.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStorageQuotaExceeded is returned when a write would not fit in the backend.
	ErrStorageQuotaExceeded = errors.New("storage quota exceeded")
	// ErrCorruptedData marks stored bytes that cannot be decoded. Loads recover from it
	// by returning an empty collection.
	ErrCorruptedData = errors.New("corrupted stored data")
)

// StorageRepository persists the position and trade collections as whole units.
// Every save replaces the stored collection.
type StorageRepository interface {
	LoadPositions(ctx context.Context) ([]entity.Position, error)
	SavePositions(ctx context.Context, positions []entity.Position) error
	LoadTrades(ctx context.Context) ([]entity.Trade, error)
	SaveTrades(ctx context.Context, trades []entity.Trade) error
	ClearAll(ctx context.Context) error
	Health(ctx context.Context) dto.StorageHealth
}

// SnapshotWriter is implemented by backends that can write both collections atomically.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, positions []entity.Position, trades []entity.Trade) error
}

func decodePositions(data []byte) ([]entity.Position, error) {
	var positions []entity.Position
	if err := json.Unmarshal(data, &positions); err != nil {
		return nil, fmt.Errorf("%w: positions: %v", ErrCorruptedData, err)
	}
	if positions == nil {
		positions = []entity.Position{}
	}
	return positions, nil
}

func decodeTrades(data []byte) ([]entity.Trade, error) {
	var trades []entity.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, fmt.Errorf("%w: trades: %v", ErrCorruptedData, err)
	}
	if trades == nil {
		trades = []entity.Trade{}
	}
	return trades, nil
}

func encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrStorageUnavailable, err)
	}
	return data, nil
}

// checkQuota fails when total bytes exceed maxBytes. A non-positive maxBytes disables the check.
func checkQuota(maxBytes, total int64) error {
	if maxBytes > 0 && total > maxBytes {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d bytes", ErrStorageQuotaExceeded, total, maxBytes)
	}
	return nil
}

func newHealth(backend string, available bool, used, maxBytes int64) dto.StorageHealth {
	health := dto.StorageHealth{
		Backend:   backend,
		Available: available,
		SpaceUsed: used,
	}
	if maxBytes > 0 {
		remaining := maxBytes - used
		if remaining < 0 {
			remaining = 0
		}
		health.SpaceRemaining = remaining
		health.QuotaExceeded = used >= maxBytes
	}
	return health
}

func clonePositions(positions []entity.Position) []entity.Position {
	out := make([]entity.Position, len(positions))
	for i, p := range positions {
		out[i] = p.WithoutTransient()
	}
	return out
}

func cloneTrades(trades []entity.Trade) []entity.Trade {
	out := make([]entity.Trade, len(trades))
	copy(out, trades)
	return out
}
