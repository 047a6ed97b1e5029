package repository

import (
	"context"
	"encoding/json"
	"sync"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/tracker/dto"
)

// NewMemoryRepository creates a process-local store. maxBytes bounds the JSON size of
// both collections together; zero means unbounded.
func NewMemoryRepository(maxBytes int64) StorageRepository {
	return &memoryRepository{
		positions: []entity.Position{},
		trades:    []entity.Trade{},
		maxBytes:  maxBytes,
	}
}

type memoryRepository struct {
	mu        sync.RWMutex
	positions []entity.Position
	trades    []entity.Trade
	maxBytes  int64
}

func (r *memoryRepository) LoadPositions(ctx context.Context) ([]entity.Position, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clonePositions(r.positions), nil
}

func (r *memoryRepository) SavePositions(ctx context.Context, positions []entity.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkSize(positions, r.trades); err != nil {
		return err
	}
	r.positions = clonePositions(positions)
	return nil
}

func (r *memoryRepository) LoadTrades(ctx context.Context) ([]entity.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneTrades(r.trades), nil
}

func (r *memoryRepository) SaveTrades(ctx context.Context, trades []entity.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkSize(r.positions, trades); err != nil {
		return err
	}
	r.trades = cloneTrades(trades)
	return nil
}

func (r *memoryRepository) SaveSnapshot(ctx context.Context, positions []entity.Position, trades []entity.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkSize(positions, trades); err != nil {
		return err
	}
	r.positions = clonePositions(positions)
	r.trades = cloneTrades(trades)
	return nil
}

func (r *memoryRepository) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.positions = []entity.Position{}
	r.trades = []entity.Trade{}
	return nil
}

func (r *memoryRepository) Health(ctx context.Context) dto.StorageHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return newHealth("memory", true, r.size(r.positions, r.trades), r.maxBytes)
}

func (r *memoryRepository) checkSize(positions []entity.Position, trades []entity.Trade) error {
	if r.maxBytes <= 0 {
		return nil
	}
	return checkQuota(r.maxBytes, r.size(positions, trades))
}

func (r *memoryRepository) size(positions []entity.Position, trades []entity.Trade) int64 {
	p, _ := json.Marshal(positions)
	t, _ := json.Marshal(trades)
	return int64(len(p) + len(t))
}
