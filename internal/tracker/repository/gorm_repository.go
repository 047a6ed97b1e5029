package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/tracker/dto"
	"golang-stock-tracker/pkg/logger"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const insertBatchSize = 100

// NewGormRepository creates a store over the positions and trades tables. Works with
// the postgres and sqlite dialects.
func NewGormRepository(db *gorm.DB, maxBytes int64, log *logger.Logger) StorageRepository {
	return &gormRepository{
		db:       db,
		maxBytes: maxBytes,
		logger:   log,
	}
}

// Migrate creates or updates the tracker tables. Postgres deployments use cmd/migrate instead.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&entity.Position{}, &entity.Trade{})
}

type gormRepository struct {
	db       *gorm.DB
	maxBytes int64
	logger   *logger.Logger
}

func (r *gormRepository) LoadPositions(ctx context.Context) ([]entity.Position, error) {
	var positions []entity.Position
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&positions).Error; err != nil {
		if r.recoverable(ctx, err) {
			r.logger.Warn("Stored positions are corrupted, starting empty", logger.ErrorField(err))
			return []entity.Position{}, nil
		}
		return nil, classifyGormError(err)
	}
	if positions == nil {
		positions = []entity.Position{}
	}
	return positions, nil
}

func (r *gormRepository) SavePositions(ctx context.Context, positions []entity.Position) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.replacePositions(tx, positions)
	})
}

func (r *gormRepository) LoadTrades(ctx context.Context) ([]entity.Trade, error) {
	var trades []entity.Trade
	if err := r.db.WithContext(ctx).Order("executed_at, id").Find(&trades).Error; err != nil {
		if r.recoverable(ctx, err) {
			r.logger.Warn("Stored trades are corrupted, starting empty", logger.ErrorField(err))
			return []entity.Trade{}, nil
		}
		return nil, classifyGormError(err)
	}
	if trades == nil {
		trades = []entity.Trade{}
	}
	return trades, nil
}

func (r *gormRepository) SaveTrades(ctx context.Context, trades []entity.Trade) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.replaceTrades(tx, trades)
	})
}

// SaveSnapshot replaces both tables in one transaction.
func (r *gormRepository) SaveSnapshot(ctx context.Context, positions []entity.Position, trades []entity.Trade) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.replaceTrades(tx, trades); err != nil {
			return err
		}
		return r.replacePositions(tx, positions)
	})
}

func (r *gormRepository) ClearAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&entity.Trade{}).Error; err != nil {
			return classifyGormError(err)
		}
		if err := all.Delete(&entity.Position{}).Error; err != nil {
			return classifyGormError(err)
		}
		return nil
	})
}

func (r *gormRepository) Health(ctx context.Context) dto.StorageHealth {
	backend := r.db.Dialector.Name()

	sqlDB, err := r.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return newHealth(backend, false, 0, r.maxBytes)
	}

	var used int64
	switch backend {
	case "postgres":
		err = r.db.WithContext(ctx).
			Raw("SELECT COALESCE(pg_total_relation_size('positions'), 0) + COALESCE(pg_total_relation_size('trades'), 0)").
			Scan(&used).Error
	case "sqlite":
		err = r.db.WithContext(ctx).
			Raw("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").
			Scan(&used).Error
	}
	if err != nil {
		r.logger.Warn("Failed to measure storage size", logger.ErrorField(err), logger.StringField("backend", backend))
	}
	return newHealth(backend, true, used, r.maxBytes)
}

func (r *gormRepository) replacePositions(tx *gorm.DB, positions []entity.Position) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entity.Position{}).Error; err != nil {
		return classifyGormError(err)
	}
	if len(positions) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(clonePositions(positions), insertBatchSize).Error; err != nil {
		return classifyGormError(err)
	}
	return nil
}

func (r *gormRepository) replaceTrades(tx *gorm.DB, trades []entity.Trade) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entity.Trade{}).Error; err != nil {
		return classifyGormError(err)
	}
	if len(trades) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(cloneTrades(trades), insertBatchSize).Error; err != nil {
		return classifyGormError(err)
	}
	return nil
}

// recoverable reports whether a failed read was a decode problem on a reachable database.
func (r *gormRepository) recoverable(ctx context.Context, err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return false
	}
	sqlDB, dbErr := r.db.DB()
	if dbErr != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil && isDecodeError(err)
}

func isDecodeError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sql: Scan error") ||
		strings.Contains(msg, "unsupported Scan") ||
		strings.Contains(msg, "invalid character") ||
		strings.Contains(msg, "unexpected end of JSON input") ||
		strings.Contains(msg, "can't convert")
}

func classifyGormError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageQuotaExceeded) || errors.Is(err, ErrStorageUnavailable) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "53100", "53200":
			return fmt.Errorf("%w: %v", ErrStorageQuotaExceeded, err)
		}
	}
	msg := err.Error()
	if strings.Contains(msg, "database or disk is full") || strings.Contains(msg, "SQLITE_FULL") {
		return fmt.Errorf("%w: %v", ErrStorageQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
