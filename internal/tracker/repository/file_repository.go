package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/tracker/dto"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/utils"
)

// fileDocument is the on-disk layout of the file backend.
type fileDocument struct {
	Version   string            `json:"version"`
	SavedAt   time.Time         `json:"saved_at"`
	Positions []entity.Position `json:"positions"`
	Trades    []entity.Trade    `json:"trades"`
}

// NewFileRepository creates a store backed by a single JSON document at path.
func NewFileRepository(path string, maxBytes int64, log *logger.Logger) StorageRepository {
	return &fileRepository{
		path:     path,
		maxBytes: maxBytes,
		logger:   log,
	}
}

type fileRepository struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	logger   *logger.Logger
}

func (r *fileRepository) LoadPositions(ctx context.Context) ([]entity.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}
	return doc.Positions, nil
}

func (r *fileRepository) SavePositions(ctx context.Context, positions []entity.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	doc.Positions = clonePositions(positions)
	return r.write(doc)
}

func (r *fileRepository) LoadTrades(ctx context.Context) ([]entity.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}
	return doc.Trades, nil
}

func (r *fileRepository) SaveTrades(ctx context.Context, trades []entity.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	doc.Trades = cloneTrades(trades)
	return r.write(doc)
}

func (r *fileRepository) SaveSnapshot(ctx context.Context, positions []entity.Position, trades []entity.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.write(fileDocument{
		Positions: clonePositions(positions),
		Trades:    cloneTrades(trades),
	})
}

func (r *fileRepository) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", ErrStorageUnavailable, r.path, err)
	}
	return nil
}

func (r *fileRepository) Health(ctx context.Context) dto.StorageHealth {
	r.mu.Lock()
	defer r.mu.Unlock()

	var used int64
	info, err := os.Stat(r.path)
	switch {
	case err == nil:
		used = info.Size()
	case !errors.Is(err, os.ErrNotExist):
		return newHealth("file", false, 0, r.maxBytes)
	}

	available := ensureDir(filepath.Dir(r.path)) == nil
	return newHealth("file", available, used, r.maxBytes)
}

// read returns the stored document. A missing file is an empty document and an
// unparseable one is logged and treated as empty.
func (r *fileRepository) read() (fileDocument, error) {
	doc := fileDocument{Positions: []entity.Position{}, Trades: []entity.Trade{}}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, r.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}

	var stored fileDocument
	if err := json.Unmarshal(data, &stored); err != nil {
		r.logger.Warn("Stored document is corrupted, starting empty",
			logger.StringField("path", r.path), logger.ErrorField(err))
		return doc, nil
	}
	if stored.Positions != nil {
		doc.Positions = stored.Positions
	}
	if stored.Trades != nil {
		doc.Trades = stored.Trades
	}
	return doc, nil
}

// write replaces the document atomically: temp file, fsync, rename.
func (r *fileRepository) write(doc fileDocument) error {
	doc.Version = common.StorageSchemaVersion
	doc.SavedAt = utils.TimeNow()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStorageUnavailable, err)
	}
	if err := checkQuota(r.maxBytes, int64(len(data))); err != nil {
		return err
	}
	if err := ensureDir(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	tmp := r.path + ".tmp"
	f, err := createTemp(tmp)
	if err != nil {
		return classifyWriteError(err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return classifyWriteError(err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return classifyWriteError(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return classifyWriteError(err)
	}

	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return classifyWriteError(err)
	}
	return nil
}

// tempFile is the part of *os.File the atomic write needs.
type tempFile interface {
	Write(p []byte) (int, error)
	Sync() error
	Close() error
}

var createTemp = func(name string) (tempFile, error) {
	return os.Create(name)
}

func classifyWriteError(err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%w: %v", ErrStorageQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
