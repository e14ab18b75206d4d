package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yafera/herdbook/internal/config"
)

// ErrTableNotFound is returned by ReadTable when the worksheet does not exist.
var ErrTableNotFound = errors.New("table not found")

// Repository is a tabular backend offering whole-table reads and whole-table
// overwrites. Rows include the header row.
type Repository interface {
	ReadTable(ctx context.Context, table string) ([][]interface{}, error)
	OverwriteTable(ctx context.Context, table string, rows [][]interface{}) error
}

// Open returns the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	switch cfg.Backend {
	case config.BackendGoogle:
		repo, err := NewGoogleSheetRepository(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.BackendMemory:
		if logger != nil {
			logger.Warn("using in-memory sheets backend, records are lost on exit")
		}
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported sheets backend %q", cfg.Backend)
	}
}
