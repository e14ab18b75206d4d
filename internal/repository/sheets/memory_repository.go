package sheets

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepository keeps tables in process memory. It backs tests and local
// runs without spreadsheet credentials.
type MemoryRepository struct {
	mu       sync.Mutex
	tables   map[string][][]interface{}
	readErr  error
	writeErr error
	writes   int
}

// NewMemoryRepository returns an empty in-memory backend.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tables: make(map[string][][]interface{})}
}

// ReadTable returns a copy of the table or ErrTableNotFound.
func (m *MemoryRepository) ReadTable(ctx context.Context, table string) ([][]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return nil, fmt.Errorf("read table %s: %w", table, m.readErr)
	}

	rows, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("read table %s: %w", table, ErrTableNotFound)
	}
	return copyRows(rows), nil
}

// OverwriteTable stores a copy of rows as the full table.
func (m *MemoryRepository) OverwriteTable(ctx context.Context, table string, rows [][]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return fmt.Errorf("overwrite table %s: %w", table, m.writeErr)
	}

	m.tables[table] = copyRows(rows)
	m.writes++
	return nil
}

// Seed replaces a table without counting as a write.
func (m *MemoryRepository) Seed(table string, rows [][]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = copyRows(rows)
}

// FailReads makes every subsequent read fail with err. Pass nil to recover.
func (m *MemoryRepository) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailWrites makes every subsequent write fail with err. Pass nil to recover.
func (m *MemoryRepository) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Writes reports how many overwrites succeeded.
func (m *MemoryRepository) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func copyRows(rows [][]interface{}) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		out[i] = append([]interface{}(nil), row...)
	}
	return out
}
