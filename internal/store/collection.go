package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yafera/herdbook/internal/metrics"
	"github.com/yafera/herdbook/internal/repository/sheets"
)

// collection is one entity table behind whole-table read and overwrite.
// Writes in this process are serialized; writers in other processes are not
// coordinated and the last overwrite wins.
type collection[T any] struct {
	table  string
	codec  codec[T]
	repo   sheets.Repository
	loc    *time.Location
	logger *zap.Logger

	mu sync.Mutex
}

// snapshot is a decoded table that still carries its raw rows, so a
// rewrite keeps columns the schema does not know about.
type snapshot[T any] struct {
	header  *header
	rows    [][]interface{}
	records []T
}

// read returns every record of the table. Failures degrade to an empty
// collection.
func (c *collection[T]) read(ctx context.Context) []T {
	snap, err := c.load(ctx)
	if err != nil {
		metrics.StoreReadFallbacks.WithLabelValues(c.table, "unreachable").Inc()
		metrics.StoreOperations.WithLabelValues(c.table, "read", metrics.ResultError).Inc()
		c.logger.Warn("table unreachable, using empty collection", zap.String("table", c.table), zap.Error(err))
		return nil
	}
	metrics.StoreOperations.WithLabelValues(c.table, "read", metrics.ResultOK).Inc()
	return snap.records
}

// load reads and decodes the table. A missing table is an empty snapshot;
// any other backend failure is returned.
func (c *collection[T]) load(ctx context.Context) (*snapshot[T], error) {
	rows, err := c.repo.ReadTable(ctx, c.table)
	if err != nil {
		if !errors.Is(err, sheets.ErrTableNotFound) {
			return nil, err
		}
		metrics.StoreReadFallbacks.WithLabelValues(c.table, "missing").Inc()
		c.logger.Debug("table missing, treated as empty", zap.String("table", c.table))
		rows = nil
	}

	snap := &snapshot[T]{header: newHeader(nil)}
	if len(rows) == 0 {
		return snap, nil
	}

	snap.header = newHeader(rows[0])
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		snap.rows = append(snap.rows, row)
		snap.records = append(snap.records, c.codec.decode(&cells{
			table:  c.table,
			header: snap.header,
			row:    row,
			loc:    c.loc,
			logger: c.logger,
		}))
	}
	return snap, nil
}

// append adds one record at the end of the table and rewrites it. The
// returned value is the record as it reads back from the table.
func (c *collection[T]) append(ctx context.Context, v T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	snap, err := c.load(ctx)
	if err != nil {
		metrics.StoreOperations.WithLabelValues(c.table, "append", metrics.ResultError).Inc()
		return zero, fmt.Errorf("load %s before append: %w", c.table, err)
	}

	snap.header.ensure(c.codec.columns)
	row := c.place(snap.header, nil, c.codec.encode(v, c.loc))
	snap.rows = append(snap.rows, row)

	if err := c.save(ctx, snap); err != nil {
		metrics.StoreOperations.WithLabelValues(c.table, "append", metrics.ResultError).Inc()
		return zero, err
	}

	metrics.StoreOperations.WithLabelValues(c.table, "append", metrics.ResultOK).Inc()
	c.logger.Info("record appended", zap.String("table", c.table), zap.Int("rows", len(snap.rows)))
	return c.decodeRow(snap.header, row), nil
}

// updateOne mutates the first record accepted by match and rewrites the
// table. ok is false when nothing matched; the table is then left untouched.
func (c *collection[T]) updateOne(ctx context.Context, match func(T) bool, mutate func(*T) error) (updated T, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.load(ctx)
	if err != nil {
		metrics.StoreOperations.WithLabelValues(c.table, "update", metrics.ResultError).Inc()
		return updated, false, fmt.Errorf("load %s before update: %w", c.table, err)
	}

	idx := -1
	for i, rec := range snap.records {
		if match(rec) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return updated, false, nil
	}

	rec := snap.records[idx]
	if err := mutate(&rec); err != nil {
		return updated, true, err
	}

	snap.header.ensure(c.codec.columns)
	snap.rows[idx] = c.place(snap.header, snap.rows[idx], c.codec.encode(rec, c.loc))

	if err := c.save(ctx, snap); err != nil {
		metrics.StoreOperations.WithLabelValues(c.table, "update", metrics.ResultError).Inc()
		return updated, true, err
	}

	metrics.StoreOperations.WithLabelValues(c.table, "update", metrics.ResultOK).Inc()
	return c.decodeRow(snap.header, snap.rows[idx]), true, nil
}

// save rewrites the whole table. Every row is padded to the widest row so
// the overwrite also blanks cells left over from rows that moved up.
func (c *collection[T]) save(ctx context.Context, snap *snapshot[T]) error {
	width := len(snap.header.names)
	for _, row := range snap.rows {
		width = max(width, len(row))
	}

	out := make([][]interface{}, 0, len(snap.rows)+1)
	out = append(out, padRow(snap.header.row(), width))
	for _, row := range snap.rows {
		out = append(out, padRow(row, width))
	}

	if err := c.repo.OverwriteTable(ctx, c.table, out); err != nil {
		c.logger.Error("table rewrite failed", zap.String("table", c.table), zap.Error(err))
		return fmt.Errorf("rewrite %s: %w", c.table, err)
	}
	return nil
}

// place writes the record's values into row at their header positions,
// keeping the cells of unknown columns.
func (c *collection[T]) place(h *header, row []interface{}, rec record) []interface{} {
	out := padRow(row, len(h.names))
	for column, value := range rec {
		if i, ok := h.position(column); ok {
			out[i] = value
		}
	}
	return out
}

func (c *collection[T]) decodeRow(h *header, row []interface{}) T {
	return c.codec.decode(&cells{table: c.table, header: h, row: row, loc: c.loc, logger: c.logger})
}

// padRow copies row, filling missing or nil cells with "" up to width.
// Cells past width are kept.
func padRow(row []interface{}, width int) []interface{} {
	out := make([]interface{}, max(width, len(row)))
	copy(out, row)
	for i := range out {
		if out[i] == nil {
			out[i] = ""
		}
	}
	return out
}

func blankRow(row []interface{}) bool {
	for _, cell := range row {
		if cellString(cell) != "" {
			return false
		}
	}
	return true
}
