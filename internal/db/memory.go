package db

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/relgraph/relgraph/internal/check"
)

// MemoryEngine implements the tabular engine over in-process tables, for
// models built on local data. Handles are the names given at registration.
type MemoryEngine struct {
	mu     sync.RWMutex
	tables map[string]*memTable
}

type memTable struct {
	columns []string
	data    map[string][]check.Value
}

// NewMemoryEngine creates an empty in-memory engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{tables: make(map[string]*memTable)}
}

// RegisterTable registers a local table under the given handle. Columns are
// stored columnar; every column must have the same number of rows. nil cells
// represent NULL. Registering an existing handle replaces the table.
func (e *MemoryEngine) RegisterTable(handle string, columns []string, data map[string][]check.Value) error {
	rows := -1
	for _, col := range columns {
		values, ok := data[col]
		if !ok {
			return fmt.Errorf("no data for column %q of table %q", col, handle)
		}
		if rows >= 0 && len(values) != rows {
			return fmt.Errorf("ragged columns in table %q", handle)
		}
		rows = len(values)
	}

	t := &memTable{columns: append([]string(nil), columns...), data: make(map[string][]check.Value, len(columns))}
	for _, col := range columns {
		t.data[col] = append([]check.Value(nil), data[col]...)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.tables[handle] = t
	return nil
}

// Columns returns the registered column names of a table.
func (e *MemoryEngine) Columns(handle string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tables[handle]
	if !ok {
		return nil, fmt.Errorf("no table registered under handle %q", handle)
	}
	return append([]string(nil), t.columns...), nil
}

// ReadColumn implements check.Engine.
func (e *MemoryEngine) ReadColumn(_ context.Context, handle, column string) ([]check.Value, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	values, err := e.column(handle, column)
	if err != nil {
		return nil, err
	}
	return append([]check.Value(nil), values...), nil
}

// CountDistinctMismatch implements check.Engine.
func (e *MemoryEngine) CountDistinctMismatch(_ context.Context, handle, column, refHandle, refColumn string) (check.MismatchSummary, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	values, err := e.column(handle, column)
	if err != nil {
		return check.MismatchSummary{}, err
	}
	refValues, err := e.column(refHandle, refColumn)
	if err != nil {
		return check.MismatchSummary{}, err
	}

	refSet := make(map[string]bool, len(refValues))
	for _, v := range refValues {
		if v != nil {
			refSet[fmt.Sprint(v)] = true
		}
	}

	var sum check.MismatchSummary
	missing := make(map[string]*check.ValueCount)
	var order []string
	for _, v := range values {
		if v == nil {
			continue
		}
		sum.TotalNonNull++
		key := fmt.Sprint(v)
		if refSet[key] {
			continue
		}
		sum.MismatchCount++
		if vc, ok := missing[key]; ok {
			vc.Count++
		} else {
			missing[key] = &check.ValueCount{Value: v, Count: 1}
			order = append(order, key)
		}
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := missing[order[i]], missing[order[j]]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return order[i] < order[j]
	})
	for _, key := range order {
		if len(sum.TopMismatches) == engineSampleLimit {
			break
		}
		sum.TopMismatches = append(sum.TopMismatches, *missing[key])
	}
	return sum, nil
}

// CountDuplicatesAndNulls implements check.Engine.
func (e *MemoryEngine) CountDuplicatesAndNulls(_ context.Context, handle, column string) (check.KeyStats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	values, err := e.column(handle, column)
	if err != nil {
		return check.KeyStats{}, err
	}

	var stats check.KeyStats
	counts := make(map[string]*check.ValueCount)
	var order []string
	for _, v := range values {
		if v == nil {
			stats.NullCount++
			continue
		}
		key := fmt.Sprint(v)
		if vc, ok := counts[key]; ok {
			vc.Count++
		} else {
			counts[key] = &check.ValueCount{Value: v, Count: 1}
			order = append(order, key)
		}
	}

	var dupKeys []string
	for _, key := range order {
		if counts[key].Count > 1 {
			dupKeys = append(dupKeys, key)
		}
	}
	sort.Slice(dupKeys, func(i, j int) bool {
		a, b := counts[dupKeys[i]], counts[dupKeys[j]]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return dupKeys[i] < dupKeys[j]
	})
	for _, key := range dupKeys {
		if len(stats.DupSample) == engineSampleLimit {
			break
		}
		stats.DupSample = append(stats.DupSample, *counts[key])
	}
	return stats, nil
}

func (e *MemoryEngine) column(handle, column string) ([]check.Value, error) {
	t, ok := e.tables[handle]
	if !ok {
		return nil, fmt.Errorf("no table registered under handle %q", handle)
	}
	values, ok := t.data[column]
	if !ok {
		return nil, fmt.Errorf("no column %q in table %q", column, handle)
	}
	return values, nil
}
