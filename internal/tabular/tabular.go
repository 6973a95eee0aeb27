// Package tabular reshapes row/column data, as returned by the stats API
// and scraped HTML tables, into keyed maps.
package tabular

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
)

var (
	ErrMissingKey    = errors.New("missing key")
	ErrUnhashableKey = errors.New("key value is not comparable")
	ErrEmptyHeader   = errors.New("empty header")
	ErrInvalidTable  = errors.New("invalid table")
)

// Row is a single record keyed by field name.
type Row = map[string]any

// MergeMaps merges left to right; later maps win on collision.
func MergeMaps[M ~map[K]V, K comparable, V any](ms ...M) map[K]V {
	out := make(map[K]V)
	for _, m := range ms {
		maps.Copy(out, m)
	}
	return out
}

// MapSubset projects m onto keys. When proper is set, keys absent from m
// are left out; otherwise they are filled with def.
func MapSubset[M ~map[K]V, K comparable, V any](m M, keys []K, proper bool, def V) map[K]V {
	out := make(map[K]V, len(keys))
	for _, k := range keys {
		v, ok := m[k]
		switch {
		case ok:
			out[k] = v
		case !proper:
			out[k] = def
		}
	}
	return out
}

// MapMinus returns a copy of m without keys.
func MapMinus[M ~map[K]V, K comparable, V any](m M, keys ...K) map[K]V {
	out := maps.Clone(map[K]V(m))
	if out == nil {
		out = make(map[K]V)
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// ListMinus returns the elements of list not in remove, keeping order.
func ListMinus[T comparable](list, remove []T) []T {
	out := make([]T, 0, len(list))
	for _, v := range list {
		if !slices.Contains(remove, v) {
			out = append(out, v)
		}
	}
	return out
}

// RowsToKeyedMap indexes rows by the value under key, dropping key from
// each indexed row. Later rows overwrite earlier ones with the same key
// value.
func RowsToKeyedMap(rows []Row, key string) (map[any]Row, error) {
	out := make(map[any]Row, len(rows))
	for i, row := range rows {
		v, ok := row[key]
		if !ok {
			return nil, fmt.Errorf("row %d: %w %q", i, ErrMissingKey, key)
		}
		if v != nil && !reflect.ValueOf(v).Comparable() {
			return nil, fmt.Errorf("row %d: %w: %T", i, ErrUnhashableKey, v)
		}
		out[v] = MapMinus(row, key)
	}
	return out, nil
}

// RowsToIndexedMap indexes rows by position.
func RowsToIndexedMap(rows []Row) map[int]Row {
	out := make(map[int]Row, len(rows))
	for i, row := range rows {
		out[i] = row
	}
	return out
}

// TableRows zips each row against header lazily. Short rows yield the
// fields they have values for and long rows drop their trailing values.
// The header check happens before iteration.
func TableRows(rows [][]any, header []string) (iter.Seq[Row], error) {
	if len(header) == 0 && len(rows) > 0 {
		return nil, ErrEmptyHeader
	}
	return func(yield func(Row) bool) {
		for _, values := range rows {
			if !yield(zip(header, values)) {
				return
			}
		}
	}, nil
}

// TableRowsToMaps is TableRows collected into a slice.
func TableRowsToMaps(rows [][]any, header []string) ([]Row, error) {
	seq, err := TableRows(rows, header)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(rows))
	for row := range seq {
		out = append(out, row)
	}
	return out, nil
}

func zip(header []string, values []any) Row {
	n := min(len(header), len(values))
	row := make(Row, n)
	for i := range n {
		row[header[i]] = values[i]
	}
	return row
}

// SplitMapToMaps reads the header list under headerKey and the row lists
// under rowsKey of m and zips them. This is the shape of a stats API
// result set: {"headers": [...], "rowSet": [[...], ...]}.
func SplitMapToMaps(m map[string]any, rowsKey, headerKey string) ([]Row, error) {
	rawRows, ok := m[rowsKey]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingKey, rowsKey)
	}
	rawHeader, ok := m[headerKey]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingKey, headerKey)
	}

	header, err := toHeader(rawHeader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", headerKey, err)
	}
	rows, err := toRows(rawRows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rowsKey, err)
	}
	return TableRowsToMaps(rows, header)
}

func toHeader(v any) ([]string, error) {
	switch h := v.(type) {
	case []string:
		return h, nil
	case nil:
		return nil, nil
	case []any:
		out := make([]string, len(h))
		for i, name := range h {
			s, ok := name.(string)
			if !ok {
				return nil, fmt.Errorf("%w: header %d is %T", ErrInvalidTable, i, name)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: header is %T", ErrInvalidTable, v)
	}
}

func toRows(v any) ([][]any, error) {
	switch r := v.(type) {
	case [][]any:
		return r, nil
	case nil:
		return nil, nil
	case []any:
		out := make([][]any, len(r))
		for i, row := range r {
			values, ok := row.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: row %d is %T", ErrInvalidTable, i, row)
			}
			out[i] = values
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: rows are %T", ErrInvalidTable, v)
	}
}
