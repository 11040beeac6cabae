package dataset

import "fmt"

// ColumnType is a descriptive column type derived from cell values.
type ColumnType string

// Descriptive column types.
const (
	TypeNumber  ColumnType = "number"
	TypeString  ColumnType = "string"
	TypeBoolean ColumnType = "boolean"
	TypeDate    ColumnType = "date"
	TypeEmpty   ColumnType = "empty"
	TypeMixed   ColumnType = "mixed"
)

// cellOverhead approximates the per-cell bookkeeping cost (interface header
// plus slice accounting) used by MemoryFootprint.
const cellOverhead = 16

// Table is an immutable in-memory table with named, typed columns. Cells
// hold string, int64, float64, bool, or nil values. A Table is safe for
// concurrent readers; no mutating operations are exposed.
type Table struct {
	names []string
	types []ColumnType
	cells [][]any // row-major; len(cells[i]) == len(names)
}

// NewTable builds a Table from column names and row-major cells. Every row
// must have exactly one cell per column. Column types are inferred from the
// cell values.
func NewTable(names []string, rows [][]any) (*Table, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("table requires at least one column")
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("column name cannot be empty")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column name: %s", name)
		}
		seen[name] = true
	}

	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(names))
		}
	}

	t := &Table{
		names: append([]string(nil), names...),
		cells: rows,
	}
	t.types = inferColumnTypes(t)
	return t, nil
}

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	return append([]string(nil), t.names...)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.cells)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.names)
}

// ColumnType returns the descriptive type of the named column.
func (t *Table) ColumnType(name string) (ColumnType, error) {
	idx, err := t.columnIndex(name)
	if err != nil {
		return "", err
	}
	return t.types[idx], nil
}

// Column returns the cell values of the named column, in row order.
func (t *Table) Column(name string) ([]any, error) {
	idx, err := t.columnIndex(name)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(t.cells))
	for i, row := range t.cells {
		out[i] = row[idx]
	}
	return out, nil
}

// Row returns the i-th row as a column-name-keyed map.
func (t *Table) Row(i int) (map[string]any, error) {
	if i < 0 || i >= len(t.cells) {
		return nil, fmt.Errorf("row index %d out of range [0, %d)", i, len(t.cells))
	}

	out := make(map[string]any, len(t.names))
	for c, name := range t.names {
		out[name] = t.cells[i][c]
	}
	return out, nil
}

// Head returns a table holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.cells) {
		n = len(t.cells)
	}
	return t.Slice(0, n)
}

// Slice returns a table holding rows [lo, hi). Bounds are clamped to the
// valid range. The slice shares cell storage with the parent; both remain
// read-only.
func (t *Table) Slice(lo, hi int) *Table {
	if lo < 0 {
		lo = 0
	}
	if hi > len(t.cells) {
		hi = len(t.cells)
	}
	if lo > hi {
		lo = hi
	}
	return &Table{
		names: t.names,
		types: t.types,
		cells: t.cells[lo:hi],
	}
}

// MemoryFootprint approximates the in-memory size of the table's cells in
// bytes. It is used to decide result truncation, not for exact accounting.
func (t *Table) MemoryFootprint() int64 {
	var total int64
	for _, row := range t.cells {
		for _, cell := range row {
			total += cellOverhead
			switch v := cell.(type) {
			case string:
				total += int64(len(v))
			case int64, float64:
				total += 8
			case bool:
				total++
			}
		}
	}
	return total
}

// ColumnMap serializes the table as a column-keyed mapping of cell slices.
func (t *Table) ColumnMap() map[string][]any {
	out := make(map[string][]any, len(t.names))
	for c, name := range t.names {
		col := make([]any, len(t.cells))
		for i, row := range t.cells {
			col[i] = row[c]
		}
		out[name] = col
	}
	return out
}

func (t *Table) columnIndex(name string) (int, error) {
	for i, n := range t.names {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found", name)
}
