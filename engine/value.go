package engine

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/isdmx/databox/dataset"
)

// TableValue exposes a read-only dataset table to scripts as a Starlark
// value. The surface is deliberately small: column enumeration, row count,
// and cell read access.
type TableValue struct {
	table *dataset.Table
}

// NewTableValue wraps a table for use inside a script namespace.
func NewTableValue(t *dataset.Table) *TableValue {
	return &TableValue{table: t}
}

// Table returns the wrapped dataset table.
func (tv *TableValue) Table() *dataset.Table {
	return tv.table
}

func (tv *TableValue) String() string {
	return fmt.Sprintf("<table %d rows x %d cols>", tv.table.NumRows(), tv.table.NumColumns())
}

func (tv *TableValue) Type() string { return "table" }

// Freeze is a no-op; the underlying table is already immutable.
func (tv *TableValue) Freeze() {}

func (tv *TableValue) Truth() starlark.Bool {
	return starlark.Bool(tv.table.NumRows() > 0)
}

func (tv *TableValue) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: table")
}

var tableAttrNames = []string{"column", "columns", "head", "num_rows", "row"}

// AttrNames lists the attributes scripts may read from a table.
func (tv *TableValue) AttrNames() []string {
	return tableAttrNames
}

// Attr resolves table attribute access from scripts.
func (tv *TableValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "columns":
		names := tv.table.Columns()
		elems := make([]starlark.Value, len(names))
		for i, n := range names {
			elems[i] = starlark.String(n)
		}
		return starlark.NewList(elems), nil
	case "num_rows":
		return starlark.MakeInt(tv.table.NumRows()), nil
	case "column":
		return starlark.NewBuiltin("column", tv.columnFn), nil
	case "row":
		return starlark.NewBuiltin("row", tv.rowFn), nil
	case "head":
		return starlark.NewBuiltin("head", tv.headFn), nil
	}
	return nil, nil
}

func (tv *TableValue) columnFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}

	cells, err := tv.table.Column(name)
	if err != nil {
		return nil, err
	}
	elems := make([]starlark.Value, len(cells))
	for i, cell := range cells {
		elems[i] = cellValue(cell)
	}
	return starlark.NewList(elems), nil
}

func (tv *TableValue) rowFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var index int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "index", &index); err != nil {
		return nil, err
	}

	row, err := tv.table.Row(index)
	if err != nil {
		return nil, err
	}
	d := starlark.NewDict(len(row))
	for _, name := range tv.table.Columns() {
		if err := d.SetKey(starlark.String(name), cellValue(row[name])); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (tv *TableValue) headFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var n int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "n", &n); err != nil {
		return nil, err
	}
	return NewTableValue(tv.table.Head(n)), nil
}

// chunkedReadBuiltin is the sanctioned factory for bounded row-batch reads.
// It splits the dataset into table slices of at most maxRows rows; a
// caller-supplied size is honored only below that ceiling.
func chunkedReadBuiltin(table *dataset.Table, maxRows int) *starlark.Builtin {
	return starlark.NewBuiltin("read_chunked", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		size := maxRows
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "size?", &size); err != nil {
			return nil, err
		}
		if size <= 0 || size > maxRows {
			size = maxRows
		}

		var chunks []starlark.Value
		for lo := 0; lo < table.NumRows(); lo += size {
			chunks = append(chunks, NewTableValue(table.Slice(lo, lo+size)))
		}
		return starlark.NewList(chunks), nil
	})
}

// cellValue converts a table cell into its Starlark representation.
func cellValue(cell any) starlark.Value {
	switch v := cell.(type) {
	case nil:
		return starlark.None
	case bool:
		return starlark.Bool(v)
	case int64:
		return starlark.MakeInt64(v)
	case float64:
		return starlark.Float(v)
	case string:
		return starlark.String(v)
	default:
		return starlark.String(fmt.Sprint(v))
	}
}
