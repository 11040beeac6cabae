package dataset

import (
	"fmt"
	"sort"
)

// Defaults used when metadata options are zero.
const (
	defaultSampleRows = 100
	maxProfileColumns = 100
	maxColumnNameLen  = 255
)

// ColumnMeta summarizes one column for metadata responses.
type ColumnMeta struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	Samples []any      `json:"sample"`
}

// FileMeta is the metadata envelope returned for a dataset file. Rows and
// samples come from a bounded prefix of the file, not a full scan.
type FileMeta struct {
	Columns      []ColumnMeta `json:"columns"`
	SizeBytes    int64        `json:"size_bytes"`
	Encoding     string       `json:"encoding"`
	RowsSampled  int          `json:"rows_sampled"`
	TotalColumns int          `json:"total_columns"`
}

// Metadata loads a bounded sample of the file and reports per-column names,
// descriptive types, and up to two non-null sample values.
func Metadata(path string, opts LoadOptions) (*FileMeta, error) {
	if opts.MaxRows <= 0 {
		opts.MaxRows = defaultSampleRows
	}

	table, info, err := LoadCSV(path, opts)
	if err != nil {
		return nil, err
	}

	meta := &FileMeta{
		SizeBytes:    info.SizeBytes,
		Encoding:     info.Encoding,
		RowsSampled:  table.NumRows(),
		TotalColumns: table.NumColumns(),
	}

	for _, name := range table.Columns() {
		colType, err := table.ColumnType(name)
		if err != nil {
			return nil, err
		}
		cells, err := table.Column(name)
		if err != nil {
			return nil, err
		}

		samples := make([]any, 0, 2)
		for _, cell := range cells {
			if cell == nil {
				continue
			}
			samples = append(samples, cell)
			if len(samples) == 2 {
				break
			}
		}

		meta.Columns = append(meta.Columns, ColumnMeta{
			Name:    name,
			Type:    colType,
			Samples: samples,
		})
	}

	return meta, nil
}

// ValueCount pairs a distinct cell value with its occurrence count.
type ValueCount struct {
	Value any `json:"value"`
	Count int `json:"count"`
}

// ColumnProfile reports per-column value statistics. A requested column
// that does not exist carries an Err string instead of statistics.
type ColumnProfile struct {
	Name    string       `json:"column_name"`
	Type    ColumnType   `json:"data_type,omitempty"`
	Total   int          `json:"total_values,omitempty"`
	Nulls   int          `json:"null_count,omitempty"`
	Uniques int          `json:"unique_count,omitempty"`
	Values  []ValueCount `json:"unique_values_with_counts,omitempty"`
	Err     string       `json:"error,omitempty"`
}

// ValidateColumnNames rejects empty, oversized, or blank column name lists
// before profiling.
func ValidateColumnNames(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("column names list cannot be empty")
	}
	if len(names) > maxProfileColumns {
		return fmt.Errorf("cannot profile more than %d columns at once", maxProfileColumns)
	}
	for i, name := range names {
		if len(name) > maxColumnNameLen {
			return fmt.Errorf("column name at index %d exceeds %d characters", i, maxColumnNameLen)
		}
		if name == "" {
			return fmt.Errorf("column name at index %d cannot be empty", i)
		}
	}
	return nil
}

// InterpretColumns profiles the named columns of a table: totals, null and
// unique counts, and distinct values ordered by descending frequency.
func InterpretColumns(t *Table, names []string) ([]ColumnProfile, error) {
	if err := ValidateColumnNames(names); err != nil {
		return nil, err
	}

	profiles := make([]ColumnProfile, 0, len(names))
	for _, name := range names {
		cells, err := t.Column(name)
		if err != nil {
			profiles = append(profiles, ColumnProfile{
				Name: name,
				Err:  fmt.Sprintf("column %q not found in dataset", name),
			})
			continue
		}
		colType, _ := t.ColumnType(name)
		profiles = append(profiles, profileColumn(name, colType, cells))
	}
	return profiles, nil
}

func profileColumn(name string, colType ColumnType, cells []any) ColumnProfile {
	counts := make(map[any]int)
	firstSeen := make(map[any]int)
	nulls := 0

	for i, cell := range cells {
		if cell == nil {
			nulls++
			continue
		}
		if _, ok := counts[cell]; !ok {
			firstSeen[cell] = i
		}
		counts[cell]++
	}

	values := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		values = append(values, ValueCount{Value: v, Count: c})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return firstSeen[values[i].Value] < firstSeen[values[j].Value]
	})

	return ColumnProfile{
		Name:    name,
		Type:    colType,
		Total:   len(cells),
		Nulls:   nulls,
		Uniques: len(counts),
		Values:  values,
	}
}
