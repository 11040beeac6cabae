package dataset

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the formats recognized when classifying string columns as
// dates. Cells keep their string values; only the column type changes.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
}

// parseCell converts a raw CSV field into a typed cell. Empty fields become
// nil (null), then bool, integer, and float parses are attempted in order;
// anything else stays a string.
func parseCell(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}

	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return trimmed
}

// inferColumnTypes derives a descriptive type per column from the typed
// cells, in the manner of pandas' infer_dtype mapping.
func inferColumnTypes(t *Table) []ColumnType {
	types := make([]ColumnType, len(t.names))
	for c := range t.names {
		types[c] = inferColumn(t, c)
	}
	return types
}

func inferColumn(t *Table, c int) ColumnType {
	var numbers, strs, bools, dates, nonNull int
	for _, row := range t.cells {
		cell := row[c]
		if cell == nil {
			continue
		}
		nonNull++
		switch v := cell.(type) {
		case int64, float64:
			numbers++
		case bool:
			bools++
		case string:
			if isDateString(v) {
				dates++
			} else {
				strs++
			}
		}
	}

	switch {
	case nonNull == 0:
		return TypeEmpty
	case numbers == nonNull:
		return TypeNumber
	case bools == nonNull:
		return TypeBoolean
	case dates == nonNull:
		return TypeDate
	case strs+dates == nonNull:
		return TypeString
	default:
		return TypeMixed
	}
}

func isDateString(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
