package engine

import (
	"strconv"

	"go.starlark.net/starlark"
)

// truncatedRows is the row count a tabular result is cut to when its
// footprint exceeds the configured ceiling.
const truncatedRows = 100

// ResultKind tags the canonical form of a normalized result.
type ResultKind string

// Canonical result forms.
const (
	ResultTabular ResultKind = "table"
	ResultMapping ResultKind = "mapping"
	ResultScalar  ResultKind = "scalar"
	ResultEmpty   ResultKind = "empty"
)

// ResultValue is the canonical, size-capped serializable form of a script's
// output value. Exactly one payload field is populated according to Kind.
type ResultValue struct {
	Kind      ResultKind
	Table     map[string][]any
	Mapping   map[string]any
	Text      string
	Truncated bool
}

// Content returns the serializable payload and whether one exists. Empty
// results carry no payload but are not errors.
func (r ResultValue) Content() (any, bool) {
	switch r.Kind {
	case ResultTabular:
		return r.Table, true
	case ResultMapping:
		return r.Mapping, true
	case ResultScalar:
		return r.Text, true
	default:
		return nil, false
	}
}

// Normalizer converts script output values into their canonical form and
// enforces the result memory ceiling on tabular values.
type Normalizer struct {
	maxBytes int64
}

// NewNormalizer builds a Normalizer with the given footprint ceiling in
// bytes.
func NewNormalizer(maxBytes int64) *Normalizer {
	return &Normalizer{maxBytes: maxBytes}
}

// Normalize maps a script output value onto the canonical result forms:
// tables become column-keyed mappings (truncated to the first rows when
// over the ceiling), dicts pass through as mappings, lists become
// index-keyed mappings, None becomes Empty, strings serialize verbatim, and
// everything else serializes as its textual form.
func (n *Normalizer) Normalize(v starlark.Value) ResultValue {
	switch v := v.(type) {
	case nil, starlark.NoneType:
		return ResultValue{Kind: ResultEmpty}
	case *TableValue:
		table := v.Table()
		truncated := false
		if table.MemoryFootprint() > n.maxBytes {
			table = table.Head(truncatedRows)
			truncated = true
		}
		return ResultValue{
			Kind:      ResultTabular,
			Table:     table.ColumnMap(),
			Truncated: truncated,
		}
	case *starlark.Dict:
		return ResultValue{Kind: ResultMapping, Mapping: dictToMap(v)}
	case *starlark.List:
		m := make(map[string]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			m[strconv.Itoa(i)] = goValue(v.Index(i))
		}
		return ResultValue{Kind: ResultMapping, Mapping: m}
	case starlark.String:
		return ResultValue{Kind: ResultScalar, Text: string(v)}
	default:
		return ResultValue{Kind: ResultScalar, Text: v.String()}
	}
}

// goValue converts a Starlark value into a JSON-serializable Go value.
// Values without a natural mapping fall back to their textual form.
func goValue(v starlark.Value) any {
	switch v := v.(type) {
	case starlark.NoneType:
		return nil
	case starlark.Bool:
		return bool(v)
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return i
		}
		return v.String()
	case starlark.Float:
		return float64(v)
	case starlark.String:
		return string(v)
	case *starlark.List:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = goValue(v.Index(i))
		}
		return out
	case starlark.Tuple:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = goValue(elem)
		}
		return out
	case *starlark.Dict:
		return dictToMap(v)
	case *TableValue:
		return v.Table().ColumnMap()
	default:
		return v.String()
	}
}

func dictToMap(d *starlark.Dict) map[string]any {
	out := make(map[string]any, d.Len())
	for _, item := range d.Items() {
		key, val := item[0], item[1]
		ks, ok := starlark.AsString(key)
		if !ok {
			ks = key.String()
		}
		out[ks] = goValue(val)
	}
	return out
}
