package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/isdmx/databox/dataset"
	"github.com/isdmx/databox/policy"
)

func newTestHarness(t *testing.T, chunkRows int) *Harness {
	t.Helper()
	validator := NewValidator(DefaultMaxScriptChars, policy.NewStore(nil))
	return NewHarness(validator, chunkRows, zaptest.NewLogger(t))
}

func testTable(t *testing.T, rows int) *dataset.Table {
	t.Helper()
	cells := make([][]any, rows)
	for i := range cells {
		cells[i] = []any{int64(i), "row"}
	}
	table, err := dataset.NewTable([]string{"n", "label"}, cells)
	require.NoError(t, err)
	return table
}

func TestHarnessExecute(t *testing.T) {
	h := newTestHarness(t, 10)
	table := testTable(t, 3)

	t.Run("SimpleResult", func(t *testing.T) {
		out := h.Execute(context.Background(), "result = 1 + 2", table)
		require.Nil(t, out.Fault)
		assert.Equal(t, "3", out.Value.String())
		assert.Empty(t, out.Output)
	})

	t.Run("DatasetAttributes", func(t *testing.T) {
		out := h.Execute(context.Background(), "result = dataset.num_rows", table)
		require.Nil(t, out.Fault)
		assert.Equal(t, "3", out.Value.String())

		out = h.Execute(context.Background(), "result = dataset.columns", table)
		require.Nil(t, out.Fault)
		assert.Equal(t, `["n", "label"]`, out.Value.String())
	})

	t.Run("ColumnAccess", func(t *testing.T) {
		out := h.Execute(context.Background(), `result = dataset.column("n")`, table)
		require.Nil(t, out.Fault)
		assert.Equal(t, "[0, 1, 2]", out.Value.String())
	})

	t.Run("RowAccess", func(t *testing.T) {
		out := h.Execute(context.Background(), `result = dataset.row(1)["n"]`, table)
		require.Nil(t, out.Fault)
		assert.Equal(t, "1", out.Value.String())
	})

	t.Run("HeadReturnsTable", func(t *testing.T) {
		out := h.Execute(context.Background(), "result = dataset.head(2)", table)
		require.Nil(t, out.Fault)
		tv, ok := out.Value.(*TableValue)
		require.True(t, ok)
		assert.Equal(t, 2, tv.Table().NumRows())
	})

	t.Run("UnknownColumnFaults", func(t *testing.T) {
		out := h.Execute(context.Background(), `result = dataset.column("nope")`, table)
		require.NotNil(t, out.Fault)
		assert.Equal(t, KindExecutionFault, out.Fault.Kind)
		assert.Contains(t, out.Fault.Message, "not found")
	})
}

func TestHarnessPrintCapture(t *testing.T) {
	h := newTestHarness(t, 10)
	table := testTable(t, 1)

	t.Run("CapturedOnSuccess", func(t *testing.T) {
		out := h.Execute(context.Background(), `print("hello")`+"\n"+`result = 1`, table)
		require.Nil(t, out.Fault)
		assert.Equal(t, "hello\n", out.Output)
	})

	t.Run("CapturedOnFault", func(t *testing.T) {
		out := h.Execute(context.Background(), `print("before the crash")`+"\n"+`fail("boom")`, table)
		require.NotNil(t, out.Fault)
		assert.Equal(t, KindExecutionFault, out.Fault.Kind)
		assert.Equal(t, "before the crash\n", out.Output)
	})

	t.Run("CapturedOnMissingResult", func(t *testing.T) {
		out := h.Execute(context.Background(), `print("partial")`+"\n"+`x = 1`, table)
		require.NotNil(t, out.Fault)
		assert.Equal(t, KindMissingResult, out.Fault.Kind)
		assert.Equal(t, "partial\n", out.Output)
	})
}

func TestHarnessMissingResult(t *testing.T) {
	h := newTestHarness(t, 10)
	table := testTable(t, 1)

	out := h.Execute(context.Background(), "x = 1", table)
	require.NotNil(t, out.Fault)
	assert.Equal(t, KindMissingResult, out.Fault.Kind)
	assert.Contains(t, out.Fault.Message, `"result"`)
	assert.Nil(t, out.Value)
}

func TestHarnessFaults(t *testing.T) {
	h := newTestHarness(t, 10)
	table := testTable(t, 1)

	t.Run("ExplicitFail", func(t *testing.T) {
		out := h.Execute(context.Background(), `fail("boom")`, table)
		require.NotNil(t, out.Fault)
		assert.Equal(t, KindExecutionFault, out.Fault.Kind)
		assert.Contains(t, out.Fault.Message, "boom")
		assert.Contains(t, out.Fault.Backtrace, "script.star")
	})

	t.Run("IndexOutOfRange", func(t *testing.T) {
		out := h.Execute(context.Background(), "result = [1, 2][5]", table)
		require.NotNil(t, out.Fault)
		assert.Equal(t, KindExecutionFault, out.Fault.Kind)
		assert.Contains(t, out.Fault.Message, "out of range")
	})

	t.Run("UndefinedReference", func(t *testing.T) {
		out := h.Execute(context.Background(), "result = something_never_defined", table)
		require.NotNil(t, out.Fault)
		assert.Equal(t, KindExecutionFault, out.Fault.Kind)
		assert.Contains(t, out.Fault.Message, "undefined")
	})
}

func TestHarnessNamespaceIsolation(t *testing.T) {
	h := newTestHarness(t, 10)
	table := testTable(t, 1)

	// First call defines a helper binding alongside the result.
	out := h.Execute(context.Background(), "leak = 42\nresult = leak", table)
	require.Nil(t, out.Fault)

	// The next call must not see it: each call gets a fresh namespace.
	out = h.Execute(context.Background(), "result = leak", table)
	require.NotNil(t, out.Fault)
	assert.Equal(t, KindExecutionFault, out.Fault.Kind)
	assert.Contains(t, out.Fault.Message, "undefined")
}

func TestHarnessFailsClosedOnInvalidScript(t *testing.T) {
	h := newTestHarness(t, 10)
	table := testTable(t, 1)

	t.Run("EmptyScript", func(t *testing.T) {
		out := h.Execute(context.Background(), "  ", table)
		require.NotNil(t, out.Fault)
		assert.Equal(t, KindEmptyInput, out.Fault.Kind)
	})

	t.Run("ForbiddenPattern", func(t *testing.T) {
		out := h.Execute(context.Background(), `result = "import os"`, table)
		require.NotNil(t, out.Fault)
		assert.Equal(t, KindSecurityViolation, out.Fault.Kind)
		require.NotEmpty(t, out.Fault.Violations)
		assert.Equal(t, "import os", out.Fault.Violations[0].Pattern)
	})
}

func TestHarnessChunkedRead(t *testing.T) {
	h := newTestHarness(t, 10)
	table := testTable(t, 25)

	t.Run("DefaultChunkSize", func(t *testing.T) {
		out := h.Execute(context.Background(), "result = len(read_chunked())", table)
		require.Nil(t, out.Fault)
		assert.Equal(t, "3", out.Value.String()) // 10 + 10 + 5
	})

	t.Run("SmallerSizeHonored", func(t *testing.T) {
		out := h.Execute(context.Background(), "result = len(read_chunked(size=5))", table)
		require.Nil(t, out.Fault)
		assert.Equal(t, "5", out.Value.String())
	})

	t.Run("OversizeRequestClamped", func(t *testing.T) {
		out := h.Execute(context.Background(), "result = len(read_chunked(size=1000))", table)
		require.Nil(t, out.Fault)
		assert.Equal(t, "3", out.Value.String())
	})

	t.Run("ChunksAreTables", func(t *testing.T) {
		script := "chunks = read_chunked()\nresult = chunks[0].num_rows"
		out := h.Execute(context.Background(), script, table)
		require.Nil(t, out.Fault)
		assert.Equal(t, "10", out.Value.String())
	})

	t.Run("TotalRowsPreserved", func(t *testing.T) {
		script := "total = 0\nfor chunk in read_chunked():\n    total += chunk.num_rows\nresult = total"
		out := h.Execute(context.Background(), script, table)
		require.Nil(t, out.Fault)
		assert.Equal(t, "25", out.Value.String())
	})
}

func TestHarnessCancelledContext(t *testing.T) {
	h := newTestHarness(t, 10)
	table := testTable(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := h.Execute(ctx, "result = 1", table)
	require.NotNil(t, out.Fault)
	assert.Equal(t, KindInternalError, out.Fault.Kind)
}
