package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/isdmx/databox/config"
	"github.com/isdmx/databox/dataset"
	"github.com/isdmx/databox/engine"
)

// MockRunner implements engine.Runner for testing
type MockRunner struct {
	response   engine.Response
	lastScript string
	lastRows   int
}

func (m *MockRunner) Run(_ context.Context, script string, table *dataset.Table) engine.Response {
	m.lastScript = script
	m.lastRows = table.NumRows()
	return m.response
}

// MockChartRenderer implements ChartRenderer for testing
type MockChartRenderer struct {
	path     string
	err      error
	lastType string
	lastData map[string][]any
}

func (m *MockChartRenderer) Generate(data map[string][]any, chartType, _ string) (string, error) {
	m.lastType = chartType
	m.lastData = data
	return m.path, m.err
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Transport: "stdio", HTTPPort: 8080},
		Engine: config.EngineConfig{
			Enabled:        true,
			MaxScriptChars: 100000,
			MaxResultBytes: 100 * 1024 * 1024,
			ChunkRows:      10000,
		},
		Loader:  config.LoaderConfig{MaxFileSizeMB: 100, SampleRows: 100, DetectBytes: 4096},
		Charts:  config.ChartsConfig{Enabled: true, Dir: "charts"},
		Logging: config.LoggingConfig{Mode: "production", Level: "info"},
	}
}

func newTestServer(t *testing.T, runner engine.Runner, renderer ChartRenderer) *MCPServer {
	t.Helper()
	srv, err := New(testConfig(), zaptest.NewLogger(t), runner, renderer)
	require.NoError(t, err)
	return srv
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNewMCPServer(t *testing.T) {
	cfg := testConfig()
	logger := zaptest.NewLogger(t)
	runner := &MockRunner{}
	renderer := &MockChartRenderer{}

	srv, err := New(cfg, logger, runner, renderer)
	require.NoError(t, err)
	require.NotNil(t, srv)
	assert.Equal(t, cfg, srv.config)
	assert.Equal(t, logger, srv.logger)
	assert.Equal(t, runner, srv.runner)
	assert.Equal(t, renderer, srv.renderer)
	assert.NotNil(t, srv.mcpServer)
	assert.NotNil(t, srv.GetMCPServer())
}

func TestHandleRunScript(t *testing.T) {
	csvPath := writeCSV(t, "name,age\nalice,30\nbob,25\n")

	t.Run("Success", func(t *testing.T) {
		runner := &MockRunner{response: engine.Response{Content: []any{"ok"}}}
		srv := newTestServer(t, runner, &MockChartRenderer{})

		result, err := srv.handleRunScript(context.Background(), callRequest(map[string]any{
			"code":      "result = dataset.num_rows",
			"file_path": csvPath,
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "result = dataset.num_rows", runner.lastScript)
		assert.Equal(t, 2, runner.lastRows)

		var resp engine.Response
		require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &resp))
		assert.Equal(t, []any{"ok"}, resp.Content)
	})

	t.Run("EngineErrorMirrorsIsError", func(t *testing.T) {
		runner := &MockRunner{
			response: engine.NewError(engine.KindMissingResult, "script did not assign result", ""),
		}
		srv := newTestServer(t, runner, &MockChartRenderer{})

		result, err := srv.handleRunScript(context.Background(), callRequest(map[string]any{
			"code":      "x = 1",
			"file_path": csvPath,
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, textContent(t, result), string(engine.KindMissingResult))
	})

	t.Run("LoadFailure", func(t *testing.T) {
		srv := newTestServer(t, &MockRunner{}, &MockChartRenderer{})

		result, err := srv.handleRunScript(context.Background(), callRequest(map[string]any{
			"code":      "result = 1",
			"file_path": filepath.Join(t.TempDir(), "missing.csv"),
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, textContent(t, result), "Failed to load dataset")
	})

	t.Run("MissingCode", func(t *testing.T) {
		srv := newTestServer(t, &MockRunner{}, &MockChartRenderer{})

		_, err := srv.handleRunScript(context.Background(), callRequest(map[string]any{
			"file_path": csvPath,
		}))
		assert.Error(t, err)
	})

	t.Run("MissingFilePath", func(t *testing.T) {
		srv := newTestServer(t, &MockRunner{}, &MockChartRenderer{})

		_, err := srv.handleRunScript(context.Background(), callRequest(map[string]any{
			"code": "result = 1",
		}))
		assert.Error(t, err)
	})
}

func TestHandleDescribeTable(t *testing.T) {
	csvPath := writeCSV(t, "name,age\nalice,30\nbob,25\n")

	t.Run("Success", func(t *testing.T) {
		srv := newTestServer(t, &MockRunner{}, &MockChartRenderer{})

		result, err := srv.handleDescribeTable(context.Background(), callRequest(map[string]any{
			"file_path": csvPath,
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)

		var meta dataset.FileMeta
		require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &meta))
		assert.Equal(t, 2, meta.TotalColumns)
		assert.Equal(t, "name", meta.Columns[0].Name)
		assert.Equal(t, "age", meta.Columns[1].Name)
	})

	t.Run("MissingFile", func(t *testing.T) {
		srv := newTestServer(t, &MockRunner{}, &MockChartRenderer{})

		result, err := srv.handleDescribeTable(context.Background(), callRequest(map[string]any{
			"file_path": filepath.Join(t.TempDir(), "missing.csv"),
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, textContent(t, result), "Failed to read metadata")
	})
}

func TestHandleInterpretColumns(t *testing.T) {
	csvPath := writeCSV(t, "city,population\nparis,100\nparis,100\nlyon,50\n")

	t.Run("Success", func(t *testing.T) {
		srv := newTestServer(t, &MockRunner{}, &MockChartRenderer{})

		result, err := srv.handleInterpretColumns(context.Background(), callRequest(map[string]any{
			"file_path": csvPath,
			"columns":   []any{"city"},
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)

		text := textContent(t, result)
		assert.Contains(t, text, `"column_name":"city"`)
		assert.Contains(t, text, `"unique_count":2`)
	})

	t.Run("UnknownColumnCarriesError", func(t *testing.T) {
		srv := newTestServer(t, &MockRunner{}, &MockChartRenderer{})

		result, err := srv.handleInterpretColumns(context.Background(), callRequest(map[string]any{
			"file_path": csvPath,
			"columns":   []any{"nope"},
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, textContent(t, result), `"error"`)
	})

	t.Run("EmptyColumnList", func(t *testing.T) {
		srv := newTestServer(t, &MockRunner{}, &MockChartRenderer{})

		result, err := srv.handleInterpretColumns(context.Background(), callRequest(map[string]any{
			"file_path": csvPath,
			"columns":   []any{},
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, textContent(t, result), "Invalid column list")
	})
}

func TestHandleRenderChart(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		renderer := &MockChartRenderer{path: "charts/chart_bar_x.html"}
		srv := newTestServer(t, &MockRunner{}, renderer)

		result, err := srv.handleRenderChart(context.Background(), callRequest(map[string]any{
			"data":       map[string]any{"v": []any{float64(1), float64(2)}},
			"chart_type": "bar",
			"title":      "T",
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, textContent(t, result), "charts/chart_bar_x.html")
		assert.Equal(t, "bar", renderer.lastType)
		assert.Equal(t, []any{float64(1), float64(2)}, renderer.lastData["v"])
	})

	t.Run("RendererFailure", func(t *testing.T) {
		renderer := &MockChartRenderer{err: errors.New("chart generation is disabled")}
		srv := newTestServer(t, &MockRunner{}, renderer)

		result, err := srv.handleRenderChart(context.Background(), callRequest(map[string]any{
			"data":       map[string]any{"v": []any{float64(1)}},
			"chart_type": "bar",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, textContent(t, result), "Failed to render chart")
	})

	t.Run("NonArrayColumn", func(t *testing.T) {
		srv := newTestServer(t, &MockRunner{}, &MockChartRenderer{})

		result, err := srv.handleRenderChart(context.Background(), callRequest(map[string]any{
			"data":       map[string]any{"v": "not an array"},
			"chart_type": "bar",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, textContent(t, result), "must be an array")
	})

	t.Run("BadDataShape", func(t *testing.T) {
		srv := newTestServer(t, &MockRunner{}, &MockChartRenderer{})

		_, err := srv.handleRenderChart(context.Background(), callRequest(map[string]any{
			"data":       "not an object",
			"chart_type": "bar",
		}))
		assert.Error(t, err)
	})
}
