// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes tools
// for dataset analysis. It uses the mark3labs/mcp-go library to handle the
// protocol details and provides run_script as the primary interface for
// executing analysis scripts against tabular files, plus metadata, column
// profiling, and chart rendering tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/isdmx/databox/config"
	"github.com/isdmx/databox/dataset"
	"github.com/isdmx/databox/engine"
)

// ChartRenderer is the rendering surface the render_chart tool depends on.
type ChartRenderer interface {
	Generate(data map[string][]any, chartType, title string) (string, error)
}

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	runner    engine.Runner
	renderer  ChartRenderer
	mcpServer *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, runner engine.Runner, renderer ChartRenderer) (*MCPServer, error) {
	s := &MCPServer{
		config:   cfg,
		logger:   logger,
		runner:   runner,
		renderer: renderer,
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", s.config.Server.Transport),
		zap.Int("server.http_port", s.config.Server.HTTPPort),
		zap.Bool("engine.enabled", s.config.Engine.Enabled),
		zap.Int("engine.max_script_chars", s.config.Engine.MaxScriptChars),
		zap.Int64("engine.max_result_bytes", s.config.Engine.MaxResultBytes),
		zap.Int("engine.chunk_rows", s.config.Engine.ChunkRows),
		zap.Int("loader.max_file_size_mb", s.config.Loader.MaxFileSizeMB),
		zap.Int("loader.sample_rows", s.config.Loader.SampleRows),
		zap.Bool("charts.enabled", s.config.Charts.Enabled),
		zap.String("charts.dir", s.config.Charts.Dir),
	)

	// Create the MCP server
	s.mcpServer = server.NewMCPServer("databox", "A tabular data analysis server")

	s.registerRunScriptTool()
	s.registerDescribeTableTool()
	s.registerInterpretColumnsTool()
	s.registerRenderChartTool()

	return s, nil
}

// loadOptions derives dataset loading bounds from configuration.
func (s *MCPServer) loadOptions() dataset.LoadOptions {
	return dataset.LoadOptions{
		MaxFileSizeMB: s.config.Loader.MaxFileSizeMB,
		DetectBytes:   s.config.Loader.DetectBytes,
	}
}

// registerRunScriptTool registers the run_script tool
func (s *MCPServer) registerRunScriptTool() {
	tool := mcp.Tool{
		Name:        "run_script",
		Description: "Execute a Starlark analysis script against a CSV or TSV file. The script sees the loaded table as 'dataset' and must assign its output to 'result'.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Starlark script to execute",
				},
				"file_path": map[string]any{
					"type":        "string",
					"description": "Path to the CSV or TSV file to analyze",
				},
			},
			Required: []string{"code", "file_path"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleRunScript)
}

// handleRunScript handles the run_script tool
func (s *MCPServer) handleRunScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	filePath, err := request.RequireString("file_path")
	if err != nil {
		return nil, fmt.Errorf("file_path parameter is required: %w", err)
	}

	s.logger.Info("script execution requested",
		zap.String("file_path", filePath),
		zap.Int("script_chars", len(code)))

	table, info, err := dataset.LoadCSV(filePath, s.loadOptions())
	if err != nil {
		s.logger.Warn("dataset load failed",
			zap.String("file_path", filePath),
			zap.Error(err))
		return errorResult(fmt.Sprintf("Failed to load dataset: %v", err)), nil
	}

	resp := s.runner.Run(ctx, code, table)

	s.logger.Info("script execution completed",
		zap.String("file_path", info.Path),
		zap.Bool("is_error", resp.IsError),
		zap.String("error_type", string(resp.Kind)))

	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: string(payload)},
		},
		IsError: resp.IsError,
	}, nil
}

// registerDescribeTableTool registers the describe_table tool
func (s *MCPServer) registerDescribeTableTool() {
	tool := mcp.Tool{
		Name:        "describe_table",
		Description: "Report column names, inferred types, and sample values for a CSV or TSV file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"file_path": map[string]any{
					"type":        "string",
					"description": "Path to the CSV or TSV file",
				},
			},
			Required: []string{"file_path"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleDescribeTable)
}

// handleDescribeTable handles the describe_table tool
func (s *MCPServer) handleDescribeTable(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := request.RequireString("file_path")
	if err != nil {
		return nil, fmt.Errorf("file_path parameter is required: %w", err)
	}

	opts := s.loadOptions()
	opts.MaxRows = s.config.Loader.SampleRows

	meta, err := dataset.Metadata(filePath, opts)
	if err != nil {
		s.logger.Warn("metadata extraction failed",
			zap.String("file_path", filePath),
			zap.Error(err))
		return errorResult(fmt.Sprintf("Failed to read metadata: %v", err)), nil
	}

	s.logger.Info("metadata extracted",
		zap.String("file_path", filePath),
		zap.Int("columns", meta.TotalColumns),
		zap.Int("rows_sampled", meta.RowsSampled))

	return jsonResult(meta)
}

// registerInterpretColumnsTool registers the interpret_columns tool
func (s *MCPServer) registerInterpretColumnsTool() {
	tool := mcp.Tool{
		Name:        "interpret_columns",
		Description: "Profile the listed columns of a CSV or TSV file: value counts, nulls, and uniques",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"file_path": map[string]any{
					"type":        "string",
					"description": "Path to the CSV or TSV file",
				},
				"columns": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Column names to profile",
				},
			},
			Required: []string{"file_path", "columns"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleInterpretColumns)
}

// handleInterpretColumns handles the interpret_columns tool
func (s *MCPServer) handleInterpretColumns(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := request.RequireString("file_path")
	if err != nil {
		return nil, fmt.Errorf("file_path parameter is required: %w", err)
	}

	columns, err := request.RequireStringSlice("columns")
	if err != nil {
		return nil, fmt.Errorf("columns parameter is required: %w", err)
	}

	if err := dataset.ValidateColumnNames(columns); err != nil {
		return errorResult(fmt.Sprintf("Invalid column list: %v", err)), nil
	}

	table, _, err := dataset.LoadCSV(filePath, s.loadOptions())
	if err != nil {
		s.logger.Warn("dataset load failed",
			zap.String("file_path", filePath),
			zap.Error(err))
		return errorResult(fmt.Sprintf("Failed to load dataset: %v", err)), nil
	}

	profiles, err := dataset.InterpretColumns(table, columns)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to profile columns: %v", err)), nil
	}

	s.logger.Info("columns profiled",
		zap.String("file_path", filePath),
		zap.Int("columns", len(columns)))

	return jsonResult(map[string]any{"columns": profiles})
}

// registerRenderChartTool registers the render_chart tool
func (s *MCPServer) registerRenderChartTool() {
	tool := mcp.Tool{
		Name:        "render_chart",
		Description: "Render column-oriented data as an interactive Chart.js HTML file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"data": map[string]any{
					"type":        "object",
					"description": "Column-oriented data: column name to array of values",
				},
				"chart_type": map[string]any{
					"type":        "string",
					"description": "Chart type",
					"enum":        []string{"bar", "pie", "line"},
				},
				"title": map[string]any{
					"type":        "string",
					"description": "Chart title (optional)",
				},
			},
			Required: []string{"data", "chart_type"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleRenderChart)
}

// handleRenderChart handles the render_chart tool
func (s *MCPServer) handleRenderChart(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chartType, err := request.RequireString("chart_type")
	if err != nil {
		return nil, fmt.Errorf("chart_type parameter is required: %w", err)
	}

	args := request.GetArguments()
	rawData, ok := args["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("data parameter must be an object mapping column names to value arrays")
	}

	data := make(map[string][]any, len(rawData))
	for name, raw := range rawData {
		values, valuesOK := raw.([]any)
		if !valuesOK {
			return errorResult(fmt.Sprintf("Column %q must be an array of values", name)), nil
		}
		data[name] = values
	}

	title := request.GetString("title", "")

	path, err := s.renderer.Generate(data, chartType, title)
	if err != nil {
		s.logger.Warn("chart rendering failed",
			zap.String("chart_type", chartType),
			zap.Error(err))
		return errorResult(fmt.Sprintf("Failed to render chart: %v", err)), nil
	}

	return jsonResult(map[string]any{"chart_path": path})
}

// jsonResult encodes a payload as a single text content block.
func jsonResult(payload any) (*mcp.CallToolResult, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: string(encoded)},
		},
	}, nil
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: message},
		},
		IsError: true,
	}
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
