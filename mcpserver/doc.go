// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes tools
// for dataset analysis. It uses the mark3labs/mcp-go library to handle the
// protocol details and provides run_script as the primary interface for
// executing analysis scripts against tabular files, plus describe_table,
// interpret_columns, and render_chart.
//
// The server supports both stdio and HTTP transports as configured by the
// application configuration.
//
// Usage:
//
//	server, err := mcpserver.New(config, logger, runner, renderer)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio() // or server.ServeHTTP()
package mcpserver
