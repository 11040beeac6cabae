// Package main is the entry point for the Databox MCP server.
//
// The Databox server implements a Model Context Protocol (MCP) server that
// runs untrusted Starlark analysis scripts against CSV and TSV files inside
// a capability-limited namespace. The server supports both stdio and HTTP
// transports and provides static script validation against a configurable
// forbidden-pattern policy, bounded result normalization, and Chart.js
// visualization output.
//
// The application uses Uber's fx framework for dependency injection and lifecycle
// management, with zap for structured logging and viper for configuration.
package main