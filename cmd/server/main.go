// Package main is the entry point for the Databox MCP server.
//
// The Databox server implements a Model Context Protocol (MCP) server that
// runs untrusted Starlark analysis scripts against CSV and TSV files inside
// a capability-limited namespace. The server supports both stdio and HTTP
// transports and provides static script validation against a configurable
// forbidden-pattern policy, bounded result normalization, and Chart.js
// visualization output.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/isdmx/databox/charts"
	"github.com/isdmx/databox/config"
	"github.com/isdmx/databox/engine"
	"github.com/isdmx/databox/logger"
	"github.com/isdmx/databox/mcpserver"
	"github.com/isdmx/databox/policy"
)

// newPolicyStore builds the forbidden-pattern store from configuration.
// An empty configured list selects the built-in defaults.
func newPolicyStore(cfg *config.Config) *policy.Store {
	return policy.NewStore(cfg.Engine.ForbiddenPatterns)
}

// newEngine builds the script engine from configuration.
func newEngine(cfg *config.Config, store *policy.Store, log *zap.Logger) engine.Runner {
	return engine.New(engine.Config{
		Enabled:        cfg.Engine.Enabled,
		MaxScriptChars: cfg.Engine.MaxScriptChars,
		MaxResultBytes: cfg.Engine.MaxResultBytes,
		ChunkRows:      cfg.Engine.ChunkRows,
	}, store, log)
}

// newChartRenderer builds the Chart.js renderer from configuration.
func newChartRenderer(cfg *config.Config, log *zap.Logger) mcpserver.ChartRenderer {
	return charts.New(cfg, log)
}

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// Forbidden-pattern policy store
			newPolicyStore,

			// Script engine
			newEngine,

			// Chart renderer
			newChartRenderer,

			// MCP Server
			mcpserver.New,
		),

		// Start the appropriate transport based on config
		fx.Invoke(
			func(cfg *config.Config, server *mcpserver.MCPServer) {
				switch cfg.Server.Transport {
				case "stdio":
					// Use fx to run this as a background task
					go func() {
						if err := server.ServeStdio(); err != nil {
							panic(err)
						}
					}()
				case "http":
					go func() {
						if err := server.ServeHTTP(); err != nil {
							panic(err)
						}
					}()
				default:
					panic("unsupported transport: " + cfg.Server.Transport)
				}
			},
		),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}
