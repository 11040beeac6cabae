package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/isdmx/databox/dataset"
	"github.com/isdmx/databox/policy"
)

// Default limits applied when Config fields are zero.
const (
	DefaultMaxScriptChars = 100000
	DefaultMaxResultBytes = 100 * 1024 * 1024
	DefaultChunkRows      = 10000
)

// Config bounds the engine. Zero limits select the defaults; Enabled must
// be set explicitly.
type Config struct {
	Enabled        bool
	MaxScriptChars int
	MaxResultBytes int64
	ChunkRows      int
}

func (c Config) withDefaults() Config {
	if c.MaxScriptChars <= 0 {
		c.MaxScriptChars = DefaultMaxScriptChars
	}
	if c.MaxResultBytes <= 0 {
		c.MaxResultBytes = DefaultMaxResultBytes
	}
	if c.ChunkRows <= 0 {
		c.ChunkRows = DefaultChunkRows
	}
	return c
}

// Runner is the interface transports depend on for script execution.
type Runner interface {
	Run(ctx context.Context, script string, table *dataset.Table) Response
}

// Engine wires validator, harness, normalizer, and response building into
// one call path. The only state shared across calls is the read-only policy
// store; everything else is call-local.
type Engine struct {
	cfg        Config
	store      *policy.Store
	validator  *Validator
	harness    *Harness
	normalizer *Normalizer
	logger     *zap.Logger
}

var _ Runner = (*Engine)(nil)

// New builds an Engine over the given policy store.
func New(cfg Config, store *policy.Store, logger *zap.Logger) *Engine {
	cfg = cfg.withDefaults()
	validator := NewValidator(cfg.MaxScriptChars, store)
	return &Engine{
		cfg:        cfg,
		store:      store,
		validator:  validator,
		harness:    NewHarness(validator, cfg.ChunkRows, logger),
		normalizer: NewNormalizer(cfg.MaxResultBytes),
		logger:     logger,
	}
}

// Run takes a script through validation, execution, and normalization, and
// returns the canonical envelope. No fault from inside the script escapes
// as an error return; every outcome is a Response.
func (e *Engine) Run(ctx context.Context, script string, table *dataset.Table) Response {
	if !e.cfg.Enabled {
		return NewError(KindFeatureDisabled,
			"script execution is disabled; set engine.enabled to true to enable", "")
	}

	e.logger.Debug("script execution requested", zap.Int("script_len", len(script)))

	if vr := e.validator.Validate(script); !vr.OK {
		e.logger.Warn("script rejected by validator",
			zap.String("kind", string(vr.Kind)),
			zap.String("reason", vr.Message))
		return e.rejection(vr)
	}

	out := e.harness.Execute(ctx, script, table)
	if out.Fault != nil {
		return e.faultResponse(out)
	}

	result := e.normalizer.Normalize(out.Value)
	e.logger.Info("script execution completed",
		zap.String("result_kind", string(result.Kind)),
		zap.Bool("truncated", result.Truncated),
		zap.Int("output_len", len(out.Output)))
	return NewSuccess(result, out.Output)
}

func (e *Engine) rejection(vr ValidationResult) Response {
	if vr.Kind == KindSecurityViolation {
		return NewSecurityError(vr.Message, "", vr.Violations, e.store.Patterns())
	}
	return NewError(vr.Kind, vr.Message, "")
}

func (e *Engine) faultResponse(out Outcome) Response {
	f := out.Fault
	switch f.Kind {
	case KindSecurityViolation:
		return NewSecurityError(f.Message, out.Output, f.Violations, e.store.Patterns())
	case KindExecutionFault:
		return NewFaultError(f.Message, out.Output, f.Backtrace)
	default:
		return NewError(f.Kind, f.Message, out.Output)
	}
}
