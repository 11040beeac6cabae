package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.starlark.net/starlark"
	"go.uber.org/zap"

	"github.com/isdmx/databox/dataset"
)

// resultBinding is the designated output name a script must assign.
const resultBinding = "result"

// Fault describes a failed execution attempt: a validation rejection
// surfaced by the fail-closed re-check, a runtime error raised by the
// script, or an internal harness failure.
type Fault struct {
	Kind       ErrorKind
	Message    string
	Backtrace  string
	Violations []Violation
}

// Outcome is the result of one harness call. Exactly one of Value and Fault
// is set; Output carries the captured print stream on every path.
type Outcome struct {
	Value  starlark.Value
	Output string
	Fault  *Fault
}

// Harness runs validated scripts against a dataset handle inside a fresh,
// capability-limited namespace. The harness itself holds no per-call state;
// concurrent calls on independent tables need no coordination.
type Harness struct {
	validator *Validator
	chunkRows int
	logger    *zap.Logger
}

// NewHarness builds a Harness. chunkRows bounds the row-batch size of the
// sanctioned chunked-read helper.
func NewHarness(validator *Validator, chunkRows int, logger *zap.Logger) *Harness {
	return &Harness{
		validator: validator,
		chunkRows: chunkRows,
		logger:    logger,
	}
}

// Execute runs the script to completion or fault. The namespace seeded into
// the script contains only the dataset handle and the chunked-read factory;
// all other bindings the script creates are discarded when the call returns.
// Print output is captured into a call-local buffer that is returned on
// every path.
func (h *Harness) Execute(ctx context.Context, script string, table *dataset.Table) (out Outcome) {
	// Fail closed: callers validate first, but an invalid script must never
	// reach the interpreter.
	if vr := h.validator.Validate(script); !vr.OK {
		return Outcome{Fault: &Fault{
			Kind:       vr.Kind,
			Message:    vr.Message,
			Violations: vr.Violations,
		}}
	}

	if err := ctx.Err(); err != nil {
		return Outcome{Fault: &Fault{
			Kind:    KindInternalError,
			Message: fmt.Sprintf("execution aborted before start: %v", err),
		}}
	}

	var buf bytes.Buffer
	thread := &starlark.Thread{
		Name: "databox-script",
		Print: func(_ *starlark.Thread, msg string) {
			buf.WriteString(msg)
			buf.WriteByte('\n')
		},
	}

	predeclared := starlark.StringDict{
		"dataset":      NewTableValue(table),
		"read_chunked": chunkedReadBuiltin(table, h.chunkRows),
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("script execution panicked", zap.Any("panic", r))
			out = Outcome{
				Output: buf.String(),
				Fault: &Fault{
					Kind:    KindInternalError,
					Message: fmt.Sprintf("internal execution error: %v", r),
				},
			}
		}
	}()

	globals, err := starlark.ExecFileOptions(fileOptions, thread, scriptFilename, script, predeclared)
	if err != nil {
		fault := &Fault{Kind: KindExecutionFault, Message: err.Error()}
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			fault.Message = evalErr.Msg
			fault.Backtrace = evalErr.Backtrace()
		}
		h.logger.Warn("script execution faulted", zap.String("error", fault.Message))
		return Outcome{Output: buf.String(), Fault: fault}
	}

	value, ok := globals[resultBinding]
	if !ok {
		return Outcome{
			Output: buf.String(),
			Fault: &Fault{
				Kind:    KindMissingResult,
				Message: fmt.Sprintf("no %q variable found in script", resultBinding),
			},
		}
	}

	// Every other binding in globals dies here; only the designated output
	// leaves the call.
	return Outcome{Value: value, Output: buf.String()}
}
