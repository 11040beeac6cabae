package engine

// Response is the single envelope returned to callers. Exactly two shapes
// exist: success carries content and captured output; error carries a kind
// from the closed taxonomy, a message, captured output, and optional detail
// such as a violation list or fault traceback. A Response is immutable once
// constructed.
type Response struct {
	Content   []any          `json:"content"`
	IsError   bool           `json:"isError"`
	Kind      ErrorKind      `json:"error_type,omitempty"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Traceback string         `json:"traceback,omitempty"`
	Output    string         `json:"output,omitempty"`
	Truncated bool           `json:"truncated,omitempty"`
}

// NewSuccess wraps a normalized result and captured output. An Empty result
// yields empty content; truncation is reported as metadata, never as an
// error.
func NewSuccess(result ResultValue, output string) Response {
	content := []any{}
	if payload, ok := result.Content(); ok {
		content = append(content, payload)
	}
	return Response{
		Content:   content,
		Output:    output,
		Truncated: result.Truncated,
	}
}

// NewError builds the error envelope for the given kind.
func NewError(kind ErrorKind, message, output string) Response {
	return Response{
		Content: []any{},
		IsError: true,
		Kind:    kind,
		Message: message,
		Output:  output,
	}
}

// NewSecurityError builds a SecurityViolation envelope. The details always
// carry the full violation list and the complete configured pattern list so
// callers can pre-screen future scripts.
func NewSecurityError(message, output string, violations []Violation, allPatterns []string) Response {
	resp := NewError(KindSecurityViolation, message, output)
	resp.Details = map[string]any{
		"violations":             violations,
		"all_forbidden_patterns": allPatterns,
	}
	return resp
}

// NewFaultError builds an ExecutionFault envelope with the formatted
// backtrace of the uncaught runtime error.
func NewFaultError(message, output, traceback string) Response {
	resp := NewError(KindExecutionFault, message, output)
	resp.Traceback = traceback
	return resp
}
