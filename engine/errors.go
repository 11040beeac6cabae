package engine

// ErrorKind classifies every failure the engine can report. The set is
// closed: callers can switch on it exhaustively.
type ErrorKind string

const (
	// KindEmptyInput means the script was empty or only whitespace.
	KindEmptyInput ErrorKind = "EMPTY_INPUT"
	// KindTooLarge means the script exceeded the configured length limit.
	KindTooLarge ErrorKind = "SCRIPT_TOO_LARGE"
	// KindSyntaxError means the script is not a well-formed program.
	KindSyntaxError ErrorKind = "SYNTAX_ERROR"
	// KindSecurityViolation means a forbidden pattern occurred in the script.
	KindSecurityViolation ErrorKind = "SECURITY_VIOLATION"
	// KindMissingResult means the script bound no designated output.
	KindMissingResult ErrorKind = "MISSING_RESULT"
	// KindExecutionFault means the script raised an uncaught runtime error.
	KindExecutionFault ErrorKind = "EXECUTION_FAULT"
	// KindFeatureDisabled means script execution is switched off by config.
	KindFeatureDisabled ErrorKind = "FEATURE_DISABLED"
	// KindInternalError covers anything not otherwise classified.
	KindInternalError ErrorKind = "INTERNAL_ERROR"
)
