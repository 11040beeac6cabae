// Package engine validates, executes, and serializes tabular data scripts.
//
// The engine package is the core of the server. It runs caller-supplied
// Starlark scripts against one in-memory table inside a capability-limited
// namespace: the script sees the dataset handle, a small set of sanctioned
// chunked-read helpers, and nothing else from the host. A static validator
// rejects scripts up front on size, syntax, and forbidden-pattern grounds;
// the harness captures print output and converts every runtime fault into a
// typed error; the normalizer caps result size; and the response builder
// emits exactly one of two envelope shapes.
//
// The validator's pattern scan is coarse literal-substring matching. It
// blocks direct textual use of dangerous constructs but does not prevent
// obfuscated access; a Valid result is a pre-filter, not a proof of safety.
//
// Usage:
//
//	eng := engine.New(engine.Config{Enabled: true}, policy.NewStore(nil), logger)
//	resp := eng.Run(ctx, "result = dataset.num_rows", table)
package engine
