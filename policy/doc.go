// Package policy holds the forbidden-pattern rules applied to user scripts.
//
// The policy package defines the immutable rule set consulted by the static
// validator. Rules are loaded once at startup from configuration (or the
// built-in defaults) and cannot be changed afterwards; reconfiguration
// requires a process restart. Each rule pairs a literal pattern with a
// human-readable rationale explaining why scripts containing it are
// rejected.
//
// Usage:
//
//	store := policy.NewStore(nil) // built-in default rules
//	for _, rule := range store.Rules() {
//	    fmt.Printf("%s: %s\n", rule.Pattern, rule.Rationale)
//	}
package policy
