package policy

// Rule pairs a forbidden literal pattern with the reason it is blocked.
type Rule struct {
	Pattern   string
	Rationale string
}

// DefaultPatterns returns the built-in forbidden-pattern list. It covers
// system and process access, dynamic code evaluation, and browser/network
// primitives.
func DefaultPatterns() []string {
	return []string{
		"os.", "sys.", "subprocess.", "open(", "exec(", "eval(",
		"import os", "import sys", "document.", "window.",
		"XMLHttpRequest", "fetch(", "Function(", "javascript:",
	}
}

// rationales maps known patterns to human-readable explanations. Patterns
// configured at startup that are not listed here fall back to a generic
// rationale.
var rationales = map[string]string{
	"os.":            "Operating system access can compromise file system security",
	"sys.":           "System module access can allow unsafe system operations",
	"subprocess.":    "Subprocess execution can run arbitrary commands",
	"open(":          "Direct file access bypasses the dataset loading controls",
	"exec(":          "Dynamic code execution can run arbitrary code",
	"eval(":          "Dynamic evaluation can execute arbitrary expressions",
	"import os":      "Direct OS module import bypasses security controls",
	"import sys":     "Direct system module import bypasses security controls",
	"document.":      "DOM access is not relevant for data analysis",
	"window.":        "Browser window access is not relevant for data analysis",
	"XMLHttpRequest": "Network requests are not relevant for data analysis",
	"fetch(":         "Network requests are not relevant for data analysis",
	"Function(":      "Dynamic function creation can execute arbitrary code",
	"javascript:":    "JavaScript execution is not relevant for data analysis",
}

const genericRationale = "This operation is forbidden for security reasons"

// Store is the process-wide, read-only set of policy rules. It is safe for
// concurrent use; no mutation operations are exposed after construction.
type Store struct {
	rules []Rule
}

// NewStore builds a Store from the configured patterns. An empty or nil
// pattern list selects the built-in defaults. Rule order follows the input
// order.
func NewStore(patterns []string) *Store {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}

	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		rules = append(rules, Rule{Pattern: p, Rationale: RationaleFor(p)})
	}

	return &Store{rules: rules}
}

// RationaleFor returns the explanation for a forbidden pattern, or a generic
// fallback for patterns without a known mapping.
func RationaleFor(pattern string) string {
	if r, ok := rationales[pattern]; ok {
		return r
	}
	return genericRationale
}

// Rules returns a copy of the ordered rule list.
func (s *Store) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Patterns returns a copy of the ordered pattern list, without rationales.
// Error responses include this list so callers can pre-screen future scripts.
func (s *Store) Patterns() []string {
	out := make([]string, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Pattern
	}
	return out
}

// Len returns the number of configured rules.
func (s *Store) Len() int {
	return len(s.rules)
}
