package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("DefaultsWhenEmpty", func(t *testing.T) {
		store := NewStore(nil)
		require.Equal(t, len(DefaultPatterns()), store.Len())
		assert.Equal(t, DefaultPatterns(), store.Patterns())
	})

	t.Run("ConfiguredPatternsPreserveOrder", func(t *testing.T) {
		store := NewStore([]string{"shutil.", "import os", "socket."})

		rules := store.Rules()
		require.Len(t, rules, 3)
		assert.Equal(t, "shutil.", rules[0].Pattern)
		assert.Equal(t, "import os", rules[1].Pattern)
		assert.Equal(t, "socket.", rules[2].Pattern)
	})

	t.Run("KnownPatternGetsSpecificRationale", func(t *testing.T) {
		store := NewStore([]string{"subprocess."})

		rules := store.Rules()
		require.Len(t, rules, 1)
		assert.Contains(t, rules[0].Rationale, "arbitrary commands")
	})

	t.Run("UnknownPatternGetsGenericRationale", func(t *testing.T) {
		store := NewStore([]string{"telnetlib."})

		rules := store.Rules()
		require.Len(t, rules, 1)
		assert.Equal(t, genericRationale, rules[0].Rationale)
	})
}

func TestStoreImmutability(t *testing.T) {
	t.Run("RulesReturnsCopy", func(t *testing.T) {
		store := NewStore([]string{"os.", "sys."})

		rules := store.Rules()
		rules[0].Pattern = "mutated"

		assert.Equal(t, "os.", store.Rules()[0].Pattern)
	})

	t.Run("PatternsReturnsCopy", func(t *testing.T) {
		store := NewStore([]string{"os."})

		patterns := store.Patterns()
		patterns[0] = "mutated"

		assert.Equal(t, "os.", store.Patterns()[0])
	})
}

func TestRationaleFor(t *testing.T) {
	assert.Contains(t, RationaleFor("os."), "Operating system access")
	assert.Contains(t, RationaleFor("exec("), "arbitrary code")
	assert.Equal(t, genericRationale, RationaleFor("never-configured"))
}
