package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDefinitions = `
handlers:
  - name: testing-specialist
    domain: testing
    keywords: [pytest, test, mock, async, coverage]
    patterns: ['unit\s+test', 'test\s+suite']
    intents: [test, verify, validate]
    weight: 1.0
    description: Test writing and debugging
  - name: security-auditor
    domain: security
    secondary_domains: [performance]
    keywords: [auth, vulnerability, encrypt, token]
    patterns: ['sql\s+injection', 'security\s+audit']
    intents: [audit, secure, harden]
    weight: 1.2
    description: Security-sensitive work
special:
  fallback: general-assistant
  coordination: cross-domain-coordinator
  strategic: strategic-coordinator
  conflict: conflict-resolver
`

func TestLoad(t *testing.T) {
	t.Parallel()

	reg, err := Load([]byte(sampleDefinitions))
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"testing", "security"}, reg.Domains())

	p, ok := reg.ByDomain("security")
	require.True(t, ok)
	assert.Equal(t, "security-auditor", p.Name)
	assert.Equal(t, 1.2, p.WeightMultiplier)
	assert.True(t, p.ServesDomain("performance"))
	assert.False(t, p.ServesDomain("testing"))

	sp := reg.Special()
	assert.Equal(t, "general-assistant", sp.Fallback)
	assert.Equal(t, "strategic-coordinator", sp.Strategic)
}

func TestLoadRejectsMalformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		yaml string
	}{
		{"empty_file", ``},
		{"missing_name", "handlers:\n  - domain: testing\n    keywords: [test]\n"},
		{"missing_domain", "handlers:\n  - name: x\n    keywords: [test]\n"},
		{"no_keywords_or_patterns", "handlers:\n  - name: x\n    domain: testing\n"},
		{"bad_regex", "handlers:\n  - name: x\n    domain: testing\n    patterns: ['[unclosed']\n"},
		{"negative_weight", "handlers:\n  - name: x\n    domain: testing\n    keywords: [test]\n    weight: -1\n"},
		{"duplicate_name", `
handlers:
  - {name: x, domain: testing, keywords: [a]}
  - {name: x, domain: security, keywords: [b]}
`},
		{"duplicate_domain", `
handlers:
  - {name: x, domain: testing, keywords: [a]}
  - {name: y, domain: testing, keywords: [b]}
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load([]byte(tc.yaml))
			require.Error(t, err)
			var le *LoadError
			assert.True(t, errors.As(err, &le), "expected *LoadError, got %T", err)
		})
	}
}

func TestLoadDefaultsWeightToOne(t *testing.T) {
	t.Parallel()

	reg, err := Load([]byte("handlers:\n  - {name: x, domain: testing, keywords: [test]}\n"))
	require.NoError(t, err)

	p, ok := reg.ByName("x")
	require.True(t, ok)
	assert.Equal(t, 1.0, p.WeightMultiplier)
	// No fallback configured: first handler takes the role.
	assert.Equal(t, "x", reg.Special().Fallback)
}

func TestWatcherHotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "handlers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDefinitions), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Equal(t, 2, w.Current().Len())

	updated := `
handlers:
  - name: testing-specialist
    domain: testing
    keywords: [pytest, test]
  - name: database-specialist
    domain: database
    keywords: [sql, migration, index]
special:
  fallback: general-assistant
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		return w.Current().Len() == 2 && func() bool {
			_, ok := w.Current().ByDomain("database")
			return ok
		}()
	}, 3*time.Second, 50*time.Millisecond, "watcher should pick up the new definitions")
}

func TestWatcherKeepsOldRegistryOnBrokenEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "handlers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDefinitions), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	before := w.Current()
	require.NoError(t, os.WriteFile(path, []byte("handlers: [::not yaml"), 0o644))

	// Give the watcher a moment to see (and reject) the broken file.
	time.Sleep(800 * time.Millisecond)
	assert.Same(t, before, w.Current(), "broken edit must not replace a working registry")
}
