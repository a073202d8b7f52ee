package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	prompts  map[string]string
	contexts map[string]int
}

func newMemStore() *memStore {
	return &memStore{prompts: map[string]string{}, contexts: map[string]int{}}
}

func (m *memStore) Prompt(s, c string) (string, bool, error) {
	p, ok := m.prompts[s+"/"+c]
	return p, ok, nil
}

func (m *memStore) Context(s, c string) (int, bool, error) {
	n, ok := m.contexts[s+"/"+c]
	return n, ok, nil
}

func (m *memStore) SetPrompt(s, c, p string) error {
	m.prompts[s+"/"+c] = p
	return nil
}

func (m *memStore) SetContext(s, c string, n int) error {
	m.contexts[s+"/"+c] = n
	return nil
}

func writePresets(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: first
  prompt: be first
- name: second
  prompt: be second
`), 0o644))
	return path
}

func TestLoadFallsBackToBuiltIn(t *testing.T) {
	b, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), newMemStore())
	require.NoError(t, err)
	assert.NotEmpty(t, b.Presets())
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	_, err := Load(path, newMemStore())
	assert.Error(t, err)
}

func TestPick(t *testing.T) {
	b, err := Load(writePresets(t), newMemStore())
	require.NoError(t, err)

	for sel, want := range map[string]string{"1": "be first", "2": "be second", "second": "be second"} {
		got, ok := b.Pick(sel)
		assert.True(t, ok, sel)
		assert.Equal(t, want, got, sel)
	}
	for _, sel := range []string{"0", "3", "Second", "nope"} {
		_, ok := b.Pick(sel)
		assert.False(t, ok, sel)
	}
}

func TestPromptDefaultsAndSet(t *testing.T) {
	b, err := Load(writePresets(t), newMemStore())
	require.NoError(t, err)

	assert.Equal(t, "be first", b.Prompt("g", "c"))

	reply, err := b.SetPrompt("", "g", "c")
	require.NoError(t, err)
	assert.Equal(t, "The current prompt is:\n> be first", reply)

	reply, err = b.SetPrompt("custom talk like a cat", "g", "c")
	require.NoError(t, err)
	assert.Equal(t, "Prompt set to:\n> talk like a cat", reply)
	assert.Equal(t, "talk like a cat", b.Prompt("g", "c"))

	reply, err = b.SetPrompt("2", "g", "c")
	require.NoError(t, err)
	assert.Equal(t, "Prompt set to:\n> be second", reply)

	reply, err = b.SetPrompt("bogus", "g", "c")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, `"bogus" didn't match`))
	assert.Equal(t, "be second", b.Prompt("g", "c"))
}

func TestContext(t *testing.T) {
	b, err := Load(writePresets(t), newMemStore())
	require.NoError(t, err)

	assert.Equal(t, DefaultContext, b.Context("g", "c"))

	reply, err := b.SetContext("0", "g", "c")
	require.NoError(t, err)
	assert.Equal(t, "Context set to 0.", reply)
	assert.Equal(t, 0, b.Context("g", "c"))

	reply, _ = b.SetContext("", "g", "c")
	assert.Equal(t, "!ai commands will use 0 lines of context", reply)

	for _, bad := range []string{"-1", "lots", "+3"} {
		reply, _ = b.SetContext(bad, "g", "c")
		assert.Contains(t, reply, "Could not set context amount", bad)
	}
	assert.Equal(t, 0, b.Context("g", "c"))
}

func TestList(t *testing.T) {
	b, err := Load(writePresets(t), newMemStore())
	require.NoError(t, err)
	assert.Equal(t, "The default prompts are:\n1) first\n> be first\n2) second\n> be second", b.List())
}
