package template

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPromptTemplateBuiltin(t *testing.T) {
	t.Chdir(t.TempDir())

	for name, want := range map[string]string{
		"analysis":       "expert industrial equipment analyst",
		"recommendation": "numbered list",
		"synthesizer":    "synthesizing information",
	} {
		content, err := GetPromptTemplate(context.Background(), name)
		require.NoError(t, err, name)
		assert.Contains(t, content, want)
	}
}

func TestGetPromptTemplateOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "prompts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompts", "analysis.md"), []byte("custom analyst\n"), 0o600))

	content, err := GetPromptTemplate(context.Background(), "analysis")
	require.NoError(t, err)
	assert.Equal(t, "custom analyst", content)
}

func TestGetPromptTemplateUnknown(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := GetPromptTemplate(context.Background(), "coordinator")
	require.Error(t, err)
}
