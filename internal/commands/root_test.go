package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourcesCommandListsCatalog(t *testing.T) {
	var out bytes.Buffer
	resourcesCmd.SetOut(&out)
	resourcesCmd.SetErr(&out)

	require.NoError(t, resourcesCmd.RunE(resourcesCmd, nil))

	assert.Contains(t, out.String(), "demo://resource/1\ttext/plain")
	assert.Contains(t, out.String(), "demo://resource/100\tapplication/octet-stream")
}

func TestBuildAgentRequiresAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, _, err := buildAgent(rootCmd)
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, rootCmd.ParseFlags([]string{
		"--model", "override-model",
		"--max-iterations", "2",
	}))

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, "override-model", cfg.Model)
	assert.Equal(t, 2, cfg.MaxIterations)
}
