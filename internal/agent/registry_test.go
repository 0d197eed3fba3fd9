package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterDropsUnknownNames(t *testing.T) {
	registry := DefaultRegistry()

	tools, err := registry.Filter([]string{"add", "nonexistent", "echo"})
	require.NoError(t, err)

	// Registration order is preserved regardless of request order.
	require.Len(t, tools, 2)
	assert.Equal(t, "echo", tools[0].Name)
	assert.Equal(t, "add", tools[1].Name)
}

func TestFilterEmptyResult(t *testing.T) {
	registry := DefaultRegistry()

	_, err := registry.Filter([]string{"nonexistent"})
	assert.ErrorIs(t, err, ErrNoTools)

	_, err = registry.Filter(nil)
	assert.ErrorIs(t, err, ErrNoTools)
}

func TestDefaultRegistryCatalog(t *testing.T) {
	registry := DefaultRegistry()

	tools, err := registry.Filter([]string{"echo", "add", "get_time", "print_env"})
	require.NoError(t, err)
	require.Len(t, tools, 4)

	for _, tool := range tools {
		assert.NotEmpty(t, tool.Description, "tool %s", tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %s", tool.Name)
		assert.True(t, tool.Annotations.ReadOnlyHint, "bundled tools are read-only: %s", tool.Name)
	}
}
