package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToolsForwardsRequired(t *testing.T) {
	tools := convertTools([]Tool{
		{
			Name:        "add",
			Description: "Adds two numbers",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a": map[string]interface{}{"type": "number"},
					"b": map[string]interface{}{"type": "number"},
				},
				"required": []string{"a", "b"},
			},
		},
		{
			// required as decoded from JSON.
			Name: "echo",
			InputSchema: map[string]interface{}{
				"properties": map[string]interface{}{
					"message": map[string]interface{}{"type": "string"},
				},
				"required": []interface{}{"message"},
			},
		},
		{
			Name:        "get_time",
			InputSchema: map[string]interface{}{"properties": map[string]interface{}{}},
		},
	})
	require.Len(t, tools, 3)

	add := tools[0].OfTool
	require.NotNil(t, add)
	assert.Equal(t, "add", add.Name)
	assert.NotNil(t, add.InputSchema.Properties)
	assert.Equal(t, []string{"a", "b"}, add.InputSchema.Required)

	assert.Equal(t, []string{"message"}, tools[1].OfTool.InputSchema.Required)
	assert.Empty(t, tools[2].OfTool.InputSchema.Required)
}

func TestConvertMessagesRejectsUnknownBlockType(t *testing.T) {
	_, err := convertMessages([]Message{
		{Role: RoleUser, Content: []ContentBlock{{Type: ContentType("image")}}},
	})
	assert.Error(t, err)
}
