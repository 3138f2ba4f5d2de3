package schemas

import (
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schemaFiles = []string{
	"summary.schema.json",
	"link_map.schema.json",
	"user_input.schema.json",
}

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := fs.ReadFile(Files, schemaFile)
			require.NoError(t, err, "schema file should be embedded")

			var v interface{}
			err = json.Unmarshal(data, &v)
			assert.NoError(t, err, "schema file should be valid JSON: %s", schemaFile)
		})
	}
}

func TestSchemaFiles_Draft07Objects(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := fs.ReadFile(Files, schemaFile)
			require.NoError(t, err)

			var schemaObj map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &schemaObj))

			assert.Equal(t, "http://json-schema.org/draft-07/schema#", schemaObj["$schema"])
			assert.Equal(t, "object", schemaObj["type"])
			assert.Contains(t, schemaObj, "properties")
		})
	}
}

func TestUserInputSchema_MessageTypes(t *testing.T) {
	data, err := fs.ReadFile(Files, "user_input.schema.json")
	require.NoError(t, err)

	var schemaObj struct {
		Properties struct {
			MessageType struct {
				Enum []string `json:"enum"`
			} `json:"message_type"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &schemaObj))
	assert.Len(t, schemaObj.Properties.MessageType.Enum, 6)
	assert.Contains(t, schemaObj.Properties.MessageType.Enum, "LinkedIn Message for refferal")
}

func TestLinkMapSchema_Keys(t *testing.T) {
	data, err := fs.ReadFile(Files, "link_map.schema.json")
	require.NoError(t, err)

	var schemaObj struct {
		Properties map[string]interface{} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &schemaObj))
	for _, key := range []string{"linkedin", "github", "portfolio", "blog", "resume"} {
		assert.Contains(t, schemaObj.Properties, key)
	}
}
