package intenttable

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "messenger-responder/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleYAML = `
version: "1"
intents:
  Greeting:
    answer: "Hi there!"
  Flowers:
    color:
      red: "Roses are red"
      Other: "Unknown color"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRecords_YAML(t *testing.T) {
	records, err := LoadRecords(writeFile(t, "intents.yaml", exampleYAML))
	require.NoError(t, err)
	require.Len(t, records, 2)

	greeting := records["Greeting"]
	require.True(t, greeting.IsDirect())
	assert.Equal(t, "Hi there!", *greeting.Answer)

	flowers := records["Flowers"]
	assert.Equal(t, "Flowers", flowers.Intent)
	assert.Equal(t, "Roses are red", flowers.Entities["color"]["red"])
	assert.Equal(t, "Unknown color", flowers.Entities["color"]["Other"])
}

func TestLoadRecords_JSON(t *testing.T) {
	path := writeFile(t, "intents.json", `{"intents":{"Bye":{"answer":"Goodbye"}}}`)

	records, err := LoadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, "Goodbye", *records["Bye"].Answer)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "valid",
			yaml: exampleYAML,
		},
		{
			name:    "no intents",
			yaml:    "version: \"1\"\n",
			wantErr: "intents",
		},
		{
			name: "dispatch without fallback",
			yaml: `
intents:
  Flowers:
    color:
      red: "Roses are red"
`,
			wantErr: "Flowers",
		},
		{
			name: "direct answer mixed with dispatch",
			yaml: `
intents:
  Greeting:
    answer: "Hi"
    color:
      Other: "?"
`,
			wantErr: "Greeting",
		},
		{
			name: "non-string answer",
			yaml: `
intents:
  Flowers:
    color:
      red: 3
      Other: "?"
`,
			wantErr: "Flowers",
		},
		{
			name: "empty record",
			yaml: `
intents:
  Nothing: {}
`,
			wantErr: "Nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse([]byte(tt.yaml), "yaml")
			require.NoError(t, err)

			err = Validate(table)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeIntentTableInvalid))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "broken.json", `{"intents":`))
	assert.Error(t, err)
}

func TestTable_Names(t *testing.T) {
	table, err := Parse([]byte(exampleYAML), ".yml")
	require.NoError(t, err)
	assert.Equal(t, []string{"Flowers", "Greeting"}, table.Names())
}
