// Package intenttable reads and lints intent table files used to seed stores
// and to serve intents without a database.
package intenttable

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "messenger-responder/internal/common/errors"
	"messenger-responder/internal/models"

	"gopkg.in/yaml.v3"
)

// Load reads a table from a .json, .yaml or .yml file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data; format is a file extension and defaults to YAML.
func Parse(data []byte, format string) (*Table, error) {
	var t Table
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parse intent table: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parse intent table: %w", err)
		}
	}
	return &t, nil
}

// Validate lints t and returns an INTENT_TABLE_INVALID error listing every violation.
func Validate(t *Table) error {
	result, err := tableSchema.Validate(t)
	if err != nil {
		return apperrors.NewIntentTableInvalidError(err.Error())
	}
	if !result.Valid {
		return apperrors.NewIntentTableInvalidError(result.String())
	}
	return nil
}

// Names returns the intent names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.Intents))
	for name := range t.Intents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records converts every entry into an intent record.
func (t *Table) Records() (map[string]*models.IntentRecord, error) {
	records := make(map[string]*models.IntentRecord, len(t.Intents))
	for name, item := range t.Intents {
		rec, err := models.RecordFromItem(name, item)
		if err != nil {
			return nil, apperrors.NewMalformedIntentRecordError(name, err.Error())
		}
		records[name] = rec
	}
	return records, nil
}

// LoadRecords loads, validates and converts the table at path.
func LoadRecords(path string) (map[string]*models.IntentRecord, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(t); err != nil {
		return nil, err
	}
	return t.Records()
}
