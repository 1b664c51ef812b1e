// internal/models/intent.go
package models

import (
	"fmt"
	"sort"
)

const (
	// AnswerField marks a direct-answer intent record.
	AnswerField = "answer"
	// FallbackValue is the entity-value key used when the detected value is unknown or weak.
	FallbackValue = "Other"
)

// IntentRecord is one row of the intent table. A record is either a direct answer
// or an entity dispatch table, never both.
type IntentRecord struct {
	Intent   string                       `json:"intent"`
	Answer   *string                      `json:"answer,omitempty"`
	Entities map[string]map[string]string `json:"entities,omitempty"`
}

// NewDirectRecord builds a direct-answer record.
func NewDirectRecord(intent, answer string) *IntentRecord {
	return &IntentRecord{Intent: intent, Answer: &answer}
}

// IsDirect reports whether the record carries an answer field.
func (r *IntentRecord) IsDirect() bool {
	return r.Answer != nil
}

// EntityNames returns the dispatch entity names in sorted order.
func (r *IntentRecord) EntityNames() []string {
	names := make([]string, 0, len(r.Entities))
	for name := range r.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Item flattens the record into the stored attribute layout:
// {<partitionKey>: intent, answer: ...} or {<partitionKey>: intent, <entity>: {<value>: answer}}.
func (r *IntentRecord) Item(partitionKey string) map[string]interface{} {
	item := make(map[string]interface{}, len(r.Entities)+2)
	if partitionKey != "" {
		item[partitionKey] = r.Intent
	}
	if r.Answer != nil {
		item[AnswerField] = *r.Answer
	}
	for entity, values := range r.Entities {
		m := make(map[string]interface{}, len(values))
		for k, v := range values {
			m[k] = v
		}
		item[entity] = m
	}
	return item
}

// RecordFromItem parses a stored item. Keys listed in reserved (the partition key)
// are skipped. Any attribute other than a string answer or a string-to-string map
// makes the item malformed.
func RecordFromItem(intent string, item map[string]interface{}, reserved ...string) (*IntentRecord, error) {
	skip := make(map[string]bool, len(reserved))
	for _, k := range reserved {
		skip[k] = true
	}

	rec := &IntentRecord{Intent: intent}
	for key, raw := range item {
		if skip[key] {
			continue
		}

		if key == AnswerField {
			answer, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("attribute %q: expected string, got %T", key, raw)
			}
			rec.Answer = &answer
			continue
		}

		values, err := toStringMap(raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		if rec.Entities == nil {
			rec.Entities = make(map[string]map[string]string)
		}
		rec.Entities[key] = values
	}
	return rec, nil
}

func toStringMap(raw interface{}) (map[string]string, error) {
	switch m := raw.(type) {
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]string, len(m))
		for k, v := range m {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("value %q: expected string, got %T", k, v)
			}
			out[k] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected map of answers, got %T", raw)
	}
}
