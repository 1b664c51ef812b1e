// pkg/intenttable/schema.go
package intenttable

import "messenger-responder/internal/common/validation"

// Table is the on-disk intent table. Each intent maps either to {answer: ...}
// or to {<entity>: {<value>: <answer>, Other: <answer>}}.
type Table struct {
	Version string                            `json:"version,omitempty" yaml:"version,omitempty"`
	Intents map[string]map[string]interface{} `json:"intents" yaml:"intents"`
}

var tableSchema = validation.MustCompile(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["intents"],
  "properties": {
    "version": {"type": "string"},
    "intents": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {"$ref": "#/definitions/record"}
    }
  },
  "definitions": {
    "record": {
      "oneOf": [
        {
          "type": "object",
          "required": ["answer"],
          "properties": {"answer": {"type": "string", "minLength": 1}},
          "additionalProperties": false
        },
        {
          "type": "object",
          "minProperties": 1,
          "not": {"required": ["answer"]},
          "additionalProperties": {
            "type": "object",
            "required": ["Other"],
            "additionalProperties": {"type": "string"}
          }
        }
      ]
    }
  }
}`)
