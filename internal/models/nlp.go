// internal/models/nlp.go
package models

import (
	"bytes"
	"encoding/json"
)

// IntentEntity is the reserved entity name carrying the classified intent.
const IntentEntity = "Intent"

// Detection is a single scored NLP detection.
type Detection struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// UnmarshalJSON accepts non-string values (numbers, datetimes as objects) and keeps
// their raw JSON text, so built-in entities never fail decoding.
func (d *Detection) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value      json.RawMessage `json:"value"`
		Confidence float64         `json:"confidence"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Confidence = raw.Confidence
	d.Value = ""
	if len(raw.Value) == 0 || bytes.Equal(raw.Value, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw.Value, &d.Value); err != nil {
		d.Value = string(raw.Value)
	}
	return nil
}

// Entities maps an entity name to its detections, best candidate first.
type Entities map[string][]Detection

// Top returns the first detection for name. Only the top candidate is ever used.
func (e Entities) Top(name string) (Detection, bool) {
	detections, ok := e[name]
	if !ok || len(detections) == 0 {
		return Detection{}, false
	}
	return detections[0], true
}

// Has reports whether name has at least one detection.
func (e Entities) Has(name string) bool {
	_, ok := e.Top(name)
	return ok
}
