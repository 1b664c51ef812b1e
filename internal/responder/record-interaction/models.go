// internal/responder/record-interaction/models.go
package recordinteraction

import "time"

// Interaction is one audit document: what was detected, how it resolved and
// whether the reply was delivered.
type Interaction struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"requestId,omitempty"`
	SenderID   string    `json:"senderId,omitempty"`
	Intent     string    `json:"intent,omitempty"`
	Entity     string    `json:"entity,omitempty"`
	Value      string    `json:"value,omitempty"`
	Confidence float64   `json:"confidence"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	Delivered  bool      `json:"delivered"`
	MessageID  string    `json:"messageId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
