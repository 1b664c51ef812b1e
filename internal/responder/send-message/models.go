// internal/responder/send-message/models.go
package sendmessage

import (
	"fmt"

	"messenger-responder/internal/models"
)

// Request is the Send API body.
type Request struct {
	Recipient models.Participant `json:"recipient"`
	Message   OutgoingMessage    `json:"message"`
}

type OutgoingMessage struct {
	Text string `json:"text"`
}

type Output struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

// GraphError is the error object returned by the Graph API on non-2xx responses.
type GraphError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FBTraceID string `json:"fbtrace_id,omitempty"`
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph api %s (code %d): %s", e.Type, e.Code, e.Message)
}

type errorEnvelope struct {
	Error *GraphError `json:"error"`
}
