// internal/responder/messenger-webhook/models.go
package messengerwebhook

import (
	"context"

	"messenger-responder/internal/models"
	recordinteraction "messenger-responder/internal/responder/record-interaction"
	resolveanswer "messenger-responder/internal/responder/resolve-answer"
	sendmessage "messenger-responder/internal/responder/send-message"
)

const (
	EventReceived = "EVENT_RECEIVED"

	SignatureHeader = "X-Hub-Signature-256"
	RequestIDHeader = "X-Request-ID"
)

// Disposition is what happened to one webhook delivery.
type Disposition string

const (
	DispositionAnswered        Disposition = "answered"
	DispositionIgnored         Disposition = "ignored"
	DispositionMissingFallback Disposition = "missing_fallback"
	DispositionSendFailed      Disposition = "send_failed"
	DispositionRejected        Disposition = "rejected"
)

// Define interfaces for mocking
type Resolver interface {
	Resolve(ctx context.Context, entities models.Entities) (*resolveanswer.Resolution, error)
	ErrorAnswer() string
}

type MessageSender interface {
	Send(ctx context.Context, recipient models.Participant, text string) (*sendmessage.Output, error)
}

type Notifier interface {
	Notify(ctx context.Context, requestID string, err error) error
}

type InteractionRecorder interface {
	Record(doc *recordinteraction.Interaction) bool
}
