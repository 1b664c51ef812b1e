// internal/responder/alert-operator/models.go
package alertoperator

import (
	"fmt"
	"time"

	apperrors "messenger-responder/internal/common/errors"
)

// snsSubjectLimit is the maximum SNS subject length.
const snsSubjectLimit = 100

// Alert is the JSON document published to operators.
type Alert struct {
	Service     string                 `json:"service"`
	Environment string                 `json:"environment,omitempty"`
	Code        apperrors.ErrorCode    `json:"code"`
	Category    string                 `json:"category"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	RequestID   string                 `json:"requestId,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

func (a *Alert) Subject() string {
	subject := fmt.Sprintf("[%s] %s: %s", a.Service, a.Code, a.Message)
	if len(subject) > snsSubjectLimit {
		subject = subject[:snsSubjectLimit]
	}
	return subject
}
