// internal/responder/resolve-answer/models.go
package resolveanswer

import apperrors "messenger-responder/internal/common/errors"

// Outcome names the branch of the resolution algorithm that produced an answer.
type Outcome string

const (
	OutcomeDirect          Outcome = "direct"
	OutcomeEntity          Outcome = "entity"
	OutcomeFallback        Outcome = "fallback"
	OutcomeLowConfidence   Outcome = "low_confidence"
	OutcomeStoreFailure    Outcome = "store_failure"
	OutcomeAmbiguousEntity Outcome = "ambiguous_entity"
	OutcomeMissingFallback Outcome = "missing_fallback"
)

type Resolution struct {
	Answer     string              `json:"answer"`
	Outcome    Outcome             `json:"outcome"`
	Intent     string              `json:"intent,omitempty"`
	Entity     string              `json:"entity,omitempty"`
	Value      string              `json:"value,omitempty"`
	Confidence float64             `json:"confidence"`
	Reason     apperrors.ErrorCode `json:"reason,omitempty"`
}

// IsErrorAnswer reports whether the resolution fell back to the fixed error text.
func (r *Resolution) IsErrorAnswer() bool {
	return r.Reason != ""
}
