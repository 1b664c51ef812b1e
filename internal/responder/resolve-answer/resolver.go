// Package resolveanswer maps NLP detections to a reply using the intent table.
package resolveanswer

import (
	"context"
	"sort"

	apperrors "messenger-responder/internal/common/errors"
	"messenger-responder/internal/common/logger"
	"messenger-responder/internal/common/metrics"
	intentstore "messenger-responder/internal/responder/intent-store"
	"messenger-responder/internal/models"
)

// Resolver holds no per-call state and is safe for concurrent use.
type Resolver struct {
	store  intentstore.IntentStore
	config *Config
	logger logger.Logger
}

func NewResolver(store intentstore.IntentStore, cfg *Config, log logger.Logger) *Resolver {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Resolver{
		store:  store,
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"component": "resolve-answer"}),
	}
}

// ErrorAnswer is the reply used whenever no answer can be resolved.
func (r *Resolver) ErrorAnswer() string {
	return r.config.ErrorAnswer
}

// Resolve returns the reply for entities. Conversational failures (weak or missing
// intent, store errors, ambiguous entities) yield the error answer with a nil error.
// A dispatch record without an "Other" entry yields a MISSING_FALLBACK_ANSWER error.
func (r *Resolver) Resolve(ctx context.Context, entities models.Entities) (*Resolution, error) {
	res, err := r.resolve(ctx, entities)
	if err != nil {
		metrics.AnswersResolved.WithLabelValues(string(OutcomeMissingFallback)).Inc()
		return nil, err
	}
	metrics.AnswersResolved.WithLabelValues(string(res.Outcome)).Inc()
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, entities models.Entities) (*Resolution, error) {
	intent, ok := entities.Top(r.config.IntentEntity)
	if !ok || intent.Confidence <= r.config.Threshold {
		r.logger.Debug("intent missing or below threshold", map[string]interface{}{
			"present":    ok,
			"confidence": intent.Confidence,
		})
		return r.errorAnswer(OutcomeLowConfidence, apperrors.ErrCodeLowConfidenceIntent, intent), nil
	}

	record, err := r.lookup(ctx, intent.Value)
	if err != nil {
		r.logger.Warn("intent lookup failed", map[string]interface{}{
			"intent": intent.Value,
			"code":   apperrors.CodeOf(err),
			"error":  err.Error(),
		})
		return r.errorAnswer(OutcomeStoreFailure, apperrors.ErrCodeStoreLookupFailed, intent), nil
	}

	if record.IsDirect() {
		return &Resolution{
			Answer:     *record.Answer,
			Outcome:    OutcomeDirect,
			Intent:     intent.Value,
			Confidence: intent.Confidence,
		}, nil
	}

	matched := r.matchEntities(record, entities)
	if len(matched) != 1 {
		r.logger.Debug("entity match is not unique", map[string]interface{}{
			"intent":  intent.Value,
			"matched": matched,
		})
		return r.errorAnswer(OutcomeAmbiguousEntity, apperrors.ErrCodeAmbiguousEntityMatch, intent), nil
	}

	name := matched[0]
	// zero Detection for an empty list, which never clears the threshold
	detected, _ := entities.Top(name)
	answers := record.Entities[name]

	res := &Resolution{
		Intent:     intent.Value,
		Entity:     name,
		Value:      detected.Value,
		Confidence: detected.Confidence,
	}

	if answer, ok := answers[detected.Value]; ok && detected.Confidence > r.config.Threshold {
		res.Answer = answer
		res.Outcome = OutcomeEntity
		return res, nil
	}

	fallback, ok := answers[models.FallbackValue]
	if !ok {
		return nil, apperrors.NewMissingFallbackAnswerError(intent.Value, name)
	}
	res.Answer = fallback
	res.Outcome = OutcomeFallback
	return res, nil
}

func (r *Resolver) lookup(ctx context.Context, intent string) (*models.IntentRecord, error) {
	if r.config.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.LookupTimeout)
		defer cancel()
	}
	return r.store.GetIntent(ctx, intent)
}

// matchEntities intersects the record's dispatch entities with the detected entity
// keys. The intent entity never takes part. A key with an empty detection list still
// counts; on its own it resolves to the fallback answer.
func (r *Resolver) matchEntities(record *models.IntentRecord, entities models.Entities) []string {
	var matched []string
	for name := range record.Entities {
		if name == r.config.IntentEntity {
			continue
		}
		if _, ok := entities[name]; ok {
			matched = append(matched, name)
		}
	}
	sort.Strings(matched)
	return matched
}

func (r *Resolver) errorAnswer(outcome Outcome, reason apperrors.ErrorCode, intent models.Detection) *Resolution {
	return &Resolution{
		Answer:     r.config.ErrorAnswer,
		Outcome:    outcome,
		Intent:     intent.Value,
		Confidence: intent.Confidence,
		Reason:     reason,
	}
}
