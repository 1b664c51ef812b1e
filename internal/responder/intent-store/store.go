// Package intentstore provides the intent table backends the answer resolver reads from.
package intentstore

import (
	"context"
	"time"

	apperrors "messenger-responder/internal/common/errors"
	"messenger-responder/internal/common/metrics"
	"messenger-responder/internal/models"
)

// IntentStore looks up one intent record by name. Implementations return an error
// matching apperrors.ErrIntentNotFound for a missing key, apperrors.ErrMalformedIntentRecord
// for an unreadable item, and a STORE_LOOKUP_FAILED error for anything transient.
type IntentStore interface {
	GetIntent(ctx context.Context, intent string) (*models.IntentRecord, error)
}

// IntentWriter persists intent records. Used by the seeding tool.
type IntentWriter interface {
	PutIntent(ctx context.Context, record *models.IntentRecord) error
}

// InstrumentedStore records lookup latency per backend and result.
type InstrumentedStore struct {
	inner   IntentStore
	backend string
}

func NewInstrumentedStore(inner IntentStore, backend string) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, backend: backend}
}

func (s *InstrumentedStore) GetIntent(ctx context.Context, intent string) (*models.IntentRecord, error) {
	start := time.Now()
	rec, err := s.inner.GetIntent(ctx, intent)

	result := "hit"
	if err != nil {
		result = string(apperrors.CodeOf(err))
	}
	metrics.StoreLookupDuration.WithLabelValues(s.backend, result).Observe(time.Since(start).Seconds())

	return rec, err
}
