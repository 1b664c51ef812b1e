package intentstore

import (
	"context"

	apperrors "messenger-responder/internal/common/errors"
	"messenger-responder/internal/models"
)

const BackendFile = "file"

// MemoryStore serves records held in memory, typically loaded from an intent table file.
// It is read-only after construction.
type MemoryStore struct {
	records map[string]*models.IntentRecord
}

func NewMemoryStore(records map[string]*models.IntentRecord) *MemoryStore {
	cp := make(map[string]*models.IntentRecord, len(records))
	for k, v := range records {
		cp[k] = v
	}
	return &MemoryStore{records: cp}
}

func (s *MemoryStore) GetIntent(ctx context.Context, intent string) (*models.IntentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewStoreLookupFailedError(BackendFile, err)
	}
	rec, ok := s.records[intent]
	if !ok {
		return nil, apperrors.NewIntentNotFoundError(intent)
	}
	return rec, nil
}

// Len returns the number of records.
func (s *MemoryStore) Len() int {
	return len(s.records)
}
