package intentstore

import (
	"context"
	"testing"

	"messenger-responder/internal/common/logger"
	"messenger-responder/internal/models"
)

// stubStore is an IntentStore backed by a function, counting calls.
type stubStore struct {
	calls int
	fn    func(ctx context.Context, intent string) (*models.IntentRecord, error)
}

func (s *stubStore) GetIntent(ctx context.Context, intent string) (*models.IntentRecord, error) {
	s.calls++
	return s.fn(ctx, intent)
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

func flowersRecord() *models.IntentRecord {
	return &models.IntentRecord{
		Intent: "Flowers",
		Entities: map[string]map[string]string{
			"color": {"red": "Roses are red", "Other": "Unknown color"},
		},
	}
}
