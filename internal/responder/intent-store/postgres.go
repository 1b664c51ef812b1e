package intentstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "messenger-responder/internal/common/errors"
	"messenger-responder/internal/common/logger"
	"messenger-responder/internal/models"
)

const BackendPostgres = "postgres"

const (
	selectIntentQuery = `SELECT record FROM intent_answers WHERE intent = $1`
	upsertIntentQuery = `INSERT INTO intent_answers (intent, record, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (intent) DO UPDATE SET record = EXCLUDED.record, updated_at = NOW()`
)

// PostgresStore reads intent records from intent_answers(intent TEXT PRIMARY KEY, record JSONB).
// record holds the same attribute layout as a DynamoDB item, without the key.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "intent-store", "backend": BackendPostgres}),
	}
}

func (s *PostgresStore) GetIntent(ctx context.Context, intent string) (*models.IntentRecord, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, selectIntentQuery, intent).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewIntentNotFoundError(intent)
		}
		return nil, apperrors.NewStoreLookupFailedError(BackendPostgres, err)
	}

	var item map[string]interface{}
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, apperrors.NewMalformedIntentRecordError(intent, err.Error())
	}

	rec, err := models.RecordFromItem(intent, item)
	if err != nil {
		return nil, apperrors.NewMalformedIntentRecordError(intent, err.Error())
	}
	return rec, nil
}

func (s *PostgresStore) PutIntent(ctx context.Context, record *models.IntentRecord) error {
	data, err := json.Marshal(record.Item(""))
	if err != nil {
		return fmt.Errorf("marshal intent %s: %w", record.Intent, err)
	}

	if _, err := s.db.ExecContext(ctx, upsertIntentQuery, record.Intent, data); err != nil {
		return fmt.Errorf("upsert intent %s: %w", record.Intent, err)
	}

	s.logger.Debug("intent record stored", map[string]interface{}{"intent": record.Intent})
	return nil
}
