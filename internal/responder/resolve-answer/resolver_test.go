package resolveanswer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"messenger-responder/internal/common/config"
	apperrors "messenger-responder/internal/common/errors"
	"messenger-responder/internal/common/logger"
	intentstore "messenger-responder/internal/responder/intent-store"
	"messenger-responder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mu      sync.Mutex
	lookups []string
	getFunc func(ctx context.Context, intent string) (*models.IntentRecord, error)
}

func (m *mockStore) GetIntent(ctx context.Context, intent string) (*models.IntentRecord, error) {
	m.mu.Lock()
	m.lookups = append(m.lookups, intent)
	m.mu.Unlock()
	return m.getFunc(ctx, intent)
}

func recordStore(rec *models.IntentRecord) *mockStore {
	return &mockStore{getFunc: func(context.Context, string) (*models.IntentRecord, error) {
		return rec, nil
	}}
}

func createTestConfig() *Config {
	return DefaultConfig()
}

func createTestHandler(t *testing.T, store intentstore.IntentStore) *Resolver {
	return NewResolver(store, createTestConfig(), logger.NewTestLogger(t))
}

func colorRecord() *models.IntentRecord {
	return &models.IntentRecord{
		Intent: "X",
		Entities: map[string]map[string]string{
			"color": {"red": "Roses are red", "Other": "Unknown color"},
		},
	}
}

func intentAt(value string, confidence float64) []models.Detection {
	return []models.Detection{{Value: value, Confidence: confidence}}
}

func TestResolve_MissingIntent(t *testing.T) {
	tests := []struct {
		name     string
		entities models.Entities
	}{
		{name: "nil entities", entities: nil},
		{name: "no intent key", entities: models.Entities{"color": intentAt("red", 0.99)}},
		{name: "empty intent list", entities: models.Entities{"Intent": {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := recordStore(models.NewDirectRecord("X", "Hi"))
			r := createTestHandler(t, store)

			res, err := r.Resolve(context.Background(), tt.entities)
			require.NoError(t, err)
			assert.Equal(t, DefaultErrorAnswer, res.Answer)
			assert.Equal(t, OutcomeLowConfidence, res.Outcome)
			assert.True(t, res.IsErrorAnswer())
			assert.Empty(t, store.lookups, "store must not be consulted")
		})
	}
}

func TestResolve_LowConfidenceIntent(t *testing.T) {
	for _, confidence := range []float64{0, 0.3, 0.59, 0.6} {
		store := recordStore(models.NewDirectRecord("X", "Hi"))
		r := createTestHandler(t, store)

		res, err := r.Resolve(context.Background(), models.Entities{"Intent": intentAt("X", confidence)})
		require.NoError(t, err)
		assert.Equal(t, DefaultErrorAnswer, res.Answer, "confidence %v", confidence)
		assert.Equal(t, apperrors.ErrCodeLowConfidenceIntent, res.Reason)
		assert.Empty(t, store.lookups)
	}
}

func TestResolve_DirectAnswer(t *testing.T) {
	store := recordStore(models.NewDirectRecord("Greeting", "Hi"))
	r := createTestHandler(t, store)

	res, err := r.Resolve(context.Background(), models.Entities{
		"Intent": intentAt("Greeting", 0.61),
		"color":  intentAt("red", 0.9),
		"size":   intentAt("big", 0.9),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi", res.Answer)
	assert.Equal(t, OutcomeDirect, res.Outcome)
	assert.False(t, res.IsErrorAnswer())
	assert.Equal(t, []string{"Greeting"}, store.lookups)
}

func TestResolve_EntityDispatch(t *testing.T) {
	tests := []struct {
		name        string
		color       models.Detection
		wantAnswer  string
		wantOutcome Outcome
	}{
		{
			name:        "configured value with confidence",
			color:       models.Detection{Value: "red", Confidence: 0.8},
			wantAnswer:  "Roses are red",
			wantOutcome: OutcomeEntity,
		},
		{
			name:        "unknown value",
			color:       models.Detection{Value: "blue", Confidence: 0.8},
			wantAnswer:  "Unknown color",
			wantOutcome: OutcomeFallback,
		},
		{
			name:        "configured value below threshold",
			color:       models.Detection{Value: "red", Confidence: 0.5},
			wantAnswer:  "Unknown color",
			wantOutcome: OutcomeFallback,
		},
		{
			name:        "configured value at threshold",
			color:       models.Detection{Value: "red", Confidence: 0.6},
			wantAnswer:  "Unknown color",
			wantOutcome: OutcomeFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := createTestHandler(t, recordStore(colorRecord()))

			res, err := r.Resolve(context.Background(), models.Entities{
				"Intent": intentAt("X", 0.9),
				"color":  {tt.color, {Value: "red", Confidence: 0.99}},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAnswer, res.Answer)
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, "color", res.Entity)
			assert.Equal(t, tt.color.Value, res.Value)
		})
	}
}

func TestResolve_AmbiguousEntities(t *testing.T) {
	rec := &models.IntentRecord{
		Intent: "X",
		Entities: map[string]map[string]string{
			"color": {"red": "Roses are red", "Other": "Unknown color"},
			"size":  {"big": "Big one", "Other": "Unknown size"},
		},
	}

	tests := []struct {
		name     string
		entities models.Entities
	}{
		{
			name: "two overlapping entities",
			entities: models.Entities{
				"Intent": intentAt("X", 0.9),
				"color":  intentAt("red", 0.9),
				"size":   intentAt("big", 0.9),
			},
		},
		{
			name:     "no overlapping entity",
			entities: models.Entities{"Intent": intentAt("X", 0.9), "shape": intentAt("round", 0.9)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := createTestHandler(t, recordStore(rec))

			res, err := r.Resolve(context.Background(), tt.entities)
			require.NoError(t, err)
			assert.Equal(t, DefaultErrorAnswer, res.Answer)
			assert.Equal(t, OutcomeAmbiguousEntity, res.Outcome)
			assert.Equal(t, apperrors.ErrCodeAmbiguousEntityMatch, res.Reason)
		})
	}
}

func TestResolve_IntentKeyExcludedFromMatch(t *testing.T) {
	rec := colorRecord()
	rec.Entities["Intent"] = map[string]string{"X": "should never be used"}
	r := createTestHandler(t, recordStore(rec))

	res, err := r.Resolve(context.Background(), models.Entities{
		"Intent": intentAt("X", 0.9),
		"color":  intentAt("red", 0.9),
	})
	require.NoError(t, err)
	assert.Equal(t, "Roses are red", res.Answer)
}

func TestResolve_EmptyEntityListCountsAsDetectedKey(t *testing.T) {
	t.Run("sole match falls back", func(t *testing.T) {
		r := createTestHandler(t, recordStore(colorRecord()))

		res, err := r.Resolve(context.Background(), models.Entities{
			"Intent": intentAt("X", 0.9),
			"color":  {},
		})
		require.NoError(t, err)
		assert.Equal(t, OutcomeFallback, res.Outcome)
		assert.Equal(t, "Unknown color", res.Answer)
	})

	t.Run("second key makes the match ambiguous", func(t *testing.T) {
		rec := colorRecord()
		rec.Entities["size"] = map[string]string{"big": "Big bouquet", "Other": "Any size"}
		r := createTestHandler(t, recordStore(rec))

		res, err := r.Resolve(context.Background(), models.Entities{
			"Intent": intentAt("X", 0.9),
			"color":  intentAt("red", 0.9),
			"size":   {},
		})
		require.NoError(t, err)
		assert.Equal(t, OutcomeAmbiguousEntity, res.Outcome)
		assert.True(t, res.IsErrorAnswer())
	})
}

func TestResolve_StoreErrorsAreSwallowed(t *testing.T) {
	storeErrors := map[string]error{
		"not found": apperrors.NewIntentNotFoundError("X"),
		"transient": apperrors.NewStoreLookupFailedError("dynamodb", errors.New("throttled")),
		"malformed": apperrors.NewMalformedIntentRecordError("X", "bad shape"),
		"untyped":   errors.New("boom"),
	}

	for name, storeErr := range storeErrors {
		t.Run(name, func(t *testing.T) {
			store := &mockStore{getFunc: func(context.Context, string) (*models.IntentRecord, error) {
				return nil, storeErr
			}}
			r := createTestHandler(t, store)

			res, err := r.Resolve(context.Background(), models.Entities{"Intent": intentAt("X", 0.95)})
			require.NoError(t, err)
			assert.Equal(t, DefaultErrorAnswer, res.Answer)
			assert.Equal(t, OutcomeStoreFailure, res.Outcome)
			assert.Equal(t, apperrors.ErrCodeStoreLookupFailed, res.Reason)
		})
	}
}

func TestResolve_MissingFallback(t *testing.T) {
	rec := &models.IntentRecord{
		Intent:   "X",
		Entities: map[string]map[string]string{"color": {"red": "Roses are red"}},
	}
	r := createTestHandler(t, recordStore(rec))

	res, err := r.Resolve(context.Background(), models.Entities{
		"Intent": intentAt("X", 0.9),
		"color":  intentAt("blue", 0.9),
	})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperrors.ErrMissingFallbackAnswer)

	stdErr := apperrors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, "X", stdErr.Metadata["intent"])
	assert.Equal(t, "color", stdErr.Metadata["entity"])
}

func TestResolve_OnlyTopIntentIsLookedUp(t *testing.T) {
	store := recordStore(models.NewDirectRecord("First", "one"))
	r := createTestHandler(t, store)

	_, err := r.Resolve(context.Background(), models.Entities{
		"Intent": {{Value: "First", Confidence: 0.7}, {Value: "Second", Confidence: 0.99}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"First"}, store.lookups)
}

func TestResolve_LookupTimeout(t *testing.T) {
	store := &mockStore{getFunc: func(ctx context.Context, _ string) (*models.IntentRecord, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok, "lookup must carry a deadline")
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		<-ctx.Done()
		return nil, apperrors.NewStoreLookupFailedError("test", ctx.Err())
	}}
	cfg := createTestConfig()
	cfg.LookupTimeout = 50 * time.Millisecond
	r := NewResolver(store, cfg, logger.NewNoOpLogger())

	res, err := r.Resolve(context.Background(), models.Entities{"Intent": intentAt("X", 0.9)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeStoreFailure, res.Outcome)
}

func TestResolve_Concurrent(t *testing.T) {
	r := createTestHandler(t, recordStore(colorRecord()))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := r.Resolve(context.Background(), models.Entities{
				"Intent": intentAt("X", 0.9),
				"color":  intentAt("red", 0.9),
			})
			if assert.NoError(t, err) {
				assert.Equal(t, "Roses are red", res.Answer)
			}
		}()
	}
	wg.Wait()
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig(&config.Config{
		Resolver: config.ResolverConfig{
			ConfidenceThreshold: 0.75,
			ErrorAnswer:         "Pardon?",
			IntentEntity:        "intent",
			LookupTimeout:       2000,
		},
	})
	assert.Equal(t, 0.75, cfg.Threshold)
	assert.Equal(t, "Pardon?", cfg.ErrorAnswer)
	assert.Equal(t, "intent", cfg.IntentEntity)
	assert.Equal(t, 2*time.Second, cfg.LookupTimeout)

	defaults := LoadConfig(&config.Config{})
	assert.Equal(t, DefaultThreshold, defaults.Threshold)
	assert.Equal(t, DefaultErrorAnswer, defaults.ErrorAnswer)
	assert.Equal(t, models.IntentEntity, defaults.IntentEntity)
}
