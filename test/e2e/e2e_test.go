// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "messenger-responder/internal/common/errors"
	"messenger-responder/internal/common/logger"
	"messenger-responder/internal/common/observability"
	"messenger-responder/internal/models"
	is "messenger-responder/internal/responder/intent-store"
	mw "messenger-responder/internal/responder/messenger-webhook"
	ri "messenger-responder/internal/responder/record-interaction"
	ra "messenger-responder/internal/responder/resolve-answer"
	sm "messenger-responder/internal/responder/send-message"
	"messenger-responder/pkg/intenttable"
)

const exampleTable = "../../configs/intents.example.yaml"

// graphServer records every Send API call.
type graphServer struct {
	mu       sync.Mutex
	requests []sm.Request
	tokens   []string
}

func (g *graphServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req sm.Request
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &req)

	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.tokens = append(g.tokens, r.URL.Query().Get("access_token"))
	n := len(g.requests)
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sm.Output{RecipientID: req.Recipient.ID, MessageID: "mid." + string(rune('0'+n))})
}

func (g *graphServer) texts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.requests))
	for i, r := range g.requests {
		out[i] = r.Message.Text
	}
	return out
}

// esTransport acknowledges index requests like an Elasticsearch node.
type esTransport struct {
	mu   sync.Mutex
	docs []ri.Interaction
}

func (e *esTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var doc ri.Interaction
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(data, &doc)
	}
	e.mu.Lock()
	e.docs = append(e.docs, doc)
	e.mu.Unlock()

	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	return &http.Response{
		StatusCode: http.StatusCreated,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(`{"result":"created"}`)),
		Request:    req,
	}, nil
}

type pipeline struct {
	app      *fiber.App
	graph    *graphServer
	es       *esTransport
	redis    *miniredis.Miniredis
	recorder *ri.Recorder
}

func setupPipeline(t *testing.T) *pipeline {
	t.Helper()
	log := logger.NewTestLogger(t)

	records, err := intenttable.LoadRecords(exampleTable)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := is.NewCachedStore(
		is.NewInstrumentedStore(is.NewMemoryStore(records), is.BackendFile),
		rdb, time.Minute, "intent:", log,
	)

	graph := &graphServer{}
	server := httptest.NewServer(graph)
	t.Cleanup(server.Close)

	sender := sm.NewSender(&sm.Config{
		GraphBaseURL:    server.URL,
		APIVersion:      "v2.6",
		PageAccessToken: "e2e-token",
		Timeout:         2 * time.Second,
		MaxRetries:      1,
		BaseBackoff:     time.Millisecond,
	}, nil, log)

	es := &esTransport{}
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es.local:9200"},
		Transport: es,
	})
	require.NoError(t, err)
	recorder := ri.NewRecorder(&ri.Config{Index: "responder-interactions", BufferSize: 16, Timeout: time.Second}, esClient, log)

	handler := mw.NewHandler(mw.HandlerOptions{
		Config:        &mw.Config{VerifyToken: "e2e-verify", AppSecret: "e2e-secret", RequestTimeout: 5 * time.Second},
		Resolver:      ra.NewResolver(store, ra.DefaultConfig(), log),
		Sender:        sender,
		Recorder:      recorder,
		Observability: observability.NewNoop(),
		Logger:        log,
	})

	app := fiber.New(fiber.Config{ErrorHandler: apperrors.NewErrorHandler(log).Handle})
	handler.Register(app)

	return &pipeline{app: app, graph: graph, es: es, redis: mr, recorder: recorder}
}

func (p *pipeline) deliver(t *testing.T, senderID string, entities models.Entities) int {
	t.Helper()
	event := models.WebhookEvent{
		Object: "page",
		Entry: []models.WebhookEntry{{
			ID: "page-1",
			Messaging: []models.MessagingEvent{{
				Sender:    models.Participant{ID: senderID},
				Recipient: models.Participant{ID: "page-1"},
				Message:   &models.Message{MID: "m-" + senderID, Text: "...", NLP: &models.MessageNLP{Entities: entities}},
			}},
		}},
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(mw.SignatureHeader, mw.Sign("e2e-secret", body))

	resp, err := p.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestE2E_ConversationFlow(t *testing.T) {
	p := setupPipeline(t)

	intent := func(name string, confidence float64) []models.Detection {
		return []models.Detection{{Value: name, Confidence: confidence}}
	}

	require.Equal(t, http.StatusOK, p.deliver(t, "u1", models.Entities{"Intent": intent("Greeting", 0.95)}))
	require.Equal(t, http.StatusOK, p.deliver(t, "u2", models.Entities{
		"Intent": intent("Flowers", 0.9),
		"color":  intent("red", 0.8),
	}))
	require.Equal(t, http.StatusOK, p.deliver(t, "u3", models.Entities{
		"Intent": intent("Flowers", 0.9),
		"color":  intent("purple", 0.8),
	}))
	require.Equal(t, http.StatusOK, p.deliver(t, "u4", models.Entities{"Intent": intent("Greeting", 0.2)}))
	require.Equal(t, http.StatusOK, p.deliver(t, "u5", models.Entities{"Intent": intent("Weather", 0.99)}))

	assert.Equal(t, []string{
		"Hi! How can I help you today?",
		"Roses are red",
		"We have flowers in many colors, which one do you like?",
		ra.DefaultErrorAnswer,
		ra.DefaultErrorAnswer,
	}, p.graph.texts())
	for _, token := range p.graph.tokens {
		assert.Equal(t, "e2e-token", token)
	}

	// looked-up records are cached, unknown intents are not
	assert.True(t, p.redis.Exists("intent:Greeting"))
	assert.True(t, p.redis.Exists("intent:Flowers"))
	assert.False(t, p.redis.Exists("intent:Weather"))

	require.NoError(t, p.recorder.Close(context.Background()))
	p.es.mu.Lock()
	defer p.es.mu.Unlock()
	require.Len(t, p.es.docs, 5)
	assert.Equal(t, string(ra.OutcomeDirect), p.es.docs[0].Outcome)
	assert.Equal(t, string(ra.OutcomeEntity), p.es.docs[1].Outcome)
	assert.Equal(t, string(ra.OutcomeFallback), p.es.docs[2].Outcome)
	assert.Equal(t, string(ra.OutcomeLowConfidence), p.es.docs[3].Outcome)
	assert.Equal(t, string(ra.OutcomeStoreFailure), p.es.docs[4].Outcome)
	for _, doc := range p.es.docs {
		assert.True(t, doc.Delivered)
	}
}

func TestE2E_CachedRecordSurvivesStoreChange(t *testing.T) {
	p := setupPipeline(t)
	entities := models.Entities{"Intent": {{Value: "Goodbye", Confidence: 0.9}}}

	require.Equal(t, http.StatusOK, p.deliver(t, "u1", entities))

	cached, err := p.redis.Get("intent:Goodbye")
	require.NoError(t, err)
	p.redis.Set("intent:Goodbye", strings.Replace(cached, "Bye, talk soon!", "See you!", 1))
	p.redis.SetTTL("intent:Goodbye", time.Minute)

	require.Equal(t, http.StatusOK, p.deliver(t, "u1", entities))
	assert.Equal(t, []string{"Bye, talk soon!", "See you!"}, p.graph.texts())

	p.redis.FastForward(2 * time.Minute)
	require.Equal(t, http.StatusOK, p.deliver(t, "u1", entities))
	assert.Equal(t, "Bye, talk soon!", p.graph.texts()[2])

	require.NoError(t, p.recorder.Close(context.Background()))
}

func TestE2E_RejectsUnsignedDelivery(t *testing.T) {
	p := setupPipeline(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"object":"page","entry":[]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, p.graph.texts())
	require.NoError(t, p.recorder.Close(context.Background()))
}
