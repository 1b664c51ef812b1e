package recordinteraction

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"messenger-responder/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeTransport answers every request as an Elasticsearch node would.
type fakeTransport struct {
	mu      sync.Mutex
	docs    []Interaction
	paths   []string
	status  int
	entered chan struct{}
	release chan struct{}
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}

	var doc Interaction
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(data, &doc)
	}

	f.mu.Lock()
	f.docs = append(f.docs, doc)
	f.paths = append(f.paths, req.URL.Path)
	f.mu.Unlock()

	status := f.status
	if status == 0 {
		status = http.StatusCreated
	}
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(`{"result":"created"}`)),
		Request:    req,
	}, nil
}

func (f *fakeTransport) indexed() []Interaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Interaction(nil), f.docs...)
}

func createTestConfig() *Config {
	return &Config{Index: "responder-interactions", BufferSize: 8, Timeout: time.Second}
}

func newTestClient(t *testing.T, transport http.RoundTripper) *elasticsearch.Client {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es.local:9200"},
		Transport: transport,
	})
	require.NoError(t, err)
	return client
}

func TestRecorder_IndexesDocuments(t *testing.T) {
	defer goleak.VerifyNone(t)

	transport := &fakeTransport{}
	rec := NewRecorder(createTestConfig(), newTestClient(t, transport), logger.NewTestLogger(t))

	assert.True(t, rec.Record(&Interaction{Intent: "Flowers", Outcome: "entity", Confidence: 0.9}))
	assert.True(t, rec.Record(&Interaction{ID: "fixed-id", Outcome: "low_confidence"}))

	require.NoError(t, rec.Close(context.Background()))

	docs := transport.indexed()
	require.Len(t, docs, 2)
	assert.Equal(t, "Flowers", docs[0].Intent)
	assert.NotEmpty(t, docs[0].ID)
	assert.False(t, docs[0].Timestamp.IsZero())
	assert.Equal(t, "fixed-id", docs[1].ID)
	assert.Equal(t, "/responder-interactions/_doc/fixed-id", transport.paths[1])
}

func TestRecorder_DropsOnOverflow(t *testing.T) {
	defer goleak.VerifyNone(t)

	transport := &fakeTransport{
		entered: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
	cfg := createTestConfig()
	cfg.BufferSize = 1
	rec := NewRecorder(cfg, newTestClient(t, transport), logger.NewTestLogger(t))

	require.True(t, rec.Record(&Interaction{ID: "a"}))
	<-transport.entered // worker is busy with "a"

	assert.True(t, rec.Record(&Interaction{ID: "b"}))
	assert.False(t, rec.Record(&Interaction{ID: "c"}), "buffer is full")

	close(transport.release)
	require.NoError(t, rec.Close(context.Background()))

	docs := transport.indexed()
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)
}

func TestRecorder_RecordAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := NewRecorder(createTestConfig(), newTestClient(t, &fakeTransport{}), logger.NewTestLogger(t))
	require.NoError(t, rec.Close(context.Background()))
	require.NoError(t, rec.Close(context.Background()), "close is idempotent")

	assert.False(t, rec.Record(&Interaction{ID: "late"}))
}

func TestRecorder_IndexErrorsAreSwallowed(t *testing.T) {
	defer goleak.VerifyNone(t)

	transport := &fakeTransport{status: http.StatusBadRequest}
	rec := NewRecorder(createTestConfig(), newTestClient(t, transport), logger.NewTestLogger(t))

	assert.True(t, rec.Record(&Interaction{ID: "x"}))
	assert.True(t, rec.Record(&Interaction{ID: "y"}))
	require.NoError(t, rec.Close(context.Background()))

	assert.Len(t, transport.indexed(), 2, "a failed document does not stop the worker")
}

func TestRecorder_CloseHonoursContext(t *testing.T) {
	transport := &fakeTransport{release: make(chan struct{})}
	rec := NewRecorder(createTestConfig(), newTestClient(t, transport), logger.NewTestLogger(t))
	rec.Record(&Interaction{ID: "stuck"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rec.Close(ctx), context.DeadlineExceeded)

	close(transport.release)
	require.NoError(t, rec.Close(context.Background()))
}
