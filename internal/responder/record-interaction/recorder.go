// Package recordinteraction keeps a best-effort audit trail of answered messages
// in Elasticsearch. Indexing happens on a background worker and never delays a reply.
package recordinteraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	apperrors "messenger-responder/internal/common/errors"
	"messenger-responder/internal/common/logger"
	"messenger-responder/internal/common/metrics"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
)

type Recorder struct {
	config *Config
	client *elasticsearch.Client
	logger logger.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan *Interaction
	done   chan struct{}
}

// NewRecorder starts the indexing worker. Call Close to drain and stop it.
func NewRecorder(cfg *Config, client *elasticsearch.Client, log logger.Logger) *Recorder {
	r := &Recorder{
		config: cfg,
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "record-interaction"}),
		queue:  make(chan *Interaction, cfg.BufferSize),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues doc without blocking. It returns false when the buffer is full
// or the recorder is closed; the document is dropped.
func (r *Recorder) Record(doc *Interaction) bool {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Timestamp.IsZero() {
		doc.Timestamp = time.Now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		metrics.AuditDocuments.WithLabelValues("dropped").Inc()
		return false
	}

	select {
	case r.queue <- doc:
		return true
	default:
		metrics.AuditDocuments.WithLabelValues("dropped").Inc()
		r.logger.Warn("audit buffer full, dropping interaction", map[string]interface{}{
			"id": doc.ID,
		})
		return false
	}
}

// Close stops accepting documents and waits for queued ones to be indexed or ctx to end.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit drain interrupted: %w", ctx.Err())
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for doc := range r.queue {
		if err := r.index(doc); err != nil {
			metrics.AuditDocuments.WithLabelValues("failed").Inc()
			r.logger.Warn("failed to index interaction", map[string]interface{}{
				"id":    doc.ID,
				"error": err.Error(),
			})
			continue
		}
		metrics.AuditDocuments.WithLabelValues("indexed").Inc()
	}
}

func (r *Recorder) index(doc *Interaction) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewAuditIndexFailedError(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	res, err := r.client.Index(
		r.config.Index,
		bytes.NewReader(body),
		r.client.Index.WithDocumentID(doc.ID),
		r.client.Index.WithContext(ctx),
	)
	if err != nil {
		return apperrors.NewAuditIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewAuditIndexFailedError(fmt.Errorf("index response: %s", res.Status()))
	}
	return nil
}
