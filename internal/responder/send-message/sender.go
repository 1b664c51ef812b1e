// Package sendmessage delivers text replies through the Messenger Send API.
package sendmessage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	apperrors "messenger-responder/internal/common/errors"
	httpclient "messenger-responder/internal/common/http"
	"messenger-responder/internal/common/logger"
	"messenger-responder/internal/common/metrics"
	"messenger-responder/internal/models"
)

const TaskType = "send-message"

type Sender struct {
	config *Config
	client *httpclient.Client
	logger logger.Logger
}

// NewSender builds a sender. A nil client gets one with cfg.Timeout.
func NewSender(cfg *Config, client *httpclient.Client, log logger.Logger) *Sender {
	if client == nil {
		client = httpclient.NewClient(cfg.Timeout)
	}
	return &Sender{
		config: cfg,
		client: client,
		logger: log.With(map[string]interface{}{
			"component": TaskType,
		}),
	}
}

func (s *Sender) endpoint() string {
	return fmt.Sprintf("%s/%s/me/messages?access_token=%s",
		s.config.GraphBaseURL, s.config.APIVersion, url.QueryEscape(s.config.PageAccessToken))
}

// Send posts text to recipient. Transport errors and 5xx responses are retried with
// exponential backoff; 4xx responses fail immediately with the Graph error attached.
func (s *Sender) Send(ctx context.Context, recipient models.Participant, text string) (*Output, error) {
	if recipient.ID == "" {
		metrics.MessagesSent.WithLabelValues("rejected").Inc()
		return nil, apperrors.NewMessageSendFailedError(0, errors.New("empty recipient id"), false)
	}

	payload := &Request{
		Recipient: recipient,
		Message:   OutgoingMessage{Text: text},
	}

	var (
		resp    *httpclient.Response
		lastErr error
		status  int
	)

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := s.config.BaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				// context failures carry no HTTP status
				metrics.MessagesSent.WithLabelValues("failed").Inc()
				return nil, apperrors.NewMessageSendFailedError(0, ctx.Err(), true)
			}
		}

		resp, lastErr = s.client.PostJSON(ctx, s.endpoint(), payload)
		if lastErr != nil {
			if ctx.Err() != nil {
				metrics.MessagesSent.WithLabelValues("failed").Inc()
				return nil, apperrors.NewMessageSendFailedError(0, ctx.Err(), true)
			}
			s.logger.Warn("send api request failed", map[string]interface{}{
				"attempt": attempt + 1,
				"error":   lastErr.Error(),
			})
			status = 0
			continue
		}

		status = resp.StatusCode
		switch {
		case status >= 200 && status < 300:
			return s.parseOutput(recipient, resp)
		case status >= 500:
			lastErr = parseGraphError(resp)
			s.logger.Warn("send api server error", map[string]interface{}{
				"attempt": attempt + 1,
				"status":  status,
				"error":   lastErr.Error(),
			})
		default:
			graphErr := parseGraphError(resp)
			metrics.MessagesSent.WithLabelValues("rejected").Inc()
			s.logger.Error("send api rejected message", map[string]interface{}{
				"recipient": recipient.ID,
				"status":    status,
				"error":     graphErr.Error(),
			})
			return nil, apperrors.NewMessageSendFailedError(status, graphErr, false)
		}
	}

	metrics.MessagesSent.WithLabelValues("failed").Inc()
	return nil, apperrors.NewMessageSendFailedError(status, lastErr, true)
}

func (s *Sender) parseOutput(recipient models.Participant, resp *httpclient.Response) (*Output, error) {
	var out Output
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		// Delivered; the body is only informational.
		s.logger.Warn("undecodable send api response", map[string]interface{}{"error": err.Error()})
	}
	if out.RecipientID == "" {
		out.RecipientID = recipient.ID
	}

	metrics.MessagesSent.WithLabelValues("sent").Inc()
	s.logger.Info("message sent", map[string]interface{}{
		"recipient": out.RecipientID,
		"messageId": out.MessageID,
	})
	return &out, nil
}

func parseGraphError(resp *httpclient.Response) error {
	var env errorEnvelope
	if err := json.Unmarshal(resp.Body, &env); err == nil && env.Error != nil {
		return env.Error
	}
	return fmt.Errorf("status %d", resp.StatusCode)
}
