// Package messengerwebhook is the Messenger platform entry point: it verifies the
// subscription, accepts message deliveries, resolves one reply per delivery and sends it.
package messengerwebhook

import (
	"context"
	"encoding/json"
	"time"

	apperrors "messenger-responder/internal/common/errors"
	"messenger-responder/internal/common/logger"
	"messenger-responder/internal/common/metrics"
	"messenger-responder/internal/common/observability"
	"messenger-responder/internal/models"
	recordinteraction "messenger-responder/internal/responder/record-interaction"
	resolveanswer "messenger-responder/internal/responder/resolve-answer"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const TaskType = "messenger-webhook"

type HandlerOptions struct {
	Config        *Config
	Resolver      Resolver
	Sender        MessageSender
	Alerter       Notifier
	Recorder      InteractionRecorder
	Observability *observability.Observability
	Logger        logger.Logger
}

type Handler struct {
	config   *Config
	resolver Resolver
	sender   MessageSender
	alerter  Notifier
	recorder InteractionRecorder
	obs      *observability.Observability
	logger   logger.Logger
}

// NewHandler wires the webhook. Alerter, Recorder and Observability are optional.
func NewHandler(opts HandlerOptions) *Handler {
	obs := opts.Observability
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Handler{
		config:   opts.Config,
		resolver: opts.Resolver,
		sender:   opts.Sender,
		alerter:  opts.Alerter,
		recorder: opts.Recorder,
		obs:      obs,
		logger:   opts.Logger.WithFields(map[string]interface{}{"component": TaskType}),
	}
}

// Register mounts GET and POST /webhook on router.
func (h *Handler) Register(router fiber.Router) {
	router.Get("/webhook", h.Verify)
	router.Post("/webhook", h.Receive)
}

// Verify answers the subscription handshake by echoing hub.challenge.
func (h *Handler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && h.config.VerifyToken != "" && token == h.config.VerifyToken {
		h.logger.Info("webhook verified", nil)
		return c.Status(fiber.StatusOK).SendString(challenge)
	}

	h.logger.Warn("webhook verification rejected", map[string]interface{}{"mode": mode})
	return c.SendStatus(fiber.StatusForbidden)
}

// Receive handles one delivery. Rejections are returned as errors for the app's
// error handler. Once the payload is accepted the platform always gets
// 200 EVENT_RECEIVED so it does not redeliver.
func (h *Handler) Receive(c *fiber.Ctx) error {
	body := c.Body()

	if h.config.AppSecret != "" {
		if err := VerifySignature(h.config.AppSecret, body, c.Get(SignatureHeader)); err != nil {
			metrics.WebhookEvents.WithLabelValues(string(DispositionRejected)).Inc()
			h.logger.Warn("rejecting unsigned delivery", map[string]interface{}{"error": err.Error()})
			return err
		}
	}

	event, err := decodeEvent(body)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(string(DispositionRejected)).Inc()
		h.logger.Warn("rejecting malformed delivery", map[string]interface{}{"error": err.Error()})
		return err
	}

	requestID := uuid.NewString()
	c.Set(RequestIDHeader, requestID)

	ctx, cancel := context.WithTimeout(c.UserContext(), h.config.RequestTimeout)
	defer cancel()

	h.Process(ctx, event, requestID)
	return c.Status(fiber.StatusOK).SendString(EventReceived)
}

func decodeEvent(body []byte) (*models.WebhookEvent, error) {
	result, err := envelopeSchema.ValidateJSON(body)
	if err != nil {
		return nil, apperrors.NewInvalidPayloadError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidPayloadError(result.String())
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, apperrors.NewInvalidPayloadError(err.Error())
	}
	return &event, nil
}

// Process answers the first messaging event of a delivery and reports what happened.
func (h *Handler) Process(ctx context.Context, event *models.WebhookEvent, requestID string) Disposition {
	start := time.Now()
	ctx, span := h.obs.StartSpan(ctx, "webhook.process", attribute.String("request.id", requestID))
	defer span.End()

	disposition := h.process(ctx, event, requestID)

	span.SetAttributes(attribute.String("disposition", string(disposition)))
	if disposition == DispositionMissingFallback || disposition == DispositionSendFailed {
		span.SetStatus(codes.Error, string(disposition))
	}
	metrics.WebhookEvents.WithLabelValues(string(disposition)).Inc()
	h.obs.RecordEventProcessed(ctx, string(disposition))
	h.obs.RecordEventDuration(ctx, time.Since(start), string(disposition))
	return disposition
}

func (h *Handler) process(ctx context.Context, event *models.WebhookEvent, requestID string) Disposition {
	log := h.logger.WithFields(map[string]interface{}{"requestId": requestID})

	messaging, ok := event.FirstMessaging()
	if !ok || messaging.Message == nil {
		log.Debug("delivery carries no message", map[string]interface{}{"object": event.Object})
		return DispositionIgnored
	}
	if messaging.Message.IsEcho {
		log.Debug("ignoring echo", map[string]interface{}{"mid": messaging.Message.MID})
		return DispositionIgnored
	}

	doc := &recordinteraction.Interaction{
		RequestID: requestID,
		SenderID:  messaging.Sender.ID,
	}
	disposition := DispositionAnswered

	res, err := h.resolver.Resolve(ctx, messaging.NLPEntities())
	answer := h.resolver.ErrorAnswer()
	if err != nil {
		disposition = DispositionMissingFallback
		stdErr := apperrors.AsStandardError(err)
		log.Error("intent record has no fallback answer", map[string]interface{}{
			"code":     stdErr.Code,
			"metadata": stdErr.Metadata,
		})
		h.notify(ctx, requestID, err)

		doc.Outcome = string(resolveanswer.OutcomeMissingFallback)
		doc.Reason = string(stdErr.Code)
		doc.Intent, _ = stdErr.Metadata["intent"].(string)
		doc.Entity, _ = stdErr.Metadata["entity"].(string)
	} else {
		answer = res.Answer
		doc.Outcome = string(res.Outcome)
		doc.Reason = string(res.Reason)
		doc.Intent = res.Intent
		doc.Entity = res.Entity
		doc.Value = res.Value
		doc.Confidence = res.Confidence
	}

	out, err := h.sender.Send(ctx, messaging.Sender, answer)
	if err != nil {
		if disposition == DispositionAnswered {
			disposition = DispositionSendFailed
		}
		log.Error("failed to deliver reply", map[string]interface{}{
			"recipient": messaging.Sender.ID,
			"error":     err.Error(),
		})
		h.notify(ctx, requestID, err)
	} else {
		doc.Delivered = true
		doc.MessageID = out.MessageID
	}

	if h.recorder != nil {
		h.recorder.Record(doc)
	}
	return disposition
}

// alertTimeout bounds one operator alert. Alerts are detached from the request
// context, which may already be spent by the failure being reported.
const alertTimeout = 5 * time.Second

func (h *Handler) notify(ctx context.Context, requestID string, err error) {
	if h.alerter == nil {
		return
	}
	alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	defer cancel()

	if alertErr := h.alerter.Notify(alertCtx, requestID, err); alertErr != nil {
		h.logger.Warn("operator alert failed", map[string]interface{}{"error": alertErr.Error()})
	}
}
