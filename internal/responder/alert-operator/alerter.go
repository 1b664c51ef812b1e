// Package alertoperator notifies operators about failures users never see:
// intent records without a fallback answer and undeliverable replies.
package alertoperator

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	apperrors "messenger-responder/internal/common/errors"
	"messenger-responder/internal/common/logger"
	"messenger-responder/internal/common/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const (
	ChannelSNS = "sns"
	ChannelSES = "ses"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Alerter struct {
	config    *Config
	snsClient SNSService
	sesClient SESService
	logger    logger.Logger
}

// NewAlerter builds an alerter. A nil client disables its channel.
func NewAlerter(cfg *Config, snsClient SNSService, sesClient SESService, log logger.Logger) *Alerter {
	return &Alerter{
		config:    cfg,
		snsClient: snsClient,
		sesClient: sesClient,
		logger:    log.WithFields(map[string]interface{}{"component": "alert-operator"}),
	}
}

func (a *Alerter) snsEnabled() bool {
	return a.config.SNSEnabled && a.snsClient != nil && a.config.TopicARN != ""
}

func (a *Alerter) sesEnabled() bool {
	return a.config.SESEnabled && a.sesClient != nil && len(a.config.ToEmails) > 0
}

// Notify publishes err on every enabled channel. Channel failures are joined into
// one ALERT_PUBLISH_FAILED error; a failing channel does not stop the others.
func (a *Alerter) Notify(ctx context.Context, requestID string, err error) error {
	alert := a.buildAlert(requestID, err)

	if !a.snsEnabled() && !a.sesEnabled() {
		a.logger.Debug("no alert channel enabled", map[string]interface{}{"code": alert.Code})
		return nil
	}

	body, marshalErr := json.MarshalIndent(alert, "", "  ")
	if marshalErr != nil {
		return fmt.Errorf("marshal alert: %w", marshalErr)
	}

	var failures []error
	if a.snsEnabled() {
		if pubErr := a.publishSNS(ctx, alert, string(body)); pubErr != nil {
			failures = append(failures, apperrors.NewAlertPublishFailedError(ChannelSNS, pubErr))
		}
	}
	if a.sesEnabled() {
		if sendErr := a.sendSES(ctx, alert, string(body)); sendErr != nil {
			failures = append(failures, apperrors.NewAlertPublishFailedError(ChannelSES, sendErr))
		}
	}
	return stderrors.Join(failures...)
}

func (a *Alerter) buildAlert(requestID string, err error) *Alert {
	stdErr := apperrors.AsStandardError(err)
	return &Alert{
		Service:     a.config.ServiceName,
		Environment: a.config.Environment,
		Code:        stdErr.Code,
		Category:    apperrors.GetErrorCategory(stdErr.Code),
		Message:     stdErr.Message,
		Details:     stdErr.Details,
		Metadata:    stdErr.Metadata,
		RequestID:   requestID,
		Timestamp:   stdErr.Timestamp,
	}
}

func (a *Alerter) publishSNS(ctx context.Context, alert *Alert, body string) error {
	_, err := a.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(a.config.TopicARN),
		Subject:  aws.String(alert.Subject()),
		Message:  aws.String(body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"code": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(alert.Code)),
			},
		},
	})
	a.record(ChannelSNS, alert, err)
	return err
}

func (a *Alerter) sendSES(ctx context.Context, alert *Alert, body string) error {
	_, err := a.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: a.config.ToEmails,
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(alert.Subject())},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(a.config.FromEmail),
	})
	a.record(ChannelSES, alert, err)
	return err
}

func (a *Alerter) record(channel string, alert *Alert, err error) {
	if err != nil {
		metrics.OperatorAlerts.WithLabelValues(channel, "failed").Inc()
		a.logger.Error("failed to publish operator alert", map[string]interface{}{
			"channel": channel,
			"code":    alert.Code,
			"error":   err.Error(),
		})
		return
	}
	metrics.OperatorAlerts.WithLabelValues(channel, "sent").Inc()
	a.logger.Info("operator alert published", map[string]interface{}{
		"channel": channel,
		"code":    alert.Code,
	})
}
