// internal/responder/alert-operator/config.go
package alertoperator

import "messenger-responder/internal/common/config"

type Config struct {
	ServiceName string
	Environment string
	SNSEnabled  bool
	TopicARN    string
	SESEnabled  bool
	FromEmail   string
	ToEmails    []string
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
		SNSEnabled:  cfg.Alerts.SNS.Enabled,
		TopicARN:    cfg.Alerts.SNS.TopicARN,
		SESEnabled:  cfg.Alerts.SES.Enabled,
		FromEmail:   cfg.Alerts.SES.FromEmail,
		ToEmails:    cfg.Alerts.SES.ToEmails,
	}
	if c.ServiceName == "" {
		c.ServiceName = "messenger-responder"
	}
	return c
}
