// internal/responder/messenger-webhook/config.go
package messengerwebhook

import (
	"time"

	"messenger-responder/internal/common/config"
)

type Config struct {
	VerifyToken    string
	AppSecret      string
	RequestTimeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		VerifyToken:    cfg.Messenger.VerifyToken,
		AppSecret:      cfg.Messenger.AppSecret,
		RequestTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}
	return c
}
