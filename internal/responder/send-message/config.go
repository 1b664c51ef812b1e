// internal/responder/send-message/config.go
package sendmessage

import (
	"time"

	"messenger-responder/internal/common/config"
)

const (
	DefaultGraphBaseURL = "https://graph.facebook.com"
	DefaultAPIVersion   = "v2.6"
)

type Config struct {
	GraphBaseURL    string
	APIVersion      string
	PageAccessToken string
	Timeout         time.Duration
	MaxRetries      int
	BaseBackoff     time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		GraphBaseURL: DefaultGraphBaseURL,
		APIVersion:   DefaultAPIVersion,
		Timeout:      10 * time.Second,
		MaxRetries:   2,
		BaseBackoff:  100 * time.Millisecond,
	}
	if cfg == nil {
		return c
	}

	m := cfg.Messenger
	if m.GraphBaseURL != "" {
		c.GraphBaseURL = m.GraphBaseURL
	}
	if m.APIVersion != "" {
		c.APIVersion = m.APIVersion
	}
	if m.Timeout > 0 {
		c.Timeout = config.GetDuration(m.Timeout)
	}
	if m.MaxRetries >= 0 {
		c.MaxRetries = m.MaxRetries
	}
	c.PageAccessToken = m.PageAccessToken
	return c
}
