// internal/responder/record-interaction/config.go
package recordinteraction

import (
	"time"

	"messenger-responder/internal/common/config"
)

type Config struct {
	Index      string
	BufferSize int
	Timeout    time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Index:      cfg.Audit.Index,
		BufferSize: cfg.Audit.BufferSize,
		Timeout:    config.GetDuration(cfg.Audit.Timeout),
	}
	if c.Index == "" {
		c.Index = "responder-interactions"
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 256
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	return c
}
