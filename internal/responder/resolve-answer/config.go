// internal/responder/resolve-answer/config.go
package resolveanswer

import (
	"time"

	"messenger-responder/internal/common/config"
	"messenger-responder/internal/models"
)

const (
	DefaultThreshold   = 0.6
	DefaultErrorAnswer = "Sorry, I didn't Understand!"
)

type Config struct {
	Threshold     float64
	ErrorAnswer   string
	IntentEntity  string
	LookupTimeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if cfg.Resolver.ConfidenceThreshold > 0 {
		c.Threshold = cfg.Resolver.ConfidenceThreshold
	}
	if cfg.Resolver.ErrorAnswer != "" {
		c.ErrorAnswer = cfg.Resolver.ErrorAnswer
	}
	if cfg.Resolver.IntentEntity != "" {
		c.IntentEntity = cfg.Resolver.IntentEntity
	}
	c.LookupTimeout = config.GetDuration(cfg.Resolver.LookupTimeout)
	return c
}

func DefaultConfig() *Config {
	return &Config{
		Threshold:    DefaultThreshold,
		ErrorAnswer:  DefaultErrorAnswer,
		IntentEntity: models.IntentEntity,
	}
}
