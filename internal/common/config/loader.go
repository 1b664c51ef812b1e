// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendFile     = "file"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top and
// applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional overlay

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// setDefaults registers every key so AutomaticEnv can override it without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "messenger-responder")
	v.SetDefault("app.environment", "development")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("messenger.graph_base_url", "https://graph.facebook.com")
	v.SetDefault("messenger.api_version", "v2.6")
	v.SetDefault("messenger.page_access_token", "")
	v.SetDefault("messenger.verify_token", "")
	v.SetDefault("messenger.app_secret", "")
	v.SetDefault("messenger.max_retries", 2)
	v.SetDefault("resolver.confidence_threshold", 0.6)
	v.SetDefault("resolver.error_answer", "Sorry, I didn't Understand!")
	v.SetDefault("resolver.intent_entity", "Intent")
	v.SetDefault("store.backend", BackendDynamoDB)
	v.SetDefault("store.table", "IntentTable")
	v.SetDefault("store.partition_key", "Intent")
	v.SetDefault("store.region", "us-east-1")
	v.SetDefault("store.endpoint", "")
	v.SetDefault("store.file", "")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.user", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("audit.enabled", false)
	v.SetDefault("alerts.endpoint", "")
	v.SetDefault("alerts.sns.enabled", false)
	v.SetDefault("alerts.sns.topic_arn", "")
	v.SetDefault("alerts.ses.enabled", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// overrideEmptyConfig fills secrets from their conventional variable names.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Messenger.PageAccessToken == "" {
		if val := os.Getenv("FB_TOKEN"); val != "" {
			cfg.Messenger.PageAccessToken = val
		}
	}
	if cfg.Messenger.VerifyToken == "" {
		if val := os.Getenv("FB_VERIFY_TOKEN"); val != "" {
			cfg.Messenger.VerifyToken = val
		}
	}
	if cfg.Messenger.AppSecret == "" {
		if val := os.Getenv("FB_APP_SECRET"); val != "" {
			cfg.Messenger.AppSecret = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10000
	}
	if cfg.Server.BodyLimit == 0 {
		cfg.Server.BodyLimit = 1 << 20
	}

	if cfg.Messenger.GraphBaseURL == "" {
		cfg.Messenger.GraphBaseURL = "https://graph.facebook.com"
	}
	if cfg.Messenger.APIVersion == "" {
		cfg.Messenger.APIVersion = "v2.6"
	}
	if cfg.Messenger.Timeout == 0 {
		cfg.Messenger.Timeout = 10000
	}

	if cfg.Resolver.ConfidenceThreshold == 0 {
		cfg.Resolver.ConfidenceThreshold = 0.6
	}
	if cfg.Resolver.ErrorAnswer == "" {
		cfg.Resolver.ErrorAnswer = "Sorry, I didn't Understand!"
	}
	if cfg.Resolver.IntentEntity == "" {
		cfg.Resolver.IntentEntity = "Intent"
	}
	if cfg.Resolver.LookupTimeout == 0 {
		cfg.Resolver.LookupTimeout = 3000
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendDynamoDB
	}
	if cfg.Store.Table == "" {
		cfg.Store.Table = "IntentTable"
	}
	if cfg.Store.PartitionKey == "" {
		cfg.Store.PartitionKey = "Intent"
	}
	if cfg.Store.Region == "" {
		cfg.Store.Region = "us-east-1"
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 300000
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "intent:"
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Alerts.Region == "" {
		cfg.Alerts.Region = cfg.Store.Region
	}

	if cfg.Audit.Index == "" {
		cfg.Audit.Index = "responder-interactions"
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = 256
	}
	if cfg.Audit.Timeout == 0 {
		cfg.Audit.Timeout = 5000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Messenger.PageAccessToken == "" {
		return fmt.Errorf("messenger.page_access_token is required (or set FB_TOKEN)")
	}

	if cfg.Resolver.ConfidenceThreshold < 0 || cfg.Resolver.ConfidenceThreshold > 1 {
		return fmt.Errorf("resolver.confidence_threshold must be within [0,1], got %v", cfg.Resolver.ConfidenceThreshold)
	}

	switch cfg.Store.Backend {
	case BackendDynamoDB:
		if cfg.Store.Table == "" {
			return fmt.Errorf("store.table is required for the dynamodb backend")
		}
	case BackendPostgres:
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required for the postgres backend")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required for the postgres backend")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required for the postgres backend")
		}
	case BackendFile:
		if cfg.Store.File == "" {
			return fmt.Errorf("store.file is required for the file backend")
		}
	default:
		return fmt.Errorf("store.backend must be one of dynamodb, postgres, file; got %q", cfg.Store.Backend)
	}

	if cfg.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when cache is enabled")
	}

	if cfg.Audit.Enabled && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required when audit is enabled")
	}

	if cfg.Alerts.SNS.Enabled && cfg.Alerts.SNS.TopicARN == "" {
		return fmt.Errorf("alerts.sns.topic_arn is required when SNS alerts are enabled")
	}
	if cfg.Alerts.SES.Enabled && (cfg.Alerts.SES.FromEmail == "" || len(cfg.Alerts.SES.ToEmails) == 0) {
		return fmt.Errorf("alerts.ses.from_email and alerts.ses.to_emails are required when SES alerts are enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
