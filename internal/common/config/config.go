// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Messenger MessengerConfig `mapstructure:"messenger"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Store     StoreConfig     `mapstructure:"store"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
	BodyLimit    int    `mapstructure:"body_limit"`    // bytes
}

// MessengerConfig holds the Messenger platform credentials and Send API settings.
type MessengerConfig struct {
	GraphBaseURL    string `mapstructure:"graph_base_url"`
	APIVersion      string `mapstructure:"api_version"`
	PageAccessToken string `mapstructure:"page_access_token"`
	VerifyToken     string `mapstructure:"verify_token"`
	AppSecret       string `mapstructure:"app_secret"`
	Timeout         int    `mapstructure:"timeout"` // milliseconds
	MaxRetries      int    `mapstructure:"max_retries"`
}

// ResolverConfig tunes answer resolution.
type ResolverConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	ErrorAnswer         string  `mapstructure:"error_answer"`
	IntentEntity        string  `mapstructure:"intent_entity"`
	LookupTimeout       int     `mapstructure:"lookup_timeout"` // milliseconds
}

// StoreConfig selects the intent table backend.
type StoreConfig struct {
	Backend      string `mapstructure:"backend"` // dynamodb | postgres | file
	Table        string `mapstructure:"table"`
	PartitionKey string `mapstructure:"partition_key"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"` // optional, e.g. DynamoDB Local
	File         string `mapstructure:"file"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	TTL     int    `mapstructure:"ttl"` // milliseconds
	Prefix  string `mapstructure:"prefix"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	MaxConnections  int    `mapstructure:"max_connections"`
	MaxIdle         int    `mapstructure:"max_idle"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // milliseconds
	SSLMode         string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	MaxRetries int      `mapstructure:"max_retries"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// AlertsConfig routes operator alerts for configuration bugs and delivery failures.
type AlertsConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"` // optional, e.g. LocalStack
	SNS      struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		ToEmails  []string `mapstructure:"to_emails"`
	} `mapstructure:"ses"`
}

// AuditConfig controls the interaction audit trail.
type AuditConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Index      string `mapstructure:"index"`
	BufferSize int    `mapstructure:"buffer_size"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
