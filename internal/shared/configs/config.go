package configs

import "time"

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Log         LogConfig         `mapstructure:"log" validate:"required"`
	Kafka       KafkaConfig       `mapstructure:"kafka" validate:"required"`
	Redis       RedisConfig       `mapstructure:"redis" validate:"required"`
	OrderStore  OrderStoreConfig  `mapstructure:"order_store" validate:"required"`
	Aggregation AggregationConfig `mapstructure:"aggregation" validate:"required"`
	Analytics   AnalyticsConfig   `mapstructure:"analytics"`
	Realtime    RealtimeConfig    `mapstructure:"realtime" validate:"required"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	DeadLetter  DeadLetterConfig  `mapstructure:"dead_letter" validate:"required"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port              int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadHeaderTimeout int `mapstructure:"read_header_timeout" validate:"required,min=1"` // seconds
	ReadTimeout       int `mapstructure:"read_timeout" validate:"required,min=1"`        // seconds (headers+body)
	WriteTimeout      int `mapstructure:"write_timeout" validate:"required,min=1"`       // seconds (response)
	IdleTimeout       int `mapstructure:"idle_timeout" validate:"required,min=1"`        // seconds (keep-alive)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required"`
}

// KafkaConfig holds the event log settings shared by producer and consumer.
type KafkaConfig struct {
	Brokers      []string `mapstructure:"brokers" validate:"required,min=1,dive,required"`
	Topic        string   `mapstructure:"topic" validate:"required"`
	GroupID      string   `mapstructure:"group_id" validate:"required"`
	MinBytes     int      `mapstructure:"min_bytes" validate:"min=0"`
	MaxBytes     int      `mapstructure:"max_bytes" validate:"min=0"`
	MaxWaitMs    int      `mapstructure:"max_wait_ms" validate:"min=0"`
	BatchTimeMs  int      `mapstructure:"batch_timeout_ms" validate:"min=0"` // producer flush interval
	WriteTimeout int      `mapstructure:"write_timeout_ms" validate:"min=0"`

	QueuePartitions int `mapstructure:"queue_partitions" validate:"required,min=1"`
	QueueBufferSize int `mapstructure:"queue_buffer_size" validate:"required,min=1"`

	RestartDelayMs         int `mapstructure:"restart_delay_ms" validate:"required,min=1"`
	MaxRetries             int `mapstructure:"max_retries" validate:"min=0"`
	RetryInitialIntervalMs int `mapstructure:"retry_initial_interval_ms" validate:"required,min=1"`
	RetryMaxIntervalMs     int `mapstructure:"retry_max_interval_ms" validate:"required,min=1"`
}

func (c KafkaConfig) RestartDelay() time.Duration {
	return time.Duration(c.RestartDelayMs) * time.Millisecond
}

func (c KafkaConfig) RetryInitialInterval() time.Duration {
	return time.Duration(c.RetryInitialIntervalMs) * time.Millisecond
}

func (c KafkaConfig) RetryMaxInterval() time.Duration {
	return time.Duration(c.RetryMaxIntervalMs) * time.Millisecond
}

// RedisConfig holds the bucket store connection.
type RedisConfig struct {
	Addrs         []string `mapstructure:"addrs" validate:"required,min=1,dive,required"`
	Password      string   `mapstructure:"password"`
	DB            int      `mapstructure:"db" validate:"min=0"`
	PoolSize      int      `mapstructure:"pool_size" validate:"min=0"`
	DialTimeoutMs int      `mapstructure:"dial_timeout_ms" validate:"min=0"`
}

// OrderStoreConfig holds the persistent order storage connection.
type OrderStoreConfig struct {
	Driver         string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	DSN            string `mapstructure:"dsn" validate:"required"`
	MaxOpenConns   int    `mapstructure:"max_open_conns" validate:"min=0"`
	QueryTimeoutMs int    `mapstructure:"query_timeout_ms" validate:"required,min=1"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
}

func (c OrderStoreConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutMs) * time.Millisecond
}

// AggregationConfig holds aggregation configuration.
type AggregationConfig struct {
	DefaultPrepTimeMinutes int `mapstructure:"default_prep_time_minutes" validate:"required,min=1"`
}

// AnalyticsConfig holds query engine defaults.
type AnalyticsConfig struct {
	DefaultPeriod string `mapstructure:"default_period" validate:"omitempty,oneof=24h 7d 30d 90d"`
	TopItemsLimit int    `mapstructure:"top_items_limit" validate:"min=0,max=100"`
}

// RealtimeConfig holds broadcaster and websocket settings.
type RealtimeConfig struct {
	DispatchQueueSize    int      `mapstructure:"dispatch_queue_size" validate:"required,min=1"`
	SubscriberBufferSize int      `mapstructure:"subscriber_buffer_size" validate:"required,min=1"`
	WriteTimeoutMs       int      `mapstructure:"write_timeout_ms" validate:"required,min=1"`
	PingIntervalMs       int      `mapstructure:"ping_interval_ms" validate:"required,min=1"`
	AllowedOrigins       []string `mapstructure:"allowed_origins"`
	RedisFanout          bool     `mapstructure:"redis_fanout"`
	RelayRestartDelayMs  int      `mapstructure:"relay_restart_delay_ms" validate:"required,min=1"`
}

func (c RealtimeConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMs) * time.Millisecond
}

func (c RealtimeConfig) PingInterval() time.Duration {
	return time.Duration(c.PingIntervalMs) * time.Millisecond
}

func (c RealtimeConfig) RelayRestartDelay() time.Duration {
	return time.Duration(c.RelayRestartDelayMs) * time.Millisecond
}

// RateLimitConfig holds the per-client HTTP rate limit.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"min=0"`
	Burst             int     `mapstructure:"burst" validate:"min=0"`
	IdleTTLSeconds    int     `mapstructure:"idle_ttl_seconds" validate:"min=0"`
}

// DeadLetterConfig holds where malformed events are parked.
type DeadLetterConfig struct {
	RootDir string `mapstructure:"root_dir" validate:"required"`
}
