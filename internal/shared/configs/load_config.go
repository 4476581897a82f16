package configs

import (
	"fmt"
	"strings"

	"order-metrics/internal/shared/validators"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ORDER_METRICS_REDIS_PASSWORD.
const EnvPrefix = "ORDER_METRICS"

// LoadConfig reads configuration from file, applies environment overrides and validates it.
var LoadConfig = func(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validators.New()
	if err := validate.Struct(&cfg); err != nil {
		var validationErrors []string
		if ve, ok := err.(validators.ValidationErrors); ok {
			for _, e := range ve {
				validationErrors = append(validationErrors, formatValidationError(e))
			}
		}
		return nil, fmt.Errorf("config validation failed: %s", strings.Join(validationErrors, ", "))
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("kafka.topic", "order_events")
	v.SetDefault("kafka.group_id", "order-metrics-aggregator")
	v.SetDefault("kafka.queue_partitions", 8)
	v.SetDefault("kafka.queue_buffer_size", 1024)
	v.SetDefault("kafka.restart_delay_ms", 5000)
	v.SetDefault("kafka.max_retries", 5)
	v.SetDefault("kafka.retry_initial_interval_ms", 200)
	v.SetDefault("kafka.retry_max_interval_ms", 5000)
	v.SetDefault("order_store.query_timeout_ms", 3000)
	v.SetDefault("aggregation.default_prep_time_minutes", 20)
	v.SetDefault("analytics.default_period", "24h")
	v.SetDefault("analytics.top_items_limit", 10)
	v.SetDefault("realtime.dispatch_queue_size", 1024)
	v.SetDefault("realtime.subscriber_buffer_size", 64)
	v.SetDefault("realtime.write_timeout_ms", 10000)
	v.SetDefault("realtime.ping_interval_ms", 30000)
	v.SetDefault("realtime.relay_restart_delay_ms", 5000)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("rate_limit.idle_ttl_seconds", 600)
}

// formatValidationError formats a single validation error into a readable string.
func formatValidationError(e validators.FieldError) string {
	field := e.Field()
	tag := e.Tag()

	// "Config.order_store.driver" -> "order_store.driver"
	if _, rest, ok := strings.Cut(e.Namespace(), "."); ok {
		field = rest
	}

	switch tag {
	case "required":
		return fmt.Sprintf("%s (required)", field)
	case "min", "max", "oneof":
		return fmt.Sprintf("%s (%s=%s)", field, tag, e.Param())
	default:
		return fmt.Sprintf("%s (%s)", field, tag)
	}
}
