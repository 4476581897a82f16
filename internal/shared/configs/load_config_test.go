package configs

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `server:
  port: 8080
  read_header_timeout: 5
  read_timeout: 10
  write_timeout: 10
  idle_timeout: 60
log:
  level: debug
kafka:
  brokers: ["localhost:9092"]
redis:
  addrs: ["localhost:6379"]
  password: ""
order_store:
  driver: sqlite
  dsn: file:orders.db
realtime:
  redis_fanout: false
dead_letter:
  root_dir: ./data
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), "test_config_*.yml")
	require.NoError(t, err)
	_, err = tmpfile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())
	return tmpfile.Name()
}

func TestLoadConfig_ValidConfigWithDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, baseConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "order_events", cfg.Kafka.Topic)
	assert.Equal(t, "order-metrics-aggregator", cfg.Kafka.GroupID)
	assert.Equal(t, 8, cfg.Kafka.QueuePartitions)
	assert.Equal(t, 5*time.Second, cfg.Kafka.RestartDelay())
	assert.Equal(t, 3*time.Second, cfg.OrderStore.QueryTimeout())
	assert.Equal(t, 20, cfg.Aggregation.DefaultPrepTimeMinutes)
	assert.Equal(t, "24h", cfg.Analytics.DefaultPeriod)
	assert.Equal(t, 10, cfg.Analytics.TopItemsLimit)
	assert.Equal(t, 30*time.Second, cfg.Realtime.PingInterval())
	assert.Equal(t, 5*time.Second, cfg.Realtime.RelayRestartDelay())
	assert.Equal(t, "./data", cfg.DeadLetter.RootDir)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("ORDER_METRICS_REDIS_PASSWORD", "s3cret")
	t.Setenv("ORDER_METRICS_SERVER_PORT", "9090")

	cfg, err := LoadConfig(writeConfig(t, baseConfig))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Redis.Password)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(string) string
		wantPart string
	}{
		{
			name:     "missing port",
			mutate:   func(s string) string { return strings.Replace(s, "  port: 8080\n", "", 1) },
			wantPart: "server.port (required)",
		},
		{
			name:     "port out of range",
			mutate:   func(s string) string { return strings.Replace(s, "port: 8080", "port: 70000", 1) },
			wantPart: "server.port (max=65535)",
		},
		{
			name:     "unknown order store driver",
			mutate:   func(s string) string { return strings.Replace(s, "driver: sqlite", "driver: mongo", 1) },
			wantPart: "order_store.driver (oneof=sqlite postgres)",
		},
		{
			name:     "missing dead letter root",
			mutate:   func(s string) string { return strings.Replace(s, "  root_dir: ./data\n", "", 1) },
			wantPart: "dead_letter.root_dir (required)",
		},
		{
			name:     "no brokers",
			mutate:   func(s string) string { return strings.Replace(s, `brokers: ["localhost:9092"]`, "brokers: []", 1) },
			wantPart: "kafka.brokers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.mutate(baseConfig)))
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
			assert.Contains(t, err.Error(), tt.wantPart)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/configs.yml")
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "failed to read config file")
}
