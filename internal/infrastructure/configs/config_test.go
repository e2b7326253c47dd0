package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults_Without_File(t *testing.T) {
	req := require.New(t)

	cfg, err := Load("")
	req.NoError(err)

	req.Equal("0.0.0.0", cfg.HTTP.Host)
	req.EqualValues(8080, cfg.HTTP.Port)
	req.Equal("zap", cfg.Logger.Logger)
	req.Equal("info", cfg.Logger.Level)
	req.True(cfg.Rooms.OpenEventStreams)
	req.Equal(64, cfg.Rooms.SendBuffer)
	req.Equal(8, cfg.Workers.PoolSize)
	req.Equal(256, cfg.Workers.QueueDepth)
	req.Equal("mongodb://localhost:27017", cfg.Mongo.URI)
	req.Equal("churchconnect", cfg.Mongo.Database)
	req.True(cfg.RabbitMQ.Enabled)
	req.Equal("churchconnect", cfg.JWT.Issuer)
}

func TestLoad_YAML_File_Overrides_Defaults(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "gateway.yaml")
	req.NoError(os.WriteFile(path, []byte(`
http:
  host: 127.0.0.1
  port: 9090
rooms:
  open_event_streams: false
  send_buffer: 16
rabbitmq:
  enabled: false
rateLimiter:
  maxRatePerSecond: 50
  cacheTTL: 30s
`), 0o644))

	cfg, err := Load(path)
	req.NoError(err)

	req.Equal("127.0.0.1", cfg.HTTP.Host)
	req.EqualValues(9090, cfg.HTTP.Port)
	req.False(cfg.Rooms.OpenEventStreams)
	req.Equal(16, cfg.Rooms.SendBuffer)
	req.False(cfg.RabbitMQ.Enabled)
	req.Equal(50, cfg.RateLimiter.MaxRatePerSecond)
	req.Equal(30*time.Second, cfg.RateLimiter.CacheTTL)

	// Untouched keys keep their defaults.
	req.Equal("zap", cfg.Logger.Logger)
	req.Equal(8, cfg.Workers.PoolSize)
}

func TestLoad_Env_Overrides_File(t *testing.T) {
	req := require.New(t)

	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("ROOMS_OPEN_EVENT_STREAMS", "false")

	cfg, err := Load("")
	req.NoError(err)

	req.EqualValues(7070, cfg.HTTP.Port)
	req.Equal("mongodb://db:27017", cfg.Mongo.URI)
	req.Equal("from-env", cfg.JWT.Secret)
	req.False(cfg.Rooms.OpenEventStreams)
}

func TestLoad_Missing_Explicit_File_Fails(t *testing.T) {
	req := require.New(t)

	_, err := Load("/nonexistent/gateway.yaml")
	req.Error(err)
}

func TestDetermineConfigPath_Explicit_Wins_Over_Env(t *testing.T) {
	req := require.New(t)

	t.Setenv("GATEWAY_CONFIG", "/from/env.yaml")

	req.Equal("/explicit.yaml", DetermineConfigPath("/explicit.yaml"))
	req.Equal("/from/env.yaml", DetermineConfigPath(""))
}

func TestDetermineConfigPath_Falls_Back_To_Known_Locations(t *testing.T) {
	req := require.New(t)

	t.Setenv("GATEWAY_CONFIG", "")

	dir := t.TempDir()
	cwd, err := os.Getwd()
	req.NoError(err)
	req.NoError(os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	req.Empty(DetermineConfigPath(""))

	req.NoError(os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("http:\n  port: 9999\n"), 0o644))
	req.Equal("./config.yaml", DetermineConfigPath(""))
}
