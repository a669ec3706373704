package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Load("") from this package directory finds no configs/ dir, so only
// defaults and environment apply.

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	checks := []struct {
		name      string
		got, want any
	}{
		{"app name", cfg.App.Name, "quotekeeper"},
		{"app env", cfg.App.Environment, "local"},
		{"server port", cfg.Server.Port, DefaultServerPort},
		{"server host", cfg.Server.Host, "0.0.0.0"},
		{"idle timeout", cfg.Server.IdleTimeout, 120 * time.Second},
		{"shutdown timeout", cfg.Server.ShutdownTimeout, 10 * time.Second},
		{"max request size", cfg.Server.MaxRequestSize, int64(DefaultMaxRequestSize)},
		{"log level", cfg.Log.Level, "info"},
		{"log format", cfg.Log.Format, "json"},
		{"log file off", cfg.Log.File.Enabled, false},
		{"log file max size", cfg.Log.File.MaxSizeMB, DefaultLogFileMaxSizeMB},
		{"log file compress", cfg.Log.File.Compress, true},
		{"telemetry off", cfg.Telemetry.Enabled, false},
		{"telemetry sampling", cfg.Telemetry.SamplingRate, 1.0},
		{"client timeout", cfg.Client.Timeout, 30 * time.Second},
		{"retry attempts", cfg.Client.Retry.MaxAttempts, DefaultClientRetryMaxAttempts},
		{"retry initial", cfg.Client.Retry.InitialInterval, 100 * time.Millisecond},
		{"retry jitter", cfg.Client.Retry.JitterFactor, DefaultClientRetryJitterFactor},
		{"circuit failures", cfg.Client.CircuitBreaker.MaxFailures, DefaultClientCircuitMaxFailures},
		{"circuit half open", cfg.Client.CircuitBreaker.HalfOpenLimit, DefaultClientCircuitHalfOpenLimit},
		{"idle conns", cfg.Client.Transport.MaxIdleConns, DefaultTransportMaxIdleConns},
		{"feed base", cfg.Services.Feed.BaseURL, "https://jsonplaceholder.typicode.com"},
		{"feed path", cfg.Services.Feed.PostsPath, "/posts"},
		{"storage driver", cfg.Storage.Driver, StorageDriverFile},
		{"storage path", cfg.Storage.Path, "./data/quotes.json"},
		{"sync enabled", cfg.Sync.Enabled, true},
		{"sync interval", cfg.Sync.Interval, DefaultSyncInterval},
		{"sync fetch limit", cfg.Sync.FetchLimit, DefaultSyncFetchLimit},
		{"sync category prefix", cfg.Sync.CategoryPrefix, DefaultSyncCategoryPrefix},
	}

	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}

	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_LOG_LEVEL", "warn")
	t.Setenv("APP_TELEMETRY_ENABLED", "true")
	t.Setenv("APP_SYNC_FETCH_LIMIT", "25")
	t.Setenv("APP_STORAGE_DRIVER", "memory")
	t.Setenv("APP_SERVICES_FEED_BASE_URL", "http://localhost:9999")
	t.Setenv("APP_SYNC_INTERVAL", "5m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 25, cfg.Sync.FetchLimit)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "http://localhost:9999", cfg.Services.Feed.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Sync.Interval)
}

func TestEnvKey(t *testing.T) {
	k := koanf.New(".")
	require.NoError(t, k.Load(confmap.Provider(defaults(), "."), nil))

	assert.Equal(t, "sync.fetch_limit", envKey(k, "APP_SYNC_FETCH_LIMIT"))
	assert.Equal(t, "server.max_request_size", envKey(k, "APP_SERVER_MAX_REQUEST_SIZE"))
	assert.Equal(t, "made.up.key", envKey(k, "APP_MADE_UP_KEY"))
}

func TestLoadFrom_Layers(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	write("base.yaml", "sync:\n  fetch_limit: 5\nstorage:\n  driver: sqlite\n")
	write("test.yaml", "sync:\n  fetch_limit: 7\n")

	t.Run("profile overrides base", func(t *testing.T) {
		cfg, err := LoadFrom(dir, "test")
		require.NoError(t, err)

		assert.Equal(t, 7, cfg.Sync.FetchLimit)
		assert.Equal(t, StorageDriverSQLite, cfg.Storage.Driver)
	})

	t.Run("missing profile is skipped", func(t *testing.T) {
		cfg, err := LoadFrom(dir, "nonexistent")
		require.NoError(t, err)

		assert.Equal(t, 5, cfg.Sync.FetchLimit)
	})

	t.Run("env beats files", func(t *testing.T) {
		t.Setenv("APP_SYNC_FETCH_LIMIT", "9")

		cfg, err := LoadFrom(dir, "test")
		require.NoError(t, err)

		assert.Equal(t, 9, cfg.Sync.FetchLimit)
	})
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	tests := []struct {
		name, file, profile, wantErr string
	}{
		{"base", "base.yaml", "", "loading base config"},
		{"profile", "qa.yaml", "qa", `loading profile config "qa"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), []byte("sync: [\n"), 0o600))

			_, err := LoadFrom(dir, tt.profile)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDefaults_KeysMatchStructTags(t *testing.T) {
	d := defaults()

	assert.Equal(t, StorageDriverFile, d["storage.driver"])
	assert.Equal(t, DefaultSyncFetchLimit, d["sync.fetch_limit"])
	assert.Equal(t, DefaultSyncInterval.String(), d["sync.interval"])
	assert.Contains(t, d, "services.feed.posts_path")
	assert.Contains(t, d, "client.transport.idle_conn_timeout")
}
