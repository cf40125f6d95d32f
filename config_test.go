package threadpool

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Config
		wantErr error
		errStr  string
	}{
		{
			name:  "empty",
			input: "",
			want:  Config{},
		},
		{
			name: "full",
			input: `
workers: 8
verbose: true
log_level: debug
metrics:
  enabled: true
  namespace: jobs
`,
			want: Config{
				Workers:  intPtr(8),
				Verbose:  true,
				LogLevel: "debug",
				Metrics:  MetricsConfig{Enabled: true, Namespace: "jobs"},
			},
		},
		{
			name:  "zero workers is allowed",
			input: "workers: 0\n",
			want:  Config{Workers: intPtr(0)},
		},
		{
			name:    "negative workers",
			input:   "workers: -2\n",
			wantErr: ErrInvalidWorkerCount,
		},
		{
			name:    "bad log level",
			input:   "log_level: loud\n",
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:   "unknown field",
			input:  "threads: 4\n",
			errStr: "failed to parse config",
		},
		{
			name:   "malformed yaml",
			input:  "workers: [1,\n",
			errStr: "failed to parse config",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseConfig([]byte(tc.input))
			switch {
			case tc.wantErr != nil:
				require.ErrorIs(t, err, tc.wantErr)
			case tc.errStr != "":
				require.ErrorContains(t, err, tc.errStr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pool.yaml")
		require.NoError(t, os.WriteFile(path, []byte("workers: 3\nlog_level: warn\n"), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.NotNil(t, cfg.Workers)
		assert.Equal(t, 3, *cfg.Workers)

		level, err := cfg.Level()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelWarn, level)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
		require.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("invalid file wraps path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("workers: -1\n"), 0o600))

		_, err := LoadConfig(path)
		require.ErrorIs(t, err, ErrInvalidWorkerCount)
		require.ErrorContains(t, err, path)
	})
}

func TestConfigLevelDefault(t *testing.T) {
	level, err := Config{}.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestConfigOptions(t *testing.T) {
	t.Run("workers and verbose", func(t *testing.T) {
		cfg := Config{Workers: intPtr(3), Verbose: true}
		subject := New(cfg.Options(nil)...)
		defer subject.Shutdown()

		assert.Equal(t, 3, subject.WorkerCount())
		assert.True(t, subject.printer.trace)
	})

	t.Run("workers default to cpu count", func(t *testing.T) {
		opts := append(Config{}.Options(nil), WithCPUCount(func() int { return 5 }))
		subject := New(opts...)
		defer subject.Shutdown()

		assert.Equal(t, 5, subject.WorkerCount())
	})

	t.Run("metrics registered under namespace", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		cfg := Config{Workers: intPtr(1), Metrics: MetricsConfig{Enabled: true}}
		subject := New(cfg.Options(reg)...)
		subject.Submit(func() {})
		subject.Shutdown()

		families, err := reg.Gather()
		require.NoError(t, err)
		var names []string
		for _, f := range families {
			names = append(names, f.GetName())
		}
		assert.Contains(t, names, DefaultMetricsNamespace+"_tasks_submitted_total")
		assert.Contains(t, names, DefaultMetricsNamespace+"_task_duration_seconds")
	})
}

func intPtr(n int) *int { return &n }
