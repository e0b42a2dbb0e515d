package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/vendorperf/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: " warn ", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_AppendsAndCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	opts := Options{Dir: dir, File: "vendorperf.log", Level: "debug"}

	for _, msg := range []string{"first run", "second run"} {
		logger, closer, err := Open(opts)
		require.NoError(t, err)
		logger.Debug(msg, slog.Int("rows", 3))
		require.NoError(t, closer.Close())
	}

	data, err := os.ReadFile(opts.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "level=DEBUG")
	assert.Contains(t, string(data), `msg="first run"`)
	assert.Contains(t, string(data), `msg="second run" rows=3`)
	assert.Contains(t, string(data), "time=")
}

func TestOpen_LevelFiltersAndEcho(t *testing.T) {
	var echo bytes.Buffer
	opts := Options{Dir: t.TempDir(), File: "run.log", Level: "info", Echo: &echo}

	logger, closer, err := Open(opts)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown")
	require.NoError(t, closer.Close())

	assert.NotContains(t, echo.String(), "hidden")
	assert.Contains(t, echo.String(), "shown")
}

func TestOpen_Errors(t *testing.T) {
	_, _, err := Open(Options{Dir: t.TempDir(), File: "x.log", Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, _, err = Open(Options{Dir: filepath.Join(blocker, "logs"), File: "x.log", Level: "debug"})
	var ioErr *core.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "create log directory", ioErr.Op)
}
