package applog

import (
	"bufio"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromFlag(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelFromFlag("debug"))
	assert.Equal(t, slog.LevelWarn, LevelFromFlag("warn"))
	assert.Equal(t, slog.LevelError, LevelFromFlag("error"))
	assert.Equal(t, slog.LevelInfo, LevelFromFlag("info"))
	assert.Equal(t, slog.LevelInfo, LevelFromFlag("whatever-this-is"))
}

func TestInitWritesToGivenFileAtGivenLevel(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "applog-*.log")
	require.NoError(t, err)
	defer f.Close()

	log := Init(f, slog.LevelWarn)
	log.Info("should not appear")
	log.Warn("should appear", "key", "value")
	require.NoError(t, f.Sync())

	raw, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	out := string(raw)
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
	assert.Contains(t, out, "key=value")
}

func TestInitReplacesThePackageWideLogger(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "applog-*.log")
	require.NoError(t, err)
	defer f.Close()

	Init(f, slog.LevelInfo)
	assert.Same(t, cur, Default())
}

func TestDefaultInitializesOnceWhenUninitialized(t *testing.T) {
	mu.Lock()
	cur = nil
	mu.Unlock()

	got := Default()
	require.NotNil(t, got)
	assert.Same(t, got, Default(), "a second call must not replace the lazily-initialized logger")
}

func TestDefaultHonorsDebugEnvVar(t *testing.T) {
	mu.Lock()
	cur = nil
	mu.Unlock()
	t.Setenv("VOSHD_DEBUG", "1")

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	old := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = old }()

	log := Default()
	log.Debug("debug line visible")
	w.Close()

	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	assert.True(t, strings.Contains(strings.Join(lines, "\n"), "debug line visible"))
}
