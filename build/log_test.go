package build

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btclog/v2"
	"github.com/stretchr/testify/require"
)

// TestParseAndSetDebugLevels checks that global and per-subsystem levels are
// applied to the loggers handed out by a SubLoggerManager, and that malformed
// level strings are rejected.
func TestParseAndSetDebugLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mgr := NewSubLoggerManager(btclog.NewDefaultHandler(&buf))

	hidx := mgr.GenSubLogger("HIDX")
	lruc := mgr.GenSubLogger("LRUC")

	// Asking for the same subsystem twice returns the same logger.
	require.Equal(t, hidx, mgr.GenSubLogger("HIDX"))
	require.Equal(
		t, []string{"HIDX", "LRUC"}, mgr.SupportedSubsystems(),
	)

	require.NoError(t, ParseAndSetDebugLevels("debug,LRUC=trace", mgr))
	require.Equal(t, btclog.LevelDebug, hidx.Level())
	require.Equal(t, btclog.LevelTrace, lruc.Level())

	require.NoError(t, ParseAndSetDebugLevels("HIDX=warn", mgr))
	require.Equal(t, btclog.LevelWarn, hidx.Level())
	require.Equal(t, btclog.LevelTrace, lruc.Level())

	tests := []struct {
		name  string
		level string
	}{
		{name: "unknown global level", level: "loud"},
		{name: "unknown subsystem", level: "info,NOPE=debug"},
		{name: "missing pair", level: "info,HIDX"},
		{name: "bad pair format", level: "HIDX=debug=trace"},
		{name: "unknown subsystem level", level: "HIDX=loud"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ParseAndSetDebugLevels(test.level, mgr)
			require.Error(t, err)
		})
	}
}

// TestLogConfigValidate asserts the compressor choice is validated.
func TestLogConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultLogConfig()
	require.NoError(t, cfg.Validate())

	cfg.File.Compressor = Zstd
	require.NoError(t, cfg.Validate())

	cfg.File.Compressor = "lzma"
	require.Error(t, cfg.Validate())
}
