package build

import (
	"io"
	"os"

	"github.com/btcsuite/btclog/v2"
)

// NewDefaultLogHandler returns the handler that the command line tools use:
// console output, plus the rotating log file when one is given. Disabled
// loggers are left out; if both are disabled the returned handler discards
// everything.
func NewDefaultLogHandler(cfg *LogConfig,
	rotator *RotatingLogWriter) btclog.Handler {

	var (
		writers []io.Writer
		opts    []btclog.HandlerOption
	)
	if !cfg.Console.Disable {
		writers = append(writers, os.Stdout)
		opts = append(opts, cfg.Console.HandlerOptions()...)
	}
	if rotator != nil && !cfg.File.Disable {
		writers = append(writers, rotator)

		// The console options win if both loggers are enabled since
		// the handler is shared.
		if cfg.Console.Disable {
			opts = append(opts, cfg.File.HandlerOptions()...)
		}
	}

	if len(writers) == 0 {
		return btclog.NewDefaultHandler(io.Discard)
	}

	return btclog.NewDefaultHandler(io.MultiWriter(writers...), opts...)
}
