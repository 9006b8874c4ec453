package pegrun

import (
	"os"

	"github.com/rs/zerolog"
)

// Log is the package-level logger (SPEC_FULL.md §A.1). It defaults to
// console output and is switched to JSON by setting PEGRUN_LOG_FORMAT=json.
// The Debug-level events Compile emits (compile start, failure, and the
// compiled program's build ID and entry) are gated behind this logger's
// level so a normal run pays zerolog's disabled-path cost only, which is
// effectively free.
var Log zerolog.Logger

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("PEGRUN_LOG_FORMAT") == "json" {
		Log = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// SetDebug raises the global log level to Debug, used by cmd/pegrun's
// --verbose flag.
func SetDebug(on bool) {
	if on {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
