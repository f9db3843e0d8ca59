// Package logging wires the process-wide zerolog logger. Grounded on the
// metabridge-hub relayer processor's use of zerolog's chained
// .Str()/.Err() structured fields, which this project follows in place of
// the teacher's plain fmt.Println CLI output convention.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the root logger. debug raises the level to Debug, matching
// the DEBUG=true environment variable from spec.md §6.
func New(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
