package logger

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/uuid"
	"github.com/muesli/termenv"
)

// Init initializes the logger
func Init(debug, noColor bool) {
	log.SetDefault(log.NewWithOptions(os.Stderr,
		log.Options{
			ReportCaller:    true,
			ReportTimestamp: false,
			TimeFormat:      time.RFC3339,
			Prefix:          "TEENYJVM",
		}))

	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	log.SetColorProfile(termenv.ANSI256)
	if noColor {
		log.SetColorProfile(termenv.Ascii)
	}
}

// ForRun returns a child of the default logger tagged with a fresh run id
// and the class file being run.
func ForRun(file string) *log.Logger {
	l := log.Default().With("file", file)

	id, err := uuid.NewV4()
	if err != nil {
		l.Warn("Failed to generate run id", "error", err)
		return l
	}
	return l.With("run", id.String())
}
