package nrsc5

import (
	"os"

	"github.com/charmbracelet/log"
)

// logger is the package-level logger, mirroring the level-keyed dw_printf
// style the original receiver uses throughout acquire/sync/pids/frame.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "nrsc5",
})

// SetLogLevel adjusts verbosity; callers typically wire this to a -v flag.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}
