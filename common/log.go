package common

import (
	"os"

	logging "github.com/inconshreveable/log15"
)

var (
	DefaultLogLevel   logging.Lvl     = logging.LvlInfo
	DefaultLogHandler logging.Handler = logging.StreamHandler(os.Stdout, logging.TerminalFormat())
)

// SetLogging set the logger
func SetLogging(logger logging.Logger, level logging.Lvl, handler logging.Handler) {
	logger.SetHandler(logging.LvlFilterHandler(level, handler))
}

// NewLogHandler returns a terminal handler on stdout, or a JSON file handler
// when output is given.
func NewLogHandler(output string) (logging.Handler, error) {
	if len(output) < 1 {
		return DefaultLogHandler, nil
	}
	return logging.FileHandler(output, logging.JsonFormat())
}
