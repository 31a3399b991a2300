package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New builds the process logger. Unknown level names fall back to warn
// so a typo in hapkit.yaml never silences errors.
func New(level string) hclog.Logger {
	lv := hclog.LevelFromString(level)
	if lv == hclog.NoLevel {
		lv = hclog.Warn
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "hapkit",
		Level:  lv,
		Output: os.Stderr,
	})
}

// Discard drops all output. Handed to dependencies that require a
// logger we do not want to hear from.
func Discard() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Output: io.Discard,
		Level:  hclog.NoLevel,
	})
}
