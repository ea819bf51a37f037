// Package log provides the colored, leveled loggers shared by the
// sender and receiver commands.
package log

import (
	"log"
	"os"
)

var (
	// Warning logs error and failure conditions.
	Warning = log.New(os.Stderr, "\x1B[91mWARNING: \x1B[39m", 0)
	// Info logs normal progress events.
	Info = log.New(os.Stdout, "\x1B[92mINFO:    \x1B[39m", 0)
	// Debug logs high-volume per-frame detail.
	Debug = log.New(os.Stdout, "\x1B[96mDEBUG:   \x1B[39m", 0)
)
