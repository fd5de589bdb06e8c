// Package logging sets up the application's leveled standard loggers.
package logging

import (
	"io"
	"log"
	"strings"
)

// Logger groups the info, error and debug streams handed to components.
type Logger struct {
	Info  *log.Logger
	Error *log.Logger
	Debug *log.Logger
}

// New writes info and error lines to w. Debug lines are dropped unless
// level is "debug".
func New(w io.Writer, level string) *Logger {
	flags := log.Ldate | log.Ltime | log.LUTC
	debugOut := io.Discard
	if strings.EqualFold(level, "debug") {
		debugOut = w
	}
	return &Logger{
		Info:  log.New(w, "INFO\t", flags),
		Error: log.New(w, "ERROR\t", flags|log.Lshortfile),
		Debug: log.New(debugOut, "DEBUG\t", flags),
	}
}

// Discard returns a Logger that writes nowhere, for tests.
func Discard() *Logger {
	return New(io.Discard, "info")
}
