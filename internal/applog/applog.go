// Package applog adds the §7 error-severity vocabulary (CRITICAL, ERROR,
// WARNING) on top of the standard library logger. The teacher never reaches
// for a structured logging library, so neither do we.
package applog

import (
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)

func Info(format string, args ...any) {
	std.Printf("INFO  "+format, args...)
}

func Warn(format string, args ...any) {
	std.Printf("WARN  "+format, args...)
}

func Error(format string, args ...any) {
	std.Printf("ERROR "+format, args...)
}

// Critical logs at the fatal-startup severity. It does not call os.Exit;
// callers decide whether to abort.
func Critical(format string, args ...any) {
	std.Printf("CRIT  "+format, args...)
}
