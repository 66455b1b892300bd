// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package logging holds the process-wide diagnostic logger.
//
// Logf defaults to log.Printf. Tests or binaries may redirect or mute it with
// SetLogger. Debugf is gated by SetDebug and is off by default.
package logging

import (
	"log"
	"sync/atomic"
)

// LogFunc has the signature of log.Printf.
type LogFunc func(format string, v ...interface{})

var (
	logger atomic.Value // LogFunc
	debug  atomic.Bool
)

func init() {
	logger.Store(LogFunc(log.Printf))
}

// Logf writes one line through the current logger. It is safe to call from
// any goroutine, including while SetLogger runs.
func Logf(format string, v ...interface{}) {
	logger.Load().(LogFunc)(format, v...)
}

// SetLogger replaces the package logger and returns the previous one.
// Passing nil sets a no-op logger.
func SetLogger(f LogFunc) LogFunc {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	return logger.Swap(f).(LogFunc)
}

// SetDebug enables or disables Debugf output.
func SetDebug(on bool) {
	debug.Store(on)
}

// DebugEnabled reports whether Debugf output is enabled.
func DebugEnabled() bool {
	return debug.Load()
}

// Debugf logs through Logf only when debug output is enabled.
func Debugf(format string, v ...interface{}) {
	if !debug.Load() {
		return
	}
	Logf("[debug] "+format, v...)
}
