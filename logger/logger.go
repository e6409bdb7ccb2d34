// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package logger

import (
	"sync"

	"github.com/sassoftware/viya-pdf-inspect/tracer"
)

// LogLevel represents log severity
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	ErrorLevel LogLevel = "error"
)

// LogFunc is a single logger function that handles all levels
type LogFunc func(level LogLevel, msg string, keyvals ...interface{})

var (
	mu      sync.RWMutex
	logFunc LogFunc = func(level LogLevel, msg string, keyvals ...interface{}) {}
)

// SetLogger sets the global logger function. A nil f is ignored.
func SetLogger(f LogFunc) {
	if f == nil {
		return
	}
	mu.Lock()
	logFunc = f
	mu.Unlock()
}

func current() LogFunc {
	mu.RLock()
	defer mu.RUnlock()
	return logFunc
}

// Debug logs a message at debug level
// If the last keyvals element is a bool and true, it is treated as trace flag
func Debug(msg string, keyvals ...interface{}) {
	trace := false
	if len(keyvals) > 0 {
		if b, ok := keyvals[len(keyvals)-1].(bool); ok {
			trace = b
			keyvals = keyvals[:len(keyvals)-1]
		}
	}
	current()(DebugLevel, msg, keyvals...)

	if trace {
		tracer.Log(msg)
	}
}

// Info logs a message at info level
func Info(msg string, keyvals ...interface{}) {
	current()(InfoLevel, msg, keyvals...)
}

// Error logs a message at error level
func Error(msg string, keyvals ...interface{}) {
	current()(ErrorLevel, msg, keyvals...)
}
