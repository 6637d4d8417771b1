/*
 * Copyright 2026 taprootlabs.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	globalLogger   Logger
	globalLoggerMu sync.RWMutex
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "DEBUG"
	}
}

func (l LogLevel) hclog() hclog.Level {
	switch l {
	case LogLevelDebug:
		return hclog.Debug
	case LogLevelInfo:
		return hclog.Info
	case LogLevelWarn:
		return hclog.Warn
	case LogLevelError:
		return hclog.Error
	default:
		return hclog.Debug
	}
}

type Logger interface {
	SetLevel(LogLevel)
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// InitLogger installs a process-wide logger; the first installed logger wins.
func InitLogger(log Logger) {
	if log == nil {
		return
	}
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = log
	}
}

// GetLogger returns the process-wide logger, installing a default one on
// first use.
func GetLogger() Logger {
	globalLoggerMu.RLock()
	l := globalLogger
	globalLoggerMu.RUnlock()
	if l != nil {
		return l
	}

	dl := NewDefaultLogger("DATABASE")
	globalLoggerMu.Lock()
	if globalLogger == nil {
		globalLogger = dl
	}
	l = globalLogger
	globalLoggerMu.Unlock()
	return l
}

// DefaultLogger adapts hclog to the Logger interface.
type DefaultLogger struct {
	logger hclog.Logger
}

// NewDefaultLogger returns a Logger writing structured output under the
// given subsystem name.
func NewDefaultLogger(name string) *DefaultLogger {
	return &DefaultLogger{
		logger: hclog.New(&hclog.LoggerOptions{
			Name:  name,
			Level: hclog.Info,
		}),
	}
}

func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.logger.SetLevel(level.hclog())
}

func (l *DefaultLogger) Debug(msg string, fields ...interface{}) {
	l.logger.Debug(msg, fields...)
}

func (l *DefaultLogger) Info(msg string, fields ...interface{}) {
	l.logger.Info(msg, fields...)
}

func (l *DefaultLogger) Warn(msg string, fields ...interface{}) {
	l.logger.Warn(msg, fields...)
}

func (l *DefaultLogger) Error(msg string, fields ...interface{}) {
	l.logger.Error(msg, fields...)
}
