// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fiosemu/fiosemu/cfg"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Syslog-style levels. TRACE sits below slog's DEBUG and OFF above ERROR so
// that a LevelVar set to LevelOff suppresses everything.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(12)
)

var (
	defaultLoggerFactory *loggerFactory
	defaultLogger        *slog.Logger
)

type loggerFactory struct {
	// If nil, log to stdout. Otherwise, log to this file.
	file            io.WriteCloser
	filePath        string
	format          string
	level           cfg.LogSeverity
	logRotateConfig cfg.LogRotateLoggingConfig
	prefix          string
}

// init initializes the logger factory to use stdout.
func init() {
	defaultLoggerFactory = &loggerFactory{
		file:   nil,
		format: cfg.TextLogFormat,
		level:  cfg.InfoLogSeverity,
		logRotateConfig: cfg.LogRotateLoggingConfig{
			BackupFileCount: 10,
			Compress:        true,
			MaxFileSizeMb:   512,
		},
	}
	defaultLogger = defaultLoggerFactory.newLogger(defaultLoggerFactory.level)
}

// InitLogFile initializes the logger factory to create loggers that print to
// a log file, rotated by lumberjack according to the log-rotate config.
// An empty file path keeps logging on stdout and only applies format and
// severity.
func InitLogFile(loggingConfig cfg.LoggingConfig, appName string) error {
	var f io.WriteCloser
	if loggingConfig.FilePath != "" {
		// Fail early on an unwritable path; lumberjack only opens lazily.
		probe, err := os.OpenFile(string(loggingConfig.FilePath), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("error while opening log file: %w", err)
		}
		probe.Close()

		f = &lumberjack.Logger{
			Filename:   string(loggingConfig.FilePath),
			MaxSize:    int(loggingConfig.LogRotate.MaxFileSizeMb),
			MaxBackups: int(loggingConfig.LogRotate.BackupFileCount),
			Compress:   loggingConfig.LogRotate.Compress,
		}
	}

	prefix := ""
	if appName != "" {
		prefix = appName + ": "
	}

	Close()
	defaultLoggerFactory = &loggerFactory{
		file:            f,
		filePath:        string(loggingConfig.FilePath),
		format:          loggingConfig.Format,
		level:           loggingConfig.Severity,
		logRotateConfig: loggingConfig.LogRotate,
		prefix:          prefix,
	}
	defaultLogger = defaultLoggerFactory.newLogger(loggingConfig.Severity)

	return nil
}

// SetLogFormat updates the format of the default logger. Any value other
// than "text" selects JSON.
func SetLogFormat(format string) {
	defaultLoggerFactory.format = format
	defaultLogger = defaultLoggerFactory.newLogger(defaultLoggerFactory.level)
}

// Close closes the log file when necessary.
func Close() {
	if f := defaultLoggerFactory.file; f != nil {
		f.Close()
		defaultLoggerFactory.file = nil
	}
}

// Tracef prints the message with TRACE severity in the specified format.
func Tracef(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelTrace, fmt.Sprintf(format, v...))
}

// Debugf prints the message with DEBUG severity in the specified format.
func Debugf(format string, v ...interface{}) {
	defaultLogger.Debug(fmt.Sprintf(format, v...))
}

// Infof prints the message with INFO severity in the specified format.
func Infof(format string, v ...interface{}) {
	defaultLogger.Info(fmt.Sprintf(format, v...))
}

// Info prints the message with info severity.
func Info(message string, args ...any) {
	defaultLogger.Info(message, args...)
}

// Warnf prints the message with WARNING severity in the specified format.
func Warnf(format string, v ...interface{}) {
	defaultLogger.Warn(fmt.Sprintf(format, v...))
}

// Errorf prints the message with ERROR severity in the specified format.
func Errorf(format string, v ...interface{}) {
	defaultLogger.Error(fmt.Sprintf(format, v...))
}

// Fatal prints an error log and exits with non-zero exit code.
func Fatal(format string, v ...interface{}) {
	Errorf(format, v...)
	Close()
	os.Exit(1)
}

func (f *loggerFactory) newLogger(level cfg.LogSeverity) *slog.Logger {
	// create a new logger
	var programLevel = new(slog.LevelVar)
	logger := slog.New(f.handler(programLevel, f.prefix))
	setLoggingLevel(level, programLevel)
	return logger
}

func (f *loggerFactory) handler(levelVar *slog.LevelVar, prefix string) slog.Handler {
	if f.file != nil {
		return f.createJsonOrTextHandler(f.file, levelVar, prefix)
	}
	return f.createJsonOrTextHandler(os.Stdout, levelVar, prefix)
}
