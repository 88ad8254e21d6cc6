package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu      sync.RWMutex
	current = LevelInfo
	out     = log.New(io.Discard, "", 0)
	logFile *os.File
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// InitLogging sets up logging. An empty logPath logs to stderr.
func InitLogging(level Level, logPath string) error {
	var w io.Writer = os.Stderr

	var f *os.File

	if logPath != "" {
		err := os.MkdirAll(filepath.Dir(logPath), 0o755)
		if err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		f, err = os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		w = f
	}

	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}

	logFile = f
	current = level
	out = log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)

	return nil
}

// SetOutput redirects log output, used by tests.
func SetOutput(w io.Writer, level Level) {
	mu.Lock()
	defer mu.Unlock()

	current = level
	out = log.New(w, "", 0)
}

// Close closes the log file if open.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	out = log.New(io.Discard, "", 0)
}

func logf(level Level, tag, format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()

	if level < current {
		return
	}

	out.Printf(tag+format, v...)
}

func Debugf(format string, v ...interface{}) {
	logf(LevelDebug, "[DEBUG] ", format, v...)
}

func Infof(format string, v ...interface{}) {
	logf(LevelInfo, "[INFO] ", format, v...)
}

func Warnf(format string, v ...interface{}) {
	logf(LevelWarn, "[WARNING] ", format, v...)
}

// Errorf logs an error message.
func Errorf(format string, v ...interface{}) {
	logf(LevelError, "[ERROR] ", format, v...)
}
