package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Logger provides logging functionality
type Logger struct {
	file   *os.File
	logger *log.Logger
}

// NewLogger creates a new logger writing to logPath and stdout. An
// empty path logs to stdout only.
func NewLogger(logPath string) (*Logger, error) {
	if logPath == "" {
		return &Logger{logger: log.New(os.Stdout, "", log.LstdFlags)}, nil
	}

	// Ensure directory exists
	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{
		file:   file,
		logger: log.New(file, "", log.LstdFlags),
	}, nil
}

// Close closes the logger
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.write("[INFO] ", format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.write("[ERROR] ", format, v...)
}

func (l *Logger) write(prefix, format string, v ...interface{}) {
	msg := fmt.Sprintf(prefix+format, v...)
	l.logger.Println(msg)
	if l.file != nil {
		fmt.Println(msg)
	}
}
