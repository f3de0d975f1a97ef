package helpers

import (
	"fmt"
	"os"
	"sync"
	"time"

	"sjsage522/boxofficeworker/logger"
)

// LoggerInterface defines the interface for logger implementations
type LoggerInterface interface {
	LogError(title string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger appends per-title failures to an error journal and forwards info to the structured logger
type Logger struct {
	mu        sync.Mutex
	errorFile string
}

// NewLogger creates a new logger instance
func NewLogger(errorFile string) *Logger {
	return &Logger{
		errorFile: errorFile,
	}
}

// LogError logs an error to the journal file with the title and a timestamp
func (l *Logger) LogError(title string, err error) {
	logger.ForSync().Error().Str("title", title).Err(err).Msg("Title sync failed")

	if l.errorFile == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, fileErr := os.OpenFile(l.errorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		logger.ForSync().Warn().Err(fileErr).Str("file", l.errorFile).Msg("Failed to open error journal")
		return
	}
	defer f.Close()

	timestamp := time.Now().Format(time.DateTime)
	fmt.Fprintf(f, "[%s] [%s] %s\n", timestamp, title, err.Error())
}

// LogInfo logs an informational message
func (l *Logger) LogInfo(format string, args ...interface{}) {
	logger.ForSync().Info().Msgf(format, args...)
}
