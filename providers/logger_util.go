package providers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type FileLoggerImpl struct {
	filePath string
	mutex    sync.Mutex
}

func NewFileLogger(logPath string) (FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	return &FileLoggerImpl{
		filePath: logPath,
	}, nil
}

func (l *FileLoggerImpl) LogRequest(providerName, category string) {
	logEntry := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"provider":  providerName,
		"event":     "request",
		"category":  category,
	}

	l.writeLog(logEntry)
}

// LogResponse logs a successful tour lookup
func (l *FileLoggerImpl) LogResponse(providerName, category string, count int, duration time.Duration) {
	logEntry := map[string]interface{}{
		"timestamp":   time.Now().Format(time.RFC3339),
		"provider":    providerName,
		"event":       "response",
		"category":    category,
		"duration_ms": duration.Milliseconds(),
		"item_count":  count,
	}

	l.writeLog(logEntry)
}

// LogError logs an error during a tour lookup
func (l *FileLoggerImpl) LogError(providerName, category string, err error, duration time.Duration) {
	logEntry := map[string]interface{}{
		"timestamp":   time.Now().Format(time.RFC3339),
		"provider":    providerName,
		"event":       "error",
		"category":    category,
		"duration_ms": duration.Milliseconds(),
		"error":       err.Error(),
	}

	l.writeLog(logEntry)
}

func (l *FileLoggerImpl) writeLog(entry map[string]interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		slog.Error("Failed to marshal log entry", "error", err)
		return
	}

	file, err := os.OpenFile(l.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		slog.Error("Failed to open log file", "error", err, "path", l.filePath)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if _, err := file.Write(append(data, '\n')); err != nil {
		slog.Error("Failed to write log entry", "error", err)
	}
}
