package logging

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Format represents the logging output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Logger wraps the standard logger with format options
type Logger struct {
	format Format
	writer io.Writer
	debug  bool
	mu     sync.Mutex
}

// Global logger instance
var defaultLogger = &Logger{
	format: FormatText,
	writer: os.Stderr,
}

// SetFormat sets the logging format globally
func SetFormat(format Format) {
	defaultLogger.mu.Lock()
	defaultLogger.format = format
	defaultLogger.mu.Unlock()
}

// SetWriter sets the output writer
func SetWriter(w io.Writer) {
	defaultLogger.mu.Lock()
	defaultLogger.writer = w
	defaultLogger.mu.Unlock()
	log.SetOutput(w)
}

// SetDebug enables or disables debug-level messages
func SetDebug(enabled bool) {
	defaultLogger.mu.Lock()
	defaultLogger.debug = enabled
	defaultLogger.mu.Unlock()
}

// LogEntry represents a structured log entry for JSON output
type LogEntry struct {
	Timestamp string      `json:"timestamp"`
	Level     string      `json:"level"`
	Component string      `json:"component"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
}

// PhaseLogEntry represents the outcome of one test phase
type PhaseLogEntry struct {
	Timestamp string  `json:"timestamp"`
	Level     string  `json:"level"`
	Component string  `json:"component"`
	Phase     string  `json:"phase"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Measured  bool    `json:"measured"`
}

// Info logs an info message
func Info(component, message string, data interface{}) {
	write("info", component, message, data)
}

// Debug logs a message only when debug output is enabled
func Debug(component, message string, data interface{}) {
	defaultLogger.mu.Lock()
	enabled := defaultLogger.debug
	defaultLogger.mu.Unlock()
	if !enabled {
		return
	}
	write("debug", component, message, data)
}

// PhaseResult logs the final value of a test phase
func PhaseResult(phase string, value float64, unit string, measured bool) {
	if GetFormat() == FormatJSON {
		emit(PhaseLogEntry{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Level:     "info",
			Component: "Runner",
			Phase:     phase,
			Value:     value,
			Unit:      unit,
			Measured:  measured,
		})
		return
	}

	if measured {
		log.Printf("[Runner] %s: %.1f %s", phase, value, unit)
	} else {
		log.Printf("[Runner] %s: %.1f %s (simulated)", phase, value, unit)
	}
}

// Error logs an error message
func Error(component, message string, err error) {
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}

	if GetFormat() == FormatJSON {
		emit(LogEntry{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Level:     "error",
			Component: component,
			Message:   message,
			Data:      map[string]string{"error": errStr},
		})
		return
	}

	if err != nil {
		log.Printf("[%s] %s: %v", component, message, err)
	} else {
		log.Printf("[%s] %s", component, message)
	}
}

// GetFormat returns the current logging format
func GetFormat() Format {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	return defaultLogger.format
}

func write(level, component, message string, data interface{}) {
	if GetFormat() == FormatJSON {
		emit(LogEntry{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Level:     level,
			Component: component,
			Message:   message,
			Data:      data,
		})
		return
	}

	if data != nil {
		log.Printf("[%s] %s %v", component, message, data)
	} else {
		log.Printf("[%s] %s", component, message)
	}
}

func emit(entry interface{}) {
	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		return
	}
	defaultLogger.mu.Lock()
	defaultLogger.writer.Write(append(jsonBytes, '\n'))
	defaultLogger.mu.Unlock()
}
