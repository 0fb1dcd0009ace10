package logger

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Level is the minimum severity that gets logged.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var currentLevel atomic.Int32

func init() {
	SetLevelFromString(os.Getenv("LOG_LEVEL"))
}

// SetLevel sets the minimum level that will be emitted.
func SetLevel(l Level) {
	currentLevel.Store(int32(l))
}

// SetLevelFromString maps a config/env level name to a Level.
// Unknown or empty names fall back to info.
func SetLevelFromString(s string) {
	switch strings.ToLower(s) {
	case "debug":
		SetLevel(LevelDebug)
	case "warn", "warning":
		SetLevel(LevelWarn)
	case "error":
		SetLevel(LevelError)
	default:
		SetLevel(LevelInfo)
	}
}

func enabled(l Level) bool {
	return int32(l) >= currentLevel.Load()
}

// Field represents a structured logging field
type Field struct {
	Key   string
	Value interface{}
}

// Info logs informational messages
func Info(format string, args ...interface{}) {
	if enabled(LevelInfo) {
		emit("INFO", format, args...)
	}
}

// Warn logs warning messages
func Warn(format string, args ...interface{}) {
	if enabled(LevelWarn) {
		emit("WARN", format, args...)
	}
}

// Error logs error messages
func Error(format string, args ...interface{}) {
	if enabled(LevelError) {
		emit("ERROR", format, args...)
	}
}

// Debug logs debug messages
func Debug(format string, args ...interface{}) {
	if enabled(LevelDebug) {
		emit("DEBUG", format, args...)
	}
}

func emit(level, format string, args ...interface{}) {
	// A trailing []Field switches the call into structured mode.
	if len(args) > 0 {
		if fields, ok := args[len(args)-1].([]Field); ok {
			logStructured(level, format, fields...)
			return
		}
	}
	log.Printf(level+": "+format, args...)
}

// Structured logging functions
func InfoStructured(msg string, fields ...Field) {
	if enabled(LevelInfo) {
		logStructured("INFO", msg, fields...)
	}
}

func WarnStructured(msg string, fields ...Field) {
	if enabled(LevelWarn) {
		logStructured("WARN", msg, fields...)
	}
}

func ErrorStructured(msg string, fields ...Field) {
	if enabled(LevelError) {
		logStructured("ERROR", msg, fields...)
	}
}

func DebugStructured(msg string, fields ...Field) {
	if enabled(LevelDebug) {
		logStructured("DEBUG", msg, fields...)
	}
}

func logStructured(level, msg string, fields ...Field) {
	if os.Getenv("LOG_FORMAT") == "json" {
		logEntry := map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"level":     level,
			"message":   msg,
		}

		for _, field := range fields {
			logEntry[field.Key] = field.Value
		}

		jsonData, _ := json.Marshal(logEntry)
		log.Println(string(jsonData))
		return
	}

	fieldStr := ""
	if len(fields) > 0 {
		fieldStr = " "
		for i, field := range fields {
			if i > 0 {
				fieldStr += " "
			}
			fieldStr += fmt.Sprintf("%s=%v", field.Key, field.Value)
		}
	}
	log.Printf("%s: %s%s", level, msg, fieldStr)
}

// Helper functions for common field types
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint(key string, value uint) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Err(key string, err error) Field {
	if err == nil {
		return Field{Key: key, Value: nil}
	}
	return Field{Key: key, Value: err.Error()}
}
