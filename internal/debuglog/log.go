// Package debuglog is the process-wide leveled logger. It writes JSON lines
// to a file through zap and is silent until Setup is called with a level
// other than LevelOff.
package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

var (
	mu           sync.RWMutex
	currentLevel = LevelOff
	atomicLevel  = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	logger       *zap.SugaredLogger
	logFile      *os.File
)

// DefaultPath is the log file used when Setup gets no explicit path.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".larder", "larder.log"), nil
}

// Setup configures the logging system with the specified level and optional file path.
// If filePath is empty, defaults to ~/.larder/larder.log.
func Setup(level LogLevel, filePath ...string) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	currentLevel = level
	if level == LevelOff {
		return nil
	}

	var logPath string
	if len(filePath) > 0 && filePath[0] != "" {
		logPath = filePath[0]
	} else {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		logPath = p
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	atomicLevel.SetLevel(level.zapLevel())
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), atomicLevel)

	logFile = f
	logger = zap.New(core).Named("larder").Sugar()
	return nil
}

// SetLevel changes the current logging level. Raising it to LevelOff
// silences an open logger without closing its file.
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
	if level != LevelOff {
		atomicLevel.SetLevel(level.zapLevel())
	}
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// Close flushes and closes the log file if open
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

func logw(level LogLevel, msg string, keysAndValues ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil || currentLevel == LevelOff || level < currentLevel {
		return
	}
	switch level {
	case LevelDebug:
		logger.Debugw(msg, keysAndValues...)
	case LevelInfo:
		logger.Infow(msg, keysAndValues...)
	case LevelWarn:
		logger.Warnw(msg, keysAndValues...)
	default:
		logger.Errorw(msg, keysAndValues...)
	}
}

func Debugf(format string, args ...any) {
	logw(LevelDebug, fmt.Sprintf(format, args...))
}

func Infof(format string, args ...any) {
	logw(LevelInfo, fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...any) {
	logw(LevelWarn, fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...any) {
	logw(LevelError, fmt.Sprintf(format, args...))
}

// FieldLogger attaches structured fields to every message it writes.
type FieldLogger struct {
	kv []any
}

// WithFields returns a new logger with the specified fields
func WithFields(fields map[string]interface{}) *FieldLogger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return &FieldLogger{kv: kv}
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	logw(LevelDebug, fmt.Sprintf(format, args...), fl.kv...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	logw(LevelInfo, fmt.Sprintf(format, args...), fl.kv...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	logw(LevelWarn, fmt.Sprintf(format, args...), fl.kv...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	logw(LevelError, fmt.Sprintf(format, args...), fl.kv...)
}
