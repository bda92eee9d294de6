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
	case "OFF", "":
		return LevelOff
	default:
		return LevelInfo
	}
}

var (
	mu           sync.RWMutex
	currentLevel = LevelOff
	logger       *zap.SugaredLogger
	logFile      *os.File
)

// Setup configures the logging system with the specified level and optional
// file path. The terminal belongs to the UI, so logs only ever go to a file.
// If filePath is empty, defaults to ~/.blogscout/blogscout.log.
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
		home, _ := os.UserHomeDir()
		logPath = filepath.Join(home, ".blogscout", "blogscout.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.CallerKey = ""
	encCfg.NameKey = "logger"

	// Level filtering happens in logf so SetLevel can change it later.
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), zapcore.DebugLevel)

	logFile = f
	logger = zap.New(core).Named("blogscout").Sugar()
	return nil
}

// SetLevel changes the current logging level
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
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

// logf writes a log message at the specified level
func logf(level LogLevel, args []interface{}, format string, a ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if level < currentLevel || logger == nil {
		return
	}

	l := logger
	if len(args) > 0 {
		l = l.With(args...)
	}
	switch level {
	case LevelDebug:
		l.Debugf(format, a...)
	case LevelInfo:
		l.Infof(format, a...)
	case LevelWarn:
		l.Warnf(format, a...)
	case LevelError:
		l.Errorf(format, a...)
	}
}

func Debugf(format string, args ...any) {
	logf(LevelDebug, nil, format, args...)
}

func Infof(format string, args ...any) {
	logf(LevelInfo, nil, format, args...)
}

func Warnf(format string, args ...any) {
	logf(LevelWarn, nil, format, args...)
}

func Errorf(format string, args ...any) {
	logf(LevelError, nil, format, args...)
}

// FieldLogger attaches key-value fields to every message.
type FieldLogger struct {
	args []interface{}
}

// WithFields returns a new logger with the specified fields
func WithFields(fields map[string]interface{}) *FieldLogger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return &FieldLogger{args: args}
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	logf(LevelDebug, fl.args, format, args...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	logf(LevelInfo, fl.args, format, args...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	logf(LevelWarn, fl.args, format, args...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	logf(LevelError, fl.args, format, args...)
}
