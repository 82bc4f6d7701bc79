package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = []string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelFatal {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a case-insensitive level name ("debug", "info", ...) to a
// Level. Unknown names return LevelInfo and false.
func ParseLevel(name string) (Level, bool) {
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(name)); err != nil {
		return LevelInfo, false
	}
	return fromZap(zl), true
}

func (l Level) zap() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func fromZap(zl zapcore.Level) Level {
	switch {
	case zl <= zapcore.DebugLevel:
		return LevelDebug
	case zl == zapcore.InfoLevel:
		return LevelInfo
	case zl == zapcore.WarnLevel:
		return LevelWarn
	case zl == zapcore.ErrorLevel:
		return LevelError
	default:
		return LevelFatal
	}
}

type Logger struct {
	mu    sync.RWMutex
	level zap.AtomicLevel
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

var defaultLogger *Logger

func init() {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	defaultLogger = &Logger{level: level}
	defaultLogger.setBase(newConsole(level, false))
}

// newConsole builds the stderr logger used until SetLogger replaces it.
func newConsole(level zap.AtomicLevel, json bool) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	var enc zapcore.Encoder
	if json {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)
	return zap.New(core).Named("symvibe")
}

func (l *Logger) setBase(base *zap.Logger) {
	l.mu.Lock()
	l.base = base
	l.sugar = base.Sugar()
	l.mu.Unlock()
}

func (l *Logger) sugared() *zap.SugaredLogger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sugar
}

// SetLevel changes the minimum level of the default stderr logger.
func SetLevel(level Level) {
	defaultLogger.level.SetLevel(level.zap())
}

// GetLevel returns the minimum level of the default stderr logger.
func GetLevel() Level {
	return fromZap(defaultLogger.level.Level())
}

// SetFormat switches the default stderr logger between console and JSON
// encoding, keeping the current level.
func SetFormat(json bool) {
	defaultLogger.setBase(newConsole(defaultLogger.level, json))
}

// SetLogger replaces the backend entirely. Level changes made with SetLevel
// no longer apply; the caller's logger decides what is enabled.
func SetLogger(base *zap.Logger) {
	if base == nil {
		base = zap.NewNop()
	}
	defaultLogger.setBase(base)
}

// L returns the current backend for structured logging with fields.
func L() *zap.Logger {
	defaultLogger.mu.RLock()
	defer defaultLogger.mu.RUnlock()
	return defaultLogger.base
}

// Sync flushes buffered entries.
func Sync() error {
	return L().Sync()
}

func Debug(format string, args ...interface{}) {
	defaultLogger.sugared().Debugf(format, args...)
}

func Info(format string, args ...interface{}) {
	defaultLogger.sugared().Infof(format, args...)
}

func Warn(format string, args ...interface{}) {
	defaultLogger.sugared().Warnf(format, args...)
}

func Error(format string, args ...interface{}) {
	defaultLogger.sugared().Errorf(format, args...)
}

func Fatal(format string, args ...interface{}) {
	defaultLogger.sugared().Fatalf(format, args...)
}
