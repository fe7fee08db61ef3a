package core

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogConfig struct {
	Level       string // debug, info, warn, error
	Format      string // json, console
	EnableColor bool
}

var (
	globalLogger *zap.Logger
	loggerMu     sync.Mutex
)

// DefaultLogConfig reads LOG_LEVEL, LOG_FORMAT, NO_COLOR and LOG_COLOR.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       getEnv("LOG_LEVEL", "info"),
		Format:      getEnv("LOG_FORMAT", "console"),
		EnableColor: shouldEnableColor(),
	}
}

// LogConfigFor merges the site config and the debug toggle over the
// environment defaults.
func LogConfigFor(cfg Config, debug bool) LogConfig {
	lc := DefaultLogConfig()
	if cfg.LogFormat != "" {
		lc.Format = cfg.LogFormat
	}
	switch {
	case cfg.LogLevel != "":
		lc.Level = cfg.LogLevel
	case debug || cfg.DebugLogs:
		lc.Level = "debug"
	}
	return lc
}

func InitLogger(cfg LogConfig) error {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Format == "console" && cfg.EnableColor {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	if cfg.Format == "console" {
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	} else {
		cfg.Format = "json"
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Encoding:          cfg.Format,
		EncoderConfig:     encoderConfig,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: cfg.Level != "debug",
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return err
	}

	SetLogger(logger)
	return nil
}

// SetLogger replaces the global logger. Tests use it to install zaptest loggers.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	globalLogger = l
}

// Log returns the global logger, building a default one on first use.
func Log() *zap.Logger {
	loggerMu.Lock()
	l := globalLogger
	loggerMu.Unlock()
	if l != nil {
		return l
	}

	if err := InitLogger(DefaultLogConfig()); err != nil {
		SetLogger(zap.NewNop())
	}
	return Log()
}

func SyncLogger() {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.ToLower(value)
	}
	return fallback
}

func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// https://no-color.org/
func shouldEnableColor() bool {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	if val := os.Getenv("LOG_COLOR"); val != "" {
		return val == "true" || val == "1"
	}
	return true
}
