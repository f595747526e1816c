package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a production JSON logger writing only to file with configurable level.
// Levels: "debug", "info", "warn", "error" (case-insensitive).
// If logPath empty → no-op logger.
// Invalid level → info.
func NewLogger(logPath, logLevel string) *zap.SugaredLogger {
	if logPath == "" {
		return zap.NewNop().Sugar()
	}
	return zap.New(FileCore(logPath, Level(logLevel)), zap.AddCaller()).Sugar()
}

// FileCore is a JSON core writing to logPath, rotated at 100 MB.
// Stdout is never used: the stdio transport owns it.
func FileCore(logPath string, level zapcore.LevelEnabler) zapcore.Core {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    100, // MB
		MaxBackups: 5,
	})
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, level)
}

// Level parses logLevel, falling back to info.
func Level(logLevel string) zap.AtomicLevel {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if logLevel == "" {
		return level
	}
	if err := level.UnmarshalText([]byte(strings.ToLower(logLevel))); err != nil {
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return level
}
