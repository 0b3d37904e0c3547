package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CusTimeEncoder creates a time encoder that adds the prefix and formats the time.
func CusTimeEncoder(config Config) zapcore.TimeEncoder {
	return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(config.Prefix + t.Format(config.TimeFormat))
	}
}

// GetEncoder returns a zapcore.Encoder based on the config format.
func GetEncoder(config Config) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     CusTimeEncoder(config),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	if config.Format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// getZapCores builds the terminal core and, when enabled, one file core per
// level from config.Level up to FatalLevel.
func getZapCores(config Config) []zapcore.Core {
	minLevel := config.TransportLevel()
	cores := make([]zapcore.Core, 0, 8)

	if config.LogInTerminal {
		cores = append(cores, zapcore.NewCore(
			GetEncoder(config),
			zapcore.Lock(zapcore.AddSync(stderr)),
			zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= minLevel }),
		))
	}

	if config.LogToFile {
		for level := minLevel; level <= zapcore.FatalLevel; level++ {
			exact := level
			cores = append(cores, zapcore.NewCore(
				GetEncoder(config),
				zapcore.AddSync(newLevelWriter(config, exact.String())),
				zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l == exact }),
			))
		}
	}

	return cores
}
