package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

// Init configures the global logger. Call once from main before any
// other package logs.
func Init(environment string) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	log, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		log = zap.NewNop()
	}

	sugar = log.Sugar()
}

func get() *zap.SugaredLogger {
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	return sugar
}

func Info(msg string, args ...interface{}) {
	get().Infow(msg, normalize(args)...)
}

func Warn(msg string, args ...interface{}) {
	get().Warnw(msg, normalize(args)...)
}

func Error(msg string, args ...interface{}) {
	get().Errorw(msg, normalize(args)...)
}

func Fatal(msg string, args ...interface{}) {
	get().Fatalw(msg, normalize(args)...)
}

// normalize lets call-sites pass either key-value pairs or a trailing
// bare error without tripping zap's odd-argument warning.
func normalize(args []interface{}) []interface{} {
	if len(args)%2 == 0 {
		return args
	}

	last := args[len(args)-1]
	out := make([]interface{}, 0, len(args)+1)
	out = append(out, args[:len(args)-1]...)

	if err, ok := last.(error); ok {
		return append(out, "error", err)
	}
	return append(out, "detail", last)
}
