package config

import (
	"fmt"

	"github.com/rgehrsitz/paysplit/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the zap logger described by the logging configuration.
// The returned SugaredLogger satisfies calculation.Logger.
func NewLogger(logging domain.LoggingConfig) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logging.Level, err)
	}

	config := zap.NewProductionConfig()
	if logging.Development {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Sugar(), nil
}
