// Package logging builds the process-wide zap.Logger, the way
// noah-isme-sma-adp-api/pkg/logger.New does for its API server: production
// vs. development presets, JSON vs. console encoding, and a level parsed
// from config rather than hardcoded.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"timetable-UDP/internal/config"
)

// New builds a *zap.Logger from the Log* knobs in cfg.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.Encoding = "console"
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.Encoding = "json"
	}

	if cfg.LogLevel != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}

// Nop returns a logger that discards everything, for tests and library
// callers that don't want to wire a logger through.
func Nop() *zap.Logger {
	return zap.NewNop()
}
