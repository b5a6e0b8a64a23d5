package config

import (
	"yt-summary/internal/logger"
)

// InitLogger points the global logger at the configured level and optional rotated file.
func InitLogger(cfg LoggingConfig) {
	if cfg.File == "" {
		logger.Init(cfg.Level, nil)
		return
	}
	logger.Init(cfg.Level, &logger.FileOptions{
		Path:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
	})
}
