// Package logger configures the global logrus logger.
package logger

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-tagger/internal/config"
)

// Init initializes the global logger from the log configuration.
func Init(cfg config.LogConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("invalid log level %q, defaulting to info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
}
