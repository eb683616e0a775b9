package smsc

import (
	"fmt"
	"io"
	"strings"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the process logger. Output goes to stderr, or to a
// rotated file when cfg.File is set; LevelFiles adds one file per level.
func NewLogger(cfg LogConfig, debug bool, stderr io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(stderr)

	level := logrus.InfoLevel
	if cfg.Level != "" {
		l, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, &ConfigError{Field: "Log.Level", Message: err.Error()}
		}
		level = l
	}
	if debug && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	if cfg.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		})
	}

	if len(cfg.LevelFiles) > 0 {
		paths := lfshook.PathMap{}
		for name, path := range cfg.LevelFiles {
			l, err := logrus.ParseLevel(strings.ToLower(name))
			if err != nil {
				return nil, &ConfigError{Field: fmt.Sprintf("Log.LevelFiles[%s]", name), Message: err.Error()}
			}
			paths[l] = path
		}
		log.AddHook(lfshook.NewHook(paths, &logrus.TextFormatter{FullTimestamp: true, DisableColors: true}))
	}
	return log, nil
}
