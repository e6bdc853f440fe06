package config

import (
    "os"
    "strings"

    "github.com/sirupsen/logrus"
)

// NewLogger builds the process logger: text output in dev, JSON elsewhere
// unless LOG_FORMAT says otherwise.  Unknown levels fall back to info.
func NewLogger(cfg Config) *logrus.Logger {
    log := logrus.New()
    log.SetOutput(os.Stdout)

    format := strings.ToLower(cfg.LogFormat)
    if format == "" {
        format = "json"
        if cfg.IsDev() {
            format = "text"
        }
    }
    if format == "json" {
        log.SetFormatter(&logrus.JSONFormatter{})
    } else {
        log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
    }

    lvl, err := logrus.ParseLevel(cfg.LogLevel)
    if err != nil {
        lvl = logrus.InfoLevel
    }
    log.SetLevel(lvl)
    return log
}
