// Package logging configures the shared logrus logger for Perch services.
//
// Usage:
//
//	log := logging.New("player")
//	log.WithField("content_id", id).Info("track uploaded")
//
// Output is JSON in production and colored text when PERCH_ENV=development.
// Level comes from LOG_LEVEL ("debug", "info", "warn", "error"; default info).
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a configured *logrus.Logger with a constant service field.
func New(service string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if os.Getenv("PERCH_ENV") == "development" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	}

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	log.AddHook(&serviceHook{service: service})
	return log
}

// serviceHook stamps every entry with the service name.
type serviceHook struct {
	service string
}

func (h *serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *serviceHook) Fire(e *logrus.Entry) error {
	e.Data["service"] = h.service
	return nil
}
