// Package logging configures the logrus logger used by the command.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/phobologic/schemagen/internal/schema"
)

// New returns a logger writing plain text lines to w at the named level
// ("debug", "info", "warn", ...).
func New(w io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	log.AddHook(&hook{})
	return log, nil
}

// hook lifts the parts of a schema error into their own fields.
type hook struct{}

func (h *hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *hook) Fire(entry *logrus.Entry) error {
	v, ok := entry.Data[logrus.ErrorKey]
	if !ok {
		return nil
	}
	err, ok := v.(error)
	if !ok {
		return nil
	}
	e, ok := schema.AsError(err)
	if !ok {
		return nil
	}
	if e.Kind != nil {
		entry.Data["kind"] = e.Kind.Error()
	}
	if e.Path != "" {
		entry.Data["path"] = e.Path
	}
	if e.Definition != "" {
		if _, set := entry.Data["definition"]; !set {
			entry.Data["definition"] = e.Definition
		}
	}
	return nil
}
