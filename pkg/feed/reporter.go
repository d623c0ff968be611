package feed

import (
	"github.com/sirupsen/logrus"
)

// Reporter receives load failures that were absorbed by a Loader.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(err error)

func (f ReporterFunc) Report(err error) { f(err) }

// LogReporter writes failures to a logrus logger.
type LogReporter struct {
	Log logrus.FieldLogger
}

func (r LogReporter) Report(err error) {
	r.Log.WithError(err).Warn("Could not load posts, keeping the current list")
}
