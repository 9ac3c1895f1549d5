package mimicreq

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging interface mimicreq uses internally. Set a custom
// one with ClientBuilder.SetLogger if you want retry attempts and invalid
// proxy URLs routed somewhere other than the default.
type Logger interface {
	Debugf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

type logrusLogger struct {
	l *logrus.Logger
}

func (l *logrusLogger) Debugf(format string, v ...interface{}) { l.l.Debugf(format, v...) }
func (l *logrusLogger) Warnf(format string, v ...interface{})  { l.l.Warnf(format, v...) }
func (l *logrusLogger) Errorf(format string, v ...interface{}) { l.l.Errorf(format, v...) }

func createDefaultLogger() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{})
	return &logrusLogger{l: l}
}

type disableLogger struct{}

func (disableLogger) Debugf(string, ...interface{}) {}
func (disableLogger) Warnf(string, ...interface{})  {}
func (disableLogger) Errorf(string, ...interface{}) {}
