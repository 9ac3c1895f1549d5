package mimicreq

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newBufferedLogger(buf *bytes.Buffer) Logger {
	l := logrus.New()
	l.SetOutput(buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &logrusLogger{l: l}
}

func TestLoggerLevels(t *testing.T) {
	buf := new(bytes.Buffer)
	l := newBufferedLogger(buf)

	l.Errorf("boom: %s", "bad proxy url")
	assert.Contains(t, buf.String(), "level=error")
	assert.Contains(t, buf.String(), "boom: bad proxy url")

	buf.Reset()
	l.Warnf("retrying request")
	assert.Contains(t, buf.String(), "level=warning")

	buf.Reset()
	l.Debugf("dialing %s", "example.com:443")
	assert.Contains(t, buf.String(), "level=debug")
}

func TestDisableLoggerIsSilent(t *testing.T) {
	var l Logger = disableLogger{}
	assert.NotPanics(t, func() {
		l.Debugf("x")
		l.Warnf("x")
		l.Errorf("x")
	})
}
