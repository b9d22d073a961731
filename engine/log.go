package engine

import (
	"io"

	"github.com/sirupsen/logrus"
)

var discardLogger = func() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()
