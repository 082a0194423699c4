package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Level = logrus.Level

const (
	PanicLevel = logrus.PanicLevel
	FatalLevel = logrus.FatalLevel
	ErrorLevel = logrus.ErrorLevel
	WarnLevel  = logrus.WarnLevel
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
)

var disabled bool

func init() {
	logrus.SetLevel(logrus.DebugLevel)
}

// Disable turns off all logging, including warnings and errors.
func Disable() {
	disabled = true
	logrus.SetOutput(io.Discard)
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	disabled = false
	logrus.SetOutput(w)
}

// A LogContext adds fields to every log entry. This is used to report
// emulation state (e.g elapsed machine cycles) alongside messages.
type LogContext interface {
	AddLogContext(entry *EntryZ)
}

var contexts []LogContext

// AddContext registers a context that is consulted for each log entry.
func AddContext(ctx LogContext) {
	contexts = append(contexts, ctx)
}

// RemoveContext unregisters a context previously added with AddContext.
func RemoveContext(ctx LogContext) {
	for i, c := range contexts {
		if c == ctx {
			contexts = append(contexts[:i], contexts[i+1:]...)
			return
		}
	}
}
