package openxr

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// Logger returns the logger used by the bindings. It is a no-op logger
// unless SetLogger was called.
func Logger() *zap.Logger {
	return loggerPtr.Load()
}

// SetLogger replaces the bindings' logger. Passing nil restores the silent
// default. Safe to call concurrently with logging.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l.Named("openxr"))
}
