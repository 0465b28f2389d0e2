package capability

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the capability package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the capability package's logger. Host-side
// failures (spec §4.3's negative-pointer convention) are logged through
// it before a shim returns -1 to the guest.
func SetLogger(l *zap.Logger) {
	logger = l
}
