package lower

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the logger the conversion engine writes to. The
// driver emits Debug-level events for every applied pattern and every
// rolled-back rewrite attempt, so a development logger here makes a
// stuck or looping conversion easy to trace. Defaults to a no-op
// logger.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the package logger. Call it before Run; the
// first lowering pins whatever logger is set.
func SetLogger(l *zap.Logger) {
	logger = l
}
