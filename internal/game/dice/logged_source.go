package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level so AI
// decisions can be audited from the logs.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a LoggedSource drawing from src.
//
// Precondition: src must be non-nil. A nil logger disables logging.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the result.
//
// Precondition: n > 0.
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("random int",
		zap.Int("n", n),
		zap.Int("value", v),
	)
	return v
}

// Float64 draws from the wrapped source and logs the result.
func (l *LoggedSource) Float64() float64 {
	v := l.src.Float64()
	l.logger.Debug("random float", zap.Float64("value", v))
	return v
}
