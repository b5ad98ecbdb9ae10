package payment

import (
	"github.com/rs/zerolog"
)

// StripeLogger routes stripe-go's leveled logging through zerolog.
type StripeLogger struct {
	log zerolog.Logger
}

// NewStripeLogger wraps logger for use as a stripe.LeveledLoggerInterface.
func NewStripeLogger(logger zerolog.Logger) *StripeLogger {
	return &StripeLogger{log: logger.With().Str("component", "stripe").Logger()}
}

func (l *StripeLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Msgf(format, v...)
}

func (l *StripeLogger) Infof(format string, v ...interface{}) {
	l.log.Debug().Msgf(format, v...) // stripe-go logs every request at info
}

func (l *StripeLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Msgf(format, v...)
}

func (l *StripeLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Msgf(format, v...)
}
