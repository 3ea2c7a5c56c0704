package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/livecart/housekeeper/internal/logging"
)

// CronLogger adapts a logging.Logger to cron.Logger.
type CronLogger struct {
	l *logging.Logger
}

var _ cron.Logger = (*CronLogger)(nil)

// NewCronLogger wraps l.
func NewCronLogger(l *logging.Logger) *CronLogger {
	return &CronLogger{l: l}
}

// Info logs cron's routine messages at debug level.
func (c *CronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugf(msg, fields(keysAndValues))
}

// Error logs cron errors, including recovered job panics.
func (c *CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	f := fields(keysAndValues)
	f["error"] = err.Error()
	c.l.Errorf(msg, f)
}

func fields(keysAndValues []interface{}) map[string]any {
	f := make(map[string]any, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = formatValue(keysAndValues[i+1])
	}
	if len(keysAndValues)%2 == 1 {
		f["extra"] = formatValue(keysAndValues[len(keysAndValues)-1])
	}
	return f
}

func formatValue(v any) any {
	switch v.(type) {
	case string, bool, int, int64, float64:
		return v
	default:
		return fmt.Sprint(v)
	}
}
