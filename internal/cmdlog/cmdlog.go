package cmdlog

import (
	"memepulse/internal/logging"
	"memepulse/internal/metrics"
)

// Run executes one CLI command body, recording the outcome in metrics
// and the log.
func Run(log *logging.Logger, cmd string, f func() error) error {
	metrics.IncCommandRun(cmd)
	err := f()
	if err != nil {
		metrics.IncCommandError(cmd)
		log.Error(cmd+"_error", map[string]any{"error": err.Error()})
	} else {
		log.Info(cmd+"_ok", nil)
	}
	return err
}
