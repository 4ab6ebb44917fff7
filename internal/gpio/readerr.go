package gpio

import "log/slog"

// readErrors logs a run of failed hardware reads once when it starts and
// once when it ends, not on every read.
type readErrors struct {
	logger  *slog.Logger
	failing bool
	failed  int // reads failed in the current run
}

// observe records the outcome of one read.
func (r *readErrors) observe(err error) {
	if err != nil {
		r.failed++
		if !r.failing {
			r.failing = true
			r.logger.Warn("gpio read failed, holding last levels", "error", err)
		}
		return
	}
	if r.failing {
		r.logger.Info("gpio reads recovered", "failed_reads", r.failed)
		r.failing = false
		r.failed = 0
	}
}
