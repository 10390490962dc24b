package runner

import (
	"fmt"

	"github.com/setevik/hostwatch/internal/metric"
)

// CollectionError reports that the provider could not sample a metric.
// The metric is skipped and the run continues without it.
type CollectionError struct {
	Metric metric.Name
	Err    error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collecting %s: %v", e.Metric, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// LogWriteError reports that a classified sample could not be appended to
// the monitoring log. Classification and notification proceed regardless.
type LogWriteError struct {
	Metric metric.Name
	Err    error
}

func (e *LogWriteError) Error() string {
	return fmt.Sprintf("logging %s: %v", e.Metric, e.Err)
}

func (e *LogWriteError) Unwrap() error { return e.Err }

// NotifyDispatchError reports that a planned email was not delivered,
// either because the notifier failed or because it is not configured.
// The log lines written earlier in the run stand either way.
type NotifyDispatchError struct {
	Subject string
	Err     error
}

func (e *NotifyDispatchError) Error() string {
	return fmt.Sprintf("dispatching %q: %v", e.Subject, e.Err)
}

func (e *NotifyDispatchError) Unwrap() error { return e.Err }
