// Package metric defines the core data model for hostwatch checks.
package metric

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Name identifies a measurable host metric.
type Name string

const (
	DiskUsage    Name = "disk_usage"
	MemoryUsage  Name = "memory_usage"
	ProcessCount Name = "process_count"
	UserCount    Name = "user_count"
)

// AllNames lists every known metric in the default evaluation order.
func AllNames() []Name {
	return []Name{DiskUsage, MemoryUsage, ProcessCount, UserCount}
}

// ParseName validates a metric name given on the command line.
func ParseName(s string) (Name, error) {
	switch n := Name(strings.ToLower(s)); n {
	case DiskUsage, MemoryUsage, ProcessCount, UserCount:
		return n, nil
	default:
		return "", fmt.Errorf("unknown metric %q (use disk_usage, memory_usage, process_count or user_count)", s)
	}
}

// Label returns the display label used in log lines and notifications.
func (n Name) Label() string {
	switch n {
	case DiskUsage:
		return "Disk Usage (%)"
	case MemoryUsage:
		return "Memory Usage (%)"
	case ProcessCount:
		return "Running Process Count"
	case UserCount:
		return "Logged-in Users"
	default:
		return string(n)
	}
}

// Alarmable reports whether limits can apply to this metric at all.
// user_count is informational: its samples never carry limits, whatever
// the configuration or the request says.
func (n Name) Alarmable() bool {
	return n != UserCount
}

// Severity classifies how far a sample has crossed its limits. The declared
// order is the severity order: the worst severity in a run is the maximum.
type Severity int

const (
	SeverityOK Severity = iota
	SeveritySoftWarning
	SeverityHardAlarm
)

// String returns the canonical severity name as it appears in log lines
// and mail subjects.
func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "OK"
	case SeveritySoftWarning:
		return "SOFT_WARNING"
	case SeverityHardAlarm:
		return "HARD_ALARM"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity converts a severity name back to its value. Used when
// loading recorded runs and for CLI filters; case-insensitive.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(s) {
	case "OK":
		return SeverityOK, nil
	case "SOFT_WARNING":
		return SeveritySoftWarning, nil
	case "HARD_ALARM":
		return SeverityHardAlarm, nil
	default:
		return SeverityOK, fmt.Errorf("unknown severity %q", s)
	}
}

// Sample is one measured metric value with its thresholds and context.
// Samples are constructed once per check and never mutated.
type Sample struct {
	Metric  Name
	Label   string
	Context string // optional detail, e.g. the disk path or user sessions
	Value   float64
	Soft    *float64 // nil when the metric has no limits
	Hard    *float64
	Host    string
	Time    time.Time
}

// Alarmable reports whether the sample carries both limits and can
// therefore reach SOFT_WARNING or HARD_ALARM.
func (s Sample) Alarmable() bool {
	return s.Soft != nil && s.Hard != nil
}

// Info renders the label with its optional context, the form shown in log
// lines and mail bodies, e.g. "Disk Usage (%) (/)".
func (s Sample) Info() string {
	if s.Context == "" {
		return s.Label
	}
	return s.Label + " (" + s.Context + ")"
}

// Classification pairs a sample with the severity assigned to it.
type Classification struct {
	Sample   Sample
	Severity Severity
}

// Request describes one requested check: which metric to sample and which
// limits apply. Nil limits fall back to the configured defaults for that
// metric; user_count never carries limits regardless.
type Request struct {
	Metric Name
	Soft   *float64
	Hard   *float64
	Path   string // disk path for disk_usage; ignored otherwise
}

// RunResult is the ordered outcome of one check invocation. Classifications
// appear in evaluation order and cover only metrics that were collected
// successfully; everything that went wrong on the way is in Problems.
type RunResult struct {
	ID              string
	Host            string
	Started         time.Time
	Classifications []Classification
	Problems        []error
}

// NewRunResult creates an empty RunResult with a generated run ID.
func NewRunResult(host string, started time.Time) *RunResult {
	return &RunResult{
		ID:      uuid.NewString(),
		Host:    host,
		Started: started,
	}
}

// Add appends a classification in evaluation order.
func (r *RunResult) Add(c Classification) {
	r.Classifications = append(r.Classifications, c)
}

// AddProblem records a non-fatal failure encountered during the run.
func (r *RunResult) AddProblem(err error) {
	r.Problems = append(r.Problems, err)
}

// Worst returns the highest severity present, or SeverityOK for an empty run.
func (r *RunResult) Worst() Severity {
	worst := SeverityOK
	for _, c := range r.Classifications {
		if c.Severity > worst {
			worst = c.Severity
		}
	}
	return worst
}

// Counts returns how many classifications landed on each severity.
func (r *RunResult) Counts() (hard, soft, ok int) {
	for _, c := range r.Classifications {
		switch c.Severity {
		case SeverityHardAlarm:
			hard++
		case SeveritySoftWarning:
			soft++
		default:
			ok++
		}
	}
	return hard, soft, ok
}
