// Package report builds and dispatches email notifications for check runs.
package report

import (
	"fmt"
	"strings"

	"github.com/setevik/hostwatch/internal/format"
	"github.com/setevik/hostwatch/internal/metric"
)

const timeLayout = "2006-01-02 15:04:05"

// Mode selects how a run's classifications turn into emails.
type Mode int

const (
	// ModePerMetric dispatches one standalone email per HARD_ALARM
	// classification. Soft warnings never email on their own.
	ModePerMetric Mode = iota
	// ModeOneEmail dispatches a single summary covering the whole run,
	// sent only when at least one classification reached SOFT_WARNING.
	ModeOneEmail
)

func (m Mode) String() string {
	switch m {
	case ModePerMetric:
		return "per_metric"
	case ModeOneEmail:
		return "one_email"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a config or flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "per_metric":
		return ModePerMetric, nil
	case "one_email":
		return ModeOneEmail, nil
	default:
		return ModePerMetric, fmt.Errorf("unknown mail mode %q (use per_metric or one_email)", s)
	}
}

// Message is one email ready for dispatch.
type Message struct {
	Subject string
	Body    string
}

// severityEmoji maps severities to the leading emoji in subjects and
// summary bullets.
var severityEmoji = map[metric.Severity]string{
	metric.SeverityOK:          "\U0001f7e2", // green circle
	metric.SeveritySoftWarning: "\U0001f7e0", // orange circle
	metric.SeverityHardAlarm:   "\U0001f534", // red circle
}

func emoji(sev metric.Severity) string {
	if e, ok := severityEmoji[sev]; ok {
		return e
	}
	return "❗" // exclamation mark
}

// kvLine pads the key so the colons of a body block line up.
func kvLine(key, value string) string {
	return fmt.Sprintf("%-7s : %s", key, value)
}

// BuildSingle renders one classification as a standalone email. The runner
// only calls it for HARD_ALARM results in per-metric mode, but it renders
// any severity so content can be previewed and tested.
func BuildSingle(c metric.Classification) Message {
	s := c.Sample

	subject := fmt.Sprintf("%s %s: %s | current=%s (soft=%s, hard=%s) on %s",
		emoji(c.Severity), c.Severity, s.Info(),
		format.Value(s.Value), format.Limit(s.Soft), format.Limit(s.Hard), s.Host)

	lines := []string{
		kvLine("Machine", s.Host),
		kvLine("Time", s.Time.Format(timeLayout)),
		kvLine("Level", c.Severity.String()),
		kvLine("Metric", s.Info()),
		kvLine("Current", format.Value(s.Value)),
		kvLine("Soft", format.Limit(s.Soft)),
		kvLine("Hard", format.Limit(s.Hard)),
	}

	return Message{Subject: subject, Body: strings.Join(lines, "\n")}
}

// BuildSummary renders a whole run as one aggregated email. The subject
// carries the worst severity and the per-level counts; the body lists every
// classification in run order, one bullet per line.
func BuildSummary(rr *metric.RunResult) Message {
	hard, soft, ok := rr.Counts()

	subject := fmt.Sprintf("%s Monitoring summary on %s — HARD=%d, SOFT=%d, OK=%d",
		emoji(rr.Worst()), rr.Host, hard, soft, ok)

	lines := []string{
		kvLine("Machine", rr.Host),
		kvLine("Time", rr.Started.Format(timeLayout)),
		"",
	}
	for _, c := range rr.Classifications {
		s := c.Sample
		lines = append(lines, fmt.Sprintf("%s %s: current=%s (soft=%s, hard=%s) — %s",
			emoji(c.Severity), s.Info(),
			format.Value(s.Value), format.Limit(s.Soft), format.Limit(s.Hard),
			c.Severity))
	}

	return Message{Subject: subject, Body: strings.Join(lines, "\n")}
}

// Plan derives the messages a finished run should dispatch under the given
// mode. Per-metric mode plans one message per HARD_ALARM in run order.
// One-email mode plans at most one summary, present only when the worst
// severity reached SOFT_WARNING; the summary then covers every
// classification regardless of severity.
func Plan(rr *metric.RunResult, mode Mode) []Message {
	if mode == ModeOneEmail {
		if rr.Worst() < metric.SeveritySoftWarning {
			return nil
		}
		return []Message{BuildSummary(rr)}
	}

	var msgs []Message
	for _, c := range rr.Classifications {
		if c.Severity == metric.SeverityHardAlarm {
			msgs = append(msgs, BuildSingle(c))
		}
	}
	return msgs
}
