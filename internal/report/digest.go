package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/setevik/hostwatch/internal/format"
	"github.com/setevik/hostwatch/internal/metric"
)

// DigestSummary holds aggregated classification counts for a digest period.
type DigestSummary struct {
	Host  string
	Since time.Time
	Until time.Time

	HardAlarms    int
	HardBreakdown map[string]int // metric info -> count
	SoftWarnings  int
	SoftBreakdown map[string]int
	OKChecks      int
	Peaks         map[string]float64 // metric info -> highest value seen
}

// BuildDigest aggregates recorded classifications into a DigestSummary.
func BuildDigest(host string, cs []metric.Classification, since, until time.Time) *DigestSummary {
	d := &DigestSummary{
		Host:          host,
		Since:         since,
		Until:         until,
		HardBreakdown: make(map[string]int),
		SoftBreakdown: make(map[string]int),
		Peaks:         make(map[string]float64),
	}

	for _, c := range cs {
		info := c.Sample.Info()
		switch c.Severity {
		case metric.SeverityHardAlarm:
			d.HardAlarms++
			d.HardBreakdown[info]++
		case metric.SeveritySoftWarning:
			d.SoftWarnings++
			d.SoftBreakdown[info]++
		default:
			d.OKChecks++
		}

		if peak, ok := d.Peaks[info]; !ok || c.Sample.Value > peak {
			d.Peaks[info] = c.Sample.Value
		}
	}

	return d
}

// FormatDigest formats a DigestSummary as human-readable text for stdout.
func FormatDigest(d *DigestSummary) string {
	var b strings.Builder

	dateRange := fmt.Sprintf("%s - %s",
		d.Since.Local().Format("Jan 02"),
		d.Until.Local().Format("Jan 02"))

	fmt.Fprintf(&b, "=== %s ===\n", d.Host)
	fmt.Fprintf(&b, "Period: %s\n\n", dateRange)

	fmt.Fprintf(&b, "Hard Alarms:   %d", d.HardAlarms)
	if d.HardAlarms > 0 {
		fmt.Fprintf(&b, " (%s)", formatBreakdown(d.HardBreakdown))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Soft Warnings: %d", d.SoftWarnings)
	if d.SoftWarnings > 0 {
		fmt.Fprintf(&b, " (%s)", formatBreakdown(d.SoftBreakdown))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "OK Checks:     %d\n", d.OKChecks)

	if len(d.Peaks) > 0 {
		b.WriteString("\nPeak Values:\n")
		infos := make([]string, 0, len(d.Peaks))
		for info := range d.Peaks {
			infos = append(infos, info)
		}
		sort.Strings(infos)
		for _, info := range infos {
			fmt.Fprintf(&b, "  %s: %s\n", info, format.Value(d.Peaks[info]))
		}
	}

	return b.String()
}

// formatBreakdown turns a map[string]int into "foo ×2, bar ×1" sorted by
// count descending, names ascending on ties.
func formatBreakdown(m map[string]int) string {
	type entry struct {
		name  string
		count int
	}

	entries := make([]entry, 0, len(m))
	for name, count := range m {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s ×%d", e.name, e.count)
	}
	return strings.Join(parts, ", ")
}
