// Package format provides shared formatting utilities.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value renders a measured value or threshold the way it appears in log
// lines and mail: minimal digits, no rounding, and always at least one
// fractional digit so values and their limits read alike as measurements.
// 93.4 renders as "93.4", 80 as "80.0", 104 as "104.0".
func Value(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Limit renders an optional threshold, using "-" when absent.
func Limit(p *float64) string {
	if p == nil {
		return "-"
	}
	return Value(*p)
}

const (
	kb = 1024
	mb = kb * 1024
	gb = mb * 1024
)

// Bytes formats a byte count as a human-readable string (e.g., "3.0 GB", "512.0 MB").
func Bytes(b uint64) string {
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
