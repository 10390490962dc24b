// Package classifier maps measured samples to alarm severities using the
// two-stage threshold rules.
package classifier

import "github.com/setevik/hostwatch/internal/metric"

// Classify maps a measured value and its optional limits to a severity.
//
// Rules, in precedence order:
//  1. Either limit absent: OK (info-only metrics are never alarmable).
//  2. current >= hard: HARD_ALARM.
//  3. current >= soft: SOFT_WARNING.
//  4. Otherwise: OK.
//
// Both comparisons are inclusive: a value exactly on a limit triggers that
// limit's severity. Values are not range-checked; negative or >100 inputs
// classify like any other.
func Classify(current float64, soft, hard *float64) metric.Severity {
	if soft == nil || hard == nil {
		return metric.SeverityOK
	}
	switch {
	case current >= *hard:
		return metric.SeverityHardAlarm
	case current >= *soft:
		return metric.SeveritySoftWarning
	default:
		return metric.SeverityOK
	}
}

// ClassifySample pairs a sample with the severity its value classifies to.
func ClassifySample(s metric.Sample) metric.Classification {
	return metric.Classification{
		Sample:   s,
		Severity: Classify(s.Value, s.Soft, s.Hard),
	}
}
