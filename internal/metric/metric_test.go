package metric

import (
	"testing"
	"time"
)

func TestSeverityString(t *testing.T) {
	tests := []struct {
		sev  Severity
		name string
	}{
		{SeverityOK, "OK"},
		{SeveritySoftWarning, "SOFT_WARNING"},
		{SeverityHardAlarm, "HARD_ALARM"},
		{Severity(42), "Severity(42)"},
	}

	for _, tt := range tests {
		got := tt.sev.String()
		if got != tt.name {
			t.Errorf("Severity(%d).String() = %q, want %q", int(tt.sev), got, tt.name)
		}
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityOK < SeveritySoftWarning) {
		t.Error("OK should order below SOFT_WARNING")
	}
	if !(SeveritySoftWarning < SeverityHardAlarm) {
		t.Error("SOFT_WARNING should order below HARD_ALARM")
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"OK", SeverityOK, false},
		{"SOFT_WARNING", SeveritySoftWarning, false},
		{"hard_alarm", SeverityHardAlarm, false},
		{"bogus", SeverityOK, true},
	}

	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSeverity(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSeverity(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSeverity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseName(t *testing.T) {
	for _, s := range []string{"disk_usage", "MEMORY_USAGE", "process_count", "user_count"} {
		if _, err := ParseName(s); err != nil {
			t.Errorf("ParseName(%q): %v", s, err)
		}
	}
	if _, err := ParseName("cpu_usage"); err == nil {
		t.Error("ParseName should reject unknown metrics")
	}
}

func TestNameLabel(t *testing.T) {
	tests := []struct {
		name  Name
		label string
	}{
		{DiskUsage, "Disk Usage (%)"},
		{MemoryUsage, "Memory Usage (%)"},
		{ProcessCount, "Running Process Count"},
		{UserCount, "Logged-in Users"},
		{Name("swap_usage"), "swap_usage"},
	}

	for _, tt := range tests {
		got := tt.name.Label()
		if got != tt.label {
			t.Errorf("Name(%q).Label() = %q, want %q", tt.name, got, tt.label)
		}
	}
}

func TestNameAlarmable(t *testing.T) {
	for _, n := range []Name{DiskUsage, MemoryUsage, ProcessCount} {
		if !n.Alarmable() {
			t.Errorf("%s should be alarmable", n)
		}
	}
	if UserCount.Alarmable() {
		t.Error("user_count should never be alarmable")
	}
}

func TestSampleAlarmable(t *testing.T) {
	soft, hard := 80.0, 95.0

	s := Sample{Metric: DiskUsage, Soft: &soft, Hard: &hard}
	if !s.Alarmable() {
		t.Error("sample with both limits should be alarmable")
	}

	s = Sample{Metric: UserCount}
	if s.Alarmable() {
		t.Error("sample without limits should not be alarmable")
	}

	s = Sample{Metric: DiskUsage, Soft: &soft}
	if s.Alarmable() {
		t.Error("sample with only a soft limit should not be alarmable")
	}
}

func TestSampleInfo(t *testing.T) {
	s := Sample{Label: "Disk Usage (%)", Context: "/data"}
	if got, want := s.Info(), "Disk Usage (%) (/data)"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}

	s = Sample{Label: "Memory Usage (%)"}
	if got, want := s.Info(), "Memory Usage (%)"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
}

func TestNewRunResult(t *testing.T) {
	started := time.Date(2026, 2, 19, 14, 0, 0, 0, time.UTC)
	rr := NewRunResult("myhost", started)

	if rr.ID == "" {
		t.Error("run ID should not be empty")
	}
	if rr.Host != "myhost" {
		t.Errorf("Host = %q, want %q", rr.Host, "myhost")
	}
	if rr.Started != started {
		t.Errorf("Started = %v, want %v", rr.Started, started)
	}

	rr2 := NewRunResult("myhost", started)
	if rr.ID == rr2.ID {
		t.Error("two runs should have different IDs")
	}
}

func TestRunResultWorstAndCounts(t *testing.T) {
	rr := NewRunResult("h", time.Now())
	if rr.Worst() != SeverityOK {
		t.Errorf("empty run worst = %v, want OK", rr.Worst())
	}

	rr.Add(Classification{Sample: Sample{Metric: ProcessCount}, Severity: SeverityOK})
	rr.Add(Classification{Sample: Sample{Metric: MemoryUsage}, Severity: SeveritySoftWarning})

	if rr.Worst() != SeveritySoftWarning {
		t.Errorf("worst = %v, want SOFT_WARNING", rr.Worst())
	}

	rr.Add(Classification{Sample: Sample{Metric: DiskUsage}, Severity: SeverityHardAlarm})

	if rr.Worst() != SeverityHardAlarm {
		t.Errorf("worst = %v, want HARD_ALARM", rr.Worst())
	}

	hard, soft, ok := rr.Counts()
	if hard != 1 || soft != 1 || ok != 1 {
		t.Errorf("Counts() = %d/%d/%d, want 1/1/1", hard, soft, ok)
	}
}
