package probe

import (
	"testing"
	"time"
)

func TestSessionString(t *testing.T) {
	since := time.Date(2026, 2, 19, 9, 14, 0, 0, time.UTC)

	tests := []struct {
		name string
		s    Session
		want string
	}{
		{
			name: "remote session",
			s:    Session{User: "alice", Host: "10.0.0.5", Since: since},
			want: "alice@10.0.0.5 since 09:14",
		},
		{
			name: "local tty has empty host",
			s:    Session{User: "root", Host: "", Since: since},
			want: "root@ since 09:14",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoinSessions(t *testing.T) {
	morning := time.Date(2026, 2, 19, 9, 14, 0, 0, time.UTC)
	noon := time.Date(2026, 2, 19, 12, 3, 0, 0, time.UTC)

	sessions := []Session{
		{User: "alice", Host: "10.0.0.5", Since: morning},
		{User: "bob", Host: "172.16.0.9", Since: noon},
	}

	want := "alice@10.0.0.5 since 09:14, bob@172.16.0.9 since 12:03"
	if got := JoinSessions(sessions); got != want {
		t.Errorf("JoinSessions() = %q, want %q", got, want)
	}

	if got := JoinSessions(nil); got != "" {
		t.Errorf("JoinSessions(nil) = %q, want empty", got)
	}
}
