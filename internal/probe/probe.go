// Package probe reads host metrics through gopsutil.
package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Session is one interactive login session on the host.
type Session struct {
	User  string
	Host  string
	Since time.Time
}

// String renders the session as it appears in log context,
// e.g. "alice@10.0.0.5 since 09:14".
func (s Session) String() string {
	return fmt.Sprintf("%s@%s since %s", s.User, s.Host, s.Since.Format("15:04"))
}

// JoinSessions renders a session list as one comma-separated context string.
func JoinSessions(sessions []Session) string {
	parts := make([]string, len(sessions))
	for i, s := range sessions {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

// Provider answers the metric queries a check run needs. The production
// implementation is System; tests substitute fakes.
type Provider interface {
	DiskUsage(ctx context.Context, path string) (float64, error)
	MemoryUsage(ctx context.Context) (float64, error)
	ProcessCount(ctx context.Context) (int, error)
	LoggedInUsers(ctx context.Context) ([]Session, error)
}

// System reads metrics from the local host.
type System struct{}

var _ Provider = System{}

// DiskUsage returns the used percentage of the filesystem mounted at path.
func (System) DiskUsage(ctx context.Context, path string) (float64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("reading disk usage for %s: %w", path, err)
	}
	return usage.UsedPercent, nil
}

// MemoryUsage returns the used percentage of physical memory.
func (System) MemoryUsage(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading virtual memory: %w", err)
	}
	return vm.UsedPercent, nil
}

// ProcessCount returns the number of running processes.
func (System) ProcessCount(ctx context.Context) (int, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing processes: %w", err)
	}
	return len(pids), nil
}

// LoggedInUsers returns the active login sessions.
func (System) LoggedInUsers(ctx context.Context) ([]Session, error) {
	users, err := host.UsersWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing login sessions: %w", err)
	}
	sessions := make([]Session, 0, len(users))
	for _, u := range users {
		sessions = append(sessions, Session{
			User:  u.User,
			Host:  u.Host,
			Since: time.Unix(int64(u.Started), 0),
		})
	}
	return sessions, nil
}

// DiskDetail is the expanded disk view for the status command.
type DiskDetail struct {
	Path        string
	Total       uint64
	Used        uint64
	UsedPercent float64
}

// MemoryDetail is the expanded memory view for the status command.
type MemoryDetail struct {
	Total       uint64
	Used        uint64
	UsedPercent float64
}

// DiskDetail reads the full usage stats for the filesystem at path.
func (System) DiskDetail(ctx context.Context, path string) (DiskDetail, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return DiskDetail{}, fmt.Errorf("reading disk usage for %s: %w", path, err)
	}
	return DiskDetail{
		Path:        path,
		Total:       usage.Total,
		Used:        usage.Used,
		UsedPercent: usage.UsedPercent,
	}, nil
}

// MemoryDetail reads the full physical memory stats.
func (System) MemoryDetail(ctx context.Context) (MemoryDetail, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryDetail{}, fmt.Errorf("reading virtual memory: %w", err)
	}
	return MemoryDetail{
		Total:       vm.Total,
		Used:        vm.Used,
		UsedPercent: vm.UsedPercent,
	}, nil
}
