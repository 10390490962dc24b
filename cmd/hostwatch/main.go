// hostwatch samples host health metrics (disk usage, memory usage, process
// count, logged-in users), classifies each against soft/hard limits,
// appends canonical lines to the monitoring log, and emails alarms via
// Mailjet, either per metric or as one aggregated summary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/setevik/hostwatch/internal/alarmlog"
	"github.com/setevik/hostwatch/internal/classifier"
	"github.com/setevik/hostwatch/internal/config"
	"github.com/setevik/hostwatch/internal/format"
	"github.com/setevik/hostwatch/internal/history"
	"github.com/setevik/hostwatch/internal/metric"
	"github.com/setevik/hostwatch/internal/probe"
	"github.com/setevik/hostwatch/internal/report"
	"github.com/setevik/hostwatch/internal/runner"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "check":
			runCheck(os.Args[2:])
			return
		case "status":
			runStatus(os.Args[2:])
			return
		case "history":
			runHistory(os.Args[2:])
			return
		case "digest":
			runDigest(os.Args[2:])
			return
		case "test-mail":
			runTestMail(os.Args[2:])
			return
		case "version":
			fmt.Println("hostwatch", version)
			return
		}
	}

	// Default: run a check.
	runCheck(os.Args[1:])
}

// runCheck performs one check run over the requested metrics (all four when
// none are named). Exit codes: 0 = all OK or soft warnings only, 1 = fatal
// error, 2 = at least one hard alarm.
func runCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	oneEmail := fs.Bool("one-email", false, "send one aggregated summary email for the run")
	perMetric := fs.Bool("per-metric", false, "send one email per hard alarm")
	softLimit := fs.Float64("soft", 0, "override the soft limit (single metric only)")
	hardLimit := fs.Float64("hard", 0, "override the hard limit (single metric only)")
	diskPath := fs.String("path", "", "disk path for disk_usage")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Parse(args)

	if *showVersion {
		fmt.Println("hostwatch", version)
		os.Exit(0)
	}

	var softSet, hardSet bool
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "soft":
			softSet = true
		case "hard":
			hardSet = true
		}
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Log.Level)

	names := metric.AllNames()
	if fs.NArg() > 0 {
		names = names[:0]
		for _, arg := range fs.Args() {
			n, err := metric.ParseName(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			names = append(names, n)
		}
	}

	if (softSet || hardSet) && len(names) != 1 {
		fmt.Fprintln(os.Stderr, "error: -soft and -hard overrides apply to a single metric")
		os.Exit(1)
	}

	requests := make([]metric.Request, len(names))
	for i, n := range names {
		req := metric.Request{Metric: n, Path: *diskPath}
		if softSet {
			req.Soft = softLimit
		}
		if hardSet {
			req.Hard = hardLimit
		}
		requests[i] = req
	}

	mode, err := report.ParseMode(cfg.Mail.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *oneEmail && *perMetric {
		fmt.Fprintln(os.Stderr, "error: -one-email and -per-metric are mutually exclusive")
		os.Exit(1)
	}
	if *oneEmail {
		mode = report.ModeOneEmail
	}
	if *perMetric {
		mode = report.ModePerMetric
	}

	slog.Info("hostwatch starting",
		"version", version,
		"instance", cfg.Instance.ID,
		"log_file", cfg.Log.File,
	)

	sink := alarmlog.NewFile(cfg.Log.File)
	notifier := report.NewMailjet(cfg)

	var recorder runner.Recorder
	if cfg.History.Enabled {
		db, err := history.Open(cfg.HistoryPath())
		if err != nil {
			slog.Warn("history disabled for this run", "error", err)
		} else {
			defer db.Close()
			if cfg.History.Retention.Duration > 0 {
				purged, err := db.Purge(cfg.History.Retention.Duration)
				if err != nil {
					slog.Warn("failed to purge old runs", "error", err)
				} else if purged > 0 {
					slog.Info("purged old runs", "count", purged, "retention", cfg.History.Retention.Duration)
				}
			}
			recorder = db
		}
	}

	r := runner.New(cfg, probe.System{}, sink, notifier, recorder)
	rr, err := r.Run(context.Background(), requests, mode)
	if err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}

	if rr.Worst() == metric.SeverityHardAlarm {
		os.Exit(2)
	}
}

// --- status subcommand ---

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	fmt.Printf("Host:        %s\n", cfg.Instance.ID)
	fmt.Printf("Log file:    %s\n", cfg.Log.File)
	fmt.Printf("Mail mode:   %s\n", cfg.Mail.Mode)

	sys := probe.System{}

	for _, path := range cfg.Disk.Paths {
		d, err := sys.DiskDetail(ctx, path)
		if err != nil {
			fmt.Printf("Disk %-7s error: %v\n", path+":", err)
			continue
		}
		soft, hard := cfg.LimitsFor("disk_usage")
		fmt.Printf("Disk %-7s %.1f%% used (%s of %s) [%s]\n",
			path+":", d.UsedPercent, format.Bytes(d.Used), format.Bytes(d.Total),
			classifier.Classify(d.UsedPercent, soft, hard))
	}

	if m, err := sys.MemoryDetail(ctx); err == nil {
		soft, hard := cfg.LimitsFor("memory_usage")
		fmt.Printf("Memory:      %.1f%% used (%s of %s) [%s]\n",
			m.UsedPercent, format.Bytes(m.Used), format.Bytes(m.Total),
			classifier.Classify(m.UsedPercent, soft, hard))
	}

	if n, err := sys.ProcessCount(ctx); err == nil {
		soft, hard := cfg.LimitsFor("process_count")
		fmt.Printf("Processes:   %d running [%s]\n", n,
			classifier.Classify(float64(n), soft, hard))
	}

	if sessions, err := sys.LoggedInUsers(ctx); err == nil {
		if len(sessions) == 0 {
			fmt.Println("Sessions:    none")
		} else {
			fmt.Printf("Sessions:    %s\n", probe.JoinSessions(sessions))
		}
	}

	fmt.Println("Limits:")
	for _, name := range metric.AllNames() {
		soft, hard := cfg.LimitsFor(string(name))
		fmt.Printf("  %-23s soft=%s hard=%s\n", name.Label(), format.Limit(soft), format.Limit(hard))
	}

	if !cfg.History.Enabled {
		fmt.Println("History:     disabled")
		return
	}

	db, err := history.Open(cfg.HistoryPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening history: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	count, _ := db.CountRuns()
	fmt.Printf("History:     %d run(s) at %s\n", count, cfg.HistoryPath())

	if last, err := db.Runs(history.QueryFilter{Limit: 1}); err == nil && len(last) > 0 {
		run := last[0]
		ago := time.Since(run.Started).Truncate(time.Second)
		fmt.Printf("Last run:    %s (%s ago) worst=%s HARD=%d SOFT=%d OK=%d\n",
			run.Started.Local().Format("2006-01-02 15:04:05"), formatDuration(ago),
			run.Worst, run.Hard, run.Soft, run.OK)
	}
}

// --- history subcommand ---

func runHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	last := fs.String("last", "24h", "time window (e.g. 24h, 7d, 30d)")
	metricName := fs.String("metric", "", "filter by metric name")
	severity := fs.String("severity", "", "filter by severity (OK, SOFT_WARNING, HARD_ALARM)")
	limit := fs.Int("limit", 50, "max checks to show")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error") // quiet for CLI output

	if !cfg.History.Enabled {
		fmt.Fprintln(os.Stderr, "error: history is disabled in config")
		os.Exit(1)
	}

	window, err := parseDuration(*last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -last value %q: %v\n", *last, err)
		os.Exit(1)
	}

	filter := history.QueryFilter{
		Since: time.Now().Add(-window),
		Limit: *limit,
	}
	if *metricName != "" {
		n, err := metric.ParseName(*metricName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		filter.Metric = string(n)
	}
	if *severity != "" {
		sev, err := metric.ParseSeverity(*severity)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		filter.Severity = sev.String()
	}

	db, err := history.Open(cfg.HistoryPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening history: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	cs, err := db.Classifications(filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		os.Exit(1)
	}

	if len(cs) == 0 {
		fmt.Println("No checks found.")
		return
	}

	for _, c := range cs {
		fmt.Println(alarmlog.FormatLine(c))
	}
	fmt.Printf("Total: %d check(s)\n", len(cs))
}

// --- digest subcommand ---

func runDigest(args []string) {
	fs := flag.NewFlagSet("digest", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	last := fs.String("last", "7d", "time window for digest")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error")

	if !cfg.History.Enabled {
		fmt.Fprintln(os.Stderr, "error: history is disabled in config")
		os.Exit(1)
	}

	window, err := parseDuration(*last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -last value: %v\n", err)
		os.Exit(1)
	}

	until := time.Now()
	since := until.Add(-window)

	db, err := history.Open(cfg.HistoryPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening history: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	cs, err := db.Classifications(history.QueryFilter{Since: since, Until: until})
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		os.Exit(1)
	}

	digest := report.BuildDigest(cfg.Instance.ID, cs, since, until)
	fmt.Print(report.FormatDigest(digest))
}

// --- test-mail subcommand ---

func runTestMail(args []string) {
	fs := flag.NewFlagSet("test-mail", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Log.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	notifier := report.NewMailjet(cfg)
	if err := notifier.Send(ctx, report.TestMessage(cfg.Instance.ID)); err != nil {
		if errors.Is(err, report.ErrNotConfigured) {
			fmt.Fprintln(os.Stderr, "error: mail not configured (set MAILJET_API_KEY, MAILJET_API_SECRET, MAIL_FROM and MAIL_TO)")
		} else {
			fmt.Fprintf(os.Stderr, "error sending test email: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Println("Test email sent successfully.")
}

// --- utilities ---

// parseDuration extends time.ParseDuration with support for "d" (days) suffix.
func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		s = strings.TrimSuffix(s, "d")
		var days int
		if _, err := fmt.Sscanf(s, "%d", &days); err != nil {
			return 0, fmt.Errorf("invalid days format: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// formatDuration formats a duration in human-readable form.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", h, m)
	}
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, h)
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
