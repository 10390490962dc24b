// Package runner orchestrates one check run: sample, classify, log, notify.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/setevik/hostwatch/internal/alarmlog"
	"github.com/setevik/hostwatch/internal/classifier"
	"github.com/setevik/hostwatch/internal/config"
	"github.com/setevik/hostwatch/internal/metric"
	"github.com/setevik/hostwatch/internal/probe"
	"github.com/setevik/hostwatch/internal/report"
)

// Recorder persists finished runs. The history database implements it;
// a nil recorder disables persistence.
type Recorder interface {
	RecordRun(rr *metric.RunResult) error
}

// Runner executes check runs against a fixed set of collaborators. It keeps
// no state between runs; every invocation starts from the requests alone.
type Runner struct {
	cfg      *config.Config
	provider probe.Provider
	sink     alarmlog.Sink
	notifier report.Notifier
	recorder Recorder
}

// New creates a Runner. provider, sink and notifier are required; recorder
// may be nil.
func New(cfg *config.Config, provider probe.Provider, sink alarmlog.Sink, notifier report.Notifier, recorder Recorder) *Runner {
	return &Runner{
		cfg:      cfg,
		provider: provider,
		sink:     sink,
		notifier: notifier,
		recorder: recorder,
	}
}

// Run samples, classifies, logs and notifies the requested metrics in
// caller order. A duplicate metric in the request set is rejected before
// anything is collected. After that no step is fatal: a failing collection
// skips its metric, a failing log append or dispatch is recorded on the
// result as a problem, and the run always completes.
func (r *Runner) Run(ctx context.Context, requests []metric.Request, mode report.Mode) (*metric.RunResult, error) {
	if err := validateRequests(requests); err != nil {
		return nil, err
	}

	rr := metric.NewRunResult(r.cfg.Instance.ID, time.Now())
	slog.Info("check run started", "run_id", rr.ID, "metrics", len(requests), "mode", mode.String())

	for _, req := range requests {
		sample, err := r.collect(ctx, req, rr.Started)
		if err != nil {
			rr.AddProblem(&CollectionError{Metric: req.Metric, Err: err})
			slog.Warn("metric skipped", "metric", req.Metric, "error", err)
			continue
		}

		c := classifier.ClassifySample(sample)
		rr.Add(c)

		line := alarmlog.FormatLine(c)
		if err := r.sink.Append(line); err != nil {
			rr.AddProblem(&LogWriteError{Metric: req.Metric, Err: err})
			slog.Warn("log append failed", "metric", req.Metric, "error", err)
		} else {
			slog.Info("logged", "line", line)
		}
	}

	r.dispatch(ctx, rr, mode)
	r.record(rr)

	hard, soft, ok := rr.Counts()
	slog.Info("check run finished",
		"run_id", rr.ID,
		"worst", rr.Worst().String(),
		"hard", hard, "soft", soft, "ok", ok,
		"problems", len(rr.Problems))
	return rr, nil
}

func validateRequests(requests []metric.Request) error {
	seen := make(map[metric.Name]bool, len(requests))
	for _, req := range requests {
		if seen[req.Metric] {
			return fmt.Errorf("duplicate metric %s in request set", req.Metric)
		}
		seen[req.Metric] = true
	}
	return nil
}

// collect samples one metric and assembles it with the limits that apply:
// request limits win over the configured table, per limit. Non-alarmable
// metrics get no limits from either source.
func (r *Runner) collect(ctx context.Context, req metric.Request, now time.Time) (metric.Sample, error) {
	var (
		value   float64
		context string
	)

	switch req.Metric {
	case metric.DiskUsage:
		path := req.Path
		if path == "" && len(r.cfg.Disk.Paths) > 0 {
			path = r.cfg.Disk.Paths[0]
		}
		v, err := r.provider.DiskUsage(ctx, path)
		if err != nil {
			return metric.Sample{}, err
		}
		value, context = v, path
	case metric.MemoryUsage:
		v, err := r.provider.MemoryUsage(ctx)
		if err != nil {
			return metric.Sample{}, err
		}
		value = v
	case metric.ProcessCount:
		n, err := r.provider.ProcessCount(ctx)
		if err != nil {
			return metric.Sample{}, err
		}
		value = float64(n)
	case metric.UserCount:
		sessions, err := r.provider.LoggedInUsers(ctx)
		if err != nil {
			return metric.Sample{}, err
		}
		value = float64(len(sessions))
		context = probe.JoinSessions(sessions)
	default:
		return metric.Sample{}, fmt.Errorf("unknown metric %q", req.Metric)
	}

	var soft, hard *float64
	if req.Metric.Alarmable() {
		soft, hard = r.cfg.LimitsFor(string(req.Metric))
		if req.Soft != nil {
			soft = req.Soft
		}
		if req.Hard != nil {
			hard = req.Hard
		}
	}

	return metric.Sample{
		Metric:  req.Metric,
		Label:   req.Metric.Label(),
		Context: context,
		Value:   value,
		Soft:    soft,
		Hard:    hard,
		Host:    r.cfg.Instance.ID,
		Time:    now,
	}, nil
}

func (r *Runner) dispatch(ctx context.Context, rr *metric.RunResult, mode report.Mode) {
	msgs := report.Plan(rr, mode)
	if len(msgs) == 0 {
		slog.Debug("no notifications planned", "mode", mode.String())
		return
	}

	for _, msg := range msgs {
		err := r.notifier.Send(ctx, msg)
		if err == nil {
			continue
		}
		rr.AddProblem(&NotifyDispatchError{Subject: msg.Subject, Err: err})
		if errors.Is(err, report.ErrNotConfigured) {
			slog.Warn("dispatch skipped", "subject", msg.Subject, "reason", err)
		} else {
			slog.Warn("dispatch failed", "subject", msg.Subject, "error", err)
		}
	}
}

func (r *Runner) record(rr *metric.RunResult) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.RecordRun(rr); err != nil {
		slog.Warn("recording run failed", "run_id", rr.ID, "error", err)
	}
}
