package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FundLens/internal/analyzer"
	"FundLens/internal/logger"
	"FundLens/internal/model"
	"FundLens/internal/notifier"
	"FundLens/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Catalog is the fund list the jobs and bot commands work on.
type Catalog interface {
	Refresh(ctx context.Context) ([]model.Fund, error)
	Search(ctx context.Context, q string) ([]model.Fund, error)
}

// Notifier delivers messages to the operator chat.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// digestWindow is the period covered by the digest and /stats.
const digestWindow = 24 * time.Hour

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Catalog   Catalog
	Notifier  Notifier // nil disables notifications
	Recorder  recorder.Recorder
	ChartsDir string
	Retention time.Duration
	Ctx       context.Context

	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cat Catalog, n Notifier, rec recorder.Recorder, chartsDir string, retention time.Duration) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Catalog:   cat,
		Notifier:  n,
		Recorder:  rec,
		ChartsDir: chartsDir,
		Retention: retention,
		Ctx:       ctx,
		now:       time.Now,
	}
}

// RegisterAll registers the catalog refresh, chart cleanup and digest tasks.
// An empty cron expression leaves that task unscheduled.
func (s *Scheduler) RegisterAll(refreshCron, cleanupCron, digestCron string) error {
	tasks := []struct {
		name string
		spec string
		fn   func()
	}{
		{"catalog refresh", refreshCron, s.refreshTask},
		{"chart cleanup", cleanupCron, s.cleanupTask},
		{"digest", digestCron, s.digestTask},
	}
	for _, t := range tasks {
		if t.spec == "" {
			logger.Log.Infof("%s task disabled", t.name)
			continue
		}
		if _, err := s.Cron.AddFunc(t.spec, t.fn); err != nil {
			return fmt.Errorf("register %s task: %w", t.name, err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Log.Info("scheduler stopped")
}

// RunRefreshNow warms the catalog immediately (RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	logger.Log.Info("running catalog refresh")
	if _, err := s.refresh(); err != nil {
		logger.Log.Errorf("catalog refresh: %v", err)
		s.trySend(fmt.Sprintf("❌ Aggiornamento elenco COVIP fallito: %v", err))
	}
}

func (s *Scheduler) refresh() (int, error) {
	funds, err := s.Catalog.Refresh(s.Ctx)
	if err != nil {
		return 0, err
	}
	return len(funds), nil
}

func (s *Scheduler) cleanupTask() {
	if s.Retention <= 0 {
		return
	}
	n, err := analyzer.PruneCharts(s.ChartsDir, s.now().Add(-s.Retention))
	if err != nil {
		logger.Log.Errorf("chart cleanup: %v", err)
		return
	}
	if n > 0 {
		logger.Log.Infof("removed %d charts older than %v", n, s.Retention)
	}
}

func (s *Scheduler) digestTask() {
	logger.Log.Info("running daily digest")
	report, err := s.digest()
	if err != nil {
		logger.Log.Errorf("digest: %v", err)
		return
	}
	s.trySend(report)
}

func (s *Scheduler) digest() (string, error) {
	now := s.now()
	stats, err := s.Recorder.Stats(now.Add(-digestWindow))
	if err != nil {
		return "", fmt.Errorf("load stats: %w", err)
	}
	return notifier.FormatDigest(stats, now), nil
}

// HandleCommand processes a bot command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	name, arg, _ := strings.Cut(strings.TrimSpace(command), " ")
	// Commands may be addressed to the bot in groups: /search@FundLensBot.
	name, _, _ = strings.Cut(name, "@")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/search", "/cerca":
		if arg == "" {
			return "Uso: /search &lt;nome o numero albo&gt;"
		}
		funds, err := s.Catalog.Search(s.Ctx, arg)
		if err != nil {
			logger.Log.Errorf("bot search: %v", err)
			return "❌ Elenco fondi non disponibile, riprova più tardi."
		}
		return notifier.FormatSearchResults(arg, funds)
	case "/stats":
		report, err := s.digest()
		if err != nil {
			logger.Log.Errorf("bot stats: %v", err)
			return "❌ Statistiche non disponibili."
		}
		return report
	case "/refresh":
		n, err := s.refresh()
		if err != nil {
			logger.Log.Errorf("bot refresh: %v", err)
			return fmt.Sprintf("❌ Aggiornamento fallito: %v", err)
		}
		return fmt.Sprintf("✅ Elenco aggiornato: %d fondi", n)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logger.Log.Errorf("send notification: %v", err)
	}
}
