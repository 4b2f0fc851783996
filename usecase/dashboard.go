package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainActivity "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/activity"
	domainBackend "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/backend"
	domainBot "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bot"
	domainBridge "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bridge"
	domainHealth "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/health"
	domainPost "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/post"
	domainQuota "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/quota"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultDashboardActivityLimit = 10

type dashboardService struct {
	client        domainBackend.IBackendClient
	activityLimit int
	ledger        domainHealth.IHealthUsecase

	mu       sync.RWMutex
	snapshot domainBridge.DashboardSnapshot
	posts    []domainPost.ScheduledPost
}

type DashboardOption func(*dashboardService)

// WithBotLedger records the bot state seen on every refresh.
func WithBotLedger(ledger domainHealth.IHealthUsecase) DashboardOption {
	return func(s *dashboardService) { s.ledger = ledger }
}

// NewDashboardService returns the shell's cached view of quotas, activity and
// bot state. It only ever reads from the backend.
func NewDashboardService(client domainBackend.IBackendClient, activityLimit int, opts ...DashboardOption) domainBridge.IDashboard {
	if activityLimit <= 0 {
		activityLimit = DefaultDashboardActivityLimit
	}
	s := &dashboardService{
		client:        client,
		activityLimit: activityLimit,
		snapshot:      domainBridge.DashboardSnapshot{Stale: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// recordBot writes the bot entry of the health ledger. A stopped bot is an
// error entry so `status` shows when it last ran.
func (s *dashboardService) recordBot(ctx context.Context, report domainBot.StatusReport, err error) {
	if s.ledger == nil {
		return
	}
	id := s.client.BaseURL()
	switch {
	case err != nil:
		s.ledger.ReportFailure(ctx, domainHealth.EntityBot, id, err.Error())
	case report.Running():
		s.ledger.ReportSuccess(ctx, domainHealth.EntityBot, id)
	default:
		s.ledger.ReportFailure(ctx, domainHealth.EntityBot, id, "bot is "+string(report.State))
	}
}

// Refresh fetches the three dashboard sources concurrently. A source that
// fails keeps its previous value and the snapshot is marked stale.
func (s *dashboardService) Refresh(ctx context.Context) domainBridge.DashboardSnapshot {
	var (
		quotas    domainQuota.Snapshot
		activity  []domainActivity.Entry
		report    domainBot.StatusReport
		quotaErr  error
		actErr    error
		statusErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		quotas, quotaErr = s.client.Quotas(ctx)
		return quotaErr
	})
	g.Go(func() error {
		activity, actErr = s.client.RecentActivity(ctx, s.activityLimit)
		return actErr
	})
	g.Go(func() error {
		report, statusErr = s.client.Status(ctx)
		return statusErr
	})
	if err := g.Wait(); err != nil {
		logrus.WithError(err).Warn("[DASHBOARD] refresh incomplete")
	}
	s.recordBot(ctx, report, statusErr)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot
	next.Errors = nil
	if quotaErr == nil {
		next.Quotas = quotas.Views()
	} else {
		next.Errors = append(next.Errors, fmt.Sprintf("quotas: %v", quotaErr))
	}
	if actErr == nil {
		next.Activity = activity
	} else {
		next.Errors = append(next.Errors, fmt.Sprintf("activity: %v", actErr))
	}
	if statusErr == nil {
		next.Bot = report
	} else {
		next.Errors = append(next.Errors, fmt.Sprintf("status: %v", statusErr))
	}
	next.Stale = len(next.Errors) > 0
	next.RefreshedAt = time.Now()

	s.snapshot = next
	return copySnapshot(next)
}

func (s *dashboardService) Snapshot() domainBridge.DashboardSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnapshot(s.snapshot)
}

// Invalidate marks the snapshot stale so the next reader knows to refresh.
func (s *dashboardService) Invalidate() {
	s.mu.Lock()
	s.snapshot.Stale = true
	s.mu.Unlock()
}

func (s *dashboardService) Posts() []domainPost.ScheduledPost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domainPost.ScheduledPost(nil), s.posts...)
}

func (s *dashboardService) SetPosts(posts []domainPost.ScheduledPost) {
	s.mu.Lock()
	s.posts = append([]domainPost.ScheduledPost(nil), posts...)
	s.mu.Unlock()
}

// RemovePost drops exactly one post from the visible set.
func (s *dashboardService) RemovePost(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.posts {
		if p.ID == id {
			s.posts = append(s.posts[:i:i], s.posts[i+1:]...)
			return true
		}
	}
	return false
}

// Run refreshes once, then on every tick until ctx is done.
func (s *dashboardService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	logrus.Infof("[DASHBOARD] refreshing every %s", interval)
	s.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

func copySnapshot(in domainBridge.DashboardSnapshot) domainBridge.DashboardSnapshot {
	out := in
	out.Quotas = append([]domainQuota.UsageView(nil), in.Quotas...)
	out.Activity = append([]domainActivity.Entry(nil), in.Activity...)
	out.Errors = append([]string(nil), in.Errors...)
	return out
}
