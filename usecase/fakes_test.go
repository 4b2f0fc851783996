package usecase

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	domainActivity "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/activity"
	domainBackend "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/backend"
	domainBot "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bot"
	domainPost "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/post"
	domainQuota "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/quota"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/upload"
	pkgError "github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/error"
)

// fakeBackend behaves like the automation backend: it owns the posts and
// the bot state and rejects what the real one rejects.
type fakeBackend struct {
	mu       sync.Mutex
	posts    []domainPost.ScheduledPost
	nextID   int
	running  bool
	created  []domainPost.ScheduleRequest
	quotas   domainQuota.Snapshot
	activity []domainActivity.Entry

	quotaErr  error
	statusErr error
	createErr error
	calls     map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 1, calls: map[string]int{}}
}

func (f *fakeBackend) count(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) BaseURL() string { return "http://127.0.0.1:5000" }

func (f *fakeBackend) Health(ctx context.Context) error { return nil }

func (f *fakeBackend) Status(ctx context.Context) (domainBot.StatusReport, error) {
	f.count("status")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return domainBot.StatusReport{}, f.statusErr
	}
	state := domainBot.StateStopped
	if f.running {
		state = domainBot.StateRunning
	}
	return domainBot.StatusReport{State: state}, nil
}

func (f *fakeBackend) ListPosts(ctx context.Context) ([]domainPost.ScheduledPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domainPost.ScheduledPost(nil), f.posts...), nil
}

func (f *fakeBackend) CreatePost(ctx context.Context, req domainPost.ScheduleRequest) (domainPost.ScheduledPost, error) {
	f.count("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domainPost.ScheduledPost{}, f.createErr
	}
	f.created = append(f.created, req)
	p := domainPost.ScheduledPost{
		ID:       strconv.Itoa(f.nextID),
		Platform: req.Platform,
		Caption:  req.Caption,
		Status:   domainPost.StatusPending,
	}
	f.nextID++
	f.posts = append(f.posts, p)
	return p, nil
}

func (f *fakeBackend) UpdatePost(ctx context.Context, id string, req domainPost.UpdateRequest) error {
	return nil
}

func (f *fakeBackend) DeletePost(ctx context.Context, id string) error {
	f.count("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.posts {
		if p.ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return &pkgError.BackendRejectedError{Op: "delete post", Status: http.StatusNotFound, Message: "Post not found"}
}

func (f *fakeBackend) Quotas(ctx context.Context) (domainQuota.Snapshot, error) {
	f.count("quotas")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quotas, f.quotaErr
}

func (f *fakeBackend) RecentActivity(ctx context.Context, limit int) ([]domainActivity.Entry, error) {
	f.count("activity")
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.activity) > limit {
		return f.activity[:limit], nil
	}
	return f.activity, nil
}

func (f *fakeBackend) WeeklyStats(ctx context.Context) ([]domainActivity.DayStats, error) {
	return nil, nil
}

func (f *fakeBackend) StartBot(ctx context.Context) (domainBot.ActionResult, error) {
	f.count("start")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return domainBot.ActionResult{}, &pkgError.BackendRejectedError{Op: "start bot", Status: http.StatusBadRequest, Message: "Bot is already running"}
	}
	f.running = true
	return domainBot.ActionResult{Status: "success", Message: "Bot started successfully", PID: 4242}, nil
}

func (f *fakeBackend) StopBot(ctx context.Context) (domainBot.ActionResult, error) {
	f.count("stop")
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return domainBot.ActionResult{}, &pkgError.BackendRejectedError{Op: "stop bot", Status: http.StatusBadRequest, Message: "Bot is not running"}
	}
	f.running = false
	return domainBot.ActionResult{Status: "success", Message: "Bot stopped successfully"}, nil
}

func (f *fakeBackend) RestartBot(ctx context.Context) (domainBot.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = true
	return domainBot.ActionResult{Status: "success", Message: "Bot restarted"}, nil
}

func (f *fakeBackend) Backup(ctx context.Context) (domainBackend.BackupResult, error) {
	f.count("backup")
	return domainBackend.BackupResult{Status: "success", Message: "Backup completed"}, nil
}

// fakePicker returns the queued paths in order; "" means the user cancelled.
type fakePicker struct {
	mu      sync.Mutex
	paths   []string
	filters []upload.Filter
	err     error
}

func (p *fakePicker) PickFile(ctx context.Context, title string, filters []upload.Filter) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters = filters
	if p.err != nil {
		return "", p.err
	}
	if len(p.paths) == 0 {
		return "", nil
	}
	next := p.paths[0]
	p.paths = p.paths[1:]
	return next, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (n *fakeNotifier) Notify(ctx context.Context, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	return nil
}
