package backend

import (
	"context"

	domainActivity "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/activity"
	domainBot "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bot"
	domainPost "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/post"
	domainQuota "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/quota"
)

type BackupResult struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Output    string `json:"output,omitempty"`
	Timestamp string `json:"timestamp"`
}

// IBackendClient is the shell's only way to talk to the local backend.
// Failures are either *pkgError.BackendUnreachableError or
// *pkgError.BackendRejectedError; the backend's message is kept verbatim.
type IBackendClient interface {
	BaseURL() string
	Health(ctx context.Context) error
	Status(ctx context.Context) (domainBot.StatusReport, error)
	ListPosts(ctx context.Context) ([]domainPost.ScheduledPost, error)
	CreatePost(ctx context.Context, req domainPost.ScheduleRequest) (domainPost.ScheduledPost, error)
	UpdatePost(ctx context.Context, id string, req domainPost.UpdateRequest) error
	DeletePost(ctx context.Context, id string) error
	Quotas(ctx context.Context) (domainQuota.Snapshot, error)
	RecentActivity(ctx context.Context, limit int) ([]domainActivity.Entry, error)
	WeeklyStats(ctx context.Context) ([]domainActivity.DayStats, error)
	StartBot(ctx context.Context) (domainBot.ActionResult, error)
	StopBot(ctx context.Context) (domainBot.ActionResult, error)
	RestartBot(ctx context.Context) (domainBot.ActionResult, error)
	Backup(ctx context.Context) (BackupResult, error)
}
