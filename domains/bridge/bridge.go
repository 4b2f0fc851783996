package bridge

import (
	"context"
	"encoding/json"
	"time"

	domainActivity "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/activity"
	domainBackend "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/backend"
	domainBot "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bot"
	domainPost "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/post"
	domainQuota "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/quota"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/upload"
)

// Command names accepted from the UI. Anything else is rejected.
const (
	CommandPickFile          = "pickFile"
	CommandNotify            = "notify"
	CommandGetBackendAddress = "getBackendAddress"
	CommandStartBot          = "startBot"
	CommandStopBot           = "stopBot"
	CommandBackup            = "backup"
	CommandGetBotStatus      = "getBotStatus"
	CommandGetDashboard      = "getDashboard"
	CommandRefreshDashboard  = "refreshDashboard"
	CommandListPosts         = "listPosts"
	CommandSchedulePost      = "schedulePost"
	CommandDeletePost        = "deletePost"
	CommandDiscardStagedFile = "discardStagedFile"
)

type NotifyRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SchedulePostRequest is the UI's form. FileRef names the staged file
// returned by pickFile; the bytes themselves are never accepted from the UI.
type SchedulePostRequest struct {
	Platform     string `json:"platform"`
	Caption      string `json:"caption"`
	Hashtags     string `json:"hashtags"`
	ScheduleDate string `json:"scheduleDate"`
	ScheduleTime string `json:"scheduleTime"`
	FileRef      string `json:"fileRef,omitempty"`
}

type DeletePostRequest struct {
	ID string `json:"id"`
}

type BackendAddress struct {
	URL string `json:"url"`
}

type DashboardSnapshot struct {
	Quotas      []domainQuota.UsageView `json:"quotas"`
	Activity    []domainActivity.Entry  `json:"activity"`
	Bot         domainBot.StatusReport  `json:"bot"`
	RefreshedAt time.Time               `json:"refreshed_at"`
	Stale       bool                    `json:"stale"`
	Errors      []string                `json:"errors,omitempty"`
}

// FilePicker opens the host's native file dialog. An empty path with a nil
// error means the user cancelled.
type FilePicker interface {
	PickFile(ctx context.Context, title string, filters []upload.Filter) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

type IDashboard interface {
	Refresh(ctx context.Context) DashboardSnapshot
	Snapshot() DashboardSnapshot
	Invalidate()
	Posts() []domainPost.ScheduledPost
	SetPosts(posts []domainPost.ScheduledPost)
	RemovePost(id string) bool
	Run(ctx context.Context, interval time.Duration)
}

type IBridge interface {
	// Execute dispatches a named command with its JSON payload.
	Execute(ctx context.Context, command string, payload json.RawMessage) (any, error)
	Commands() []string

	PickFile(ctx context.Context) (*upload.PickedFile, error)
	DiscardStagedFile(ctx context.Context) error
	Notify(ctx context.Context, request NotifyRequest) error
	GetBackendAddress(ctx context.Context) BackendAddress
	StartBot(ctx context.Context) (domainBot.ActionResult, error)
	StopBot(ctx context.Context) (domainBot.ActionResult, error)
	Backup(ctx context.Context) (domainBackend.BackupResult, error)
	GetBotStatus(ctx context.Context) (domainBot.StatusReport, error)
	GetDashboard(ctx context.Context) DashboardSnapshot
	RefreshDashboard(ctx context.Context) DashboardSnapshot
	ListPosts(ctx context.Context) ([]domainPost.ScheduledPost, error)
	SchedulePost(ctx context.Context, request SchedulePostRequest) (domainPost.ScheduledPost, error)
	DeletePost(ctx context.Context, request DeletePostRequest) error
}
