package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	domainBackend "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/backend"
	domainBot "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bot"
	domainBridge "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bridge"
	domainPost "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/post"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/upload"
	pkgError "github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/error"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/preview"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/validations"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultMaxUploadSize matches the backend's own upload limit.
const DefaultMaxUploadSize int64 = 100 << 20

type commandHandler func(ctx context.Context, payload json.RawMessage) (any, error)

type bridgeService struct {
	client        domainBackend.IBackendClient
	dashboard     domainBridge.IDashboard
	picker        domainBridge.FilePicker
	notifier      domainBridge.Notifier
	maxUploadSize int64
	now           func() time.Time

	handlers map[string]commandHandler

	stagedMu sync.Mutex
	staged   *upload.Staged
}

type BridgeOption func(*bridgeService)

func WithMaxUploadSize(size int64) BridgeOption {
	return func(s *bridgeService) {
		if size > 0 {
			s.maxUploadSize = size
		}
	}
}

// WithClock replaces time.Now for schedule validation.
func WithClock(now func() time.Time) BridgeOption {
	return func(s *bridgeService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewBridgeService(
	client domainBackend.IBackendClient,
	dashboard domainBridge.IDashboard,
	picker domainBridge.FilePicker,
	notifier domainBridge.Notifier,
	opts ...BridgeOption,
) domainBridge.IBridge {
	s := &bridgeService{
		client:        client,
		dashboard:     dashboard,
		picker:        picker,
		notifier:      notifier,
		maxUploadSize: DefaultMaxUploadSize,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// The allow-list. It is fixed at construction and never grows.
	s.handlers = map[string]commandHandler{
		domainBridge.CommandPickFile: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.PickFile(ctx)
		},
		domainBridge.CommandDiscardStagedFile: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return nil, s.DiscardStagedFile(ctx)
		},
		domainBridge.CommandNotify: func(ctx context.Context, payload json.RawMessage) (any, error) {
			var req domainBridge.NotifyRequest
			if err := decodePayload(payload, &req); err != nil {
				return nil, err
			}
			return nil, s.Notify(ctx, req)
		},
		domainBridge.CommandGetBackendAddress: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.GetBackendAddress(ctx), nil
		},
		domainBridge.CommandStartBot: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.StartBot(ctx)
		},
		domainBridge.CommandStopBot: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.StopBot(ctx)
		},
		domainBridge.CommandBackup: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.Backup(ctx)
		},
		domainBridge.CommandGetBotStatus: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.GetBotStatus(ctx)
		},
		domainBridge.CommandGetDashboard: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.GetDashboard(ctx), nil
		},
		domainBridge.CommandRefreshDashboard: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.RefreshDashboard(ctx), nil
		},
		domainBridge.CommandListPosts: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.ListPosts(ctx)
		},
		domainBridge.CommandSchedulePost: func(ctx context.Context, payload json.RawMessage) (any, error) {
			var req domainBridge.SchedulePostRequest
			if err := decodePayload(payload, &req); err != nil {
				return nil, err
			}
			return s.SchedulePost(ctx, req)
		},
		domainBridge.CommandDeletePost: func(ctx context.Context, payload json.RawMessage) (any, error) {
			var req domainBridge.DeletePostRequest
			if err := decodePayload(payload, &req); err != nil {
				return nil, err
			}
			return nil, s.DeletePost(ctx, req)
		},
	}
	return s
}

func decodePayload(payload json.RawMessage, dest any) error {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return pkgError.ValidationError(fmt.Sprintf("invalid payload: %v", err))
	}
	return nil
}

// Execute runs one named command. Unknown names fail before anything else happens.
func (s *bridgeService) Execute(ctx context.Context, command string, payload json.RawMessage) (any, error) {
	handler, ok := s.handlers[command]
	if !ok {
		logrus.Warnf("[BRIDGE] rejected command %q", command)
		return nil, pkgError.CommandNotAllowedError(command)
	}
	return handler(ctx, payload)
}

func (s *bridgeService) Commands() []string {
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PickFile opens the native dialog. Cancelling returns nil and leaves any
// previously staged file in place; a new pick replaces it.
func (s *bridgeService) PickFile(ctx context.Context) (*upload.PickedFile, error) {
	path, err := s.picker.PickFile(ctx, "Select image or video", upload.MediaFilters())
	if err != nil {
		return nil, fmt.Errorf("file dialog: %w", err)
	}
	if path == "" {
		return nil, nil
	}

	name := filepath.Base(path)
	if !upload.IsMedia(name) {
		return nil, pkgError.ValidationError(fmt.Sprintf("file: %s is not an image or video", name))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, pkgError.ValidationError(fmt.Sprintf("file: %v", err))
	}
	if info.IsDir() {
		return nil, pkgError.ValidationError(fmt.Sprintf("file: %s is a directory", name))
	}
	if info.Size() > s.maxUploadSize {
		return nil, pkgError.ValidationError(fmt.Sprintf("file: %s is %s, the limit is %s",
			name, humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(s.maxUploadSize))))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	handle, err := preview.Thumbnail(name, content)
	if err != nil {
		logrus.WithError(err).Warnf("[BRIDGE] no preview for %s", name)
	}

	staged := &upload.Staged{
		Ref:           uuid.NewString(),
		Name:          name,
		Path:          path,
		Size:          int64(len(content)),
		Content:       content,
		PreviewHandle: handle,
	}

	s.stagedMu.Lock()
	previous := s.staged
	s.staged = staged
	s.stagedMu.Unlock()

	if previous != nil {
		logrus.Debugf("[BRIDGE] staged file %s replaced by %s", previous.Name, staged.Name)
	}
	logrus.Infof("[BRIDGE] staged %s (%s)", name, humanize.IBytes(uint64(staged.Size)))

	picked := staged.Picked()
	return &picked, nil
}

func (s *bridgeService) DiscardStagedFile(_ context.Context) error {
	s.stagedMu.Lock()
	s.staged = nil
	s.stagedMu.Unlock()
	return nil
}

func (s *bridgeService) stagedFile() *upload.Staged {
	s.stagedMu.Lock()
	defer s.stagedMu.Unlock()
	return s.staged
}

// releaseStaged clears the slot only if it still holds file, so a pick made
// while a submission is in flight survives.
func (s *bridgeService) releaseStaged(file *upload.Staged) {
	if file == nil {
		return
	}
	s.stagedMu.Lock()
	if s.staged == file {
		s.staged = nil
	}
	s.stagedMu.Unlock()
}

func (s *bridgeService) Notify(ctx context.Context, request domainBridge.NotifyRequest) error {
	if err := validations.ValidateNotify(ctx, request); err != nil {
		return err
	}
	return s.notifier.Notify(ctx, request.Title, request.Body)
}

func (s *bridgeService) GetBackendAddress(_ context.Context) domainBridge.BackendAddress {
	return domainBridge.BackendAddress{URL: s.client.BaseURL()}
}

// StartBot and StopBot only forward. The run state shown to the user comes
// from the backend's next status report.
func (s *bridgeService) StartBot(ctx context.Context) (domainBot.ActionResult, error) {
	result, err := s.client.StartBot(ctx)
	if err != nil {
		logrus.WithError(err).Warn("[BRIDGE] start bot failed")
		return result, err
	}
	s.dashboard.Invalidate()
	return result, nil
}

func (s *bridgeService) StopBot(ctx context.Context) (domainBot.ActionResult, error) {
	result, err := s.client.StopBot(ctx)
	if err != nil {
		logrus.WithError(err).Warn("[BRIDGE] stop bot failed")
		return result, err
	}
	s.dashboard.Invalidate()
	return result, nil
}

func (s *bridgeService) Backup(ctx context.Context) (domainBackend.BackupResult, error) {
	return s.client.Backup(ctx)
}

func (s *bridgeService) GetBotStatus(ctx context.Context) (domainBot.StatusReport, error) {
	return s.client.Status(ctx)
}

// GetDashboard serves the cached snapshot unless it was never filled or a
// command invalidated it.
func (s *bridgeService) GetDashboard(ctx context.Context) domainBridge.DashboardSnapshot {
	snapshot := s.dashboard.Snapshot()
	if snapshot.Stale || snapshot.RefreshedAt.IsZero() {
		return s.dashboard.Refresh(ctx)
	}
	return snapshot
}

func (s *bridgeService) RefreshDashboard(ctx context.Context) domainBridge.DashboardSnapshot {
	return s.dashboard.Refresh(ctx)
}

func (s *bridgeService) ListPosts(ctx context.Context) ([]domainPost.ScheduledPost, error) {
	posts, err := s.client.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	s.dashboard.SetPosts(posts)
	return posts, nil
}

// SchedulePost validates and submits a post. The staged file is attached when
// FileRef names it or when FileRef is empty. The slot is kept if validation
// fails and cleared once the request reaches the backend.
func (s *bridgeService) SchedulePost(ctx context.Context, request domainBridge.SchedulePostRequest) (domainPost.ScheduledPost, error) {
	platform, ok := domainPost.ParsePlatform(request.Platform)
	if !ok {
		platform = domainPost.Platform(strings.TrimSpace(request.Platform))
	}

	media := s.stagedFile()
	if request.FileRef != "" && (media == nil || media.Ref != request.FileRef) {
		return domainPost.ScheduledPost{}, pkgError.ValidationError("fileRef: staged file not found, pick the file again")
	}

	scheduleRequest := domainPost.ScheduleRequest{
		Platform:     platform,
		Caption:      request.Caption,
		Hashtags:     request.Hashtags,
		ScheduleDate: request.ScheduleDate,
		ScheduleTime: request.ScheduleTime,
		Media:        media,
	}
	if err := validations.ValidateSchedulePost(ctx, scheduleRequest, s.now()); err != nil {
		return domainPost.ScheduledPost{}, err
	}

	s.releaseStaged(media)
	created, err := s.client.CreatePost(ctx, scheduleRequest)
	if err != nil {
		logrus.WithError(err).Warn("[BRIDGE] schedule post rejected")
		return domainPost.ScheduledPost{}, err
	}

	s.dashboard.Invalidate()
	logrus.Infof("[BRIDGE] scheduled %s post for %s %s", created.Platform, request.ScheduleDate, request.ScheduleTime)
	return created, nil
}

// DeletePost removes the post on the backend, then from the cached list.
// A second delete of the same id surfaces the backend's not-found rejection.
func (s *bridgeService) DeletePost(ctx context.Context, request domainBridge.DeletePostRequest) error {
	if err := validations.ValidateDeletePost(ctx, request); err != nil {
		return err
	}
	id := strings.TrimSpace(request.ID)
	if err := s.client.DeletePost(ctx, id); err != nil {
		return err
	}
	s.dashboard.RemovePost(id)
	s.dashboard.Invalidate()
	return nil
}
