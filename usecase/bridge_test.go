package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	domainBot "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bot"
	domainBridge "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bridge"
	domainPost "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/post"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/upload"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/infrastructure/backend"
	pkgError "github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/error"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bridgeNow = time.Date(2025, 12, 8, 9, 0, 0, 0, time.Local)

type bridgeFixture struct {
	bridge    domainBridge.IBridge
	backend   *fakeBackend
	dashboard domainBridge.IDashboard
	picker    *fakePicker
	notifier  *fakeNotifier
}

func newBridgeFixture(t *testing.T, opts ...BridgeOption) *bridgeFixture {
	t.Helper()
	fb := newFakeBackend()
	dash := NewDashboardService(fb, 0)
	picker := &fakePicker{}
	notifier := &fakeNotifier{}
	opts = append([]BridgeOption{WithClock(func() time.Time { return bridgeNow })}, opts...)
	return &bridgeFixture{
		bridge:    NewBridgeService(fb, dash, picker, notifier, opts...),
		backend:   fb,
		dashboard: dash,
		picker:    picker,
		notifier:  notifier,
	}
}

func writeImage(t *testing.T, name string) string {
	t.Helper()
	img := imaging.New(64, 48, color.NRGBA{G: 180, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func instagramRequest(fileRef string) domainBridge.SchedulePostRequest {
	return domainBridge.SchedulePostRequest{
		Platform:     "Instagram",
		Caption:      "Weekend sale",
		Hashtags:     "#sale",
		ScheduleDate: "2025-12-08",
		ScheduleTime: "14:00",
		FileRef:      fileRef,
	}
}

func TestExecuteRejectsUnknownCommand(t *testing.T) {
	f := newBridgeFixture(t)

	for _, name := range []string{"readFile", "exec", "", "PICKFILE", "startbot"} {
		result, err := f.bridge.Execute(context.Background(), name, json.RawMessage(`{}`))
		assert.Nil(t, result)
		var notAllowed pkgError.CommandNotAllowedError
		require.ErrorAs(t, err, &notAllowed, name)
		assert.Equal(t, "COMMAND_NOT_ALLOWED", notAllowed.ErrCode())
	}

	assert.Zero(t, f.backend.callCount("start"))
	assert.Zero(t, f.backend.callCount("create"))
}

func TestCommandsAllowList(t *testing.T) {
	f := newBridgeFixture(t)
	assert.Equal(t, []string{
		"backup", "deletePost", "discardStagedFile", "getBackendAddress", "getBotStatus",
		"getDashboard", "listPosts", "notify", "pickFile", "refreshDashboard",
		"schedulePost", "startBot", "stopBot",
	}, f.bridge.Commands())
}

func TestPickFileCancelReturnsNil(t *testing.T) {
	f := newBridgeFixture(t)

	result, err := f.bridge.Execute(context.Background(), domainBridge.CommandPickFile, nil)
	require.NoError(t, err)
	assert.Nil(t, result.(*upload.PickedFile))

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	assert.Equal(t, upload.MediaFilters(), f.picker.filters)
}

func TestPickFileReturnsContent(t *testing.T) {
	f := newBridgeFixture(t)
	path := writeImage(t, "banner.png")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	f.picker.paths = []string{path}

	picked, err := f.bridge.PickFile(context.Background())
	require.NoError(t, err)
	require.NotNil(t, picked)

	assert.Equal(t, path, picked.Path)
	assert.Equal(t, "banner.png", picked.Name)
	assert.Equal(t, int64(len(raw)), picked.Size)
	assert.NotEmpty(t, picked.FileRef)
	assert.True(t, strings.HasPrefix(picked.PreviewHandle, "data:image/jpeg;base64,"))

	var decoded map[string]any
	b, _ := json.Marshal(picked)
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Contains(t, decoded, "contentBase64")
}

func TestPickFileRejectsOversizedAndForeignFiles(t *testing.T) {
	f := newBridgeFixture(t, WithMaxUploadSize(10))

	f.picker.paths = []string{writeFile(t, "clip.mp4", bytes.Repeat([]byte{0}, 11))}
	_, err := f.bridge.PickFile(context.Background())
	var vErr pkgError.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, err.Error(), "the limit is")

	f.picker.paths = []string{writeFile(t, "notes.txt", []byte("hi"))}
	_, err = f.bridge.PickFile(context.Background())
	require.ErrorAs(t, err, &vErr)
}

func TestPickFileDialogError(t *testing.T) {
	f := newBridgeFixture(t)
	f.picker.err = errors.New("no display")

	_, err := f.bridge.PickFile(context.Background())
	assert.Error(t, err)
}

func TestSecondPickDiscardsFirst(t *testing.T) {
	f := newBridgeFixture(t)
	f.picker.paths = []string{writeImage(t, "first.png"), writeImage(t, "second.png")}

	first, err := f.bridge.PickFile(context.Background())
	require.NoError(t, err)
	second, err := f.bridge.PickFile(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.FileRef, second.FileRef)

	_, err = f.bridge.SchedulePost(context.Background(), instagramRequest(first.FileRef))
	var vErr pkgError.ValidationError
	require.ErrorAs(t, err, &vErr, "first pick is gone")

	created, err := f.bridge.SchedulePost(context.Background(), instagramRequest(second.FileRef))
	require.NoError(t, err)
	assert.Equal(t, domainPost.StatusPending, created.Status)
	require.Len(t, f.backend.created, 1)
	assert.Equal(t, "second.png", f.backend.created[0].Media.Name)
}

func TestCancelledPickKeepsStagedFile(t *testing.T) {
	f := newBridgeFixture(t)
	f.picker.paths = []string{writeImage(t, "keep.png")}

	picked, err := f.bridge.PickFile(context.Background())
	require.NoError(t, err)

	again, err := f.bridge.PickFile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, again)

	_, err = f.bridge.SchedulePost(context.Background(), instagramRequest(picked.FileRef))
	assert.NoError(t, err)
}

func TestSchedulePostInstagramNeedsStagedMedia(t *testing.T) {
	f := newBridgeFixture(t)

	_, err := f.bridge.SchedulePost(context.Background(), instagramRequest(""))
	var vErr pkgError.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, err.Error(), "media: is required for Instagram posts")
	assert.Zero(t, f.backend.callCount("create"), "invalid posts never reach the backend")
}

func TestSchedulePostValidationKeepsSlotAndSubmitClearsIt(t *testing.T) {
	f := newBridgeFixture(t)
	f.picker.paths = []string{writeImage(t, "promo.png")}
	picked, err := f.bridge.PickFile(context.Background())
	require.NoError(t, err)

	bad := instagramRequest(picked.FileRef)
	bad.Caption = "  "
	_, err = f.bridge.SchedulePost(context.Background(), bad)
	require.Error(t, err)

	_, err = f.bridge.SchedulePost(context.Background(), instagramRequest(picked.FileRef))
	require.NoError(t, err)

	_, err = f.bridge.SchedulePost(context.Background(), instagramRequest(picked.FileRef))
	var vErr pkgError.ValidationError
	require.ErrorAs(t, err, &vErr, "slot is cleared after submit")
}

func TestSchedulePostClearsSlotOnRejection(t *testing.T) {
	f := newBridgeFixture(t)
	f.backend.createErr = &pkgError.BackendRejectedError{Op: "create post", Status: 500, Message: "Sheets manager not initialized"}
	f.picker.paths = []string{writeImage(t, "promo.png")}
	picked, err := f.bridge.PickFile(context.Background())
	require.NoError(t, err)

	_, err = f.bridge.SchedulePost(context.Background(), instagramRequest(picked.FileRef))
	require.Error(t, err)
	assert.Equal(t, "Sheets manager not initialized", err.Error())

	_, err = f.bridge.SchedulePost(context.Background(), instagramRequest(picked.FileRef))
	var vErr pkgError.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestDiscardStagedFile(t *testing.T) {
	f := newBridgeFixture(t)
	f.picker.paths = []string{writeImage(t, "promo.png")}
	picked, err := f.bridge.PickFile(context.Background())
	require.NoError(t, err)

	_, err = f.bridge.Execute(context.Background(), domainBridge.CommandDiscardStagedFile, nil)
	require.NoError(t, err)

	_, err = f.bridge.SchedulePost(context.Background(), instagramRequest(picked.FileRef))
	assert.Error(t, err)
}

func TestSchedulePostThroughExecute(t *testing.T) {
	f := newBridgeFixture(t)
	payload := json.RawMessage(`{"platform":"linkedin","caption":"Hiring","scheduleDate":"2025-12-09","scheduleTime":"08:00"}`)

	result, err := f.bridge.Execute(context.Background(), domainBridge.CommandSchedulePost, payload)
	require.NoError(t, err)
	created := result.(domainPost.ScheduledPost)
	assert.Equal(t, domainPost.PlatformLinkedIn, created.Platform)

	_, err = f.bridge.Execute(context.Background(), domainBridge.CommandSchedulePost, json.RawMessage(`{"caption":`))
	var vErr pkgError.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestDeletePostRemovesExactlyThatID(t *testing.T) {
	f := newBridgeFixture(t)
	for _, caption := range []string{"one", "two", "three"} {
		_, err := f.bridge.SchedulePost(context.Background(), domainBridge.SchedulePostRequest{
			Platform: "Facebook", Caption: caption, ScheduleDate: "2025-12-10", ScheduleTime: "10:00",
		})
		require.NoError(t, err)
	}
	posts, err := f.bridge.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)

	require.NoError(t, f.bridge.DeletePost(context.Background(), domainBridge.DeletePostRequest{ID: "2"}))

	var ids []string
	for _, p := range f.dashboard.Posts() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"1", "3"}, ids)

	err = f.bridge.DeletePost(context.Background(), domainBridge.DeletePostRequest{ID: "2"})
	require.Error(t, err)
	assert.True(t, backend.IsNotFound(err))
	assert.Len(t, f.dashboard.Posts(), 2)
}

func TestConcurrentStartStopResolveIndependently(t *testing.T) {
	f := newBridgeFixture(t)

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, errs[2*i] = f.bridge.Execute(context.Background(), domainBridge.CommandStartBot, nil)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, errs[2*i+1] = f.bridge.Execute(context.Background(), domainBridge.CommandStopBot, nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			var rejected *pkgError.BackendRejectedError
			assert.ErrorAs(t, err, &rejected)
		}
	}
	assert.Equal(t, n, f.backend.callCount("start"))
	assert.Equal(t, n, f.backend.callCount("stop"))

	f.backend.mu.Lock()
	running := f.backend.running
	f.backend.mu.Unlock()

	status, err := f.bridge.GetBotStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, running, status.State == domainBot.StateRunning)
}

func TestStartBotSurfacesRejection(t *testing.T) {
	f := newBridgeFixture(t)
	_, err := f.bridge.StartBot(context.Background())
	require.NoError(t, err)

	_, err = f.bridge.StartBot(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Bot is already running", err.Error())
}

func TestNotifyAndAddress(t *testing.T) {
	f := newBridgeFixture(t)

	_, err := f.bridge.Execute(context.Background(), domainBridge.CommandNotify, json.RawMessage(`{"title":"Backup","body":"done"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Backup"}, f.notifier.titles)

	_, err = f.bridge.Execute(context.Background(), domainBridge.CommandNotify, json.RawMessage(`{"body":"no title"}`))
	assert.Error(t, err)

	addr, err := f.bridge.Execute(context.Background(), domainBridge.CommandGetBackendAddress, nil)
	require.NoError(t, err)
	assert.Equal(t, domainBridge.BackendAddress{URL: "http://127.0.0.1:5000"}, addr)
}

func TestGetDashboardRefreshesOnFirstUse(t *testing.T) {
	f := newBridgeFixture(t)

	snap := f.bridge.GetDashboard(context.Background())
	assert.False(t, snap.RefreshedAt.IsZero())
	assert.Equal(t, 1, f.backend.callCount("quotas"))

	f.bridge.GetDashboard(context.Background())
	assert.Equal(t, 1, f.backend.callCount("quotas"), "served from cache")

	f.bridge.RefreshDashboard(context.Background())
	assert.Equal(t, 2, f.backend.callCount("quotas"))
}

func TestGetDashboardRefreshesAfterBotCommand(t *testing.T) {
	f := newBridgeFixture(t)
	ctx := context.Background()

	assert.Equal(t, domainBot.StateStopped, f.bridge.GetDashboard(ctx).Bot.State)

	_, err := f.bridge.StartBot(ctx)
	require.NoError(t, err)

	snap := f.bridge.GetDashboard(ctx)
	assert.Equal(t, domainBot.StateRunning, snap.Bot.State)
	assert.False(t, snap.Stale)
	assert.Equal(t, 2, f.backend.callCount("status"))

	_, err = f.bridge.StopBot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domainBot.StateStopped, f.bridge.GetDashboard(ctx).Bot.State)
	assert.Equal(t, 3, f.backend.callCount("status"))
}

func TestBackupForwards(t *testing.T) {
	f := newBridgeFixture(t)
	result, err := f.bridge.Execute(context.Background(), domainBridge.CommandBackup, nil)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, 1, f.backend.callCount("backup"))
}
