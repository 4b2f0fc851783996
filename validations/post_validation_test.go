package validations

import (
	"context"
	"testing"
	"time"

	domainBridge "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bridge"
	domainPost "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/post"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/upload"
	pkgError "github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 12, 8, 9, 30, 0, 0, time.UTC)

func validRequest() domainPost.ScheduleRequest {
	return domainPost.ScheduleRequest{
		Platform:     domainPost.PlatformFacebook,
		Caption:      "New arrivals this week",
		Hashtags:     "#sale",
		ScheduleDate: "2025-12-08",
		ScheduleTime: "14:00",
	}
}

func stagedImage() *upload.Staged {
	return &upload.Staged{Ref: "ref-1", Name: "banner.png", Size: 3, Content: []byte{1, 2, 3}}
}

func TestValidateSchedulePost_Valid(t *testing.T) {
	assert.NoError(t, ValidateSchedulePost(context.Background(), validRequest(), fixedNow))
}

func TestValidateSchedulePost_InstagramRequiresMedia(t *testing.T) {
	req := validRequest()
	req.Platform = domainPost.PlatformInstagram

	err := ValidateSchedulePost(context.Background(), req, fixedNow)
	require.Error(t, err)
	var vErr pkgError.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, err.Error(), "media: is required for Instagram posts")

	req.Media = stagedImage()
	assert.NoError(t, ValidateSchedulePost(context.Background(), req, fixedNow))
}

func TestValidateSchedulePost_OtherPlatformsDoNotNeedMedia(t *testing.T) {
	for _, p := range []domainPost.Platform{domainPost.PlatformFacebook, domainPost.PlatformLinkedIn} {
		req := validRequest()
		req.Platform = p
		assert.NoError(t, ValidateSchedulePost(context.Background(), req, fixedNow), p)
	}
}

func TestValidateSchedulePost_EmptyCaption(t *testing.T) {
	for _, caption := range []string{"", "   \n\t"} {
		for _, p := range domainPost.Platforms {
			req := validRequest()
			req.Platform = p
			req.Media = stagedImage()
			req.Caption = caption

			err := ValidateSchedulePost(context.Background(), req, fixedNow)
			require.Error(t, err, "caption %q platform %s", caption, p)
			assert.Contains(t, err.Error(), "caption: cannot be blank")
		}
	}
}

func TestValidateSchedulePost_ReportsAllFields(t *testing.T) {
	req := domainPost.ScheduleRequest{Platform: domainPost.PlatformInstagram}

	err := ValidateSchedulePost(context.Background(), req, fixedNow)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "caption")
	assert.Contains(t, msg, "scheduleDate")
	assert.Contains(t, msg, "scheduleTime")
	assert.Contains(t, msg, "media")
}

func TestValidateSchedulePost_DateAndTime(t *testing.T) {
	cases := []struct {
		name    string
		date    string
		clock   string
		wantErr string
	}{
		{name: "past date", date: "2025-12-07", clock: "14:00", wantErr: "must not be in the past"},
		{name: "earlier today", date: "2025-12-08", clock: "09:00", wantErr: "must not be in the past"},
		{name: "current minute", date: "2025-12-08", clock: "09:30"},
		{name: "bad date", date: "08/12/2025", clock: "14:00", wantErr: "scheduleDate"},
		{name: "bad time", date: "2025-12-08", clock: "2pm", wantErr: "scheduleTime"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			req.ScheduleDate = tc.date
			req.ScheduleTime = tc.clock

			err := ValidateSchedulePost(context.Background(), req, fixedNow)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateSchedulePost_UnknownPlatform(t *testing.T) {
	req := validRequest()
	req.Platform = domainPost.Platform("Myspace")

	err := ValidateSchedulePost(context.Background(), req, fixedNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform: must be one of Facebook, Instagram, LinkedIn")
}

func TestValidateSchedulePost_RejectsNonMediaFile(t *testing.T) {
	req := validRequest()
	req.Media = &upload.Staged{Ref: "x", Name: "notes.txt"}

	err := ValidateSchedulePost(context.Background(), req, fixedNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "media: must be an image or a video")
}

func TestValidateUpdatePost(t *testing.T) {
	assert.Error(t, ValidateUpdatePost(context.Background(), domainPost.UpdateRequest{}))

	caption := "updated"
	assert.NoError(t, ValidateUpdatePost(context.Background(), domainPost.UpdateRequest{Caption: &caption}))

	blank := "  "
	assert.Error(t, ValidateUpdatePost(context.Background(), domainPost.UpdateRequest{Caption: &blank}))

	badDate := "tomorrow"
	assert.Error(t, ValidateUpdatePost(context.Background(), domainPost.UpdateRequest{ScheduleDate: &badDate}))
}

func TestValidateNotify(t *testing.T) {
	assert.NoError(t, ValidateNotify(context.Background(), domainBridge.NotifyRequest{Title: "Backup", Body: "done"}))
	assert.Error(t, ValidateNotify(context.Background(), domainBridge.NotifyRequest{Body: "no title"}))
}

func TestValidateDeletePost(t *testing.T) {
	assert.NoError(t, ValidateDeletePost(context.Background(), domainBridge.DeletePostRequest{ID: "7"}))
	assert.Error(t, ValidateDeletePost(context.Background(), domainBridge.DeletePostRequest{ID: " "}))
}
