package post

import (
	"strings"
	"time"

	"github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/upload"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/timeutils"
)

type Platform string

const (
	PlatformFacebook  Platform = "Facebook"
	PlatformInstagram Platform = "Instagram"
	PlatformLinkedIn  Platform = "LinkedIn"
)

var Platforms = []Platform{PlatformFacebook, PlatformInstagram, PlatformLinkedIn}

// ParsePlatform matches case-insensitively ("instagram" -> Instagram).
func ParsePlatform(s string) (Platform, bool) {
	s = strings.TrimSpace(s)
	for _, p := range Platforms {
		if strings.EqualFold(s, string(p)) {
			return p, true
		}
	}
	return "", false
}

// RequiresMedia reports whether a post on p cannot be published without an image or video.
func (p Platform) RequiresMedia() bool {
	return p == PlatformInstagram
}

type Status string

const (
	StatusPending Status = "Pending"
	StatusPosted  Status = "Posted"
	StatusFailed  Status = "Failed"
)

// ParseStatus defaults to Pending; the engine writes the other two.
func ParseStatus(s string) Status {
	switch {
	case strings.EqualFold(s, string(StatusPosted)):
		return StatusPosted
	case strings.EqualFold(s, string(StatusFailed)):
		return StatusFailed
	default:
		return StatusPending
	}
}

// ScheduledPost is a read-only copy of a post owned by the backend.
type ScheduledPost struct {
	ID             string    `json:"id"`
	Platform       Platform  `json:"platform"`
	Caption        string    `json:"caption"`
	Hashtags       string    `json:"hashtags,omitempty"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Status         Status    `json:"status"`
	Media          string    `json:"media,omitempty"`
	PostedTime     string    `json:"posted_time,omitempty"`
	PlatformPostID string    `json:"post_id,omitempty"`
}

// ScheduleRequest is what the user submits. Media is attached from the
// bridge's staged file and never decoded from UI input.
type ScheduleRequest struct {
	Platform     Platform       `json:"platform"`
	Caption      string         `json:"caption"`
	Hashtags     string         `json:"hashtags"`
	ScheduleDate string         `json:"scheduleDate"`
	ScheduleTime string         `json:"scheduleTime"`
	Media        *upload.Staged `json:"media,omitempty"`
}

func (r ScheduleRequest) ScheduledAt(loc *time.Location) (time.Time, error) {
	return timeutils.ParseSchedule(r.ScheduleDate, r.ScheduleTime, loc)
}

// UpdateRequest edits a pending post. Nil fields are left untouched.
type UpdateRequest struct {
	Caption      *string `json:"caption,omitempty"`
	Hashtags     *string `json:"hashtags,omitempty"`
	ScheduleDate *string `json:"scheduleDate,omitempty"`
	ScheduleTime *string `json:"scheduleTime,omitempty"`
}

func (r UpdateRequest) Empty() bool {
	return r.Caption == nil && r.Hashtags == nil && r.ScheduleDate == nil && r.ScheduleTime == nil
}
