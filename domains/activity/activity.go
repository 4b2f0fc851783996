package activity

import "strings"

type Channel string

const (
	ChannelEmail     Channel = "Email"
	ChannelFacebook  Channel = "Facebook"
	ChannelInstagram Channel = "Instagram"
	ChannelLinkedIn  Channel = "LinkedIn"
)

type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailure Status = "Failure"
)

// DefaultLimit is the page size used when the caller does not ask for one.
const DefaultLimit = 50

// NormalizeStatus maps the activity log's wording ("Failed", "error") onto the two outcomes.
func NormalizeStatus(s string) Status {
	if strings.EqualFold(strings.TrimSpace(s), string(StatusSuccess)) {
		return StatusSuccess
	}
	return StatusFailure
}

// Entry is one immutable line of automation history. Lists are most recent first.
type Entry struct {
	Time     string  `json:"time"`
	DateTime string  `json:"datetime,omitempty"`
	Channel  Channel `json:"channel"`
	Status   Status  `json:"status"`
	Details  string  `json:"details"`
}

// DayStats is one bar of the weekly chart.
type DayStats struct {
	Day    string `json:"day"`
	Date   string `json:"date"`
	Emails int    `json:"emails"`
	Posts  int    `json:"posts"`
}
