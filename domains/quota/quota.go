package quota

import (
	"encoding/json"
	"math"
	"strings"
)

// Channel is a quota category. Wire keys are lower case.
type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelFacebook  Channel = "facebook"
	ChannelInstagram Channel = "instagram"
	ChannelLinkedIn  Channel = "linkedin"
)

var Channels = []Channel{ChannelEmail, ChannelFacebook, ChannelInstagram, ChannelLinkedIn}

type Level string

const (
	LevelNominal  Level = "nominal"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Usage is one channel's daily counters as reported by the backend.
// success+failed <= used <= limit is the expected steady state; it is not enforced here.
type Usage struct {
	Used    int `json:"used"`
	Limit   int `json:"limit"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// Percentage is used/limit*100 rounded to one decimal.
func (u Usage) Percentage() float64 {
	if u.Limit <= 0 {
		return 0
	}
	return math.Round(float64(u.Used)/float64(u.Limit)*1000) / 10
}

// Level classifies the rounded percentage: >80 critical, >50 warning.
func (u Usage) Level() Level {
	p := u.Percentage()
	switch {
	case p > 80:
		return LevelCritical
	case p > 50:
		return LevelWarning
	default:
		return LevelNominal
	}
}

type UsageView struct {
	Channel    Channel `json:"channel"`
	Usage      Usage   `json:"usage"`
	Percentage float64 `json:"percentage"`
	Level      Level   `json:"level"`
}

// Snapshot holds the latest usage per channel.
type Snapshot map[Channel]Usage

// UnmarshalJSON accepts channel keys in any case; unknown channels are dropped.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]Usage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Snapshot, len(Channels))
	for key, usage := range raw {
		ch := Channel(strings.ToLower(strings.TrimSpace(key)))
		for _, known := range Channels {
			if ch == known {
				out[ch] = usage
			}
		}
	}
	*s = out
	return nil
}

// Views lists the channels in fixed order with derived values. Channels the
// backend did not report are omitted.
func (s Snapshot) Views() []UsageView {
	views := make([]UsageView, 0, len(s))
	for _, ch := range Channels {
		u, ok := s[ch]
		if !ok {
			continue
		}
		views = append(views, UsageView{
			Channel:    ch,
			Usage:      u,
			Percentage: u.Percentage(),
			Level:      u.Level(),
		})
	}
	return views
}
