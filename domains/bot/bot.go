package bot

import "strings"

// RunState is the automation bot's process-wide state. The backend is the
// only authority; the shell never sets it speculatively.
type RunState string

const (
	StateRunning RunState = "running"
	StateStopped RunState = "stopped"
)

// ParseRunState maps the backend's status word. Anything other than
// "running" is reported as stopped.
func ParseRunState(s string) RunState {
	if strings.EqualFold(strings.TrimSpace(s), string(StateRunning)) {
		return StateRunning
	}
	return StateStopped
}

type StatusReport struct {
	State           RunState `json:"state"`
	LastSync        string   `json:"last_sync,omitempty"`
	UptimeSeconds   int64    `json:"uptime_seconds"`
	UptimeFormatted string   `json:"uptime_formatted"`
}

func (r StatusReport) Running() bool {
	return r.State == StateRunning
}

// ActionResult is the backend's answer to start, stop and restart.
type ActionResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	PID     int    `json:"pid,omitempty"`
}
