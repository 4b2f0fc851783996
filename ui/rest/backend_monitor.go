package rest

import (
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/infrastructure/supervisor"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/procmonitor"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultOutputLines = 50
	maxOutputLines     = 200
)

// OutputSource is the part of the supervisor the monitor route reads.
type OutputSource interface {
	State() supervisor.State
	OutputTotals() (stdout, stderr int64)
	RecentOutput(n int) []procmonitor.Line
}

type backendOutput struct {
	State       supervisor.State   `json:"state"`
	TotalStdout int64              `json:"total_stdout"`
	TotalStderr int64              `json:"total_stderr"`
	Lines       []procmonitor.Line `json:"lines"`
}

type BackendMonitor struct {
	Source OutputSource
}

// InitRestBackendMonitor must be called on an app built by NewBridgeApp so
// the route sits behind the token check.
func InitRestBackendMonitor(app fiber.Router, source OutputSource) BackendMonitor {
	handler := BackendMonitor{Source: source}
	app.Get("/backend/output", handler.GetOutput)
	return handler
}

// GetOutput returns the supervised backend's state and its last ?lines= lines.
func (h *BackendMonitor) GetOutput(c *fiber.Ctx) error {
	n := c.QueryInt("lines", defaultOutputLines)
	switch {
	case n <= 0:
		n = defaultOutputLines
	case n > maxOutputLines:
		n = maxOutputLines
	}

	stdout, stderr := h.Source.OutputTotals()
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Backend output retrieved",
		Results: backendOutput{
			State:       h.Source.State(),
			TotalStdout: stdout,
			TotalStderr: stderr,
			Lines:       h.Source.RecentOutput(n),
		},
	})
}
