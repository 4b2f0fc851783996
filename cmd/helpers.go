package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/MasegoMashiane/Second-Sales-Automation-bot/core/config"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/infrastructure/supervisor"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/procmonitor"
	"github.com/sirupsen/logrus"
)

func initLogging(app config.AppConfig) {
	if app.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetOutput(os.Stderr)
	if app.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// supervisorConfig maps the typed configuration onto the supervisor. The
// backend learns its port through PORT and API_PORT.
func supervisorConfig(cfg *config.Config) supervisor.Config {
	port := fmt.Sprintf("%d", cfg.Backend.Port)
	return supervisor.Config{
		Command:        cfg.Backend.Command,
		Args:           cfg.Backend.Args,
		Dir:            cfg.Backend.Dir,
		Env:            []string{"PORT=" + port, "API_PORT=" + port, "PYTHONUNBUFFERED=1"},
		Address:        cfg.Backend.Address(),
		ReadyMarkers:   cfg.Supervisor.ReadyMarkers,
		LaunchTimeout:  cfg.Supervisor.LaunchTimeout,
		HealthInterval: cfg.Supervisor.HealthInterval,
		HealthAttempts: cfg.Supervisor.HealthAttempts,
		ShutdownGrace:  cfg.Supervisor.ShutdownGrace,
		OutputBuffer:   cfg.Supervisor.OutputBuffer,
	}
}

// commandContext bounds one-shot CLI calls against a running backend.
func commandContext() (context.Context, context.CancelFunc) {
	timeout := 30 * time.Second
	if appConfig != nil && appConfig.Backend.RequestTimeout > 0 {
		timeout = appConfig.Backend.RequestTimeout + 5*time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

func writeOutputTail(w io.Writer, lines []procmonitor.Line) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, "last backend output:")
	for _, l := range lines {
		fmt.Fprintf(w, "  [%s] %s\n", l.Stream, l.Text)
	}
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
