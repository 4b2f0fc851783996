package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	domainBridge "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bridge"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/infrastructure/desktop"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/infrastructure/supervisor"
	pkgError "github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/error"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/ui/rest"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the backend and serve the UI bridge",
	Run:   runShell,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runShell(_ *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialogs := desktop.NewDialogs(appConfig.App.Name)
	sup := supervisor.New(supervisorConfig(appConfig), backendClient, supervisor.WithHealthLedger(healthUsecase))

	if err := startBackend(ctx, sup); err != nil {
		reportStartupFailure(err, sup, dialogs)
		shutdownBackend(sup, appConfig.Supervisor.ShutdownGrace)
		StopApp()
		os.Exit(1)
	}

	dashboard := usecase.NewDashboardService(backendClient, appConfig.Dashboard.ActivityLimit, usecase.WithBotLedger(healthUsecase))
	bridge := usecase.NewBridgeService(backendClient, dashboard, dialogs, dialogs,
		usecase.WithMaxUploadSize(appConfig.Bridge.MaxUploadSize),
	)
	app := rest.NewBridgeApp(*appConfig, bridge, healthUsecase)
	rest.InitRestBackendMonitor(app, sup)

	ln, err := net.Listen("tcp", appConfig.Bridge.ListenAddress())
	if err != nil {
		logrus.WithError(err).Error("[BRIDGE] failed to listen")
		shutdownBackend(sup, appConfig.Supervisor.ShutdownGrace)
		StopApp()
		os.Exit(1)
	}

	// The UI host reads these two lines to find and authenticate to the bridge.
	fmt.Printf("BRIDGE_URL http://%s\n", ln.Addr().String())
	fmt.Printf("BRIDGE_TOKEN %s\n", appConfig.Bridge.Token)
	logrus.Infof("[BRIDGE] serving %d commands on %s", len(bridge.Commands()), ln.Addr())

	go dashboard.Run(ctx, appConfig.Dashboard.RefreshInterval)
	go func() {
		if err := app.Listener(ln); err != nil {
			logrus.WithError(err).Error("[BRIDGE] listener stopped")
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logrus.Info("[APP] Reception of termination signal, shutting down gracefully...")
	case <-sup.Done():
		exitCode = 1
		logrus.WithError(sup.ExitErr()).Error("[SUPERVISOR] backend exited unexpectedly")
		sup.WaitOutput(time.Second)
		writeOutputTail(os.Stderr, sup.RecentOutput(20))
		_ = dialogs.Notify(context.Background(), appConfig.App.Name, "The automation backend stopped unexpectedly.")
	}

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logrus.Errorf("[BRIDGE] Error during Fiber shutdown: %v", err)
	}
	shutdownBackend(sup, appConfig.Supervisor.ShutdownGrace)
	StopApp()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// startBackend runs the two startup gates: the readiness marker, then the health probe.
func startBackend(ctx context.Context, sup *supervisor.Supervisor) error {
	if err := sup.Launch(ctx); err != nil {
		return err
	}
	return sup.WaitUntilHealthy(ctx)
}

func reportStartupFailure(err error, sup *supervisor.Supervisor, notifier domainBridge.Notifier) {
	message := "The automation backend could not be started."
	var launchErr *pkgError.LaunchTimeoutError
	var healthErr *pkgError.NotHealthyError
	switch {
	case errors.Is(err, context.Canceled):
		logrus.Info("[APP] startup cancelled")
		return
	case errors.As(err, &launchErr):
		message = "The automation backend did not start in time."
	case errors.As(err, &healthErr):
		message = "The automation backend started but never became healthy."
	}

	logrus.WithError(err).WithField("state", sup.State()).Error("[SUPERVISOR] fatal startup failure")
	writeOutputTail(os.Stderr, sup.RecentOutput(20))
	if notifyErr := notifier.Notify(context.Background(), appConfig.App.Name, message); notifyErr != nil {
		logrus.WithError(notifyErr).Debug("[APP] could not show startup failure")
	}
}

func shutdownBackend(sup *supervisor.Supervisor, grace time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*grace+time.Second)
	defer cancel()
	if err := sup.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("[SUPERVISOR] shutdown failed")
	}
}
