package cmd

import (
	"context"
	"fmt"
	"os"

	domainBot "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bot"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type botAction func(ctx context.Context) (domainBot.ActionResult, error)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Control the automation bot running inside the backend",
}

func init() {
	// backendClient is built in initApp, so actions resolve it at run time.
	botCmd.AddCommand(
		newBotActionCmd("start", "Start the automation bot", func(ctx context.Context) (domainBot.ActionResult, error) {
			return backendClient.StartBot(ctx)
		}),
		newBotActionCmd("stop", "Stop the automation bot", func(ctx context.Context) (domainBot.ActionResult, error) {
			return backendClient.StopBot(ctx)
		}),
		newBotActionCmd("restart", "Restart the automation bot", func(ctx context.Context) (domainBot.ActionResult, error) {
			return backendClient.RestartBot(ctx)
		}),
	)
	rootCmd.AddCommand(botCmd)
}

func newBotActionCmd(use, short string, action botAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := commandContext()
			defer cancel()

			result, err := action(ctx)
			if err != nil {
				logrus.WithError(err).Errorf("[BACKEND] bot %s failed", use)
				os.Exit(1)
			}
			fmt.Println(formatActionResult(result))
		},
	}
}

func formatActionResult(result domainBot.ActionResult) string {
	if result.PID > 0 {
		return fmt.Sprintf("%s: %s (pid %d)", result.Status, result.Message, result.PID)
	}
	return fmt.Sprintf("%s: %s", result.Status, result.Message)
}
