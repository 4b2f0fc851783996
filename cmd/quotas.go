package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var quotasCmd = &cobra.Command{
	Use:   "quotas",
	Short: "Show daily sending quota usage per channel",
	Run:   runQuotas,
}

func init() {
	rootCmd.AddCommand(quotasCmd)
}

func runQuotas(_ *cobra.Command, _ []string) {
	ctx, cancel := commandContext()
	defer cancel()

	snapshot, err := backendClient.Quotas(ctx)
	if err != nil {
		logrus.WithError(err).Error("[BACKEND] failed to read quotas")
		os.Exit(1)
	}

	fmt.Println(padRight("CHANNEL", 12) + padRight("USED", 12) + padRight("USAGE", 9) + padRight("LEVEL", 10) + "OK/FAILED")
	for _, view := range snapshot.Views() {
		fmt.Println(
			padRight(string(view.Channel), 12) +
				padRight(fmt.Sprintf("%d/%d", view.Usage.Used, view.Usage.Limit), 12) +
				padRight(fmt.Sprintf("%.1f%%", view.Percentage), 9) +
				padRight(string(view.Level), 10) +
				fmt.Sprintf("%d/%d", view.Usage.Success, view.Usage.Failed),
		)
	}
}
