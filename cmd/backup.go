package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Ask the backend to back up its data",
	Run:   runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
}

func runBackup(_ *cobra.Command, _ []string) {
	ctx, cancel := commandContext()
	defer cancel()

	result, err := backendClient.Backup(ctx)
	if err != nil {
		logrus.WithError(err).Error("[BACKEND] backup failed")
		os.Exit(1)
	}

	fmt.Printf("%s: %s\n", result.Status, result.Message)
	if result.Timestamp != "" {
		fmt.Printf("timestamp: %s\n", result.Timestamp)
	}
	if result.Output != "" {
		fmt.Println(result.Output)
	}
}
