package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show emails and posts sent per day over the last week",
	Run:   runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) {
	ctx, cancel := commandContext()
	defer cancel()

	days, err := backendClient.WeeklyStats(ctx)
	if err != nil {
		logrus.WithError(err).Error("[BACKEND] failed to read weekly stats")
		os.Exit(1)
	}

	fmt.Println(padRight("DAY", 6) + padRight("DATE", 12) + padRight("EMAILS", 8) + "POSTS")
	for _, d := range days {
		fmt.Println(padRight(d.Day, 6) + padRight(d.Date, 12) + padRight(fmt.Sprint(d.Emails), 8) + fmt.Sprint(d.Posts))
	}
}
