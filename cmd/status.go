package cmd

import (
	"fmt"
	"time"

	"github.com/MasegoMashiane/Second-Sales-Automation-bot/infrastructure/backend"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend reachability, bot state and recorded health checks",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) {
	ctx, cancel := commandContext()
	defer cancel()

	fmt.Printf("backend   %s\n", backendClient.BaseURL())
	if err := backendClient.Health(ctx); err != nil {
		if backend.IsUnreachable(err) {
			fmt.Println("health    unreachable")
		} else {
			fmt.Printf("health    error: %v\n", err)
		}
	} else {
		fmt.Println("health    ok")

		report, err := backendClient.Status(ctx)
		if err != nil {
			logrus.WithError(err).Error("[BACKEND] failed to read bot status")
		} else {
			fmt.Printf("bot       %s\n", report.State)
			if report.Running() {
				fmt.Printf("uptime    %s\n", report.UptimeFormatted)
			}
			if report.LastSync != "" {
				fmt.Printf("last sync %s\n", report.LastSync)
			}
		}
	}

	records, err := healthUsecase.GetStatus(ctx)
	if err != nil {
		logrus.WithError(err).Warn("[HEALTH] failed to read health ledger")
		return
	}
	if len(records) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(padRight("ENTITY", 20) + padRight("STATUS", 10) + padRight("CHECKED", 18) + "LAST SUCCESS")
	for _, r := range records {
		lastSuccess := "never"
		if r.LastSuccess != nil {
			lastSuccess = humanize.Time(*r.LastSuccess)
		}
		fmt.Println(
			padRight(string(r.EntityType)+"/"+r.EntityID, 20) +
				padRight(string(r.Status), 10) +
				padRight(humanize.Time(r.LastChecked), 18) +
				lastSuccess,
		)
		if r.LastMessage != "" && time.Since(r.LastChecked) < 24*time.Hour {
			fmt.Printf("  %s\n", r.LastMessage)
		}
	}
}
