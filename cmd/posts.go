package cmd

import (
	"context"
	"fmt"
	"os"

	domainPost "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/post"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/validations"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Inspect and edit scheduled social media posts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled posts",
	Args:  cobra.NoArgs,
	Run:   runPostsList,
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a scheduled post",
	Args:  cobra.ExactArgs(1),
	Run:   runPostsDelete,
}

var postsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change caption, hashtags or schedule of a post",
	Args:  cobra.ExactArgs(1),
	Run:   runPostsUpdate,
}

func init() {
	postsUpdateCmd.Flags().String("caption", "", "new caption")
	postsUpdateCmd.Flags().String("hashtags", "", "new hashtags")
	postsUpdateCmd.Flags().String("date", "", "new schedule date (YYYY-MM-DD)")
	postsUpdateCmd.Flags().String("time", "", "new schedule time (HH:MM)")

	postsCmd.AddCommand(postsListCmd, postsDeleteCmd, postsUpdateCmd)
	rootCmd.AddCommand(postsCmd)
}

func runPostsList(_ *cobra.Command, _ []string) {
	ctx, cancel := commandContext()
	defer cancel()

	posts, err := backendClient.ListPosts(ctx)
	if err != nil {
		logrus.WithError(err).Error("[BACKEND] failed to list posts")
		os.Exit(1)
	}
	if len(posts) == 0 {
		fmt.Println("no scheduled posts")
		return
	}

	fmt.Println(padRight("ID", 6) + padRight("PLATFORM", 11) + padRight("WHEN", 18) + padRight("STATUS", 9) + "CAPTION")
	for _, p := range posts {
		fmt.Println(
			padRight(p.ID, 6) +
				padRight(string(p.Platform), 11) +
				padRight(p.Date+" "+p.Time, 18) +
				padRight(string(p.Status), 9) +
				truncate(p.Caption, 48),
		)
	}
}

func runPostsDelete(_ *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	if err := backendClient.DeletePost(ctx, args[0]); err != nil {
		logrus.WithError(err).Errorf("[BACKEND] failed to delete post %s", args[0])
		os.Exit(1)
	}
	fmt.Printf("post %s deleted\n", args[0])
}

func runPostsUpdate(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	request := updateRequestFromFlags(cmd)
	if err := updatePost(ctx, args[0], request); err != nil {
		logrus.WithError(err).Errorf("[BACKEND] failed to update post %s", args[0])
		os.Exit(1)
	}
	fmt.Printf("post %s updated\n", args[0])
}

// updateRequestFromFlags only sets the fields whose flags were given.
func updateRequestFromFlags(cmd *cobra.Command) domainPost.UpdateRequest {
	var request domainPost.UpdateRequest
	pick := func(name string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		value, _ := cmd.Flags().GetString(name)
		return &value
	}
	request.Caption = pick("caption")
	request.Hashtags = pick("hashtags")
	request.ScheduleDate = pick("date")
	request.ScheduleTime = pick("time")
	return request
}

func updatePost(ctx context.Context, id string, request domainPost.UpdateRequest) error {
	if err := validations.ValidateUpdatePost(ctx, request); err != nil {
		return err
	}
	return backendClient.UpdatePost(ctx, id, request)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
