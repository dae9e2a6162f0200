package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04 UTC"

func newCommentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and post course discussion comments",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <courseId>",
			Short: "List comments of a course, newest first",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				sess, err := sessionOf(cmd)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tPOSTED\tUPVOTES\tTEXT")
				for _, c := range sess.Store().CourseComments(cmd.Context(), args[0]) {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.ID, c.Timestamp.UTC().Format(timeLayout), c.Upvotes, c.Text)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "post <courseId> <text>",
			Short: "Post an anonymous comment",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				sess, err := sessionOf(cmd)
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				u, err := sess.RequireUser(ctx)
				if err != nil {
					return err
				}
				if !u.Enrolled(args[0]) {
					return fmt.Errorf("you are not enrolled in %s", args[0])
				}
				c, err := sess.Store().PostComment(ctx, args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "posted %s\n", c.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "upvote <commentId>",
			Short: "Upvote a comment",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				sess, err := sessionOf(cmd)
				if err != nil {
					return err
				}
				c, err := sess.Store().UpvoteComment(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d upvotes\n", c.ID, c.Upvotes)
				return nil
			},
		},
	)
	return cmd
}

func newConfessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confessions",
		Short: "Read and post confessions for your college",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your college's confessions, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				sess, err := sessionOf(cmd)
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				u, err := sess.RequireUser(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tPOSTED\tUPVOTES\tTEXT")
				for _, c := range sess.Store().CollegeConfessions(ctx, u.CollegeID) {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.ID, c.Timestamp.UTC().Format(timeLayout), c.Upvotes, c.Text)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "post <text>",
			Short: "Post an anonymous confession",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				sess, err := sessionOf(cmd)
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				u, err := sess.RequireUser(ctx)
				if err != nil {
					return err
				}
				c, err := sess.Store().PostConfession(ctx, u.CollegeID, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "posted %s\n", c.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "upvote <confessionId>",
			Short: "Upvote a confession",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				sess, err := sessionOf(cmd)
				if err != nil {
					return err
				}
				c, err := sess.Store().UpvoteConfession(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d upvotes\n", c.ID, c.Upvotes)
				return nil
			},
		},
	)
	return cmd
}
