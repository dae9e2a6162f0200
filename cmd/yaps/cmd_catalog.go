package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"yaps/pkg/domain"
)

func newCollegesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "colleges",
		Short: "List colleges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := sessionOf(cmd)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, c := range sess.Store().Colleges(cmd.Context()) {
				fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Name)
			}
			return tw.Flush()
		},
	}
}

func newCoursesCmd() *cobra.Command {
	var collegeID string
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List courses of a college, or your own courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := sessionOf(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st := sess.Store()
			var courses []domain.Course
			if collegeID != "" {
				courses = st.CollegeCourses(ctx, collegeID)
			} else {
				u, err := sess.RequireUser(ctx)
				if err != nil {
					return fmt.Errorf("%w (or pass --college)", err)
				}
				courses = st.UserCourses(ctx, u)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCODE\tNAME")
			for _, c := range courses {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Code, c.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&collegeID, "college", "", "college id")
	return cmd
}
