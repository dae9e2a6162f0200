package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yaps/pkg/domain"
	"yaps/pkg/store"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := sessionOf(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			switch sess.State(ctx) {
			case store.StateAuthenticated:
				u, _ := sess.CurrentUser(ctx)
				fmt.Fprintf(out, "signed in as %s\n", u.Email)
			case store.StatePending:
				u, _ := sess.TempUser(ctx)
				fmt.Fprintf(out, "registration pending for %s\n", u.Email)
			default:
				fmt.Fprintln(out, "not signed in")
			}
			return nil
		},
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in, or start registration for a new college email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := sessionOf(cmd)
			if err != nil {
				return err
			}
			if err := domain.ValidateCollegeEmail(args[0]); err != nil {
				return err
			}
			u, state, err := sess.Begin(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if state == store.StateAuthenticated {
				fmt.Fprintf(out, "signed in as %s\n", u.Email)
				return nil
			}
			fmt.Fprintf(out, "welcome %s, pick your college and courses with: yaps register --college <id> --course <id>\n", u.Email)
			return nil
		},
	}
}

var errNoCourses = errors.New("select at least one course with --course")

func newRegisterCmd() *cobra.Command {
	var (
		collegeID string
		courseIDs []string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Finish registration by choosing a college and courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := sessionOf(cmd)
			if err != nil {
				return err
			}
			if len(courseIDs) == 0 {
				return errNoCourses
			}
			ctx := cmd.Context()
			st := sess.Store()
			if _, ok := st.College(ctx, collegeID); !ok {
				return fmt.Errorf("unknown college %q", collegeID)
			}
			offered := make(map[string]bool)
			for _, c := range st.CollegeCourses(ctx, collegeID) {
				offered[c.ID] = true
			}
			for _, id := range courseIDs {
				if !offered[id] {
					return fmt.Errorf("course %q is not offered by %s", id, collegeID)
				}
			}
			u, err := sess.CompleteRegistration(ctx, collegeID, courseIDs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s with %d courses\n", u.Email, len(u.Courses))
			return nil
		},
	}
	cmd.Flags().StringVar(&collegeID, "college", "", "college id")
	cmd.Flags().StringSliceVar(&courseIDs, "course", nil, "course id (repeatable)")
	_ = cmd.MarkFlagRequired("college")
	return cmd
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your college and courses",
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
			st := sess.Store()
			college := u.CollegeID
			if c, ok := st.College(ctx, u.CollegeID); ok {
				college = c.Name
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "email:   %s\n", u.Email)
			fmt.Fprintf(out, "college: %s\n", college)
			codes := make([]string, 0, len(u.Courses))
			for _, c := range st.UserCourses(ctx, u) {
				codes = append(codes, c.Code)
			}
			fmt.Fprintf(out, "courses: %s\n", strings.Join(codes, ", "))
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := sessionOf(cmd)
			if err != nil {
				return err
			}
			if err := sess.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}
