package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TWRT/taskboard/internal/client"
	"github.com/TWRT/taskboard/internal/models"
)

// passwordFrom prefers the flag and falls back to $TASKCTL_PASSWORD.
func passwordFrom(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("TASKCTL_PASSWORD"); env != "" {
		return env, nil
	}
	return "", &client.APIError{Kind: client.KindValidation, Message: "password required (--password or $TASKCTL_PASSWORD)"}
}

func newRegisterCmd(a *app) *cobra.Command {
	var in models.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passwordFrom(in.Password)
			if err != nil {
				return err
			}
			in.Password = password

			user, err := a.session.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Welcome, %s! Signed in as %s\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (at least 6 characters)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(password)
			if err != nil {
				return err
			}
			user, err := a.session.Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s (%d tasks)\n", user.Email, len(a.session.Store().State().Tasks))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.client.Token() == "" {
				fmt.Fprintln(a.out, "Not signed in.")
				return nil
			}
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			user, _ := a.session.User()
			c := a.session.Store().Counts()
			fmt.Fprintf(a.out, "%s <%s>\n%d tasks, %d pending\n", user.Name, user.Email, c.Total, c.Pending)
			return nil
		},
	}
}
