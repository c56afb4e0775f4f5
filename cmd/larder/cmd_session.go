package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pders01/larder/internal/debuglog"
	"github.com/pders01/larder/internal/session"
)

func newLoginCmd(opts *globalOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the recipe service",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if username == "" || password == "" {
				if err := promptCredentials(&username, &password); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.API.HTTPTimeout)
			defer cancel()

			sess, err := e.gate.Login(ctx, username, password)
			fmt.Fprintln(cmd.OutOrStdout(), session.Message(err))
			if err != nil {
				debuglog.Warnf("login failed: %v", err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), session.Greeting(sess))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	return cmd
}

func promptCredentials(username, password *string) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt cancelled: %w", err)
	}
	return nil
}

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.gate.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			sess, err := e.requireSession()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (user %d, since %s)\n",
				session.Greeting(sess), sess.UserID, sess.CreatedAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
}
