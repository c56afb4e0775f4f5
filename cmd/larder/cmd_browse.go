package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/larder/internal/tui"
)

func newBrowseCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive recipe catalog (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts)
		},
	}
}

func runBrowse(cmd *cobra.Command, opts *globalOptions) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.requireSession()
	if err != nil {
		return err
	}

	app := tui.NewApp(e.cfg, e.client, sess, e.gate)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running catalog: %w", err)
	}

	if app.SignedOut() {
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out. Run 'larder login' to sign in again.")
	}
	return nil
}
