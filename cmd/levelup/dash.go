package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"levelup/clients/levelup"
	"levelup/internal/config"
	"levelup/internal/tui"
)

func newDashCmd() *cobra.Command {
	var remote string
	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Run the terminal dashboard locally",
		Long:  "Run the terminal dashboard against the local database, or against a running levelup API with --remote.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			// The dashboard owns the terminal, so logs go to a file.
			f, err := tea.LogToFile("levelup.log", "")
			if err != nil {
				return fmt.Errorf("error opening log file: %w", err)
			}
			defer f.Close()

			if remote == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				remote = cfg.RemoteAPIURL
			}

			var backend tui.Backend
			logger := newLogger(f, log.InfoLevel)
			if remote != "" {
				backend = levelup.NewClient(remote)
				logger.Info("using remote API", "url", remote)
			} else {
				a, cleanup, err := openApp(ctx, f)
				if err != nil {
					return err
				}
				defer cleanup()
				logger = a.logger
				backend = tui.Local{Tracker: a.tracker}
			}

			m := tui.New(ctx, backend, lipgloss.DefaultRenderer(), logger)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "levelup API base URL (defaults to LEVELUP_API_URL)")
	return cmd
}
