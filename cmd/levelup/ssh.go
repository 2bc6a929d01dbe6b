package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/spf13/cobra"

	"levelup/internal/services"
	"levelup/internal/tui"
)

func newSSHCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "ssh",
		Short: "Serve the terminal dashboard over SSH",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := openApp(ctx, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = a.cfg.SSHAddr
			}
			s, err := wish.NewServer(
				wish.WithAddress(addr),
				wish.WithHostKeyPath(a.cfg.SSHHostKeyPath),
				wish.WithMiddleware(
					bubbletea.Middleware(teaHandler(a.tracker, a.logger)),
					activeterm.Middleware(), // Bubble Tea apps usually require a PTY.
					logging.Middleware(),
				),
			)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			a.logger.Info("starting SSH server", "addr", addr)
			go func() {
				if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("stopping SSH server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to SSH_ADDR)")
	return cmd
}

// teaHandler gives every session its own model bound to the shared tracker.
// Styles come from the session's renderer, not the server's stdout.
func teaHandler(tracker *services.Tracker, logger *log.Logger) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		renderer := bubbletea.MakeRenderer(s)
		remote := "unknown"
		if addr, ok := s.RemoteAddr().(*net.TCPAddr); ok {
			remote = addr.IP.String()
		}
		m := tui.New(s.Context(), tui.Local{Tracker: tracker}, renderer, logger.With("session", s.User(), "remote", remote))
		return m, []tea.ProgramOption{tea.WithAltScreen()}
	}
}
