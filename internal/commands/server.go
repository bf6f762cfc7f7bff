package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/playlint/playlint/internal/api"
	"github.com/playlint/playlint/internal/dispatcher"
	"github.com/playlint/playlint/internal/governor"
	"github.com/playlint/playlint/internal/guard"
	"github.com/playlint/playlint/internal/invoker"
	"github.com/playlint/playlint/internal/profile"
	"github.com/playlint/playlint/internal/toolserver"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the lint API server",
	Long:  `Start the HTTP lint API server with Echo framework`,
	RunE:  runServer,
}

var toolServerCmd = &cobra.Command{
	Use:   "toolserver",
	Short: "Start the tool-protocol server",
	Long: `Start the agent-facing tool-protocol server: tool dispatch over a
uniform envelope plus SSE/WebSocket progress events`,
	RunE: runToolServer,
}

// shutdownable is the common surface of both servers.
type shutdownable interface {
	Start() error
	Shutdown(ctx context.Context) error
}

func runServer(cmd *cobra.Command, args []string) error {
	reg := profile.NewRegistry()
	g := guard.New(cfg.Lint.MaxUploadBytes)
	gov := governor.New(cfg.Governor.Capacity, cfg.Lint.Timeout, cfg.Governor.Wait)
	inv := invoker.New(cfg.Lint.Command, cfg.Lint.Timeout)

	return serve(api.New(cfg, reg, g, gov, inv))
}

func runToolServer(cmd *cobra.Command, args []string) error {
	reg := profile.NewRegistry()
	g := guard.New(cfg.Lint.MaxUploadBytes)
	gov := governor.New(cfg.Governor.Capacity, cfg.Lint.Timeout, cfg.Governor.Wait)
	inv := invoker.New(cfg.Lint.Command, cfg.Lint.Timeout)

	hub := toolserver.NewHub()
	d := dispatcher.New(reg, g, gov, inv, hub)

	return serve(toolserver.New(cfg, d, hub))
}

// serve runs a server until an error or a shutdown signal.
func serve(server shutdownable) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("\n⚠️  Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			cfg.Server.ShutdownTimeout,
		)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return nil

	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}
