package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log/v2"
	"github.com/spf13/cobra"

	"github.com/interchat/interchat/internal/server"
)

var (
	serveAddr   string
	serveSecret string
)

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", server.DefaultAddr, "Address to listen on")
	serveCmd.Flags().StringVar(&serveSecret, "secret", "interchat-dev-secret", "HMAC secret for demo tokens")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local development conversation store",
	Long: `Runs an in-memory stand-in for the remote conversation store. It speaks the
same HTTP surface the client does, issues demo bearer tokens (any customer
number, password "demo"), and answers with canned banking replies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")

		logger := log.New(os.Stderr)
		logger.SetReportTimestamp(true)
		slog.SetDefault(slog.New(logger))
		if debug {
			logger.SetLevel(log.DebugLevel)
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}

		srv := server.NewServer(serveAddr, serveSecret)
		srv.SetLogger(slog.Default())
		slog.Info("Starting interchat store...", "addr", serveAddr)

		errch := make(chan error, 1)
		sigch := make(chan os.Signal, 1)
		signal.Notify(sigch, os.Interrupt)

		go func() {
			errch <- srv.ListenAndServe()
		}()

		var err error
		select {
		case <-sigch:
			slog.Info("Received interrupt signal...")
		case err = <-errch:
			if err != nil && !errors.Is(err, server.ErrServerClosed) {
				_ = srv.Close()
				slog.Error("Server error", "error", err)
				return fmt.Errorf("server error: %v", err)
			}
		}

		if errors.Is(err, server.ErrServerClosed) {
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		slog.Info("Shutting down...")

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Failed to shutdown server", "error", err)
			return fmt.Errorf("failed to shutdown server: %v", err)
		}

		return nil
	},
}
