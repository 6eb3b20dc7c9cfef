package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/di"
	"github.com/mikey/spam-doctor/internal/factory"
	"github.com/mikey/spam-doctor/internal/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a Postfix content filter",
	Long: `Accept mail over SMTP, add spam headers to every message and reinject it
into Postfix. Logging follows the logging section of the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := di.BuildContainer(di.Options{ConfigFile: configFile})
		if err != nil {
			return fmt.Errorf("failed to build dependency container: %w", err)
		}
		return container.Invoke(func(
			logger *zap.Logger,
			messageFilter ports.MessageFilter,
			stores *factory.Stores,
			classifier core.Classifier,
		) error {
			defer release(logger, stores, classifier)
			return serve(cmd.Context(), logger, messageFilter)
		})
	},
}

// serve runs the filter until SIGINT or SIGTERM
func serve(ctx context.Context, logger *zap.Logger, messageFilter ports.MessageFilter) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(messageFilter.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		return messageFilter.Stop()
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}
