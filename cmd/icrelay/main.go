package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"icrelay/internal/config"
	"icrelay/internal/constants"
	"icrelay/internal/dice"
	"icrelay/internal/models"
	"icrelay/internal/permission"
	"icrelay/internal/privacy"
	"icrelay/internal/relay"
	"icrelay/internal/service"
	"icrelay/internal/tracing"
	"icrelay/pkg/discord"
	"icrelay/pkg/media"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type serveOptions struct {
	configPath string
	envFile    string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "icrelay",
		Short:        "Moderated announcement relay for Discord",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Discord bot and the HTTP ingress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a JSON or YAML config file (environment only when empty)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging (includes sensitive information)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "icrelay %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		},
	}
}

func run(ctx context.Context, opts serveOptions) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	configureLogger(logger, cfg, opts.verbose)
	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting icrelay")

	if cfg.Tracing.ServiceVersion == "" || cfg.Tracing.ServiceVersion == tracing.DefaultTracingConfig().ServiceVersion {
		cfg.Tracing.ServiceVersion = Version
	}
	tracingManager := tracing.NewTracingManager(cfg.Tracing, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	channels, err := service.NewChannelManager(cfg.Destinations, cfg.Ingress)
	if err != nil {
		return fmt.Errorf("failed to create channel manager: %w", err)
	}
	logger.WithFields(privacy.MaskSensitiveFields(map[string]interface{}{
		"token":          cfg.Discord.Token,
		"secret":         cfg.Ingress.Secret,
		"destinations":   channels.GetDestinationNames(),
		"ingress_routes": channels.GetRouteIDs(),
		"prefix":         cfg.Discord.CommandPrefix,
	})).Info("Configuration loaded")

	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		return err
	}
	transport := discord.NewTransport(session)

	cleaner := relay.NewCleaner(transport, time.Duration(cfg.Relay.CleanupDelayMs)*time.Millisecond, logger)
	defer cleaner.Stop()

	engine := relay.NewEngine(cfg.Relay, transport, media.NewFetcher(cfg.Media, logger), cleaner, logger)

	router := service.NewCommandRouter(
		cfg.Discord.CommandPrefix,
		permission.NewGate(cfg.Permissions),
		engine,
		transport,
		channels,
		dice.NewRoller(),
		logger,
	)
	bot := discord.NewBot(session, router, logger)

	ingress := service.NewIngressService(engine, channels, cfg.Ingress.AuthorName, logger)
	server := NewServer(cfg, ingress, logger)
	server.SetVerbose(opts.verbose)

	ctx = service.WithVerbose(ctx, opts.verbose)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(gctx)
	})
	g.Go(func() error {
		if err := server.Start(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.DefaultGracefulShutdownSec)*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server gracefully: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("icrelay stopped with error")
		return err
	}

	logger.Info("Shutdown completed")
	return nil
}

// configureLogger applies format and level; --verbose always wins
func configureLogger(logger *logrus.Logger, cfg *models.Config, verbose bool) {
	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.Info("Verbose logging enabled - sensitive information will be logged")
		return
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}
