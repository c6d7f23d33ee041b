package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ruesite/internal/build"
	"ruesite/internal/domain/config"
	domainerr "ruesite/internal/domain/errors"
	"ruesite/internal/logging"
	"ruesite/internal/serve"
)

var flags struct {
	configPath string
	addr       string
	dev        bool
	publicDir  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "ruesite",
		Short:         "Filterable article listing for a street archive",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "./site.yaml", "site configuration file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the listing, place and article views",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (overrides serve.addr)")
	serveCmd.Flags().BoolVar(&flags.dev, "dev", false, "reload browsers when data files change")

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Export the listing as static files",
		RunE:  runBuild,
	}
	buildCmd.Flags().StringVar(&flags.publicDir, "out", "", "output directory (overrides build.public_dir)")

	root.AddCommand(serveCmd, buildCmd)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if errors.Is(err, domainerr.ErrInvalid) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrDefault(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flags.addr != "" {
		cfg.Serve.Addr = flags.addr
	}
	if flags.dev {
		cfg.Serve.Dev = true
	}
	if flags.publicDir != "" {
		cfg.Build.PublicDir = flags.publicDir
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger()
	if err != nil {
		return fmt.Errorf("logger init error: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	s, err := serve.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("serve init error: %w", err)
	}
	defer s.Close()

	if err := s.ListenAndServe(cmd.Context(), cfg.Serve.Addr); err != nil {
		return fmt.Errorf("serve error: %w", err)
	}
	return nil
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger()
	if err != nil {
		return fmt.Errorf("logger init error: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	b := &build.Builder{Cfg: cfg, Logger: logger}
	res, err := b.Run(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info("build finished",
		zap.String("out", cfg.Build.PublicDir),
		zap.Int("articles", res.Articles),
		zap.Int("written", len(res.Written)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("removed", len(res.Removed)),
		zap.Int("warnings", len(res.Warnings)),
	)
	return nil
}
