package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"locsync/internal/config"
	"locsync/internal/watcher"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})

	rootCmd := &cobra.Command{
		Use:   "locsync",
		Short: "Localization key extraction and synchronization tool",
		Long:  "Statically discovers every localization key used by a source codebase and reconciles it against on-disk translation catalogs.",
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run one extraction pass and update translation catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			strict, _ := cmd.Flags().GetBool("strict")
			verbose, _ := cmd.Flags().GetBool("verbose")

			return runExtract(configPath, strict, verbose)
		},
	}

	cmd.Flags().String("config", "", "Path to the config file (default locsync.yaml)")
	cmd.Flags().Bool("strict", false, "Exit non-zero when any input file was skipped")
	cmd.Flags().Bool("verbose", false, "Enable debug logging")

	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch input files and re-run extraction on changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			debounce, _ := cmd.Flags().GetDuration("debounce")
			verbose, _ := cmd.Flags().GetBool("verbose")

			return runWatch(configPath, debounce, verbose)
		},
	}

	cmd.Flags().String("config", "", "Path to the config file (default locsync.yaml)")
	cmd.Flags().Duration("debounce", 300*time.Millisecond, "Delay between a change and the re-run")
	cmd.Flags().Bool("verbose", false, "Enable debug logging")

	return cmd
}

func runExtract(configPath string, strict, verbose bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := loadConfig(configPath, verbose)
	if err != nil {
		return err
	}

	summary, err := NewRunner(cfg, Hooks{}).Run(ctx)
	if err != nil {
		return err
	}

	if strict && len(summary.SkippedFiles) > 0 {
		return fmt.Errorf("%d file(s) skipped", len(summary.SkippedFiles))
	}

	return nil
}

func runWatch(configPath string, debounce time.Duration, verbose bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := loadConfig(configPath, verbose)
	if err != nil {
		return err
	}

	runner := NewRunner(cfg, Hooks{})

	run := func(ctx context.Context) error {
		_, err := runner.Run(ctx)
		return err
	}

	if err := run(ctx); err != nil {
		return err
	}

	err = watcher.New(cfg.Input, debounce).Watch(ctx, run)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func loadConfig(path string, verbose bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if verbose {
		cfg.Verbose = true
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(level)

	return cfg, nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}
