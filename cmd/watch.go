package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/soehlert/tunedisplay/internal/artcache"
	"github.com/soehlert/tunedisplay/internal/config"
	"github.com/soehlert/tunedisplay/internal/present"
	"github.com/soehlert/tunedisplay/internal/watch"
	"github.com/soehlert/tunedisplay/pkg/lastfm"
	"github.com/spf13/cobra"
)

var (
	watchNoArt    bool
	watchTUI      bool
	watchInterval int
	watchLogFile  string
	watchLogLevel string
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously monitor and display the now-playing track",
	Long: `Poll Last.fm on an interval and keep the display in sync with
whatever is currently playing.

The monitor will:
- Query Last.fm every few seconds for the now-playing track
- Download album art when the track changes, reusing it otherwise
- Open the art with the platform image viewer (or render a terminal UI with --tui)
- Clear the display when playback stops
- Handle graceful shutdown on SIGINT/SIGTERM, removing the cached art file

Credentials come from LASTFM_API_KEY and LASTFM_USERNAME, read from the
environment or a .env file in the working directory.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	// Command-line flags
	watchCmd.Flags().BoolVar(&watchNoArt, "no-art", false, "Disable downloading and displaying album art")
	watchCmd.Flags().BoolVar(&watchTUI, "tui", false, "Render metadata in a terminal UI instead of spawning a viewer")
	watchCmd.Flags().IntVar(&watchInterval, "interval", 0, "Seconds between Last.fm checks (default from config, 3)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "Log file path (default: stderr)")
	watchCmd.Flags().StringVar(&watchLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Fail fast on missing credentials, before any network call
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cmd.Flags().Changed("interval") {
		cfg.PollInterval = watchInterval
	}

	// Set up logging. The TUI owns the terminal, so logs go to a file
	// or are silenced rather than fighting it for the screen.
	logger := setupLogger(watchLogFile, watchLogLevel)
	if watchTUI && watchLogFile == "" {
		logger = zerolog.Nop()
	}

	logger.Info().
		Str("version", version).
		Str("user", cfg.LastFM.Username).
		Msg("Starting tunedisplay")

	// Create the Last.fm client
	client, err := lastfm.NewClient(lastfm.Config{
		APIKey:   cfg.LastFM.APIKey,
		Username: cfg.LastFM.Username,
	})
	if err != nil {
		return fmt.Errorf("failed to create Last.fm client: %w", err)
	}

	// Create the presenter
	var presenter present.Presenter
	var tui *present.TUI
	if watchTUI {
		tui = present.NewTUI(logger)
		presenter = tui
	} else {
		presenter = present.NewViewer(logger)
	}

	// Create the reconciler
	cache := artcache.New(lastfm.DefaultUserAgent, logger)
	reconciler := watch.New(watch.Config{
		Interval:   cfg.Interval(),
		ArtPath:    cfg.ImageFilename,
		ArtEnabled: !watchNoArt,
	}, client.User(), cache, presenter, logger)

	// Shut down cleanly on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if tui != nil {
		// The TUI owns the foreground; the watch loop runs beside it
		// and stops when the user quits the UI.
		watchDone := make(chan error, 1)
		tuiCtx, cancel := context.WithCancel(ctx)
		go func() {
			watchDone <- reconciler.Run(tuiCtx)
		}()

		if err := tui.Run(ctx); err != nil {
			cancel()
			<-watchDone
			return fmt.Errorf("terminal UI error: %w", err)
		}
		cancel()
		if err := <-watchDone; err != nil {
			return fmt.Errorf("watch loop error: %w", err)
		}
	} else {
		if err := reconciler.Run(ctx); err != nil {
			return fmt.Errorf("watch loop error: %w", err)
		}
	}

	logger.Info().Msg("Stopped")
	return nil
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	// Parse log level
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Set up output
	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	// Create logger
	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
