/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/soehlert/tunedisplay/internal/config"
	"github.com/soehlert/tunedisplay/internal/present"
	"github.com/soehlert/tunedisplay/pkg/lastfm"
	"github.com/spf13/cobra"
)

// nowCmd represents the now command
var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Print the currently playing track once",
	Long: `Query Last.fm and print the currently playing track.

The output format can be customized in ~/.config/tunedisplay/config.yaml
using a Go template. Available fields: .Artist, .Title, .Album, .ArtURL

Exit codes:
  0 - Track is currently playing
  1 - Nothing playing, or the query failed`,
	RunE: runNow,
}

func init() {
	rootCmd.AddCommand(nowCmd)

	// Add format flag to override config
	nowCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	// Add width flag to set fixed output width
	nowCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled)")
}

func runNow(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Check for format flag override
	formatFlag, _ := cmd.Flags().GetString("format")
	if formatFlag != "" {
		cfg.OutputFormat = formatFlag
	}

	// Create the Last.fm client
	client, err := lastfm.NewClient(lastfm.Config{
		APIKey:   cfg.LastFM.APIKey,
		Username: cfg.LastFM.Username,
	})
	if err != nil {
		return fmt.Errorf("failed to create Last.fm client: %w", err)
	}

	width, _ := cmd.Flags().GetInt("width")

	// Cancel explicitly rather than deferring: the nothing-playing
	// exit below would skip a deferred cancel.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	output, playing, err := nowOutput(ctx, client.User(), cfg.OutputFormat, width)
	cancel()
	if err != nil {
		return err
	}

	// Nothing playing: exit with code 1
	if !playing {
		os.Exit(1)
		return nil
	}

	fmt.Println(output)
	return nil
}

// nowOutput queries the now-playing track and renders it with the
// given template and width. playing is false when nothing is playing.
func nowOutput(ctx context.Context, svc *lastfm.UserService, format string, width int) (output string, playing bool, err error) {
	track, err := svc.NowPlaying(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to get current track: %w", err)
	}
	if track == nil {
		return "", false, nil
	}

	output, err = present.FormatTrack(track, format)
	if err != nil {
		return "", false, fmt.Errorf("failed to format output: %w", err)
	}

	if width > 0 {
		output = present.PadToWidth(output, width)
	}

	return output, true, nil
}
