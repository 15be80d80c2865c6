package present

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"
	"github.com/soehlert/tunedisplay/pkg/lastfm"
)

// FormatTrack applies a Go template to the track data.
// Available fields: .Artist, .Title, .Album, .ArtURL
func FormatTrack(track *lastfm.Track, templateStr string) (string, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, track); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// PadToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
// If text is shorter than width, pads with spaces.
func PadToWidth(text string, width int) string {
	if width <= 0 {
		return text // no padding requested
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			return runewidth.Truncate(ellipsis, width, "")
		}

		truncated := runewidth.Truncate(text, width-ellipsisWidth, "")
		result := truncated + ellipsis

		// Truncate measures in columns, so double-check the result
		// landed exactly on the target width.
		resultWidth := runewidth.StringWidth(result)
		if resultWidth < width {
			return result + strings.Repeat(" ", width-resultWidth)
		} else if resultWidth > width {
			return runewidth.Truncate(result, width, "")
		}
		return result
	} else if currentWidth < width {
		return text + strings.Repeat(" ", width-currentWidth)
	}

	return text // exactly the right width
}
