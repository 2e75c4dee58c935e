// Package logging builds the slog logger docket components share.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Supported log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to w at level in format. Empty values mean
// info and text.
func New(level, format string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}
