// ABOUTME: Builds the structured logger shared by the CLI and MCP server
// ABOUTME: Text output on the given writer, level taken from config
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/dealdesk/config"
)

// New returns a logger writing to w at cfg.LogLevel.
func New(w io.Writer, cfg *config.Config) (*log.Logger, error) {
	level := log.InfoLevel
	if cfg != nil && cfg.LogLevel != "" {
		parsed, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("parse logging level %q: %w", cfg.LogLevel, err)
		}
		level = parsed
	}
	if w == nil {
		w = io.Discard
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          config.AppName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       log.TextFormatter,
	}), nil
}
