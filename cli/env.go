// ABOUTME: Shared state for CLI commands: database, config, logger and output
// ABOUTME: Builds the deal workspace every deal command runs through
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/handlers"
)

// Env is what a command needs to run.
type Env struct {
	DB      *sql.DB
	Config  *config.Config
	Logger  *log.Logger
	Out     io.Writer
	In      io.Reader
	Uploads deal.Uploader
	Clock   func() time.Time
	Version string
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Env) in() io.Reader {
	if e.In == nil {
		return os.Stdin
	}
	return e.In
}

func (e *Env) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

func (e *Env) workspace() *handlers.Workspace {
	opts := deal.Options{
		Clock:   e.Clock,
		Uploads: e.Uploads,
		Logger:  e.Logger,
	}
	if e.Config != nil {
		opts.User = e.Config.User
	}
	return handlers.NewWorkspace(e.DB, opts)
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

func parseWhen(flagName, raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --%s %q (use YYYY-MM-DD or YYYY-MM-DD HH:MM)", flagName, raw)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func formatCents(cents int64, currency string) string {
	return fmt.Sprintf("%s %.2f", currency, float64(cents)/100)
}
