// ABOUTME: CLI commands for the charm-backed attachment store
// ABOUTME: Status, manual sync, auto-sync toggle, and wipe

package charm

import (
	"flag"
	"fmt"
	"io"

	"github.com/harperreed/dealdesk/config"
)

// SyncCommand dispatches "dealdesk sync <status|now|auto|wipe>".
func SyncCommand(w io.Writer, c *Client, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: dealdesk sync <status|now|auto|wipe>")
	}

	switch args[0] {
	case "status":
		return syncStatus(w, c)
	case "now":
		return syncNow(w, c, args[1:])
	case "auto":
		return setAutoSync(w, cfg, args[1:])
	case "wipe":
		return wipe(w, c, args[1:])
	}
	return fmt.Errorf("unknown sync command: %s", args[0])
}

func syncStatus(w io.Writer, c *Client) error {
	opts := c.Options()
	fmt.Fprintln(w, "Charm Sync Status")
	fmt.Fprintln(w, "─────────────────")
	fmt.Fprintf(w, "Server:    %s\n", opts.Host)
	fmt.Fprintf(w, "Auto-sync: %v\n", opts.AutoSync)

	id, err := c.ID()
	if err != nil {
		fmt.Fprintln(w, "\nStatus: Not connected")
		return nil //nolint:nilerr // not connected is a valid state
	}
	fmt.Fprintln(w, "\nStatus: Connected")
	fmt.Fprintf(w, "ID:        %s\n", id)

	if keys, err := c.KeysWithPrefix([]byte(BlobPrefix)); err == nil {
		fmt.Fprintf(w, "Blobs:     %d\n", len(keys))
	}
	return nil
}

func syncNow(w io.Writer, c *Client, args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "Show verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *verbose {
		fmt.Fprintln(w, "Syncing with server...")
	}
	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Fprintln(w, "✓ Synced")
	return nil
}

func setAutoSync(w io.Writer, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("sync auto", flag.ContinueOnError)
	enable := fs.Bool("enable", false, "Enable auto-sync")
	disable := fs.Bool("disable", false, "Disable auto-sync")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *enable == *disable {
		return fmt.Errorf("usage: dealdesk sync auto --enable|--disable")
	}

	cfg.AutoSync = *enable
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save auto-sync setting: %w", err)
	}
	if cfg.AutoSync {
		fmt.Fprintln(w, "✓ Auto-sync enabled")
	} else {
		fmt.Fprintln(w, "✓ Auto-sync disabled")
	}
	return nil
}

func wipe(w io.Writer, c *Client, args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ContinueOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*confirm {
		fmt.Fprintln(w, "WARNING: This will delete every stored attachment!")
		fmt.Fprintln(w, "To confirm, run:")
		fmt.Fprintln(w, "  dealdesk sync wipe --confirm")
		return nil
	}

	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}
	fmt.Fprintln(w, "✓ All attachments wiped")
	return nil
}
