// ABOUTME: Entry point for the dealdesk MCP server and CLI
// ABOUTME: Loads config, opens the database and routes to MCP or CLI commands
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/dealdesk/charm"
	"github.com/harperreed/dealdesk/cli"
	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/logging"
	"github.com/harperreed/dealdesk/uploads"
)

const version = "0.2.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file path (default: ~/.local/share/dealdesk/config.json)")
	dbPath := flag.String("db-path", "", "Database path (overrides config)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("dealdesk version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	// stdout belongs to the MCP transport, so logs always go to stderr.
	logger, err := logging.New(os.Stderr, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	database, err := db.OpenDatabase(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open database", "path", cfg.DatabasePath, "err", err)
	}
	defer func() { _ = database.Close() }()

	if *initOnly {
		logger.Info("database initialized", "path", cfg.DatabasePath)
		return
	}

	env := &cli.Env{
		DB:      database,
		Config:  cfg,
		Logger:  logger,
		Out:     os.Stdout,
		In:      os.Stdin,
		Clock:   time.Now,
		Version: version,
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "mcp":
		env.Uploads = openUploads(cfg, logger)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = cli.MCPCommand(ctx, env)

	case "deal":
		if len(commandArgs) > 0 && commandArgs[0] == "attach" {
			env.Uploads = openUploads(cfg, logger)
		}
		err = cli.DealCommand(env, commandArgs)

	case "followups":
		err = cli.FollowUpsCommand(env, commandArgs)

	case "contacts":
		err = cli.ContactsCommand(env, commandArgs)

	case "pipeline":
		err = cli.PipelineGraphCommand(env, commandArgs)

	case "dashboard":
		err = cli.DashboardCommand(env, commandArgs)

	case "sync":
		client, openErr := openCharm(cfg)
		if openErr != nil {
			logger.Fatal("failed to open charm kv", "err", openErr)
		}
		err = charm.SyncCommand(os.Stdout, client, cfg, commandArgs)

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", "command", command, "err", err)
		_ = database.Close()
		os.Exit(1)
	}
}

func openCharm(cfg *config.Config) (*charm.Client, error) {
	return charm.Open(charm.Options{
		Name:     config.AppName,
		Host:     cfg.CharmHost,
		AutoSync: cfg.AutoSync,
	})
}

// openUploads returns nil when the blob store is unavailable; attachment uploads then fail on their own.
func openUploads(cfg *config.Config, logger *log.Logger) deal.Uploader {
	client, err := openCharm(cfg)
	if err != nil {
		logger.Warn("attachment uploads disabled", "err", err)
		return nil
	}
	return uploads.NewStore(client, cfg.UploadBaseURL)
}

func printUsage() {
	fmt.Printf(`dealdesk v%s - deal pipeline for humans and agents

USAGE:
  dealdesk [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.local/share/dealdesk/config.json)
  --db-path <path>       Database path (default: ~/.local/share/dealdesk/dealdesk.db)
  --init                 Initialize database and exit

COMMANDS:
  mcp                    Start MCP server for Claude Desktop
  deal                   Deal commands
  followups              Follow-ups across every deal
  contacts               Contact persons and Google Contacts import
  pipeline               Pipeline graph (DOT)
  dashboard              Pipeline dashboard
  sync                   Attachment store sync (status, now, auto, wipe)

DEAL COMMANDS:
  dealdesk deal create      Create a deal at discussion
    --title <title>           Deal title (required)
    --company <company>       Company name
    --note <text>             Initial note

  dealdesk deal list        List deals
    --stage <stage>           discussion, negotiation, closed_won, closed_lost
    --query <text>            Search by title or company
    --limit <n>               Max results (default: 50)

  dealdesk deal show <id>   Show a deal and its recent activity

  dealdesk deal stage [flags] <id> <stage>   Move a deal
    --reason <text>           Why (required)
    --loss-reason <text>      Required for closed_lost
    --proof <id|url>          Required 1-3 times for closed_won
    --review <contact:rating[:comment]>  Contact review when closing

  dealdesk deal note [--remove <note-id>] <id> [text]
  dealdesk deal product [flags] <id>
    --name --qty --price <cents> --currency --discount
    --remove <product-id> --reason <text>
  dealdesk deal attach [--name] [--type] <id> <file>
  dealdesk deal attach --remove <attachment-id> <id>

  dealdesk deal followup add --subject <s> --date <when> [--contact <id>] <id>
  dealdesk deal followup complete --outcome <text> <id> <followup-id>
  dealdesk deal followup cancel --reason <text> <id> <followup-id>
  dealdesk deal followup reschedule --date <when> --notes <text> <id> <followup-id>
  dealdesk deal followup delete <id> <followup-id>

  dealdesk deal timeline [--type <type>] [--limit <n>] <id>
  dealdesk deal graph [--output <file>] <id>   Stage history as DOT
  dealdesk deal tui <id>                       Interactive timeline viewer
  dealdesk deal delete <id>

OTHER COMMANDS:
  dealdesk followups due [--days <n>] [--limit <n>]
  dealdesk contacts list [--query <text>]
  dealdesk contacts add --name <name> [--email] [--phone] [--role]
  dealdesk contacts login     Authorize Google Contacts
  dealdesk contacts import    Import Google Contacts
  dealdesk contacts status    Last import status

EXAMPLES:
  # Start MCP server for Claude Desktop
  dealdesk mcp

  # Create a deal and price it
  dealdesk deal create --title "Enterprise License" --company "Acme Corp"
  dealdesk deal product --name "Seats" --qty 50 --price 12000 <id>

  # Close it as won with the signed contract as proof
  dealdesk deal attach <id> contract.pdf
  dealdesk deal stage --reason "signed" --proof <attachment-id> <id> closed_won

`, version)
}
