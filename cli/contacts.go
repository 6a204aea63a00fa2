// ABOUTME: Contact person CLI commands
// ABOUTME: Manual entry, listing, Google login, and import from Google Contacts
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	contactsync "github.com/harperreed/dealdesk/sync"
)

// ContactsCommand dispatches "dealdesk contacts <subcommand>".
func ContactsCommand(env *Env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("contacts requires a subcommand (list, add, login, import, status)")
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return ListContactsCommand(env, rest)
	case "add":
		return AddContactCommand(env, rest)
	case "login":
		return contactsync.Login(context.Background(), env.out(), env.in())
	case "import":
		return ImportContactsCommand(env, rest)
	case "status":
		return ContactSyncStatusCommand(env, rest)
	}
	return fmt.Errorf("unknown contacts command: %s", sub)
}

// contactDirectory returns the Google-backed directory when a token is stored, else the local one.
func contactDirectory(ctx context.Context, env *Env) *contactsync.PeopleDirectory {
	token, err := contactsync.LoadToken()
	if err != nil {
		return contactsync.NewPeopleDirectory(env.DB, nil, env.Logger)
	}
	svc, err := contactsync.NewPeopleService(ctx, token)
	if err != nil {
		if env.Logger != nil {
			env.Logger.Warn("google contacts unavailable, using local directory", "err", err)
		}
		return contactsync.NewPeopleDirectory(env.DB, nil, env.Logger)
	}
	return contactsync.NewPeopleDirectory(env.DB, svc, env.Logger)
}

// ListContactsCommand lists contact persons from the local directory.
func ListContactsCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("contacts list", flag.ContinueOnError)
	query := fs.String("query", "", "Search by name, email or role")
	limit := fs.Int("limit", 50, "Maximum number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contacts, err := db.NewContactDirectory(env.DB).ListContactPersons(context.Background(), *query, *limit)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}

	if len(contacts) == 0 {
		fmt.Fprintln(env.out(), "No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(env.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tROLE")
	fmt.Fprintln(w, "--\t----\t-----\t-----\t----")
	for _, c := range contacts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.ContactPersonUUID,
			truncate(c.Name, 25),
			truncate(c.Email, 30),
			c.Phone,
			truncate(c.Role, 25),
		)
	}
	_ = w.Flush()

	fmt.Fprintf(env.out(), "\nTotal: %d contact(s)\n", len(contacts))
	return nil
}

// AddContactCommand adds a contact person by hand.
func AddContactCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("contacts add", flag.ContinueOnError)
	name := fs.String("name", "", "Contact name (required)")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	role := fs.String("role", "", "Job title or role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*name) == "" {
		return fmt.Errorf("--name is required")
	}

	p := &models.ContactPerson{
		ContactPersonUUID: uuid.NewString(),
		Name:              strings.TrimSpace(*name),
		Email:             strings.TrimSpace(*email),
		Phone:             strings.TrimSpace(*phone),
		Role:              strings.TrimSpace(*role),
	}
	if err := db.NewContactDirectory(env.DB).UpsertContactPerson(context.Background(), p, "manual"); err != nil {
		return fmt.Errorf("failed to add contact: %w", err)
	}

	fmt.Fprintf(env.out(), "✓ Contact added: %s (ID: %s)\n", p.Name, p.ContactPersonUUID)
	return nil
}

// ImportContactsCommand pulls contacts from Google into the local directory.
func ImportContactsCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("contacts import", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	stats, err := contactDirectory(ctx, env).Import(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.out(), "✓ Imported %d contact(s): %d created, %d updated, %d skipped\n",
		stats.Fetched, stats.Created, stats.Updated, stats.Skipped)
	return nil
}

// ContactSyncStatusCommand shows when contacts were last imported.
func ContactSyncStatusCommand(env *Env, args []string) error {
	state, err := db.GetSyncState(env.DB, contactsync.PeopleService)
	if err != nil {
		return err
	}

	out := env.out()
	if state == nil {
		fmt.Fprintln(out, "Google Contacts: never imported")
		return nil
	}

	fmt.Fprintf(out, "Google Contacts: %s\n", state.Status)
	if state.LastSync != nil {
		fmt.Fprintf(out, "  Last import: %s\n", state.LastSync.Format("2006-01-02 15:04"))
	}
	if state.LastError != "" {
		fmt.Fprintf(out, "  Error: %s\n", state.LastError)
	}
	return nil
}
