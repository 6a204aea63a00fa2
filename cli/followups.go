// ABOUTME: Follow-up CLI commands
// ABOUTME: Schedule, complete, cancel, reschedule and delete follow-ups, and list what is due
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

// DealFollowUpCommand dispatches "dealdesk deal followup <action>".
func DealFollowUpCommand(env *Env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("followup requires an action (add, complete, cancel, reschedule, delete)")
	}

	action, rest := args[0], args[1:]
	switch action {
	case "add":
		return addFollowUp(env, rest)
	case "complete", "cancel", "reschedule", "delete":
		return changeFollowUp(env, action, rest)
	}
	return fmt.Errorf("unknown followup action: %s", action)
}

func addFollowUp(env *Env, args []string) error {
	fs := flag.NewFlagSet("deal followup add", flag.ContinueOnError)
	subject := fs.String("subject", "", "What to follow up on (required)")
	description := fs.String("description", "", "Details")
	when := fs.String("date", "", "When, as YYYY-MM-DD or YYYY-MM-DD HH:MM (required)")
	var contactIDs stringList
	fs.Var(&contactIDs, "contact", "Contact person ID (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("deal ID required")
	}
	if *when == "" {
		return fmt.Errorf("--date is required")
	}
	scheduled, err := parseWhen("date", *when)
	if err != nil {
		return err
	}

	ctx := context.Background()
	contacts := db.NewContactDirectory(env.DB)
	var persons []models.ContactPerson
	for _, id := range contactIDs {
		p, err := contacts.GetContactPerson(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("unknown contact person: %s", id)
		}
		persons = append(persons, *p)
	}

	ws := env.workspace()
	defer ws.Close()

	d, err := ws.Open(fs.Arg(0))
	if err != nil {
		return err
	}

	f, _, err := d.AddFollowUp(ctx, models.FollowUp{
		FollowUpUUID:   uuid.NewString(),
		Subject:        *subject,
		Description:    *description,
		ScheduledDate:  scheduled,
		ContactPersons: persons,
	})
	if err != nil {
		return err
	}
	if err := ws.Save(d); err != nil {
		return err
	}

	fmt.Fprintf(env.out(), "✓ Follow-up scheduled: %s on %s (ID: %s)\n", f.Subject, f.ScheduledDate.Format("2006-01-02 15:04"), f.FollowUpUUID)
	return nil
}

func changeFollowUp(env *Env, action string, args []string) error {
	fs := flag.NewFlagSet("deal followup "+action, flag.ContinueOnError)
	outcome := fs.String("outcome", "", "What happened (complete)")
	reason := fs.String("reason", "", "Why it was cancelled (cancel)")
	when := fs.String("date", "", "New date (reschedule)")
	notes := fs.String("notes", "", "What to do next time (reschedule)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: deal followup %s [flags] <deal-id> <followup-id>", action)
	}
	followUpID := fs.Arg(1)

	ws := env.workspace()
	defer ws.Close()

	d, err := ws.Open(fs.Arg(0))
	if err != nil {
		return err
	}

	f, ok := d.FollowUp(followUpID)
	if !ok {
		return fmt.Errorf("follow-up not found: %s", followUpID)
	}
	if action != "delete" && !f.CanPerformActions() {
		return fmt.Errorf("follow-up is %s and cannot be changed", f.Status)
	}

	ctx := context.Background()
	var result deal.Outcome
	switch action {
	case "complete":
		result, err = d.CompleteFollowUp(ctx, followUpID, *outcome)
	case "cancel":
		result, err = d.CancelFollowUp(ctx, followUpID, *reason)
	case "reschedule":
		if *when == "" {
			return fmt.Errorf("--date is required")
		}
		var next time.Time
		if next, err = parseWhen("date", *when); err != nil {
			return err
		}
		result, err = d.RescheduleFollowUp(ctx, followUpID, next, *notes)
	case "delete":
		result, err = d.DeleteFollowUp(ctx, followUpID)
	}
	if err != nil {
		return err
	}
	if result != deal.OutcomeApplied {
		return fmt.Errorf("follow-up not changed: %s", result)
	}
	if err := ws.Save(d); err != nil {
		return err
	}

	fmt.Fprintf(env.out(), "✓ Follow-up %s: %s\n", pastTense(action), f.Subject)
	return nil
}

func pastTense(action string) string {
	switch action {
	case "complete":
		return "completed"
	case "cancel":
		return "cancelled"
	case "reschedule":
		return "rescheduled"
	}
	return "deleted"
}

// FollowUpsCommand dispatches "dealdesk followups <subcommand>".
func FollowUpsCommand(env *Env, args []string) error {
	if len(args) == 0 || args[0] != "due" {
		return fmt.Errorf("usage: followups due [--days N] [--limit N]")
	}
	return DueFollowUpsCommand(env, args[1:])
}

// DueFollowUpsCommand lists open follow-ups across every deal, oldest first.
func DueFollowUpsCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("followups due", flag.ContinueOnError)
	days := fs.Int("days", 0, "Include follow-ups due within this many days")
	limit := fs.Int("limit", 20, "Maximum number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := env.now()
	before := now.AddDate(0, 0, *days)
	due, err := db.NewFollowUpStore(env.DB).ListDueFollowUps(context.Background(), before, *limit)
	if err != nil {
		return err
	}

	if len(due) == 0 {
		fmt.Fprintln(env.out(), "No follow-ups due")
		return nil
	}

	w := tabwriter.NewWriter(env.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DEAL\tSUBJECT\tSCHEDULED\tSTATUS\tID")
	fmt.Fprintln(w, "----\t-------\t---------\t------\t--")
	for _, item := range due {
		f := item.FollowUp
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncate(item.DealTitle, 25),
			truncate(f.Subject, 30),
			f.ScheduledDate.Format("2006-01-02 15:04"),
			f.EffectiveStatus(now),
			f.FollowUpUUID,
		)
	}
	_ = w.Flush()

	fmt.Fprintf(env.out(), "\nTotal: %d follow-up(s)\n", len(due))
	return nil
}
