// ABOUTME: Deal CLI commands
// ABOUTME: Create, list, show, move through stages, inspect the timeline and delete deals
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"path"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/tui"
)

// DealCommand dispatches "dealdesk deal <subcommand>".
func DealCommand(env *Env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("deal requires a subcommand (create, list, show, stage, note, product, attach, followup, timeline, graph, tui, delete)")
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "create":
		return CreateDealCommand(env, rest)
	case "list":
		return ListDealsCommand(env, rest)
	case "show":
		return ShowDealCommand(env, rest)
	case "stage":
		return ChangeStageCommand(env, rest)
	case "note":
		return NoteCommand(env, rest)
	case "product":
		return ProductCommand(env, rest)
	case "attach":
		return AttachCommand(env, rest)
	case "followup":
		return DealFollowUpCommand(env, rest)
	case "timeline":
		return TimelineCommand(env, rest)
	case "graph":
		return StageGraphCommand(env, rest)
	case "tui":
		return TimelineTUICommand(env, rest)
	case "delete":
		return DeleteDealCommand(env, rest)
	}
	return fmt.Errorf("unknown deal command: %s", sub)
}

// CreateDealCommand adds a new deal at discussion.
func CreateDealCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("deal create", flag.ContinueOnError)
	title := fs.String("title", "", "Deal title (required)")
	company := fs.String("company", "", "Company name")
	note := fs.String("note", "", "Initial note")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *title == "" {
		return fmt.Errorf("--title is required")
	}

	ws := env.workspace()
	defer ws.Close()

	d, record, err := ws.Create(*title, *company)
	if err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}

	if *note != "" {
		if _, err := d.AddNote(models.Note{Content: *note}); err != nil {
			return err
		}
		if err := ws.Save(d); err != nil {
			return err
		}
	}

	fmt.Fprintf(env.out(), "✓ Deal created: %s (ID: %s)\n", record.Title, record.ID)
	return nil
}

// ListDealsCommand lists deals, most recently active first.
func ListDealsCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("deal list", flag.ContinueOnError)
	stage := fs.String("stage", "", "Filter by stage")
	query := fs.String("query", "", "Search by title or company")
	limit := fs.Int("limit", 50, "Maximum number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *stage != "" {
		if _, err := models.ParseStage(*stage); err != nil {
			return err
		}
	}

	deals, err := db.FindDeals(env.DB, *stage, *query, *limit)
	if err != nil {
		return fmt.Errorf("failed to list deals: %w", err)
	}

	if len(deals) == 0 {
		fmt.Fprintln(env.out(), "No deals found")
		return nil
	}

	w := tabwriter.NewWriter(env.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tSTAGE\tUPDATED")
	fmt.Fprintln(w, "--\t-----\t-------\t-----\t-------")
	for _, d := range deals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			d.ID,
			truncate(d.Title, 30),
			truncate(d.Company, 20),
			d.Stage.Label(),
			d.UpdatedAt.Format("2006-01-02"),
		)
	}
	_ = w.Flush()

	fmt.Fprintf(env.out(), "\nTotal: %d deal(s)\n", len(deals))
	return nil
}

// ShowDealCommand prints a deal's current state and its latest events.
func ShowDealCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("deal show", flag.ContinueOnError)
	events := fs.Int("events", 5, "Number of recent events to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("deal ID required")
	}
	id := fs.Arg(0)

	record, err := db.GetDeal(env.DB, id)
	if err != nil {
		return err
	}

	ws := env.workspace()
	defer ws.Close()

	d, err := ws.Open(id)
	if err != nil {
		return err
	}
	snap := d.Snapshot()
	now := env.now()
	out := env.out()

	fmt.Fprintf(out, "%s\n", record.Title)
	if record.Company != "" {
		fmt.Fprintf(out, "Company:  %s\n", record.Company)
	}
	fmt.Fprintf(out, "Stage:    %s\n", snap.Stage.Label())
	fmt.Fprintf(out, "Owner:    %s\n", record.CreatedBy)
	fmt.Fprintf(out, "Created:  %s\n", record.CreatedAt.Format("2006-01-02 15:04"))

	if len(snap.Products) > 0 {
		fmt.Fprintln(out, "\nProducts:")
		totals := map[string]int64{}
		for _, p := range snap.Products {
			fmt.Fprintf(out, "  %s  %s x%d  %s\n", p.ProductUUID, p.ProductName, p.Quantity, formatCents(p.Total(), p.Currency))
			totals[p.Currency] += p.Total()
		}
		for currency, total := range totals {
			fmt.Fprintf(out, "  Total: %s\n", formatCents(total, currency))
		}
	}

	if len(snap.FollowUps) > 0 {
		fmt.Fprintln(out, "\nFollow-ups:")
		for _, f := range snap.FollowUps {
			fmt.Fprintf(out, "  %s  %s  %s  [%s]\n", f.FollowUpUUID, f.ScheduledDate.Format("2006-01-02 15:04"), f.Subject, f.EffectiveStatus(now))
		}
	}

	fmt.Fprintf(out, "\nAttachments: %d  Meetings: %d  Calls: %d  Emails: %d  Notes: %d  Reminders: %d\n",
		len(snap.Attachments), len(snap.Meetings), len(snap.Calls), len(snap.Emails), len(snap.Notes), len(snap.Reminders))

	if len(snap.Timeline) > 0 && *events > 0 {
		fmt.Fprintln(out, "\nRecent activity:")
		for i, ev := range snap.Timeline {
			if i >= *events {
				break
			}
			fmt.Fprintf(out, "  #%d %s  %s\n", ev.ID, ev.Timestamp.Format("2006-01-02 15:04"), ev.Title)
		}
	}
	return nil
}

// ChangeStageCommand moves a deal to another stage.
func ChangeStageCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("deal stage", flag.ContinueOnError)
	reason := fs.String("reason", "", "Why the deal is moving (required)")
	lossReason := fs.String("loss-reason", "", "Why the deal was lost (required for closed_lost)")
	var proof, reviews stringList
	fs.Var(&proof, "proof", "Attachment ID or URL proving the win (repeatable, 1-3 for closed_won)")
	fs.Var(&reviews, "review", "Contact review as <contact-id>:<rating>[:comment] (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: deal stage [flags] <deal-id> <stage>")
	}

	target, err := models.ParseStage(fs.Arg(1))
	if err != nil {
		return err
	}

	ws := env.workspace()
	defer ws.Close()

	d, err := ws.Open(fs.Arg(0))
	if err != nil {
		return err
	}

	req := deal.StageChange{
		Target:     target,
		Reason:     *reason,
		LossReason: *lossReason,
	}
	for _, ref := range proof {
		a, err := resolveProof(d, ref)
		if err != nil {
			return err
		}
		req.Proof = append(req.Proof, a)
	}

	contacts := db.NewContactDirectory(env.DB)
	for _, raw := range reviews {
		r, err := parseReview(raw)
		if err != nil {
			return err
		}
		if p, err := contacts.GetContactPerson(context.Background(), r.ContactPersonUUID); err == nil && p != nil {
			r.ContactName = p.Name
		}
		req.ContactReviews = append(req.ContactReviews, r)
	}

	if _, err := d.ChangeStage(req); err != nil {
		return err
	}
	if err := ws.Save(d); err != nil {
		return err
	}

	fmt.Fprintf(env.out(), "✓ Deal moved to %s\n", target.Label())
	return nil
}

func resolveProof(d *deal.Deal, ref string) (models.Attachment, error) {
	if a, ok := d.Attachment(ref); ok {
		return a, nil
	}
	if strings.Contains(ref, "://") {
		return models.Attachment{URL: ref, FileName: path.Base(ref)}, nil
	}
	return models.Attachment{}, fmt.Errorf("unknown attachment: %s", ref)
}

func parseReview(raw string) (models.ContactReview, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 {
		return models.ContactReview{}, fmt.Errorf("invalid --review %q (use <contact-id>:<rating>[:comment])", raw)
	}
	rating, err := strconv.Atoi(parts[1])
	if err != nil {
		return models.ContactReview{}, fmt.Errorf("invalid rating in --review %q: %w", raw, err)
	}
	r := models.ContactReview{ContactPersonUUID: parts[0], Rating: rating}
	if len(parts) == 3 {
		r.Comment = parts[2]
	}
	return r, nil
}

// TimelineCommand prints a deal's timeline, newest first.
func TimelineCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("deal timeline", flag.ContinueOnError)
	eventType := fs.String("type", "", "Only show events of this type")
	limit := fs.Int("limit", 0, "Maximum number of events (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("deal ID required")
	}

	if _, err := db.GetDeal(env.DB, fs.Arg(0)); err != nil {
		return err
	}
	events, err := db.GetTimeline(env.DB, fs.Arg(0))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(env.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tWHEN\tTYPE\tUSER\tTITLE\tDESCRIPTION")
	fmt.Fprintln(w, "-\t----\t----\t----\t-----\t-----------")
	shown := 0
	for _, ev := range events {
		if *eventType != "" && string(ev.Type) != *eventType {
			continue
		}
		if *limit > 0 && shown >= *limit {
			break
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			ev.ID,
			ev.Timestamp.Format("2006-01-02 15:04"),
			ev.Type,
			ev.User,
			ev.Title,
			truncate(ev.Description, 50),
		)
		shown++
	}
	_ = w.Flush()

	fmt.Fprintf(env.out(), "\nTotal: %d event(s)\n", shown)
	return nil
}

// TimelineTUICommand opens the interactive timeline viewer.
func TimelineTUICommand(env *Env, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("deal ID required")
	}

	record, err := db.GetDeal(env.DB, args[0])
	if err != nil {
		return err
	}

	ws := env.workspace()
	defer ws.Close()

	d, err := ws.Open(record.ID)
	if err != nil {
		return err
	}

	model := tui.NewTimelineModel(record.Title, d.Snapshot(), env.now)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// DeleteDealCommand removes a deal with its timeline and follow-ups.
func DeleteDealCommand(env *Env, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("deal ID required")
	}

	if err := db.DeleteDeal(env.DB, args[0]); err != nil {
		if errors.Is(err, db.ErrDealNotFound) {
			return fmt.Errorf("deal not found: %s", args[0])
		}
		return err
	}

	fmt.Fprintf(env.out(), "✓ Deal deleted: %s\n", args[0])
	return nil
}
