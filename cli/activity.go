// ABOUTME: CLI commands for deal contents: notes, products and attachments
// ABOUTME: Each command changes one collection and saves the resulting timeline event
package cli

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

// NoteCommand adds a note to a deal, or removes one with --remove.
func NoteCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("deal note", flag.ContinueOnError)
	remove := fs.String("remove", "", "Note ID to remove")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: deal note [--remove <note-id>] <deal-id> [text]")
	}

	ws := env.workspace()
	defer ws.Close()

	d, err := ws.Open(fs.Arg(0))
	if err != nil {
		return err
	}

	if *remove != "" {
		if outcome := d.RemoveNote(*remove); outcome != deal.OutcomeApplied {
			return fmt.Errorf("note not found: %s", *remove)
		}
		if err := ws.Save(d); err != nil {
			return err
		}
		fmt.Fprintf(env.out(), "✓ Note removed: %s\n", *remove)
		return nil
	}

	content := strings.Join(fs.Args()[1:], " ")
	note := models.Note{Content: content}
	if _, err := d.AddNote(note); err != nil {
		return err
	}
	if err := ws.Save(d); err != nil {
		return err
	}

	fmt.Fprintln(env.out(), "✓ Note added")
	return nil
}

// ProductCommand adds a product line to a deal, or removes one with --remove.
func ProductCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("deal product", flag.ContinueOnError)
	name := fs.String("name", "", "Product name (required when adding)")
	qty := fs.Int("qty", 1, "Quantity")
	price := fs.Int64("price", 0, "Unit price in cents")
	currency := fs.String("currency", "USD", "Currency code")
	discount := fs.Float64("discount", 0, "Discount percent (0-100)")
	remove := fs.String("remove", "", "Product ID to remove")
	reason := fs.String("reason", "", "Why the product was removed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("deal ID required")
	}

	ws := env.workspace()
	defer ws.Close()

	d, err := ws.Open(fs.Arg(0))
	if err != nil {
		return err
	}

	if *remove != "" {
		if outcome := d.RemoveProduct(*remove, *reason); outcome != deal.OutcomeApplied {
			return fmt.Errorf("product not found: %s", *remove)
		}
		if err := ws.Save(d); err != nil {
			return err
		}
		fmt.Fprintf(env.out(), "✓ Product removed: %s\n", *remove)
		return nil
	}

	p := models.Product{
		ProductUUID:     uuid.NewString(),
		ProductName:     *name,
		Quantity:        *qty,
		UnitPrice:       *price,
		Currency:        strings.ToUpper(*currency),
		DiscountPercent: *discount,
	}
	if _, err := d.AddProduct(p); err != nil {
		return err
	}
	if err := ws.Save(d); err != nil {
		return err
	}

	fmt.Fprintf(env.out(), "✓ Product added: %s x%d (ID: %s)\n", p.ProductName, p.Quantity, p.ProductUUID)
	return nil
}

// AttachCommand uploads a file and attaches it to a deal.
func AttachCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("deal attach", flag.ContinueOnError)
	name := fs.String("name", "", "File name to record (default: base name of the file)")
	contentType := fs.String("type", "", "Content type (default: guessed from extension)")
	remove := fs.String("remove", "", "Attachment ID to remove")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: deal attach [flags] <deal-id> <file>")
	}

	ws := env.workspace()
	defer ws.Close()

	d, err := ws.Open(fs.Arg(0))
	if err != nil {
		return err
	}

	if *remove != "" {
		if outcome := d.RemoveAttachment(*remove); outcome != deal.OutcomeApplied {
			return fmt.Errorf("attachment not found: %s", *remove)
		}
		if err := ws.Save(d); err != nil {
			return err
		}
		fmt.Fprintf(env.out(), "✓ Attachment removed: %s\n", *remove)
		return nil
	}

	if fs.NArg() < 2 {
		return fmt.Errorf("file path required")
	}
	file := fs.Arg(1)
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	upload := deal.AttachmentUpload{
		FileName:    *name,
		ContentType: *contentType,
		Data:        data,
	}
	if upload.FileName == "" {
		upload.FileName = filepath.Base(file)
	}
	if upload.ContentType == "" {
		upload.ContentType = mime.TypeByExtension(filepath.Ext(upload.FileName))
	}

	a, _, err := d.AddAttachment(context.Background(), upload)
	if err != nil {
		return err
	}
	if err := ws.Save(d); err != nil {
		return err
	}

	fmt.Fprintf(env.out(), "✓ Attachment uploaded: %s (ID: %s)\n", a.FileName, a.AttachmentUUID)
	fmt.Fprintf(env.out(), "  URL: %s\n", a.URL)
	return nil
}
