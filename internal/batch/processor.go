// Package batch drives the per-item title generation pipeline.
package batch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mydehq/plextitler/internal/catalog"
	"github.com/mydehq/plextitler/internal/relpath"
)

// lockableField is the catalog field this tool edits and whose curator
// lock it respects.
const lockableField = "title"

// Summary holds the per-run counters. Every item increments exactly
// one of them.
type Summary struct {
	Processed     int
	SkippedLocked int
	SkippedNoFile int
	Errors        int
}

// TitleSource produces a title for a library-relative file path.
type TitleSource interface {
	Generate(ctx context.Context, filename string) (string, error)
}

// Processor iterates a library's items and applies or previews
// generated titles. Items are processed one at a time, strictly in the
// order the catalog returns them.
type Processor struct {
	source TitleSource
	out    io.Writer
	log    *log.Logger
	dryRun bool
}

// New returns a Processor writing its per-item report to out.
func New(source TitleSource, out io.Writer, logger *log.Logger, dryRun bool) *Processor {
	return &Processor{source: source, out: out, log: logger, dryRun: dryRun}
}

// Run processes every item in lib. Per-item failures are recorded in
// the counters and the batch continues; the returned error only
// reflects a failure to enumerate the library itself. The summary is
// printed whenever the iteration completes, regardless of how many
// items failed.
func (p *Processor) Run(ctx context.Context, lib catalog.Library) (Summary, error) {
	items, err := lib.Items(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list items in %q: %w", lib.Title(), err)
	}
	locations := lib.Locations()

	fmt.Fprintf(p.out, "Found %d items in '%s'\n", len(items), lib.Title())
	fmt.Fprintln(p.out, strings.Repeat("=", 80))

	var sum Summary
	for _, item := range items {
		p.processItem(ctx, item, locations, &sum)
	}

	fmt.Fprintln(p.out, strings.Repeat("=", 80))
	fmt.Fprintln(p.out, "\nSummary:")
	fmt.Fprintf(p.out, "  Processed: %d\n", sum.Processed)
	fmt.Fprintf(p.out, "  Skipped (locked): %d\n", sum.SkippedLocked)
	fmt.Fprintf(p.out, "  Skipped (no file): %d\n", sum.SkippedNoFile)
	fmt.Fprintf(p.out, "  Errors: %d\n", sum.Errors)
	if p.dryRun {
		fmt.Fprintln(p.out, "\nThis was a DRY RUN. No changes were made.")
	}

	return sum, nil
}

func (p *Processor) processItem(ctx context.Context, item catalog.Item, locations []string, sum *Summary) {
	paths := filePaths(item)
	if len(paths) == 0 {
		sum.SkippedNoFile++
		p.log.Debug("No file parts", "item", item.Title())
		return
	}

	if titleLocked(item) {
		sum.SkippedLocked++
		fmt.Fprintf(p.out, "SKIP (locked): %s\n", item.Title())
		return
	}

	// First file part only; additional parts are ignored.
	relative := relpath.Resolve(paths[0], locations)
	current := item.Title()

	newTitle, err := p.source.Generate(ctx, relative)
	if err != nil {
		sum.Errors++
		fmt.Fprintf(p.out, "ERROR: %s: %v\n", current, err)
		return
	}

	if p.dryRun {
		fmt.Fprintf(p.out, "DRY RUN: '%s' -> '%s'\n", current, newTitle)
		fmt.Fprintf(p.out, "  Path: %s\n", relative)
		sum.Processed++
		return
	}

	fmt.Fprintf(p.out, "UPDATE: '%s' -> '%s'\n", current, newTitle)
	fmt.Fprintf(p.out, "  Path: %s\n", relative)
	if err := applyTitle(ctx, item, newTitle); err != nil {
		sum.Errors++
		fmt.Fprintf(p.out, "ERROR: %s: %v\n", current, err)
		return
	}
	sum.Processed++
}

// filePaths returns the item's backing file paths, or nil when the
// backend does not expose parts for it.
func filePaths(item catalog.Item) []string {
	pl, ok := item.(catalog.PartLister)
	if !ok {
		return nil
	}
	return pl.FilePaths()
}

// titleLocked reports whether a curator has pinned the item's title.
func titleLocked(item catalog.Item) bool {
	fl, ok := item.(catalog.FieldLocks)
	return ok && fl.FieldLocked(lockableField)
}

func applyTitle(ctx context.Context, item catalog.Item, title string) error {
	ed, ok := item.(catalog.TitleEditor)
	if !ok {
		return fmt.Errorf("item does not support title edits")
	}
	return ed.SetTitle(ctx, title)
}
