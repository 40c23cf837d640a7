package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/John-Robertt/parmove/internal/domain"
	"github.com/John-Robertt/parmove/internal/index"
)

// maxErrorsShown 是非 --verbose 时最多打印的错误条数。
const maxErrorsShown = 20

func palette(colored bool) (ok, warn, bad *color.Color) {
	ok, warn, bad = color.New(color.FgGreen), color.New(color.FgYellow), color.New(color.FgRed, color.Bold)
	for _, c := range []*color.Color{ok, warn, bad} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return ok, warn, bad
}

func printErrors(w io.Writer, errs []string, verbose, colored bool) {
	if len(errs) == 0 {
		return
	}
	_, warn, bad := palette(colored)

	fmt.Fprintln(w)
	bad.Fprintln(w, "Errors encountered during processing:")
	shown := errs
	if !verbose && len(shown) > maxErrorsShown {
		shown = shown[:maxErrorsShown]
	}
	for _, e := range shown {
		fmt.Fprintf(w, "  %s\n", e)
	}
	if rest := len(errs) - len(shown); rest > 0 {
		warn.Fprintf(w, "  ... and %d more (use --verbose to list all)\n", rest)
	}
	fmt.Fprintln(w)
	bad.Fprintf(w, "Processing completed with %d errors.\n", len(errs))
}

func printSummary(w io.Writer, rr domain.RunReport, listing index.Listing, colored bool) {
	ok, warn, bad := palette(colored)
	s := rr.Summary

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	ok.Fprintf(w, "  Files processed: %d\n", s.Processed)
	if s.Skipped > 0 {
		warn.Fprintf(w, "  Files skipped (blacklisted): %d\n", s.Skipped)
	}
	if s.Failed > 0 {
		bad.Fprintf(w, "  Files failed: %d\n", s.Failed)
	}
	fmt.Fprintf(w, "  Total files found: %d\n", s.Total)
	fmt.Fprintf(w, "  Directories scanned: %d\n", s.Dirs)

	if len(listing.Dirs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderFolderTable(listing))
	}
}

func renderFolderTable(l index.Listing) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Folder", "Files", "Size"})

	var files int
	var bytes int64
	for _, d := range l.Dirs {
		tw.AppendRow(table.Row{d.Name, strconv.Itoa(len(d.Files)), humanize.Bytes(uint64(d.Bytes))})
		files += len(d.Files)
		bytes += d.Bytes
	}
	tw.AppendFooter(table.Row{"total", strconv.Itoa(files), humanize.Bytes(uint64(bytes))})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}
