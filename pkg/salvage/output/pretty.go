package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats the listing with colors and styling using
// lipgloss. This is the default human-facing view: one line per candidate,
// most recent first, so the operator can spot the right version.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, l *Listing) error {
	w.WriteString(f.formatHeader(l))
	w.WriteString("\n")
	w.WriteString(f.formatTable(l))
	w.WriteString(f.formatFooter(l))
	return nil
}

// formatHeader builds the header box with scan metadata.
func (f *PrettyFormatter) formatHeader(l *Listing) string {
	var lines []string

	rootsLabel := LabelStyle.Render("Roots:")
	rootsValue := ValueStyle.Render(fmt.Sprintf("%d requested, %d found", len(l.Roots), l.Stats.RootsScanned))
	lines = append(lines, fmt.Sprintf("%s %s", rootsLabel, rootsValue))

	var infoParts []string
	scannedLabel := LabelStyle.Render("Scanned:")
	scannedValue := ValueStyle.Render(fmt.Sprintf("%d folders, %d entries in %s",
		l.Stats.FoldersScanned, l.Stats.EntriesExamined, formatDuration(l.Stats.Duration)))
	infoParts = append(infoParts, fmt.Sprintf("%s %s", scannedLabel, scannedValue))

	if l.Stats.CacheHits > 0 {
		infoParts = append(infoParts, MutedStyle.Render(fmt.Sprintf("cache: %d hits", l.Stats.CacheHits)))
	}
	if l.Stats.Skipped > 0 {
		infoParts = append(infoParts, WarningStyle.Render(fmt.Sprintf("skipped: %d", l.Stats.Skipped)))
	}
	lines = append(lines, strings.Join(infoParts, "  "))

	if l.Interrupted {
		lines = append(lines, WarningStyle.Bold(true).Render("Scan interrupted by user"))
	}

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatTable builds the candidate table with TIME, SIZE, and NAME columns.
func (f *PrettyFormatter) formatTable(l *Listing) string {
	if len(l.Rows) == 0 {
		return MutedStyle.Render("  No snapshots found matching criteria\n")
	}

	var sb strings.Builder

	timeHeader := TableHeaderStyle.Render("TIME")
	sizeHeader := TableHeaderStyle.Render("SIZE")
	nameHeader := TableHeaderStyle.Render("NAME")
	sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", timeHeader, sizeHeader, nameHeader))

	// Calculate max size width for alignment
	maxSizeWidth := 8
	for i := range l.Rows {
		if len(l.Rows[i].SizeHuman) > maxSizeWidth {
			maxSizeWidth = len(l.Rows[i].SizeHuman)
		}
	}

	for i := range l.Rows {
		r := &l.Rows[i]
		stamp := StampStyle.Render(r.Time.Format("01-02 15:04:05"))
		size := SizeStyle.Render(padLeft(r.SizeHuman, maxSizeWidth))
		name := PathStyle.Render(r.Basename)
		origin := MutedStyle.Render(r.Resource)
		if !r.FromManifest {
			origin = MutedStyle.Render(r.BlobPath + "  (raw)")
		}
		sb.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n", stamp, size, name, origin))
	}

	return sb.String()
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(l *Listing) string {
	var parts []string

	matchLabel := LabelStyle.Render("Matches:")
	matchValue := ValueStyle.Render(fmt.Sprintf("%d", len(l.Rows)))
	parts = append(parts, fmt.Sprintf("%s %s", matchLabel, matchValue))

	totalLabel := LabelStyle.Render("Total:")
	totalValue := SizeStyle.Render(humanize.IBytes(uint64(l.TotalSize())))
	parts = append(parts, fmt.Sprintf("%s %s", totalLabel, totalValue))

	if l.OutputDir != "" {
		copiedLabel := LabelStyle.Render("Copied:")
		copiedValue := SuccessStyle.Render(fmt.Sprintf("%d -> %s", l.Copied, l.OutputDir))
		parts = append(parts, fmt.Sprintf("%s %s", copiedLabel, copiedValue))
	}

	return FooterBox.Render(strings.Join(parts, "  "))
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
