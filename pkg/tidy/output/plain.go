package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// PlainFormatter renders a styled human-readable summary: a header box with
// the stage details, one line per row, and a stats footer. It is the
// default formatter for terminal use.
type PlainFormatter struct{}

// Format writes the formatted report to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	var header strings.Builder
	title := r.Operation
	if r.DryRun {
		title += " (dry run)"
	}
	header.WriteString(TitleStyle.Render(title))
	header.WriteString("\n")
	header.WriteString(LabelStyle.Render("Source: ") + r.Source)
	if !r.Timestamp.IsZero() {
		header.WriteString("\n" + LabelStyle.Render("When:   ") + r.Timestamp.Format("2006-01-02 15:04:05 MST"))
	}
	w.WriteString(HeaderBox.Render(header.String()))
	w.WriteString("\n")

	for _, row := range r.Rows {
		w.WriteString(statusStyle(row.Status).Render(fmt.Sprintf("%-8s", row.Status)))
		w.WriteString(" " + row.Source)
		if row.Dest != "" {
			w.WriteString(" -> " + row.Dest)
		}
		if row.SizeHuman != "" {
			w.WriteString(" " + LabelStyle.Render("("+row.SizeHuman+")"))
		}
		if row.Note != "" {
			w.WriteString(" " + LabelStyle.Render("["+row.Note+"]"))
		}
		w.WriteString("\n")
	}

	w.WriteString("\n" + f.footer(r) + "\n")
	return nil
}

// footer summarizes stats and per-category totals on one or two lines.
func (f *PlainFormatter) footer(r *Report) string {
	var parts []string
	appendCount := func(label string, n int, style func(...string) string) {
		if n > 0 {
			parts = append(parts, style(fmt.Sprintf("%d %s", n, label)))
		}
	}
	appendCount("moved", r.Stats.Moved, SuccessStyle.Render)
	appendCount("restored", r.Stats.Restored, SuccessStyle.Render)
	appendCount("skipped", r.Stats.Skipped, WarningStyle.Render)
	appendCount("failed", r.Stats.Failed, ErrorStyle.Render)
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d files", len(r.Rows)))
	}
	if r.TotalBytes > 0 {
		parts = append(parts, humanize.IBytes(uint64(r.TotalBytes)))
	}

	line := strings.Join(parts, ", ")

	if len(r.ByCategory) > 0 {
		var cats []string
		for _, cat := range r.Categories() {
			cats = append(cats, fmt.Sprintf("%s: %d", cat, r.ByCategory[cat]))
		}
		line += "\n" + LabelStyle.Render(strings.Join(cats, "  "))
	}
	return line
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
