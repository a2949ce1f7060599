package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// TableFormatter renders rows as an aligned text table with a header.
// No colors or styling are applied, so output pipes cleanly.
type TableFormatter struct{}

// Format writes the formatted report to the buffer.
func (f *TableFormatter) Format(w *bytes.Buffer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "STATUS\tCATEGORY\tSOURCE\tDEST\tNOTE"); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			row.Status, row.Category, row.Source, row.Dest, row.Note); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func init() {
	Register("table", func() Formatter {
		return &TableFormatter{}
	})
}

// Ensure TableFormatter implements Formatter.
var _ Formatter = (*TableFormatter)(nil)
