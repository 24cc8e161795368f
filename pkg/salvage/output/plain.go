package output

import (
	"bytes"
	"text/tabwriter"
)

// PlainFormatter formats the listing as a simple tab-separated table.
// It produces plain text output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, l *Listing) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := tw.Write([]byte("TIME\tSIZE\tNAME\tRESOURCE\n")); err != nil {
		return err
	}

	for i := range l.Rows {
		r := &l.Rows[i]
		line := r.Stamp + "\t" + r.SizeHuman + "\t" + r.Basename + "\t" + r.Resource + "\n"
		if _, err := tw.Write([]byte(line)); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
