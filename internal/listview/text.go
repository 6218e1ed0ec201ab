package listview

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

var headerStyle = color.New(color.Bold, color.FgCyan)

// WriteText renders v as an aligned plain-text table.
func WriteText(w io.Writer, v View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	labels := make([]string, len(v.Headers))
	for i, h := range v.Headers {
		labels[i] = headerStyle.Sprint(h.Label)
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t"))

	switch v.State {
	case StateLoading:
		for range v.Skeleton {
			cells := make([]string, len(v.Headers))
			for i := range cells {
				cells[i] = "..."
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	case StateEmpty:
		if v.Empty != nil {
			fmt.Fprintln(tw, v.Empty.Title)
			if v.Empty.Description != "" {
				fmt.Fprintln(tw, v.Empty.Description)
			}
		}
	case StatePopulated:
		for _, row := range v.Rows {
			cells := make([]string, len(row.Cells))
			for i, c := range row.Cells {
				cells[i] = singleLine(c.Text)
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if v.Footer != nil {
		nav := v.Footer.Label
		if v.Footer.CanGoPrevious {
			nav = "< " + nav
		}
		if v.Footer.CanGoNext {
			nav += " >"
		}
		if _, err := fmt.Fprintf(w, "%s (%d total)\n", nav, v.Footer.TotalCount); err != nil {
			return err
		}
	}
	return nil
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
