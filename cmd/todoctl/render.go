package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/hiroki-koketsu/todo-tracker/internal/client"
)

func render(w io.Writer, board *client.Board) error {
	category := board.Category
	if category == "" {
		category = "All Categories"
	}
	fmt.Fprintf(w, "%s, sorted by %s\n", category, board.Sort)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tCATEGORY\tPRIORITY\tTITLE\tDUE\tADDED")
	for _, t := range board.Tasks {
		done := " "
		if t.Completed {
			done = "x"
		}
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.UTC().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, done, t.Category, t.Priority.Label(), t.Title, due,
			t.CreatedAt.Local().Format(time.DateTime),
		)
	}
	return tw.Flush()
}
