// Command todoctl is a terminal front end for the task API.
//
//	todoctl [-server URL] [-category C] [-sort MODE] list
//	todoctl categories
//	todoctl add [-category C] [-priority 1-High|2-Medium|3-Low] [-due 2025-03-01T14:30] TITLE...
//	todoctl toggle ID
//	todoctl rm ID
//	todoctl clear -yes
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hiroki-koketsu/todo-tracker/internal/client"
	"github.com/hiroki-koketsu/todo-tracker/internal/model"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "todoctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("todoctl", flag.ContinueOnError)
	server := fs.String("server", envOr("TODO_SERVER", "http://localhost:5000"), "API base URL")
	category := fs.String("category", "", "show only this category")
	sortBy := fs.String("sort", string(model.SortTimeAddedAsc), "timeAddedAsc, timeAddedDesc, priority or priorityTimeAdded")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("missing command: list, categories, add, toggle, rm or clear")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	board := client.NewBoard(client.New(*server))
	board.Category = *category
	board.Sort = model.ParseSortMode(*sortBy)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "list":
		if err := board.Refresh(ctx); err != nil {
			return err
		}
	case "categories":
		if err := board.Refresh(ctx); err != nil {
			return err
		}
		for _, c := range board.Categories {
			fmt.Fprintln(out, c)
		}
		return nil
	case "add":
		if err := add(ctx, board, rest, out); err != nil {
			return err
		}
	case "toggle":
		id, err := oneID(rest)
		if err != nil {
			return err
		}
		if err := board.Refresh(ctx); err != nil {
			return err
		}
		if err := board.ToggleComplete(ctx, id); err != nil {
			return err
		}
	case "rm":
		id, err := oneID(rest)
		if err != nil {
			return err
		}
		if err := board.Remove(ctx, id); err != nil {
			return err
		}
	case "clear":
		cfs := flag.NewFlagSet("clear", flag.ContinueOnError)
		yes := cfs.Bool("yes", false, "confirm deleting every task")
		if err := cfs.Parse(rest); err != nil {
			return err
		}
		if !*yes {
			return errors.New("refusing to delete all tasks without -yes")
		}
		n, err := board.RemoveAll(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %d tasks\n", n)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	return render(out, board)
}

func add(ctx context.Context, board *client.Board, args []string, out io.Writer) error {
	afs := flag.NewFlagSet("add", flag.ContinueOnError)
	category := afs.String("category", "", "task category (default General)")
	priority := afs.String("priority", string(model.DefaultPriority), "1-High, 2-Medium or 3-Low")
	due := afs.String("due", "", "due date, e.g. 2025-03-01T14:30")
	if err := afs.Parse(args); err != nil {
		return err
	}

	title := strings.Join(afs.Args(), " ")
	if strings.TrimSpace(title) == "" {
		return errors.New("add needs a title")
	}

	task, err := board.Add(ctx, model.CreateTaskRequest{
		Title:    title,
		Category: *category,
		Priority: *priority,
		DueDate:  *due,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "added %s\n", task.ID)
	return nil
}

func oneID(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("expected exactly one task id")
	}
	return args[0], nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
