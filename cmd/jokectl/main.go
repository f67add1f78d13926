// Command jokectl queries and edits a jokedb server.
//
// Usage:
//
//	jokectl [-server url] <command> [args]
//
// Commands: random [n], type <t> [ten], get <id>, page [flags], types,
// add <type> <setup> <punchline>, update <id> <type> <setup> <punchline>,
// delete <id>.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/maruel/jokedb/internal/client"
	"github.com/maruel/jokedb/internal/query"
	"github.com/maruel/jokedb/internal/storage/entity"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "jokectl: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage: jokectl [-server url] random [n] | type <t> [ten] | get <id> | page [-page p] [-size n] [-sort f] [-order o] [-cached] | types | add <type> <setup> <punchline> | update <id> <type> <setup> <punchline> | delete <id>")

func run(ctx context.Context, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("jokectl", flag.ContinueOnError)
	serverURL := fs.String("server", "http://localhost:3005", "jokedb server URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	args = fs.Args()
	if len(args) == 0 {
		return errUsage
	}
	c := client.New(*serverURL)
	cmd, args := args[0], args[1:]

	switch cmd {
	case "random":
		if len(args) > 1 {
			return errUsage
		}
		if len(args) == 0 {
			j, err := c.RandomJoke(ctx)
			if err != nil {
				return err
			}
			return printJSON(w, j)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid count %q", args[0])
		}
		jokes, err := c.RandomN(ctx, n)
		if err != nil {
			return err
		}
		return printJSON(w, jokes)
	case "type":
		if len(args) == 0 || len(args) > 2 || (len(args) == 2 && args[1] != "ten") {
			return errUsage
		}
		jokes, err := c.ByType(ctx, args[0], len(args) == 2)
		if err != nil {
			return err
		}
		return printJSON(w, jokes)
	case "get":
		if len(args) != 1 {
			return errUsage
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		j, err := c.Get(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(w, j)
	case "page":
		return runPage(ctx, c, args, w)
	case "types":
		if len(args) != 0 {
			return errUsage
		}
		types, err := c.Types(ctx)
		if err != nil {
			return err
		}
		return printJSON(w, types)
	case "add":
		if len(args) != 3 {
			return errUsage
		}
		j, err := c.Create(ctx, entity.Fields{Type: args[0], Setup: args[1], Punchline: args[2]})
		if err != nil {
			return err
		}
		return printJSON(w, j)
	case "update":
		if len(args) != 4 {
			return errUsage
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		j, err := c.Update(ctx, id, entity.Fields{Type: args[1], Setup: args[2], Punchline: args[3]})
		if err != nil {
			return err
		}
		return printJSON(w, j)
	case "delete":
		if len(args) != 1 {
			return errUsage
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return c.Delete(ctx, id)
	default:
		return fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
	}
}

type pageOutput struct {
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
	Total int           `json:"total"`
	Mode  string        `json:"mode"`
	Jokes []entity.Joke `json:"jokes"`
}

func runPage(ctx context.Context, c *client.Client, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("page", flag.ContinueOnError)
	page := fs.Int("page", 1, "1-based page number")
	size := fs.Int("size", client.DefaultPageSize, "jokes per page")
	sortBy := fs.String("sort", "", "sort field (id, type, setup, punchline)")
	order := fs.String("order", "", "sort order (asc, desc)")
	cached := fs.Bool("cached", false, "download the collection once and page locally")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return errUsage
	}
	field, err := query.ParseSortField(*sortBy)
	if err != nil {
		return fmt.Errorf("%w: %q", err, *sortBy)
	}
	o, err := query.ParseSortOrder(*order)
	if err != nil {
		return fmt.Errorf("%w: %q", err, *order)
	}
	mode := client.ModeServer
	if *cached {
		mode = client.ModeCached
	}
	b := client.NewBrowser(c, mode, *size)
	if field != query.SortNone {
		// ToggleSort starts ascending; a second toggle flips to descending.
		if err := b.ToggleSort(ctx, field); err != nil {
			return err
		}
		if o == query.SortDesc {
			if err := b.ToggleSort(ctx, field); err != nil {
				return err
			}
		}
	}
	if err := b.FetchPage(ctx, *page); err != nil {
		return err
	}
	return printJSON(w, pageOutput{
		Page:  b.Page(),
		Pages: b.Pages(),
		Total: b.Total(),
		Mode:  b.Mode().String(),
		Jokes: b.Jokes(),
	})
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	e := json.NewEncoder(w)
	e.SetEscapeHTML(false)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
