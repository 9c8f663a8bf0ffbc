package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/idilsaglam/todo/internal/log"
	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/store"
	"github.com/idilsaglam/todo/internal/store/jsonstore"
	"github.com/idilsaglam/todo/internal/tui"
	"github.com/idilsaglam/todo/internal/ui"
)

// Options carries what the root command prepared.
type Options struct {
	Store     store.Store
	Supported bool // false when Store is the inert backend
	Group     bool // list grouped by pending/done

	// RunUI launches the interactive screen; tests replace it.
	RunUI func(s store.Store, supported bool) error
}

const unsupportedMsg = "storage is not supported on this platform"

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if len(args) == 0 {
		args = []string{"ui"}
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "ui":
		return doUI(opt)

	case "ls":
		return doList(opt)

	case "add":
		if len(a) == 0 {
			ui.Fail("usage: todo add <text...>")
			return 2
		}
		return doAdd(opt, strings.Join(a, " "))

	case "done":
		id, code := parseID("done", a)
		if code != 0 {
			return code
		}
		return doDone(opt, id)

	case "rm":
		id, code := parseID("rm", a)
		if code != 0 {
			return code
		}
		return doRemove(opt, id)

	case "export":
		if len(a) > 1 {
			ui.Fail("usage: todo export [file]")
			return 2
		}
		path := ""
		if len(a) == 1 {
			path = a[0]
		}
		return doExport(opt, path)

	case "import":
		if len(a) != 1 {
			ui.Fail("usage: todo import <file>")
			return 2
		}
		return doImport(opt, a[0])
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(ui.Stderr())
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Fprintf(ui.Stdout(), `todo - a tiny task list backed by SQLite

Usage:
  todo [flags] <subcommand> [args]

Subcommands:
  ui                 Interactive screen (default)
  ls                 Print pending and done tasks
  add <text...>      Add a new task (text can be multiple words)
  done <id>          Mark the task done
  rm <id>            Remove a done task
  export [file]      Write a JSON snapshot (stdout when no file)
  import <file>      Add every task from a JSON snapshot

Flags:
  -config <file>     TOML config file
  -db <path>         SQLite database file
  -theme <name>      classic, neon or mono
  -log-level <lvl>   debug, info, warn, error
  -group=false       Print ls as one list
  -no-color          Disable colors

Examples:
  todo add "Buy milk"
  todo ls
  todo done 2
  todo rm 2
`)
}

func parseID(cmd string, a []string) (int64, int) {
	if len(a) != 1 {
		ui.Fail("usage: todo " + cmd + " <id>")
		return 0, 2
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(a[0], "#"), 10, 64)
	if err != nil || n < 1 {
		ui.Fail(cmd + ": not an id: " + a[0])
		return 0, 2
	}
	return n, 0
}

// -------------- subcommand impls ----------------

func doUI(opt Options) int {
	run := opt.RunUI
	if run == nil {
		run = tui.Run
	}
	if err := run(opt.Store, opt.Supported); err != nil {
		log.Error().Err(err).Msg("tui exited with error")
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

func doList(opt Options) int {
	if !opt.Supported {
		ui.Fail(unsupportedMsg)
		return 1
	}
	snap, err := jsonstore.Take(opt.Store)
	if err != nil {
		return storeFailure("load", 0, err)
	}

	d, p := len(snap.Done), len(snap.Pending)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(ui.Current().Title, "My Todo List"),
		ui.C(ui.Current().Success, ui.Current().SymDone), d,
		ui.C(ui.Current().Pending, ui.Current().SymPending), p,
		ui.C(ui.Current().Accent, "Total"), d+p,
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(ui.Current().Muted, ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if opt.Group {
		lines = append(lines, ui.Section("Tasks", snap.Pending)...)
		lines = append(lines, "")
		lines = append(lines, ui.Section("Done", snap.Done)...)
	} else {
		lines = append(lines, flatLines(append(snap.Pending, snap.Done...))...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Muted, "Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(lines)
	return 0
}

func flatLines(tasks []model.Task) []string {
	if len(tasks) == 0 {
		return []string{ui.C(ui.Current().Muted, "no tasks")}
	}
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ui.TaskLine(t))
	}
	return out
}

func doAdd(opt Options, text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		ui.Fail("add: empty text")
		return 2
	}
	if !opt.Supported {
		ui.Fail(unsupportedMsg)
		return 1
	}
	if err := opt.Store.Insert(text); err != nil {
		return storeFailure("insert", 0, err)
	}
	ui.OK("added")
	return 0
}

func doDone(opt Options, id int64) int {
	if !opt.Supported {
		ui.Fail(unsupportedMsg)
		return 1
	}
	t, found, err := find(opt.Store, id)
	if err != nil {
		return storeFailure("load", id, err)
	}
	if !found {
		ui.Fail(fmt.Sprintf("no such task: #%d", id))
		fmt.Fprintln(ui.Stderr(), ui.Dim("Hint: run `todo ls` to see ids"))
		return 2
	}
	if t.Done {
		ui.OK("already done")
		return 0
	}
	if err := opt.Store.MarkDone(id); err != nil {
		return storeFailure("mark done", id, err)
	}
	ui.OK("done")
	return 0
}

func doRemove(opt Options, id int64) int {
	if !opt.Supported {
		ui.Fail(unsupportedMsg)
		return 1
	}
	t, found, err := find(opt.Store, id)
	if err != nil {
		return storeFailure("load", id, err)
	}
	if !found {
		ui.Fail(fmt.Sprintf("no such task: #%d", id))
		fmt.Fprintln(ui.Stderr(), ui.Dim("Hint: run `todo ls` to see ids"))
		return 2
	}
	if !t.Done {
		ui.Fail(fmt.Sprintf("task #%d is still pending; run `todo done %d` first", id, id))
		return 2
	}
	if err := opt.Store.Delete(id); err != nil {
		return storeFailure("delete", id, err)
	}
	ui.OK("removed")
	return 0
}

func doExport(opt Options, path string) int {
	if !opt.Supported {
		ui.Fail(unsupportedMsg)
		return 1
	}
	snap, err := jsonstore.Take(opt.Store)
	if err != nil {
		return storeFailure("load", 0, err)
	}
	if path == "" {
		if err := jsonstore.Encode(ui.Stdout(), snap); err != nil {
			ui.Fail("export: " + err.Error())
			return 1
		}
		return 0
	}
	if err := jsonstore.Save(path, snap); err != nil {
		ui.Fail("export: " + err.Error())
		return 1
	}
	ui.OK(fmt.Sprintf("exported %d tasks to %s", len(snap.Pending)+len(snap.Done), path))
	return 0
}

func doImport(opt Options, path string) int {
	if !opt.Supported {
		ui.Fail(unsupportedMsg)
		return 1
	}
	snap, err := jsonstore.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			ui.Fail("import: no such file: " + path)
			return 2
		}
		ui.Fail("import: " + err.Error())
		return 1
	}
	n, err := jsonstore.Restore(opt.Store, snap)
	if err != nil {
		return storeFailure("import", 0, err)
	}
	ui.OK(fmt.Sprintf("imported %d tasks", n))
	return 0
}

func find(s store.Store, id int64) (model.Task, bool, error) {
	for _, done := range []bool{false, true} {
		tasks, err := s.ListByDone(done)
		if err != nil {
			return model.Task{}, false, err
		}
		for _, t := range tasks {
			if t.ID == id {
				return t, true, nil
			}
		}
	}
	return model.Task{}, false, nil
}

func storeFailure(op string, id int64, err error) int {
	log.Error().Err(err).Str("op", op).Int64("id", id).Msg("store operation failed")
	ui.Fail(op + ": " + err.Error())
	return 1
}
