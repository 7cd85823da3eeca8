package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/editor"
	"github.com/1broseidon/wallboard/internal/ipc"
	"github.com/1broseidon/wallboard/internal/monitors"
	"github.com/1broseidon/wallboard/internal/settings"
)

const pathUsage = "Config file path (default: ~/.config/wallboard/config.yaml)"

func printConfigUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  wallboard config validate [--path PATH]")
	fmt.Fprintln(os.Stderr, "  wallboard config print [--path PATH] [--defaults]")
	fmt.Fprintln(os.Stderr, "  wallboard config set [--path PATH] [--view N --url URL --profile NAME]")
	fmt.Fprintln(os.Stderr, "                       [--monitor-mode MODE --monitor-value VALUE] [--apply]")
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printConfigUsage()
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", pathUsage)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadDocument(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", pathUsage)
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			var err error
			if cfg, err = loadDocument(*path); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "set":
		return runConfigSet(args[1:])

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n\n", args[0])
		printConfigUsage()
		return 2
	}
}

func loadDocument(path string) (config.AppConfig, error) {
	store, err := openStore(path)
	if err != nil {
		return config.AppConfig{}, err
	}
	return store.Load()
}

func runConfigSet(args []string) int {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Edit the file directly instead of going through the daemon")
	view := fs.Int("view", -1, "View slot to edit (0-3, reading order)")
	url := fs.String("url", "", "New url for --view")
	profile := fs.String("profile", "", "New profile for --view (empty resets to the default)")
	mode := fs.String("monitor-mode", "", "Monitor selector mode: primary, index or name_contains")
	value := fs.String("monitor-value", "", "Monitor selector value")
	apply := fs.Bool("apply", false, "Apply after a successful save")
	fs.Usage = func() {
		printConfigUsage()
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if (set["url"] || set["profile"]) && !set["view"] {
		fmt.Fprintln(os.Stderr, "--url and --profile require --view")
		return 2
	}
	if set["view"] && !set["url"] && !set["profile"] {
		fmt.Fprintln(os.Stderr, "--view requires --url or --profile")
		return 2
	}
	if *path != "" && *apply {
		fmt.Fprintln(os.Stderr, "--apply needs the daemon and cannot be combined with --path")
		return 2
	}

	var h settings.Host = ipc.NewClient()
	if *path != "" {
		h = fileHost{store: config.NewStore(*path)}
	}

	ctx, cancel := signalContext()
	defer cancel()

	session := settings.NewSession(h)
	if err := session.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var edits editor.Edits
	if set["url"] {
		edits.SetURL(*view, *url)
	}
	if set["profile"] {
		edits.SetProfile(*view, *profile)
	}
	if set["monitor-mode"] || set["monitor-value"] {
		m := config.MonitorMode(*mode)
		if !set["monitor-mode"] {
			m = session.Base().Monitor.Mode
		}
		edits.SetMonitor(m, *value)
	}
	if edits.Empty() {
		fmt.Fprintln(os.Stderr, "nothing to change")
		fs.Usage()
		return 2
	}

	outcome := session.Commit(ctx, edits, *apply)
	fmt.Println(outcome.Message())
	if outcome.Err() != nil {
		return 1
	}
	return 0
}

var errNoDaemon = errors.New("not available without the daemon")

// fileHost serves edits straight from a config file.
type fileHost struct {
	store *config.Store
}

func (f fileHost) GetConfig(context.Context) (config.AppConfig, error) {
	return f.store.Load()
}

func (f fileHost) ListMonitors(context.Context) ([]monitors.Info, error) {
	return nil, errNoDaemon
}

func (f fileHost) SaveConfig(_ context.Context, cfg config.AppConfig) error {
	return f.store.Save(cfg)
}

func (f fileHost) ApplyConfig(context.Context) error {
	return errNoDaemon
}
