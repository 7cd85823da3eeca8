package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/ipc"
	"github.com/1broseidon/wallboard/internal/settings"
)

func main() {
	godotenv.Load()

	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "settings":
		os.Exit(runSettings(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "apply":
		os.Exit(runAction("apply", "Move the panels onto the saved configuration.", os.Args[2:], (*ipc.Client).ApplyConfig))
	case "open-settings":
		os.Exit(runAction("open-settings", "Open or focus the settings window.", os.Args[2:], (*ipc.Client).OpenSettings))
	case "toggle-minimize":
		os.Exit(runAction("toggle-minimize", "Minimize the panels, or restore them if minimized.", os.Args[2:], (*ipc.Client).ToggleMinimizeViews))
	case "reload":
		os.Exit(runAction("reload", "Re-read the configuration file and reinstall hotkeys.", os.Args[2:], (*ipc.Client).Reload))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wallboard <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the wallboard host (foreground)")
	fmt.Fprintln(w, "  settings            Open the interactive settings form")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config set          Edit monitor or view settings")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  monitors            List connected monitors")
	fmt.Fprintln(w, "  apply               Apply the saved configuration")
	fmt.Fprintln(w, "  open-settings       Open the settings window")
	fmt.Fprintln(w, "  toggle-minimize     Minimize or restore the panels")
	fmt.Fprintln(w, "  reload              Reload configuration and hotkeys")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'wallboard <command> --help' for command-specific options.")
}

// InitLogger installs the console handler as the default slog logger.
func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSettings(args []string) int {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wallboard settings")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Edit the monitor and views through the running daemon.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "settings takes no arguments")
		fs.Usage()
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	session := settings.NewSession(ipc.NewClient())
	if err := session.Start(ctx); err != nil {
		var lerr *config.LoadError
		if errors.As(err, &lerr) {
			fmt.Fprintf(os.Stderr, "Configuration could not be loaded: %v\n", lerr)
			fmt.Fprintln(os.Stderr, "Fix or remove the file, then run 'wallboard reload'.")
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := settings.RunForm(ctx, session, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wallboard monitors [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List the monitors the daemon currently sees.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	list, err := ipc.NewClient().ListMonitors(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(list); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	if len(list) == 0 {
		fmt.Println("no monitors")
		return 0
	}
	for _, m := range list {
		primary := ""
		if m.IsPrimary {
			primary = "  primary"
		}
		fmt.Printf("%d  %-10s %dx%d+%d+%d%s\n", m.Index, m.Name, m.Size[0], m.Size[1], m.Position[0], m.Position[1], primary)
	}
	return 0
}

func runAction(name, summary string, args []string, call func(*ipc.Client, context.Context) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wallboard %s\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, summary)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := call(ipc.NewClient(), ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("ok")
	return 0
}
