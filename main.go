package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dpshade/kubejs-editor/internal/cli"
	"github.com/dpshade/kubejs-editor/internal/config"
	apperrors "github.com/dpshade/kubejs-editor/internal/errors"
	"github.com/dpshade/kubejs-editor/internal/server"
	"github.com/dpshade/kubejs-editor/internal/service"
	"github.com/dpshade/kubejs-editor/internal/ui"
)

var version = "0.1.0"

func printHelp() {
	fmt.Printf(`kubejs-editor - KubeJS script editor for the terminal and the browser

USAGE:
    kubejs-editor [OPTIONS] [COMMAND]

OPTIONS:
    --help          Show this help information
    --version       Print version information
    --init          Initialize the data directory
    --serve         Start the browser editor
    --port          Port for the browser editor (default: 8080)
    --theme         Editor theme: vs, vs-dark, hc-black
    --template      Template loaded into new sessions
    --dir           Data directory
    --debug         Log debug messages

COMMANDS:
    (no command)       Start the terminal editor
    templates, ls      List templates
    show <id>          Show a template
    search <query>     Search templates
    completions        List completion items
    docs               Resolve a documentation link
    new <id>           Start a script from a template
    copy <id>          Copy a template to the clipboard
    export             Export the catalog
    layout <w> <h>     Compute the editor layout
    config             Show the editor preferences
    import <dir>       Import existing scripts as templates
    sync               Version the data directory with git
    help               Show CLI command help

EXAMPLES:
    kubejs-editor                                   # Start the terminal editor
    kubejs-editor --template server                 # Start with the server script
    kubejs-editor --serve --port 9000               # Browser editor on port 9000
    kubejs-editor search recipe                     # Search templates
    kubejs-editor new smeltingRecipe -o smelt.js    # Write a template to a file
    kubejs-editor export -o catalog.xlsx            # Export to a spreadsheet
    kubejs-editor import ~/modpack --category Pack  # Import a modpack's scripts
    kubejs-editor help <command>                    # Get detailed help

STORAGE:
    Default directory: ~/.kubejs-editor
    Override with: %s=<path>
`, config.EnvDir)
}

func main() {
	var showVersion bool
	var initLib bool
	var showHelp bool
	var serve bool
	var port int
	var theme string
	var defaultTemplate string
	var dir string
	var debug bool

	flag.BoolVar(&showVersion, "version", false, "Print version information")
	flag.BoolVar(&initLib, "init", false, "Initialize the data directory")
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&serve, "serve", false, "Start the browser editor")
	flag.IntVar(&port, "port", 8080, "Port for the browser editor")
	flag.StringVar(&theme, "theme", "", "Editor theme (vs, vs-dark, hc-black)")
	flag.StringVar(&defaultTemplate, "template", "", "Template loaded into new sessions")
	flag.StringVar(&dir, "dir", "", "Data directory")
	flag.BoolVar(&debug, "debug", false, "Log debug messages")
	flag.Parse()

	if showHelp {
		printHelp()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("kubejs-editor version %s\n", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	svc, err := service.NewService(service.Options{Dir: dir})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Flags override the config file
	cfg := svc.Config()
	if theme != "" {
		cfg.Theme = theme
	}
	if defaultTemplate != "" {
		cfg.DefaultTemplate = defaultTemplate
	}
	if err := svc.ApplyConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if initLib {
		if err := svc.InitLibrary(); err != nil {
			fmt.Fprintln(os.Stderr, "Error initializing data directory:", err)
			os.Exit(1)
		}
		fmt.Printf("Initialized KubeJS Editor in %s\n", svc.Storage().GetBaseDir())
		return
	}

	if serve {
		if err := runServer(svc, port); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting server: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Check if we have command line arguments for CLI mode
	args := flag.Args()
	if len(args) > 0 {
		cliHandler := cli.NewCLI(svc)
		if err := cliHandler.ExecuteCommand(args); err != nil {
			fmt.Fprintln(os.Stderr, apperrors.NewCLIErrorHandler(debug).HandleError(err))
			os.Exit(1)
		}
		return
	}

	// No arguments provided - start the terminal editor. The screen belongs
	// to the TUI, so logs go to a file.
	if err := svc.InitLibrary(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(filepath.Join(svc.Storage().LogsDir(), "editor.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err == nil {
		defer logFile.Close()
		slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level})))
	}

	if err := ui.Run(svc); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runServer serves the browser editor until SIGINT or SIGTERM
func runServer(svc *service.Service, port int) error {
	srv, err := server.NewWebServer(svc, port)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
