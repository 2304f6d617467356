package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/truncate"
	"gopkg.in/yaml.v3"

	"github.com/dpshade/kubejs-editor/internal/clipboard"
	"github.com/dpshade/kubejs-editor/internal/commands"
	"github.com/dpshade/kubejs-editor/internal/errors"
	"github.com/dpshade/kubejs-editor/internal/export"
	"github.com/dpshade/kubejs-editor/internal/importer"
	"github.com/dpshade/kubejs-editor/internal/layout"
	"github.com/dpshade/kubejs-editor/internal/models"
	"github.com/dpshade/kubejs-editor/internal/renderer"
	"github.com/dpshade/kubejs-editor/internal/service"
)

// CLI provides headless command-line interface functionality
type CLI struct {
	service  *service.Service
	executor *commands.CommandExecutor
	out      io.Writer

	// newTermRenderer builds the glamour renderer for show and completions
	newTermRenderer func(wordWrap int) (*glamour.TermRenderer, error)
	openURL         func(url string) error
	copyText        func(text string) (string, error)
}

// NewCLI creates a new CLI instance
func NewCLI(svc *service.Service) *CLI {
	return &CLI{
		service:         svc,
		executor:        commands.NewCommandExecutor(svc),
		out:             os.Stdout,
		newTermRenderer: renderer.NewTermRenderer,
		openURL:         clipboard.OpenURL,
		copyText:        clipboard.CopyWithFallback,
	}
}

// SetOutput redirects command output
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// ExecuteCommand processes a CLI command and returns the result
func (c *CLI) ExecuteCommand(args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "templates", "ls", "list":
		return c.listTemplates(commandArgs)
	case "show", "get":
		return c.showTemplate(commandArgs)
	case "search":
		return c.searchTemplates(commandArgs)
	case "completions":
		return c.listCompletions(commandArgs)
	case "docs":
		return c.resolveDocs(commandArgs)
	case "new":
		return c.newScript(commandArgs)
	case "copy":
		return c.copyTemplate(commandArgs)
	case "export":
		return c.handleExport(commandArgs)
	case "layout":
		return c.showLayout(commandArgs)
	case "config":
		return c.showConfig(commandArgs)
	case "init":
		return c.initLibrary()
	case "import":
		return c.importScripts(commandArgs)
	case "sync":
		return c.syncLibrary(commandArgs)
	case "help", "--help", "-h":
		return c.printHelp(commandArgs)
	default:
		return fmt.Errorf("unknown command: %s\nRun 'kubejs-editor help' for usage", command)
	}
}

// parseArgs splits args into positional arguments and --flag values. Flags
// listed in boolFlags take no value.
func parseArgs(args []string, boolFlags ...string) ([]string, map[string]string) {
	isBool := make(map[string]bool, len(boolFlags))
	for _, f := range boolFlags {
		isBool[f] = true
	}

	var positional []string
	flags := make(map[string]string)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positional = append(positional, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			flags[name[:eq]] = name[eq+1:]
			continue
		}
		if isBool[name] {
			flags[name] = "true"
			continue
		}
		if i+1 < len(args) {
			flags[name] = args[i+1]
			i++
		} else {
			flags[name] = ""
		}
	}
	return positional, flags
}

// flag returns the first non-empty value among names
func flag(flags map[string]string, names ...string) string {
	for _, n := range names {
		if v := flags[n]; v != "" {
			return v
		}
	}
	return ""
}

// run executes a command through the shared executor and unwraps failures
func (c *CLI) run(name string, params map[string]interface{}) (*commands.CommandResult, error) {
	result, err := c.executor.Execute(context.Background(), name, params)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		appErr := errors.NewAppError(errors.ErrorCode(result.Error.Code), result.Error.Message)
		if result.Error.Details != "" {
			appErr.WithDetails(result.Error.Details)
		}
		return nil, appErr
	}
	return result, nil
}

func (c *CLI) writeJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// listTemplates lists templates grouped by category
func (c *CLI) listTemplates(args []string) error {
	_, flags := parseArgs(args)
	format := flag(flags, "format", "f")
	category := flag(flags, "category", "c")

	params := map[string]interface{}{}
	if category != "" {
		params["category"] = category
	}
	if format != "" {
		params["format"] = format
	}

	result, err := c.run("list", params)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return c.writeJSON(result.Data)
	case "ids":
		for _, id := range result.Data.([]string) {
			fmt.Fprintln(c.out, id)
		}
		return nil
	case "table":
		templates := result.Data.([]models.TemplateEntry)
		fmt.Fprintf(c.out, "%-28s %-32s %s\n", "ID", "Title", "Category")
		fmt.Fprintln(c.out, strings.Repeat("-", 80))
		for _, t := range templates {
			fmt.Fprintf(c.out, "%-28s %-32s %s\n", t.ID, truncate.StringWithTail(t.Name, 32, "..."), t.Category)
		}
		return nil
	default:
		templates := result.Data.([]models.TemplateEntry)
		current := ""
		for _, t := range templates {
			if t.Category != current {
				if current != "" {
					fmt.Fprintln(c.out)
				}
				current = t.Category
				fmt.Fprintf(c.out, "%s\n", current)
			}
			fmt.Fprintf(c.out, "  %-28s %s\n", t.ID, t.Name)
		}
		return nil
	}
}

// showTemplate prints a template card
func (c *CLI) showTemplate(args []string) error {
	positional, flags := parseArgs(args)
	if len(positional) == 0 {
		return fmt.Errorf("show requires a template ID")
	}

	result, err := c.run("get", map[string]interface{}{"id": positional[0]})
	if err != nil {
		return err
	}
	card := result.Data.(renderer.Card)

	switch flag(flags, "format", "f") {
	case "json":
		return c.writeJSON(card)
	case "source", "js":
		_, err := io.WriteString(c.out, card.Source)
		return err
	case "markdown", "md":
		entry, _ := c.service.GetTemplate(card.ID)
		_, err := io.WriteString(c.out, renderer.NewRenderer(entry, card.DocsURL).RenderMarkdown())
		return err
	default:
		entry, _ := c.service.GetTemplate(card.ID)
		return c.renderMarkdown(renderer.NewRenderer(entry, card.DocsURL).RenderMarkdown())
	}
}

func (c *CLI) renderMarkdown(md string) error {
	tr, err := c.newTermRenderer(80)
	if err != nil {
		_, werr := io.WriteString(c.out, md)
		return werr
	}
	_, err = io.WriteString(c.out, renderer.Render(tr, md))
	return err
}

// searchTemplates runs a title search
func (c *CLI) searchTemplates(args []string) error {
	positional, flags := parseArgs(args)
	if len(positional) == 0 {
		return fmt.Errorf("search requires a query")
	}

	result, err := c.run("search", map[string]interface{}{"query": strings.Join(positional, " ")})
	if err != nil {
		return err
	}
	results := result.Data.([]models.SearchResult)

	if flag(flags, "format", "f") == "json" {
		return c.writeJSON(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(c.out, "No templates found")
		return nil
	}

	current := ""
	for _, r := range results {
		if r.Category != current {
			current = r.Category
			fmt.Fprintf(c.out, "%s\n", current)
		}
		fmt.Fprintf(c.out, "  %-28s %s\n", r.TemplateID, r.Name)
	}
	return nil
}

// listCompletions prints the completion list
func (c *CLI) listCompletions(args []string) error {
	_, flags := parseArgs(args)

	result, err := c.run("completions", nil)
	if err != nil {
		return err
	}
	views := result.Data.([]commands.CompletionView)

	switch flag(flags, "format", "f") {
	case "json":
		return c.writeJSON(views)
	case "markdown", "md":
		_, err := io.WriteString(c.out, renderer.RenderCompletionDocs(c.service.Completions()))
		return err
	default:
		return c.renderMarkdown(renderer.RenderCompletionDocs(c.service.Completions()))
	}
}

// resolveDocs prints the documentation URL for a template or script file
func (c *CLI) resolveDocs(args []string) error {
	positional, flags := parseArgs(args, "open")

	params := map[string]interface{}{
		"template":  flag(flags, "template", "t"),
		"selection": flag(flags, "selection", "s"),
	}
	if params["template"] == "" && len(positional) > 0 {
		params["template"] = positional[0]
	}

	if path := flag(flags, "file"); path != "" {
		content, err := c.service.Storage().ReadScript(context.Background(), path)
		if err != nil {
			return err
		}
		params["content"] = content
	}

	result, err := c.run("docs", params)
	if err != nil {
		return err
	}
	url := result.Data.(map[string]string)["url"]
	fmt.Fprintln(c.out, url)

	if flags["open"] == "true" {
		if err := c.openURL(url); err != nil {
			return fmt.Errorf("failed to open documentation: %w", err)
		}
	}
	return nil
}

// newScript starts a script from a template
func (c *CLI) newScript(args []string) error {
	positional, flags := parseArgs(args, "overlay")
	if len(positional) == 0 {
		return fmt.Errorf("new requires a template ID")
	}

	entry, err := c.service.GetTemplate(positional[0])
	if err != nil {
		return err
	}

	// An overlay copy shadows the built-in on the next start
	if flags["overlay"] == "true" {
		overlay := *entry
		overlay.FilePath = ""
		path, err := c.service.SaveOverlay(&overlay)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Created overlay %s\n", path)
		return nil
	}

	output := flag(flags, "output", "o")
	if output == "" {
		_, err := io.WriteString(c.out, entry.Source)
		return err
	}

	artifact := models.Artifact{Name: filepath.Base(output), MIMEType: "text/javascript", Content: entry.Source}
	path, err := c.service.Storage().WriteScript(filepath.Dir(output), artifact)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Wrote %s template to %s\n", entry.ID, path)
	return nil
}

// copyTemplate copies a template to the system clipboard
func (c *CLI) copyTemplate(args []string) error {
	positional, _ := parseArgs(args)
	if len(positional) == 0 {
		return fmt.Errorf("copy requires a template ID")
	}

	entry, err := c.service.GetTemplate(positional[0])
	if err != nil {
		return err
	}

	message, err := c.copyText(entry.Source)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, message)
	return nil
}

// handleExport writes the catalog as json, yaml or xlsx
func (c *CLI) handleExport(args []string) error {
	_, flags := parseArgs(args)
	output := flag(flags, "output", "o")

	formatName := flag(flags, "format", "f")
	if formatName == "" && output != "" {
		formatName = filepath.Ext(output)
	}
	if formatName == "" {
		formatName = "json"
	}

	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	if output == "" {
		if format == export.FormatXLSX {
			return errors.ValidationError("xlsx export requires --output")
		}
		return c.service.Export(c.out, format)
	}

	f, err := os.Create(output)
	if err != nil {
		return errors.StorageError("create export file", err)
	}
	if err := c.service.Export(f, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.StorageError("close export file", err)
	}

	fmt.Fprintf(c.out, "Exported catalog to %s\n", output)
	return nil
}

// showLayout prints the layout computed for a viewport
func (c *CLI) showLayout(args []string) error {
	positional, _ := parseArgs(args)
	if len(positional) < 2 {
		return fmt.Errorf("layout requires a width and a height")
	}

	result, err := c.run("layout", map[string]interface{}{"width": positional[0], "height": positional[1]})
	if err != nil {
		return err
	}
	return c.writeJSON(result.Data.(layout.Layout))
}

// showConfig prints the active preferences
func (c *CLI) showConfig(args []string) error {
	_, flags := parseArgs(args)
	cfg := c.service.Config()

	if flag(flags, "format", "f") == "json" {
		return c.writeJSON(cfg)
	}

	enc := yaml.NewEncoder(c.out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// importScripts imports a directory of scripts or a git repository as
// overlay templates
func (c *CLI) importScripts(args []string) error {
	positional, flags := parseArgs(args, "dry-run", "overwrite")

	options := importer.ImportOptions{
		Category:          flag(flags, "category", "c"),
		Prefix:            flags["prefix"],
		DryRun:            flags["dry-run"] == "true",
		OverwriteExisting: flags["overwrite"] == "true",
	}

	var result *importer.ImportResult
	if repoURL := flags["git"]; repoURL != "" {
		depth := 1
		if d := flags["depth"]; d != "" {
			n, err := strconv.Atoi(d)
			if err != nil || n < 0 {
				return errors.ValidationError("depth must be a non-negative number")
			}
			depth = n
		}
		if len(positional) > 0 {
			options.Path = positional[0]
		}
		gitResult, err := c.service.ImportGitRepo(context.Background(), importer.GitImportOptions{
			ImportOptions: options,
			RepoURL:       repoURL,
			Branch:        flags["branch"],
			Depth:         depth,
		})
		if err != nil {
			return err
		}
		result = gitResult.ImportResult
	} else {
		if len(positional) == 0 {
			return fmt.Errorf("import requires a directory or --git <url>")
		}
		options.Path = positional[0]
		var err error
		if result, err = c.service.ImportScripts(options); err != nil {
			return err
		}
	}

	verb := "Imported"
	if options.DryRun {
		verb = "Would import"
	}
	for _, entry := range result.Templates {
		fmt.Fprintf(c.out, "%s %s (%s)\n", verb, entry.ID, entry.Name)
	}
	for _, id := range result.Skipped {
		fmt.Fprintf(c.out, "Skipped %s: id already exists\n", id)
	}
	for _, err := range result.Errors {
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
	fmt.Fprintf(c.out, "%d imported, %d skipped, %d failed\n", len(result.Templates), len(result.Skipped), len(result.Errors))
	return nil
}

// syncLibrary manages git versioning of the data directory
func (c *CLI) syncLibrary(args []string) error {
	_, flags := parseArgs(args, "init", "pull", "status")
	ctx := context.Background()
	sync := c.service.Sync()

	switch {
	case flags["init"] == "true":
		if err := c.service.InitLibrary(); err != nil {
			return err
		}
		if err := sync.Setup(ctx, flags["remote"]); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Git sync enabled for %s\n", c.service.Storage().GetBaseDir())
		return nil
	case flags["pull"] == "true":
		if err := sync.PullChanges(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Pulled remote changes")
		return nil
	case flags["status"] == "true":
		status, err := sync.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, status)
		return nil
	}

	if !sync.IsRepository() {
		return errors.ValidationError("library is not a git repository").
			WithDetails("Run 'kubejs-editor sync --init [--remote <url>]' first")
	}
	message := flag(flags, "message", "m")
	if message == "" {
		message = "Update library"
	}
	committed, err := sync.SyncChanges(ctx, message)
	if err != nil {
		return err
	}
	if committed {
		fmt.Fprintln(c.out, "Changes synced")
	} else {
		fmt.Fprintln(c.out, "Nothing to sync")
	}
	return nil
}

// initLibrary creates the data directory layout
func (c *CLI) initLibrary() error {
	if err := c.service.InitLibrary(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Initialized KubeJS editor library in %s\n", c.service.Storage().GetBaseDir())
	return nil
}

func (c *CLI) printUsage() error {
	fmt.Fprintln(c.out, `kubejs-editor - KubeJS script editor

Usage:
  kubejs-editor                     Start the terminal editor
  kubejs-editor --serve [--port N]  Start the web editor
  kubejs-editor <command> [args]    Run a headless command

Commands:
  templates, ls     List templates by category
  show <id>         Show a template card
  search <query>    Search template titles
  completions       List editor completions
  docs              Resolve a documentation URL
  new <id>          Start a script from a template
  copy <id>         Copy a template to the clipboard
  export            Export the catalog (json, yaml, xlsx)
  layout <w> <h>    Compute the editor layout for a viewport
  config            Show editor preferences
  init              Create the data directory
  import <dir>      Import existing scripts as templates
  sync              Version the data directory with git
  help [command]    Show help for a command`)
	return nil
}

func (c *CLI) printHelp(args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	switch args[0] {
	case "templates", "ls", "list":
		fmt.Fprintln(c.out, `templates - List templates

Usage: kubejs-editor templates [options]

Options:
  --format, -f <format>      Output format (table, json, ids, default)
  --category, -c <category>  Only list one category`)

	case "show", "get":
		fmt.Fprintln(c.out, `show - Show a template

Usage: kubejs-editor show <id> [options]

Options:
  --format, -f <format>  Output format (json, markdown, source, default)`)

	case "search":
		fmt.Fprintln(c.out, `search - Search template titles

Usage: kubejs-editor search <query> [options]

Queries shorter than two characters match nothing.

Options:
  --format, -f <format>  Output format (json, default)`)

	case "docs":
		fmt.Fprintln(c.out, `docs - Resolve a documentation URL

Usage: kubejs-editor docs [id] [options]

Options:
  --template, -t <id>    Active template
  --selection, -s <id>   Auxiliary template selection
  --file <path>          Script whose content picks the page
  --open                 Open the page in a browser`)

	case "new":
		fmt.Fprintln(c.out, `new - Start a script from a template

Usage: kubejs-editor new <id> [options]

Options:
  --output, -o <file>  Write to file instead of stdout
  --overlay            Copy the template into the overlay directory`)

	case "export":
		fmt.Fprintln(c.out, `export - Export the template catalog

Usage: kubejs-editor export [options]

Options:
  --format, -f <format>  json, yaml or xlsx (default: from --output, else json)
  --output, -o <file>    Output file (required for xlsx)`)

	case "import":
		fmt.Fprintln(c.out, `import - Import existing scripts as templates

Usage: kubejs-editor import <dir> [options]
       kubejs-editor import --git <url> [subdir] [options]

Scripts under kubejs/ in a modpack are found automatically. Imported
templates appear in the sidebar on the next start.

Options:
  --category, -c <name>  Sidebar category (default: Imported)
  --prefix <text>        Prefix for generated ids
  --dry-run              List what would be imported
  --overwrite            Replace templates that use the same id
  --git <url>            Clone a repository first
  --branch <name>        Branch to clone
  --depth <n>            Clone depth (default: 1, 0 for full history)`)

	case "sync":
		fmt.Fprintln(c.out, `sync - Version the data directory with git

Usage: kubejs-editor sync [options]

Without options, commits every change and pushes when a remote exists.
Once set up, template overlays and imports are committed automatically.

Options:
  --init                 Initialize the repository
  --remote <url>         Remote to push to (with --init)
  --pull                 Rebase onto the remote
  --status               Show the repository state
  --message, -m <text>   Commit message`)

	default:
		return c.printUsage()
	}
	return nil
}
