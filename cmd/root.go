package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/marcus/fastly-stats/internal/config"
	"github.com/marcus/fastly-stats/internal/document"
	"github.com/marcus/fastly-stats/internal/fastly"
	"github.com/marcus/fastly-stats/internal/output"
	"github.com/spf13/cobra"
)

var version string

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// apiClient is the part of the Fastly client the commands depend on.
type apiClient interface {
	Stats(ctx context.Context, q fastly.StatsQuery) (document.Value, error)
	Summary(ctx context.Context, service string) (document.Value, error)
}

// clientFactory builds a client once settings are resolved. It is never
// called when settings fail to load.
type clientFactory func(s *config.Settings) apiClient

func defaultClient(s *config.Settings) apiClient {
	return fastly.New(s.BaseURL, s.Token, s.Timeout)
}

var rootCmd = newRootCmd(defaultClient)

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output.Error(rootCmd.ErrOrStderr(), "%v", err)
		stop()
		os.Exit(1)
	}
}

// nameWithAliases returns "name, alias1, alias2" if aliases exist, else just "name"
func nameWithAliases(cmd *cobra.Command) string {
	if len(cmd.Aliases) > 0 {
		return cmd.Name() + ", " + strings.Join(cmd.Aliases, ", ")
	}
	return cmd.Name()
}

// Custom usage template that shows aliases inline
const usageTemplate = `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

Available Commands:{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

Additional Commands:{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

func init() {
	cobra.AddTemplateFunc("nameWithAliases", nameWithAliases)
	// Need to add the 'add' function for padding calculation
	cobra.AddTemplateFunc("add", func(a, b int) int { return a + b })
}

// newRootCmd builds the command tree. Tests build a fresh tree per run so
// flag values never leak between invocations.
func newRootCmd(newClient clientFactory) *cobra.Command {
	root := &cobra.Command{
		Use:   "fastly-stats",
		Short: "Query Fastly real-time stats and metrics",
		Long: `fastly-stats - query per-service traffic statistics from the Fastly API.

Authenticates with --token or the FASTLY_TOKEN environment variable and prints
either tab-separated text or the raw JSON response.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.String(config.FlagToken, "", "Fastly API token (default $"+config.EnvToken+")")
	flags.String(config.FlagFormat, "text", "Output format: text or json")
	flags.Duration(config.FlagTimeout, fastly.DefaultTimeout, "HTTP request timeout (0 disables)")
	flags.BoolP(config.FlagVerbose, "v", false, "Log requests to stderr")
	flags.String(config.FlagAPIURL, "", "Override the Fastly API base URL")
	_ = flags.MarkHidden(config.FlagAPIURL)

	root.SetUsageTemplate(usageTemplate)

	// Define command groups for organized help output
	root.AddGroup(
		&cobra.Group{ID: "query", Title: "Query Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)

	// Assign built-in commands to system group
	root.SetHelpCommandGroupID("system")
	root.SetCompletionCommandGroupID("system")

	root.AddCommand(
		newStatsCmd(newClient),
		newSummaryCmd(newClient),
	)
	return root
}

// loadSettings resolves configuration for a query command and configures
// logging. It runs before any client exists.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	if dir, err := os.Getwd(); err == nil {
		if err := config.LoadDotEnv(dir); err != nil {
			return nil, err
		}
	}

	settings, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	setupLogging(cmd.ErrOrStderr(), settings.LogLevel)
	return settings, nil
}

func setupLogging(w io.Writer, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, opts)))
}
