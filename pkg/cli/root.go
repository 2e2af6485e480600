package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/getstubd/stubd/internal/cliconfig"
)

var (
	// Persistent flags available to all subcommands
	adminURL   string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stubd",
	Short: "stubd is an HTTP stub server with a management API",
	Long: `stubd serves canned HTTP responses for endpoints you declare, grouped
into projects by URL prefix. A single listener carries both stub traffic
and the management API, so one process is all you run locally or in CI.

Endpoints can be managed through this CLI, through the HTTP management
API, or declared up front in a seed file loaded at startup.`,
	// No Run function here means 'stubd' with no args prints help text.
	SilenceUsage:  true,
	SilenceErrors: true, // Errors are handled in Execute()
}

// Execute runs the root command. It is called by main.main() and exits
// the process with a non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// defaultAdminURL resolves the admin API base URL for client commands:
// the STUBD_ADMIN_URL environment variable when set, otherwise the
// local default.
func defaultAdminURL() string {
	if url := cliconfig.AdminURLFromEnv(); url != "" {
		return url
	}
	return cliconfig.DefaultAdminURL(0)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&adminURL, "admin-url", defaultAdminURL(), "Admin API base URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
