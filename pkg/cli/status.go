package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/getstubd/stubd/pkg/cli/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server health and statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClientWithAuth(adminURL)

		health, err := client.Health()
		if err != nil {
			return clientError(err)
		}
		stats, err := client.Stats()
		if err != nil {
			return clientError(err)
		}

		if jsonOutput {
			return output.JSON(stats)
		}

		uptime := (time.Duration(stats.Uptime) * time.Second).String()
		w := output.Table()
		_, _ = fmt.Fprintf(w, "Status:\t%s\n", health.Status)
		_, _ = fmt.Fprintf(w, "Uptime:\t%s\n", uptime)
		_, _ = fmt.Fprintf(w, "Requests:\t%d\n", stats.RequestCount)
		_, _ = fmt.Fprintf(w, "Projects:\t%d\n", stats.Projects)
		_, _ = fmt.Fprintf(w, "Endpoints:\t%d\n", stats.Endpoints)
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
