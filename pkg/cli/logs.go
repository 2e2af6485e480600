package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getstubd/stubd/pkg/cli/internal/output"
	"github.com/getstubd/stubd/pkg/requestlog"
)

var logsFilter struct {
	project  string
	endpoint string
	method   string
	path     string
	status   int
	limit    int
	offset   int
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the request history",
	Long: `Show recent requests served by the stub engine, newest first. The
history covers both matched and unmatched requests; filters narrow it
by project, endpoint, method, path, or response status.`,
	Example: `  stubd logs
  stubd logs --limit 20 --method POST
  stubd logs --status 404
  stubd logs clear`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClientWithAuth(adminURL)
		result, err := client.GetLogs(&requestlog.Filter{
			ProjectID:  logsFilter.project,
			EndpointID: logsFilter.endpoint,
			Method:     logsFilter.method,
			Path:       logsFilter.path,
			StatusCode: logsFilter.status,
			Limit:      logsFilter.limit,
			Offset:     logsFilter.offset,
		})
		if err != nil {
			return clientError(err)
		}

		if jsonOutput {
			return output.JSON(result)
		}
		if len(result.Requests) == 0 {
			fmt.Println("No requests recorded")
			return nil
		}

		w := output.Table()
		_, _ = fmt.Fprintln(w, "TIME\tMETHOD\tPATH\tSTATUS\tDURATION\tENDPOINT")
		for _, e := range result.Requests {
			endpoint := e.EndpointID
			if endpoint == "" {
				endpoint = "-"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%dms\t%s\n",
				e.Timestamp.Format("15:04:05"), e.Method, e.Path, e.ResponseStatus, e.DurationMs, endpoint)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if len(result.Requests) < result.Total {
			fmt.Printf("\nShowing %d of %d requests\n", len(result.Requests), result.Total)
		}
		return nil
	},
}

var logsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the request history",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClientWithAuth(adminURL)
		if err := client.ClearLogs(); err != nil {
			return clientError(err)
		}
		fmt.Println("Request history cleared")
		return nil
	},
}

func init() {
	logsCmd.Flags().StringVar(&logsFilter.project, "project", "", "Only requests routed to this project")
	logsCmd.Flags().StringVar(&logsFilter.endpoint, "endpoint", "", "Only requests served by this endpoint")
	logsCmd.Flags().StringVar(&logsFilter.method, "method", "", "Only requests with this HTTP method")
	logsCmd.Flags().StringVar(&logsFilter.path, "path", "", "Only requests whose path starts with this prefix")
	logsCmd.Flags().IntVar(&logsFilter.status, "status", 0, "Only requests answered with this status code")
	logsCmd.Flags().IntVar(&logsFilter.limit, "limit", 50, "Maximum entries to show")
	logsCmd.Flags().IntVar(&logsFilter.offset, "offset", 0, "Entries to skip from the newest")

	logsCmd.AddCommand(logsClearCmd)
	rootCmd.AddCommand(logsCmd)
}
