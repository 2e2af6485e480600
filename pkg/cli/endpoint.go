package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/getstubd/stubd/pkg/admin"
	"github.com/getstubd/stubd/pkg/cli/internal/output"
	"github.com/getstubd/stubd/pkg/stub"
)

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Manage stub endpoints",
	Long: `Manage stub endpoints on a running server. An endpoint matches one
method and one path relative to its project's base path, and serves the
configured response verbatim.`,
}

var endpointListProject string

var endpointListCmd = &cobra.Command{
	Use:   "list",
	Short: "List endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClientWithAuth(adminURL)
		endpoints, err := client.ListEndpoints(endpointListProject)
		if err != nil {
			return clientError(err)
		}

		if jsonOutput {
			return output.JSON(endpoints)
		}
		if len(endpoints) == 0 {
			fmt.Println("No endpoints configured")
			return nil
		}

		w := output.Table()
		_, _ = fmt.Fprintln(w, "ID\tMETHOD\tPATH\tSTATUS\tENABLED\tPROJECT")
		for _, e := range endpoints {
			status := "-"
			if e.Response != nil {
				status = strconv.Itoa(e.Response.Status)
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
				e.ID, e.Method, e.Path, status, e.Enabled, e.ProjectID)
		}
		return w.Flush()
	},
}

var (
	endpointAddProject  string
	endpointAddPath     string
	endpointAddMethod   string
	endpointAddStatus   int
	endpointAddBody     string
	endpointAddHeaders  []string
	endpointAddDelay    int64
	endpointAddDisabled bool
)

var endpointAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a stub endpoint",
	Long: `Create a stub endpoint. With --path and --project the endpoint is
created directly from flags; without --path an interactive form asks
for the missing pieces.`,
	Example: `  stubd endpoint add --project 8d9f... --path /users --method GET --status 200 --body '[]'
  stubd endpoint add --project 8d9f... --path /orders --method POST --status 201 \
      --body '{"id":"ord_1"}' --header X-Request-Cost=0.02 --delay 150
  stubd endpoint add   # interactive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClientWithAuth(adminURL)

		if !cmd.Flags().Changed("path") {
			if err := runEndpointForm(cmd, client); err != nil {
				return err
			}
		}

		headers, err := parseHeaderFlags(endpointAddHeaders)
		if err != nil {
			return err
		}

		input := &admin.EndpointInput{
			ProjectID: endpointAddProject,
			Path:      endpointAddPath,
			Method:    endpointAddMethod,
			Response: &stub.ResponseSpec{
				Status:  endpointAddStatus,
				Headers: headers,
				DelayMs: endpointAddDelay,
			},
		}
		if endpointAddBody != "" {
			input.Response.Body = json.RawMessage(endpointAddBody)
		}
		if endpointAddDisabled {
			enabled := false
			input.Enabled = &enabled
		}

		endpoint, err := client.CreateEndpoint(input)
		if err != nil {
			return clientError(err)
		}

		if jsonOutput {
			return output.JSON(endpoint)
		}
		fmt.Printf("Created endpoint %s %s (%s)\n", endpoint.Method, endpoint.Path, endpoint.ID)
		return nil
	},
}

// runEndpointForm fills the add flags from an interactive form. The
// project select is populated from the server and skipped when
// --project was given.
func runEndpointForm(cmd *cobra.Command, client Client) error {
	var fields []huh.Field

	if !cmd.Flags().Changed("project") {
		projects, err := client.ListProjects()
		if err != nil {
			return clientError(err)
		}
		if len(projects) == 0 {
			return errors.New("no projects exist yet; create one first with 'stubd project add'")
		}
		options := make([]huh.Option[string], 0, len(projects))
		for _, p := range projects {
			options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", p.Name, p.BasePath), p.ID))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Which project does the endpoint belong to?").
			Options(options...).
			Value(&endpointAddProject))
	}

	statusStr := strconv.Itoa(endpointAddStatus)
	fields = append(fields,
		huh.NewInput().
			Title("What is the path to match, relative to the project base path?").
			Placeholder("/users").
			Value(&endpointAddPath).
			Validate(func(s string) error {
				if !strings.HasPrefix(s, "/") {
					return errors.New("path must start with /")
				}
				return nil
			}),
		huh.NewSelect[string]().
			Title("What HTTP method should it respond to?").
			Options(
				huh.NewOption("GET", "GET"),
				huh.NewOption("POST", "POST"),
				huh.NewOption("PUT", "PUT"),
				huh.NewOption("DELETE", "DELETE"),
				huh.NewOption("PATCH", "PATCH"),
			).
			Value(&endpointAddMethod),
		huh.NewInput().
			Title("What status code should it return?").
			Value(&statusStr).
			Validate(func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil || n < 100 || n > 599 {
					return errors.New("status must be between 100 and 599")
				}
				return nil
			}),
		huh.NewText().
			Title("Response body (JSON, optional)").
			Placeholder(`{"status": "ok"}`).
			Value(&endpointAddBody).
			Validate(func(s string) error {
				if s != "" && !json.Valid([]byte(s)) {
					return errors.New("body must be valid JSON")
				}
				return nil
			}),
	)

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return err
	}

	endpointAddStatus, _ = strconv.Atoi(statusStr)
	return nil
}

// parseHeaderFlags converts repeated name=value flags into a header map.
func parseHeaderFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q: expected name=value", pair)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}

var endpointGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show an endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClientWithAuth(adminURL)
		endpoint, err := client.GetEndpoint(args[0])
		if err != nil {
			return clientError(err)
		}

		if jsonOutput {
			return output.JSON(endpoint)
		}
		printEndpoint(endpoint)
		return nil
	},
}

var endpointDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClientWithAuth(adminURL)
		if err := client.DeleteEndpoint(args[0]); err != nil {
			return clientError(err)
		}
		fmt.Printf("Deleted endpoint %s\n", args[0])
		return nil
	},
}

var endpointEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable an endpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setEndpointEnabled(args[0], true) },
}

var endpointDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable an endpoint without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setEndpointEnabled(args[0], false) },
}

// setEndpointEnabled flips the enabled flag through a partial update.
func setEndpointEnabled(id string, enabled bool) error {
	client := NewClientWithAuth(adminURL)
	endpoint, err := client.UpdateEndpoint(id, &admin.EndpointPatch{Enabled: &enabled})
	if err != nil {
		return clientError(err)
	}
	state := "disabled"
	if endpoint.Enabled {
		state = "enabled"
	}
	fmt.Printf("Endpoint %s %s is now %s\n", endpoint.Method, endpoint.Path, state)
	return nil
}

// printEndpoint writes an endpoint as aligned key-value lines.
func printEndpoint(e *stub.Endpoint) {
	w := output.Table()
	_, _ = fmt.Fprintf(w, "ID:\t%s\n", e.ID)
	_, _ = fmt.Fprintf(w, "Project:\t%s\n", e.ProjectID)
	_, _ = fmt.Fprintf(w, "Method:\t%s\n", e.Method)
	_, _ = fmt.Fprintf(w, "Path:\t%s\n", e.Path)
	_, _ = fmt.Fprintf(w, "Enabled:\t%t\n", e.Enabled)
	if e.Response != nil {
		_, _ = fmt.Fprintf(w, "Status:\t%d\n", e.Response.Status)
		if e.Response.DelayMs > 0 {
			_, _ = fmt.Fprintf(w, "Delay:\t%dms\n", e.Response.DelayMs)
		}
		for name, value := range e.Response.Headers {
			_, _ = fmt.Fprintf(w, "Header:\t%s: %s\n", name, value)
		}
		if len(e.Response.Body) > 0 {
			_, _ = fmt.Fprintf(w, "Body:\t%s\n", string(e.Response.Body))
		}
	}
	_, _ = fmt.Fprintf(w, "Created:\t%s\n", e.CreatedAt.Format("2006-01-02 15:04:05"))
	_ = w.Flush()
}

func init() {
	endpointListCmd.Flags().StringVar(&endpointListProject, "project", "", "Only list endpoints of this project")

	endpointAddCmd.Flags().StringVar(&endpointAddProject, "project", "", "Project the endpoint belongs to")
	endpointAddCmd.Flags().StringVar(&endpointAddPath, "path", "", "Path to match, relative to the project base path")
	endpointAddCmd.Flags().StringVarP(&endpointAddMethod, "method", "m", "GET", "HTTP method to match")
	endpointAddCmd.Flags().IntVar(&endpointAddStatus, "status", 200, "Response status code")
	endpointAddCmd.Flags().StringVar(&endpointAddBody, "body", "", "Response body (JSON)")
	endpointAddCmd.Flags().StringArrayVar(&endpointAddHeaders, "header", nil, "Response header as name=value (repeatable)")
	endpointAddCmd.Flags().Int64Var(&endpointAddDelay, "delay", 0, "Response delay in milliseconds")
	endpointAddCmd.Flags().BoolVar(&endpointAddDisabled, "disabled", false, "Create the endpoint disabled")

	endpointCmd.AddCommand(endpointListCmd)
	endpointCmd.AddCommand(endpointAddCmd)
	endpointCmd.AddCommand(endpointGetCmd)
	endpointCmd.AddCommand(endpointDeleteCmd)
	endpointCmd.AddCommand(endpointEnableCmd)
	endpointCmd.AddCommand(endpointDisableCmd)
	rootCmd.AddCommand(endpointCmd)
}
