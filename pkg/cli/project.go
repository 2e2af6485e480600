package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/getstubd/stubd/pkg/admin"
	"github.com/getstubd/stubd/pkg/cli/internal/output"
	"github.com/getstubd/stubd/pkg/stub"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long: `Manage projects on a running server. A project groups stub endpoints
under a shared base path; requests are routed to the project whose base
path is the longest matching prefix.`,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClientWithAuth(adminURL)
		projects, err := client.ListProjects()
		if err != nil {
			return clientError(err)
		}

		if jsonOutput {
			return output.JSON(projects)
		}
		if len(projects) == 0 {
			fmt.Println("No projects configured")
			return nil
		}

		endpoints, err := client.ListEndpoints("")
		if err != nil {
			return clientError(err)
		}
		perProject := make(map[string]int, len(projects))
		for _, e := range endpoints {
			perProject[e.ProjectID]++
		}

		w := output.Table()
		_, _ = fmt.Fprintln(w, "ID\tNAME\tBASE PATH\tENDPOINTS\tCREATED")
		for _, p := range projects {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				p.ID, p.Name, p.BasePath, perProject[p.ID], p.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var (
	projectAddName        string
	projectAddBasePath    string
	projectAddDescription string
)

var projectAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a project",
	Example: `  stubd project add --name "Payments" --base-path /api/payments
  stubd project add   # interactive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("base-path") {
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Project name").
						Placeholder("Payments API").
						Value(&projectAddName).
						Validate(func(s string) error {
							if s == "" {
								return errors.New("name is required")
							}
							return nil
						}),
					huh.NewInput().
						Title("Base path").
						Placeholder("/api/payments").
						Value(&projectAddBasePath).
						Validate(func(s string) error {
							if !strings.HasPrefix(s, "/") {
								return errors.New("base path must start with /")
							}
							return nil
						}),
					huh.NewText().
						Title("Description (optional)").
						Value(&projectAddDescription),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}
		}

		client := NewClientWithAuth(adminURL)
		project, err := client.CreateProject(&admin.ProjectInput{
			Name:        projectAddName,
			Description: projectAddDescription,
			BasePath:    projectAddBasePath,
		})
		if err != nil {
			return clientError(err)
		}

		if jsonOutput {
			return output.JSON(project)
		}
		fmt.Printf("Created project %q (%s)\n", project.Name, project.ID)
		fmt.Printf("Requests under %s/* now route to this project.\n", project.BasePath)
		return nil
	},
}

var projectGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClientWithAuth(adminURL)
		project, err := client.GetProject(args[0])
		if err != nil {
			return clientError(err)
		}

		if jsonOutput {
			return output.JSON(project)
		}
		printProject(project)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project and all its endpoints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClientWithAuth(adminURL)
		if err := client.DeleteProject(args[0]); err != nil {
			return clientError(err)
		}
		fmt.Printf("Deleted project %s\n", args[0])
		return nil
	},
}

// printProject writes a project as aligned key-value lines.
func printProject(p *stub.Project) {
	w := output.Table()
	_, _ = fmt.Fprintf(w, "ID:\t%s\n", p.ID)
	_, _ = fmt.Fprintf(w, "Name:\t%s\n", p.Name)
	if p.Description != "" {
		_, _ = fmt.Fprintf(w, "Description:\t%s\n", p.Description)
	}
	_, _ = fmt.Fprintf(w, "Base path:\t%s\n", p.BasePath)
	_, _ = fmt.Fprintf(w, "Created:\t%s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "Updated:\t%s\n", p.UpdatedAt.Format("2006-01-02 15:04:05"))
	_ = w.Flush()
}

func init() {
	projectAddCmd.Flags().StringVar(&projectAddName, "name", "", "Project name")
	projectAddCmd.Flags().StringVar(&projectAddBasePath, "base-path", "", "URL prefix routed to this project (e.g. /api/v1)")
	projectAddCmd.Flags().StringVar(&projectAddDescription, "description", "", "Optional description")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectGetCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}
