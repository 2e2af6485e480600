package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/getstubd/stubd/pkg/cli/internal/output"
)

var importBasePath string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create a project from an OpenAPI document",
	Long: `Import an OpenAPI 3.x document (YAML or JSON) into a new project.
One stub endpoint is created per path and operation, using the first
2xx response and its example body. The base path comes from --base-path
or the document's first server URL.`,
	Example: `  stubd import openapi.yaml
  stubd import petstore.json --base-path /api/v2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read OpenAPI document: %w", err)
		}

		client := NewClientWithAuth(adminURL)
		result, err := client.ImportOpenAPI(doc, importBasePath)
		if err != nil {
			return clientError(err)
		}

		if jsonOutput {
			return output.JSON(result)
		}
		fmt.Printf("Imported %q: %d endpoints under %s (project %s)\n",
			result.Project.Name, result.Endpoints, result.Project.BasePath, result.Project.ID)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importBasePath, "base-path", "", "Base path for the imported project (overrides the document)")
	rootCmd.AddCommand(importCmd)
}
