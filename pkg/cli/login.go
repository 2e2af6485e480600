package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/getstubd/stubd/internal/cliconfig"
	"github.com/getstubd/stubd/pkg/cli/internal/output"
	"github.com/getstubd/stubd/pkg/config"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the management API",
	Long: `Log in to the management API and save the session token for later
commands. The password comes from --password, the STUBD_ADMIN_PASSWORD
environment variable, or an interactive prompt, in that order.

The token is written to the user config directory with owner-only
permissions and stays valid for 24 hours.`,
	Example: `  stubd login
  stubd login --username admin
  STUBD_ADMIN_PASSWORD=secret stubd login`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username := loginUsername
		password := loginPassword
		if password == "" {
			password = os.Getenv(cliconfig.EnvAdminPassword)
		}

		if password == "" {
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Username").
						Placeholder(config.DefaultAdminUsername).
						Value(&username).
						Validate(func(s string) error {
							if s == "" {
								return errors.New("username is required")
							}
							return nil
						}),
					huh.NewInput().
						Title("Password").
						EchoMode(huh.EchoModePassword).
						Value(&password).
						Validate(func(s string) error {
							if s == "" {
								return errors.New("password is required")
							}
							return nil
						}),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}
		}

		client := NewClient(adminURL)
		result, err := client.Login(username, password)
		if err != nil {
			return clientError(err)
		}
		if err := cliconfig.SaveToken(result.Token); err != nil {
			return fmt.Errorf("save session token: %w", err)
		}

		if jsonOutput {
			return output.JSON(result)
		}
		fmt.Printf("Logged in as %s. Session valid for %dh.\n", username, result.ExpiresIn/3600)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the saved session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cliconfig.DeleteToken(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in management API user",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClientWithAuth(adminURL)
		status, err := client.AuthStatus()
		if err != nil {
			return clientError(err)
		}
		if jsonOutput {
			return output.JSON(status)
		}
		fmt.Println(status.Username)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", config.DefaultAdminUsername, "Management API login name")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Management API password (prefer STUBD_ADMIN_PASSWORD)")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
