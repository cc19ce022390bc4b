package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/respext/packages/core/config"
	"github.com/abdul-hamid-achik/respext/packages/model"
	"github.com/abdul-hamid-achik/respext/packages/workspace"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new respext project",
	Long: `Initialize a new respext project in the current directory.

This creates:
  - .respext.config.json - Configuration file with defaults
  - workspace.yaml       - Example workspace with two requests

Examples:
  respext init
  respext init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func exampleWorkspace() *workspace.File {
	return &workspace.File{
		Workspace: "example",
		Requests: []workspace.Request{
			{
				ID:     "req_token",
				Name:   "Get token",
				Method: "GET",
				URL:    "https://api.example.com/me",
				Authentication: &model.Authentication{
					Type:         model.AuthOAuth2,
					GrantType:    "client_credentials",
					TokenURL:     "https://auth.example.com/oauth/token",
					ClientID:     "my-client",
					ClientSecret: "my-secret",
					Scopes:       []string{"read"},
				},
			},
			{
				ID:     "req_users",
				Name:   "List users",
				Method: "GET",
				URL:    "https://api.example.com/users",
				Headers: []model.Header{
					{Name: "Accept", Value: "application/json"},
				},
				Responses: []workspace.Response{
					{
						Status:      200,
						StatusText:  "OK",
						ContentType: "application/json",
						Elapsed:     87,
						Body:        `{"data":[{"id":"u_1","name":"Ada"},{"id":"u_2","name":"Grace"}]}`,
					},
				},
			},
		},
	}
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, ".respext.config.json")
	workspaceFile := filepath.Join(cwd, "workspace.yaml")

	if !forceInit {
		for _, f := range []string{configFile, workspaceFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	if err := config.DefaultConfig().SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	workspaceYAML, err := yaml.Marshal(exampleWorkspace())
	if err != nil {
		return err
	}
	if err := os.WriteFile(workspaceFile, workspaceYAML, 0644); err != nil {
		return fmt.Errorf("failed to create workspace file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", workspaceFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nrespext project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'respext requests import workspace.yaml' and then\n")
	fmt.Fprintf(cmd.OutOrStdout(), "'respext render --func responseExtensions.body --request req_users --filter \"$.data[0].name\"'.\n")

	return nil
}
