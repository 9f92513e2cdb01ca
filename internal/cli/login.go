package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify credentials against a server",
	Long: `Authenticate against the selected server profile and report the API
version. For password profiles this performs a ticket login; for token
profiles it verifies the token with a read-only request.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	server, err := selectedServer(a)
	if err != nil {
		return err
	}

	client, err := a.ClientForServer(ctx, *server)
	if err != nil {
		return fmt.Errorf("failed to authenticate against %s: %w", server.Host, err)
	}

	info, err := client.Version(ctx)
	if err != nil {
		return fmt.Errorf("authenticated but version probe failed: %w", err)
	}

	fmt.Printf("Authenticated against %s (auth: %s)\n", client.BaseURL(), client.AuthKind())
	fmt.Printf("  Proxmox VE %s (release %s)\n", info.Version, info.Release)
	return nil
}
