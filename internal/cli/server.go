package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pvectl/internal/config"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage server profiles",
	Long:  `Add, list, and remove Proxmox VE server profiles. Profiles store connection details only, never secrets.`,
}

var serverAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new server profile",
	Long:  `Add a Proxmox VE server profile with the specified host and authentication method.`,
	RunE:  runServerAdd,
}

var serverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured server profiles",
	RunE:  runServerList,
}

var serverRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a server profile",
	Long:  `Remove a Proxmox VE server profile by its name.`,
	RunE:  runServerRemove,
}

var (
	addName        string
	addHost        string
	addPort        int
	addAuthMethod  string
	addTokenID     string
	addUsername    string
	addRealm       string
	addInsecureTLS bool

	removeName string
)

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.AddCommand(serverAddCmd)
	serverCmd.AddCommand(serverListCmd)
	serverCmd.AddCommand(serverRemoveCmd)

	serverAddCmd.Flags().StringVar(&addName, "name", "", "Profile name (required)")
	serverAddCmd.Flags().StringVar(&addHost, "host", "", "Server hostname or IP, no scheme or port (required)")
	serverAddCmd.Flags().IntVar(&addPort, "port", 0, "API port (default: 8006)")
	serverAddCmd.Flags().StringVarP(&addAuthMethod, "auth", "a", "api-token", "Authentication method: api-token or password")
	serverAddCmd.Flags().StringVar(&addTokenID, "token-id", "", "API token id in user@realm!tokenid form (api-token auth)")
	serverAddCmd.Flags().StringVarP(&addUsername, "username", "n", "", "Username for password auth")
	serverAddCmd.Flags().StringVar(&addRealm, "realm", "", "Authentication realm for password auth")
	serverAddCmd.Flags().BoolVar(&addInsecureTLS, "insecure", true, "Skip TLS certificate verification")

	_ = serverAddCmd.MarkFlagRequired("name")
	_ = serverAddCmd.MarkFlagRequired("host")

	serverRemoveCmd.Flags().StringVar(&removeName, "name", "", "Profile name to remove (required)")
	_ = serverRemoveCmd.MarkFlagRequired("name")
}

func runServerAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	server := config.Server{
		Name:        addName,
		Host:        addHost,
		Port:        addPort,
		AuthMethod:  addAuthMethod,
		TokenID:     addTokenID,
		Username:    addUsername,
		Realm:       addRealm,
		InsecureTLS: addInsecureTLS,
	}

	err = a.ConfigManager.AddServer(server)
	if err != nil {
		return fmt.Errorf("failed to add server: %w", err)
	}

	fmt.Printf("Successfully added server profile: %s\n", addName)
	return nil
}

func runServerList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	servers, err := a.ConfigManager.GetServers()
	if err != nil {
		return fmt.Errorf("failed to load servers: %w", err)
	}

	if len(servers) == 0 {
		fmt.Println("No server profiles configured. Use 'pvectl server add' to add one.")
		return nil
	}

	fmt.Printf("Configured server profiles (%d):\n\n", len(servers))
	for i, server := range servers {
		fmt.Printf("%d. %s\n", i+1, server.Name)
		fmt.Printf("   Host: %s\n", server.Host)
		fmt.Printf("   Auth: %s\n", server.AuthMethod)
		if server.TokenID != "" {
			fmt.Printf("   Token ID: %s\n", server.TokenID)
		}
		if server.Username != "" {
			fmt.Printf("   Username: %s\n", server.Username)
		}
		if i < len(servers)-1 {
			fmt.Println()
		}
	}

	return nil
}

func runServerRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	err = a.ConfigManager.RemoveServerByName(removeName)
	if err != nil {
		return fmt.Errorf("failed to remove server: %w", err)
	}

	fmt.Printf("Successfully removed server profile: %s\n", removeName)
	return nil
}
