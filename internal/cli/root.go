package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pvectl/internal/app"
	"pvectl/internal/config"
)

var (
	cfgFile    string
	serverName string
	verbose    bool
)

// Build information
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// SetVersionInfo updates the build information variables
func SetVersionInfo(v, c, d, b string) {
	version = v
	commit = c
	date = d
	builtBy = b
}

var rootCmd = &cobra.Command{
	Use:   "pvectl",
	Short: "A CLI tool for managing Proxmox VE clusters over the REST API",
	Long: `Pvectl is a CLI tool for talking to Proxmox VE clusters: listing nodes
and guests, driving VM and container lifecycle, and following the tasks
those operations spawn.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/pvectl/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&serverName, "server", "s", "", "server profile name to use")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home + "/.config/pvectl")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newApp wires application dependencies for a command invocation.
func newApp(ctx context.Context) (*app.App, error) {
	opts := []app.Option{app.WithVerbose(verbose)}
	if cfgFile != "" {
		opts = append(opts, app.WithConfigPath(cfgFile))
	}
	return app.NewApp(ctx, opts...)
}

// selectedServer resolves the profile named by --server, falling back to the
// sole configured profile when only one exists.
func selectedServer(a *app.App) (*config.Server, error) {
	if serverName != "" {
		return a.ConfigManager.GetServerByName(serverName)
	}

	servers, err := a.ConfigManager.GetServers()
	if err != nil {
		return nil, err
	}
	switch len(servers) {
	case 0:
		return nil, fmt.Errorf("no server profiles configured, use 'pvectl server add' first")
	case 1:
		return &servers[0], nil
	default:
		return nil, fmt.Errorf("multiple server profiles configured, pick one with --server")
	}
}
