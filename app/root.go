// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "micro-oidc",
	Short: "micro-oidc signs users in with OpenID Connect providers",
	Long: `micro-oidc is a small web service that authenticates users against
one of several OpenID Connect identity providers using the authorization
code flow with PKCE and shows the resulting identity.`,
	Args: cobra.OnlyValidArgs,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "Directory holding main.toml")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load")
}

var (
	configPath string   // Path to the configuration directory
	envFiles   []string // dotenv files loaded before the configuration
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
