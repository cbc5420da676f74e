package app

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pyromage/micro-oidc/internal/auth"
	"github.com/pyromage/micro-oidc/internal/config"
	"github.com/pyromage/micro-oidc/internal/daemon"
)

const checkTimeout = time.Minute

func init() { //nolint: gochecknoinits
	checkCmd.Flags().BoolVar(&dumpConfig, "dump", false, "Print the effective configuration with secrets masked")

	rootCmd.AddCommand(checkCmd)
}

var (
	dumpConfig bool

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and probe every identity provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}

			if dumpConfig {
				out, errDump := config.DumpConfigJSON(&c)
				if errDump != nil {
					return errors.Wrap(errDump, "failed to dump config")
				}

				cmd.Print(out)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
			defer cancel()

			registry, err := auth.NewRegistry(ctx, daemon.ProviderConfigs(&c))
			if err != nil {
				return errors.Wrap(err, "provider check failed")
			}

			for _, p := range registry.Providers() {
				state := "available"
				if !p.Available {
					state = "unavailable"
				}

				cmd.Printf("%-20s %-12s required=%t\n", p.ID, state, p.Required)
			}

			return nil
		},
	}
)
