// Package cli implements the salonctl command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = json.NewEncoder(os.Stdout).Encode(map[string]interface{}{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// opts carries the resolved global flags shared by all subcommands.
type opts struct {
	host   string
	token  string
	output string
}

func (o *opts) client() *Client {
	return NewClient(o.host, o.token)
}

func newRootCmd() *cobra.Command {
	o := &opts{}

	rootCmd := &cobra.Command{
		Use:           "salonctl",
		Short:         "Salon capability administration CLI",
		Long:          "Command-line interface for the salonhub capability API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Precedence: flag > env > default.
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("SALONHUB_HOST"); v != "" {
					o.host = v
				}
			}
			if !cmd.Flags().Changed("token") {
				if v := os.Getenv("SALONHUB_TOKEN"); v != "" {
					o.token = v
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&o.host, "host", "http://localhost:8080", "API host URL")
	rootCmd.PersistentFlags().StringVar(&o.token, "token", "", "JWT token for authentication")
	rootCmd.PersistentFlags().StringVarP(&o.output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(
		newCapabilitiesCmd(o),
		newGrantCmd(o),
		newRevokeCmd(o),
		newGrantsCmd(o),
		newCleanupCmd(o),
		newAuditCmd(o),
	)
	return rootCmd
}
