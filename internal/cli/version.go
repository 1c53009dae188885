package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jmylchreest/tessera/internal/version"
	"github.com/spf13/cobra"
)

var versionJSON bool

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !versionJSON {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(version.GetInfo())
		},
	}
	cmd.Flags().BoolVar(&versionJSON, "json", false, "print version information as JSON")
	return cmd
}
