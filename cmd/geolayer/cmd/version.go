package cmd

import (
	"fmt"

	"github.com/go-spatial/cobra"

	"github.com/atlasdatatech/geolayer"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of geolayer",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), geolayer.Version)
	},
}
