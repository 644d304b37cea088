package cmd

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-spatial/cobra"

	"github.com/atlasdatatech/geolayer/cmd/internal/register"
	"github.com/atlasdatatech/geolayer/config"
)

var describeTimeout time.Duration

var describeCmd = &cobra.Command{
	Use:   "describe <service url>",
	Short: "Print the description of a service or sublayer endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		ctx, cancel := context.WithTimeout(context.Background(), describeTimeout)
		defer cancel()

		client := register.Client(config.Client{})
		desc, err := client.Describe(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(desc)
	},
}

func init() {
	describeCmd.Flags().DurationVar(&describeTimeout, "timeout", 30*time.Second, "request timeout")
}
