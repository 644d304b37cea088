package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-spatial/cobra"

	"github.com/atlasdatatech/geolayer/arcgis"
	"github.com/atlasdatatech/geolayer/atlas"
	"github.com/atlasdatatech/geolayer/cmd/internal/register"
	"github.com/atlasdatatech/geolayer/config"
	"github.com/atlasdatatech/geolayer/internal/log"
	"github.com/atlasdatatech/geolayer/layer"
)

var (
	fetchSublayer  int
	fetchTimeout   time.Duration
	fetchOutFields string
	fetchCount     bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <layer id | sublayer url>",
	Short: "Load the attribute table of a layer and print it as json",
	Long: `fetch loads the attribute table of a configured layer, or of the
sublayer endpoint given as a url, and prints its records.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		rec, err := fetchRecord(args[0])
		if err != nil {
			return err
		}
		defer rec.Close()

		rec.Load(ctx)
		if err := rec.WaitReady(ctx); err != nil {
			return err
		}

		var fc *layer.FeatureClass
		if cmd.Flags().Changed("sublayer") {
			fc, err = rec.FeatureClass(fetchSublayer)
		} else {
			fc, err = rec.DefaultFeatureClass()
		}
		if err != nil {
			return err
		}
		if fc.Err() != nil {
			return fc.Err()
		}
		loader := fc.Loader()
		if loader == nil {
			return fmt.Errorf("sublayer %v of %v has no attributes", fc.Index(), rec.ID())
		}

		start := time.Now()
		set, err := loader.Attributes().Wait(ctx)
		if err != nil {
			return err
		}
		log.Infof("fetched %v record(s) from %v in %v", set.Len(), rec.ID(), time.Since(start))

		if fetchCount {
			fmt.Fprintln(cmd.OutOrStdout(), set.Len())
			return nil
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(set.Features)
	},
}

// fetchRecord builds a record for a url argument, or looks the id up in the config.
func fetchRecord(arg string) (*layer.Record, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		setupLogging()
		kind := layer.ImageService
		if _, _, ok := arcgis.ParseURLIndex(arg); ok {
			kind = layer.FeatureService
		}
		return layer.NewRecord(layer.Config{
			ID:        arg,
			Kind:      kind,
			URL:       arg,
			OutFields: fetchOutFields,
		}, register.Client(config.Client{}))
	}

	if err := setup(); err != nil {
		return nil, err
	}
	a := atlas.New()
	if err := register.Layers(a, conf.Layers, register.Client(conf.Client)); err != nil {
		return nil, err
	}
	return a.Layer(arg)
}

func init() {
	fetchCmd.Flags().IntVar(&fetchSublayer, "sublayer", 0, "sublayer index, defaults to the lowest")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 5*time.Minute, "overall timeout")
	fetchCmd.Flags().StringVar(&fetchOutFields, "out-fields", "*", "fields to request when fetching by url")
	fetchCmd.Flags().BoolVar(&fetchCount, "count", false, "print only the number of records")
}
