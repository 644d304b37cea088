package cmd

import (
	"github.com/go-spatial/cobra"
	"github.com/joho/godotenv"

	"github.com/atlasdatatech/geolayer/config"
	"github.com/atlasdatatech/geolayer/internal/log"
	// register the file source drivers
	_ "github.com/atlasdatatech/geolayer/provider/debug"
	_ "github.com/atlasdatatech/geolayer/provider/geojson"
	_ "github.com/atlasdatatech/geolayer/provider/gpkg"
)

var (
	configFile string
	logLevel   string

	// conf is set by the root pre run for every command that needs it.
	conf config.Config
)

var RootCmd = &cobra.Command{
	Use:   "geolayer",
	Short: "geolayer loads map service layers and serves their attributes",
	Long: `geolayer loads ArcGIS map, feature and file layers, follows their
readiness and serves their layer trees and attribute tables over HTTP.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "config.toml", "path to the config file")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", log.INFO, "one of DEBUG, INFO, WARN, ERROR")

	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(describeCmd)
	RootCmd.AddCommand(fetchCmd)
	RootCmd.AddCommand(versionCmd)
}

// setup loads the env files and the config file. Commands that need a config run it first.
func setup() error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	log.SetLogLevel(logLevel)

	var err error
	if conf, err = config.Load(configFile); err != nil {
		return err
	}
	if err = conf.Validate(); err != nil {
		return err
	}
	log.Infof("loaded config %v with %v layer(s)", conf.LocationName, len(conf.Layers))
	return nil
}

// setupLogging is used by commands that run without a config.
func setupLogging() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
	log.SetLogLevel(logLevel)
}
