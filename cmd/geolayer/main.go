package main

import (
	"os"

	"github.com/atlasdatatech/geolayer/cmd/geolayer/cmd"
	"github.com/atlasdatatech/geolayer/internal/log"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		log.Error(err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}
