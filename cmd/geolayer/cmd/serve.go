package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-spatial/cobra"

	"github.com/atlasdatatech/geolayer/atlas"
	"github.com/atlasdatatech/geolayer/cmd/internal/register"
	"github.com/atlasdatatech/geolayer/internal/log"
	"github.com/atlasdatatech/geolayer/server"
)

var serverPort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the configured layers and serve them over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return err
		}

		a := atlas.New()
		if err := register.Layers(a, conf.Layers, register.Client(conf.Client)); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		a.LoadAll(ctx)
		go func() {
			if err := a.WaitReady(ctx); err != nil {
				log.Warnf("serve: %v", err)
				return
			}
			log.Infof("serve: all %v layer(s) ready", len(a.Layers()))
		}()

		port := conf.Webserver.Port
		if serverPort != "" {
			port = serverPort
		}
		srv := server.Start(a, conf.Webserver.HostName+port)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")

		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serverPort, "port", "p", "", "port to bind to, overrides the config")
}
