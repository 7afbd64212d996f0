package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trackreward/internal/httpapi"
)

const serveAddrKey = "addr"

func newServeCmd(rootViper *viper.Viper) *cobra.Command {
	serveViper := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reward registry over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			client, err := openClient(cmd, rootViper)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := client.Close(cmd.Context()); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			server := httpapi.New(serveViper.GetString(serveAddrKey), client.Registry())
			if err := server.Serve(cmd.Context()); err != nil {
				return err
			}
			log.Info("interrupted by user")
			return nil
		},
	}

	serveViper.SetDefault(serveAddrKey, ":8080")
	_ = serveViper.BindEnv(serveAddrKey, envPrefix+"_ADDR")
	cmd.Flags().String(serveAddrKey, serveViper.GetString(serveAddrKey), "Address to listen on")
	_ = serveViper.BindPFlags(cmd.Flags())

	return cmd
}
