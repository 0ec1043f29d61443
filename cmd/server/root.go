package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:           "rendezvous",
		Short:         "Room and signal relay for WebRTC peers",
		Long:          `Rendezvous lets browsers create short-lived rooms, join them and exchange WebRTC negotiation messages over a WebSocket. Media never passes through the server.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v, configFile)
		},
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default config/config.$CONFIG_ENV.yaml)")

	serve := newServeCmd(v, &configFile)
	root.AddCommand(serve)
	root.AddCommand(newStatusCmd())

	// the bare binary serves, so it shares the serve flags
	root.Flags().AddFlagSet(serve.Flags())
	return root
}
