package cmd

import (
	"github.com/pirouette/content/internal/config"
	"github.com/pirouette/content/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var port string

	command := &cobra.Command{
		Use:   "serve",
		Short: "start the content server",
		Run: func(cmd *cobra.Command, args []string) {
			if port == "" {
				port = config.LoadConfig().HTTPPort
			}

			if err := server.Start(port); err != nil {
				logrus.Fatal(err)
			}
		},
	}

	command.Flags().StringVarP(&port, "port", "p", "", "http port")

	return command
}
