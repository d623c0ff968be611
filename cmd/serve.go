package cmd

import (
	"os/signal"
	"syscall"

	"github.com/soulink/soulink/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web view of the feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		listen, _ := cmd.Flags().GetString("listen")
		if !cmd.Flags().Changed("listen") {
			listen = viper.GetString("server.listen")
		}

		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		normalizer, err := newNormalizer()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(client, client, normalizer, server.Config{
			Listen:   listen,
			Refresh:  viper.GetString("server.refresh"),
			MaxConns: viper.GetInt("server.max_conns"),
			Featured: viper.GetInt("feed.featured"),
		})
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", server.DefaultListen, "HTTP listen address (default from server.listen)")
}
