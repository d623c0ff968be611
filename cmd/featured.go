package cmd

import (
	"os"

	"github.com/soulink/soulink/pkg/feed"
	"github.com/soulink/soulink/pkg/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var featuredCmd = &cobra.Command{
	Use:   "featured",
	Short: "Print the first posts of the feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := viewOptions(cmd)
		if err := opts.Validate(); err != nil {
			return err
		}

		n, _ := cmd.Flags().GetInt("count")
		if !cmd.Flags().Changed("count") {
			n = viper.GetInt("feed.featured")
		}

		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		normalizer, err := newNormalizer()
		if err != nil {
			return err
		}

		posts, err := feed.NewLoader(client, feed.WithNormalizer(normalizer)).Load(cmd.Context(), nil)
		if err != nil {
			return err
		}
		if n >= 0 && len(posts) > n {
			posts = posts[:n]
		}
		return render.PrintFeed(os.Stdout, posts, opts)
	},
}

func init() {
	rootCmd.AddCommand(featuredCmd)
	addViewFlags(featuredCmd)
	featuredCmd.Flags().IntP("count", "n", 6, "Number of posts to show (default from feed.featured)")
}
