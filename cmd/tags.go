package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/soulink/soulink/pkg/feed"
	"github.com/soulink/soulink/pkg/render"
	"github.com/soulink/soulink/pkg/search"
	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags <tag[,tag...]>",
	Short: "Print the posts carrying any of the given tags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := viewOptions(cmd)
		if err := opts.Validate(); err != nil {
			return err
		}

		tags := search.ParseTags(strings.Join(args, ","))
		if len(tags) == 0 {
			return fmt.Errorf("no tags given")
		}

		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		normalizer, err := newNormalizer()
		if err != nil {
			return err
		}

		posts, err := feed.NewLoader(client, feed.WithNormalizer(normalizer)).LoadTagged(cmd.Context(), tags)
		if err != nil {
			return err
		}
		return render.PrintFeed(os.Stdout, posts, opts)
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
	addViewFlags(tagsCmd)
}
