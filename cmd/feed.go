package cmd

import (
	"context"
	"os"

	"github.com/soulink/soulink/pkg/feed"
	"github.com/soulink/soulink/pkg/render"
	"github.com/soulink/soulink/pkg/search"
	"github.com/spf13/cobra"
)

// feedCmd implements: soulink feed
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print the public posts feed",
	Long: `Print the public posts feed. --search and --tags filter the list locally;
when both are set a post has to match both.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := viewOptions(cmd)
		if err := opts.Validate(); err != nil {
			return err
		}

		text, _ := cmd.Flags().GetString("search")
		tagsParam, _ := cmd.Flags().GetString("tags")
		useRSS, _ := cmd.Flags().GetBool("rss")
		remote, _ := cmd.Flags().GetBool("remote-search")
		q := search.Query{Text: text, Tags: search.ParseTags(tagsParam)}

		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		normalizer, err := newNormalizer()
		if err != nil {
			return err
		}

		var (
			source feed.Source
			tagged bool
		)
		switch {
		case remote && text != "":
			source = feed.SourceFunc(func(ctx context.Context, _ []string) ([]byte, error) {
				return client.SearchPosts(ctx, text)
			})
		case useRSS:
			source = feed.NewRSSSource(client)
		default:
			source = client
			tagged = len(q.Tags) > 0
		}

		loader := feed.NewLoader(source, feed.WithNormalizer(normalizer))
		if tagged {
			_, err = loader.LoadTagged(cmd.Context(), q.Tags)
		} else {
			_, err = loader.Load(cmd.Context(), nil)
		}
		if err != nil {
			return err
		}

		return render.PrintFeed(os.Stdout, search.Filter(loader.Posts(), q), opts)
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)
	addViewFlags(feedCmd)
	feedCmd.Flags().StringP("search", "s", "", "Only show posts whose title, excerpt or tags contain this text")
	feedCmd.Flags().StringP("tags", "t", "", "Comma separated tags, e.g. ai,farming")
	feedCmd.Flags().Bool("rss", false, "Read the RSS feed instead of the JSON API")
	feedCmd.Flags().Bool("remote-search", false, "Run --search on the server before filtering locally")
}
