package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/soulink/soulink/internal/utils"
	"github.com/soulink/soulink/pkg/api"
	"github.com/soulink/soulink/pkg/feed"
	"github.com/soulink/soulink/pkg/render"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Print your own posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := viewOptions(cmd)
		if err := opts.Validate(); err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")

		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		if !client.HasToken() {
			return fmt.Errorf("%w: set api.token in the config, SOULINK_API_TOKEN or --token", api.ErrNoToken)
		}
		normalizer, err := newNormalizer()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		profile, err := client.Profile(ctx)
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			return err
		case err != nil:
			utils.Log.WithError(err).Warn("Could not load your profile")
		case opts.View == render.ViewGrid || opts.View == "":
			fmt.Printf("Signed in as %s <%s>\n\n", profile.Name, profile.Email)
		}

		mine := feed.SourceFunc(func(ctx context.Context, _ []string) ([]byte, error) {
			return client.MyPosts(ctx, status)
		})
		posts, err := feed.NewLoader(mine, feed.WithNormalizer(normalizer)).Load(ctx, nil)
		if err != nil {
			return err
		}
		return render.PrintFeed(os.Stdout, posts, opts)
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	addViewFlags(mineCmd)
	mineCmd.Flags().String("status", "", "Only show posts with this status. Available: published, draft")
}
