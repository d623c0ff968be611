package cmd

import (
	"fmt"
	"time"

	"github.com/soulink/soulink/pkg/api"
	"github.com/soulink/soulink/pkg/post"
	"github.com/soulink/soulink/pkg/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newClient builds an API client from the config and the global flags.
func newClient(cmd *cobra.Command) (*api.Client, error) {
	proxy, _ := cmd.Flags().GetString("proxy")
	return api.NewClient(api.Config{
		BaseURL:   viper.GetString("api.base_url"),
		Token:     viper.GetString("api.token"),
		Proxy:     proxy,
		UserAgent: viper.GetString("api.user_agent"),
		RetryMax:  viper.GetInt("api.retries"),
		Timeout:   viper.GetDuration("api.timeout"),
	})
}

func newNormalizer() (*post.Normalizer, error) {
	loc := time.Local
	if tz := viper.GetString("date.timezone"); tz != "" {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid date.timezone %q: %w", tz, err)
		}
	}
	dates := post.NewFormatter(viper.GetString("date.layout"), loc)
	return post.NewNormalizer(viper.GetInt("feed.excerpt_length"), dates), nil
}

// addViewFlags registers the flags read by viewOptions.
func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().String("view", render.ViewGrid, "Output view. Available: grid, list, json, yaml")
	cmd.Flags().StringP("output", "o", render.DefaultFields, "Fields printed by the list view: "+render.FieldsHelp())
	cmd.Flags().StringP("delimiter", "d", render.DefaultDelimiter, "Delimiter between fields in the list view")
}

func viewOptions(cmd *cobra.Command) render.Options {
	view, _ := cmd.Flags().GetString("view")
	output, _ := cmd.Flags().GetString("output")
	delimiter, _ := cmd.Flags().GetString("delimiter")
	return render.Options{View: view, Fields: output, Delimiter: delimiter}
}
