package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/soulink/soulink/internal/utils"
	"github.com/soulink/soulink/pkg/feed"
	"github.com/soulink/soulink/pkg/storage"
	"github.com/spf13/cobra"
)

// syncCmd implements: soulink sync
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the feed and replace the offline snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		useRSS, _ := cmd.Flags().GetBool("rss")

		path, err := dbPath(cmd)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}

		lock, err := utils.NewDBLock(path)
		if err != nil {
			return err
		}
		if err := lock.Lock(); err != nil {
			return err
		}
		defer lock.Unlock()

		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		normalizer, err := newNormalizer()
		if err != nil {
			return err
		}

		var source feed.Source = client
		sourceName := "api"
		if useRSS {
			source = feed.NewRSSSource(client)
			sourceName = "rss"
		}

		posts, err := feed.NewLoader(source, feed.WithNormalizer(normalizer)).Load(cmd.Context(), nil)
		if err != nil {
			return err
		}

		db, err := storage.Open(path)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.ReplaceFeed(cmd.Context(), sourceName, posts); err != nil {
			return err
		}
		utils.Log.WithFields(logrus.Fields{"posts": len(posts), "db": path}).Info("Snapshot updated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().String("dbpath", "", "Path to SQLite DB file (default from db.path or ~/.config/soulink/soulink.sqlite)")
	syncCmd.Flags().Bool("rss", false, "Snapshot the RSS feed instead of the JSON API")
}
