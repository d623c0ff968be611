package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/soulink/soulink/internal/utils"
	"github.com/soulink/soulink/pkg/render"
	"github.com/soulink/soulink/pkg/search"
	"github.com/soulink/soulink/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the offline feed snapshot",
}

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := existingDBPath(cmd)
		if err != nil {
			return err
		}

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		// Print schema first
		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, dbPath, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, dbPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints statistics about the stored snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openExistingDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(cmd.Context())
		if errors.Is(err, storage.ErrNoSnapshot) {
			fmt.Println("No data in the database to generate stats.")
			return nil
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "POSTS\tTAGS\tAUTHORS\tUNTAGGED\t")
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t\n", stats.Posts, stats.Tags, stats.Authors, stats.Untagged)
		w.Flush()

		fmt.Printf("\nLast sync: %s from %s (%d posts)\n",
			stats.LastSync.SyncedAt.Local().Format("2006-01-02 15:04:05"), stats.LastSync.Source, stats.LastSync.PostCount)
		return nil
	},
}

// printCmd represents the print command
var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the stored snapshot, filtered like the live feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := viewOptions(cmd)
		if err := opts.Validate(); err != nil {
			return err
		}
		text, _ := cmd.Flags().GetString("search")
		tags, _ := cmd.Flags().GetString("tags")
		limit, _ := cmd.Flags().GetInt("limit")

		db, err := openExistingDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		posts, err := db.ListPosts(cmd.Context(), storage.ListOptions{
			Search: text,
			Tags:   search.ParseTags(tags),
			Limit:  limit,
		})
		if err != nil {
			return err
		}
		return render.PrintFeed(os.Stdout, posts, opts)
	},
}

// dbTagsCmd represents the tags command
var dbTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the tags of the stored snapshot by number of posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openExistingDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		counts, err := db.TagCounts(cmd.Context())
		if err != nil {
			return err
		}
		if len(counts) == 0 {
			fmt.Println("No tags in the database.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TAG\tPOSTS\t")
		for _, c := range counts {
			fmt.Fprintf(w, "#%s\t%d\t\n", c.Tag, c.Posts)
		}
		return w.Flush()
	},
}

// dbPath resolves --dbpath, then db.path, then the default location.
func dbPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("dbpath")
	if path == "" {
		path = viper.GetString("db.path")
	}
	return utils.GetAbsDBPath(path)
}

func existingDBPath(cmd *cobra.Command) (string, error) {
	path, err := dbPath(cmd)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("database file not found: %s (run `soulink sync` first)", path)
	}
	return path, nil
}

func openExistingDB(cmd *cobra.Command) (*storage.DB, error) {
	path, err := existingDBPath(cmd)
	if err != nil {
		return nil, err
	}
	return storage.Open(path)
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(shellCmd, statsCmd, printCmd, dbTagsCmd)
	dbCmd.PersistentFlags().String("dbpath", "", "Path to SQLite DB file (default from db.path or ~/.config/soulink/soulink.sqlite)")

	addViewFlags(printCmd)
	printCmd.Flags().StringP("search", "s", "", "Only show posts whose title, excerpt or tags contain this text")
	printCmd.Flags().StringP("tags", "t", "", "Comma separated tags, e.g. ai,farming")
	printCmd.Flags().Int("limit", 0, "Maximum number of posts to print (0 = all)")
}
