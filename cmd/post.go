package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/soulink/soulink/internal/utils"
	"github.com/soulink/soulink/pkg/api"
	"github.com/soulink/soulink/pkg/render"
	"github.com/soulink/soulink/pkg/search"
	"github.com/spf13/cobra"
)

// postCmd represents the parent `post` command.
var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Read, create, edit and delete single posts",
}

var postGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a single post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		normalizer, err := newNormalizer()
		if err != nil {
			return err
		}

		rec, err := client.GetPost(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render.PrintPost(os.Stdout, rec, normalizer, format)
	},
}

var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new post",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		status, _ := cmd.Flags().GetString("status")
		tags, _ := cmd.Flags().GetString("tags")
		body, err := readBody(cmd)
		if err != nil {
			return err
		}

		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		created, err := client.CreatePost(cmd.Context(), api.NewPost{
			Title:  title,
			Body:   body,
			Status: status,
			Tags:   search.ParseTags(tags),
		})
		if err != nil {
			return err
		}
		utils.Log.WithField("id", created.Get("id").String()).Info("Post created")
		return nil
	},
}

var postEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the title, body, status or tags of a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch api.PostPatch
		flags := cmd.Flags()
		if flags.Changed("title") {
			title, _ := flags.GetString("title")
			patch.Title = &title
		}
		if flags.Changed("body") || flags.Changed("body-file") {
			body, err := readBody(cmd)
			if err != nil {
				return err
			}
			patch.Body = &body
		}
		if flags.Changed("status") {
			status, _ := flags.GetString("status")
			patch.Status = &status
		}
		if flags.Changed("tags") {
			tags, _ := flags.GetString("tags")
			patch.Tags = search.ParseTags(tags)
		}

		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		if _, err := client.UpdatePost(cmd.Context(), args[0], patch); err != nil {
			return err
		}
		utils.Log.WithField("id", args[0]).Info("Post updated")
		return nil
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete post %s? This cannot be undone. [y/N] ", args[0])) {
			utils.Log.Info("Aborted")
			return nil
		}

		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := client.DeletePost(cmd.Context(), args[0]); err != nil {
			return err
		}
		utils.Log.WithField("id", args[0]).Info("Post deleted")
		return nil
	},
}

// readBody returns --body, or the content of --body-file ("-" reads stdin).
func readBody(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("body-file")
	if path == "" {
		body, _ := cmd.Flags().GetString("body")
		return body, nil
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading post body: %w", err)
	}
	return string(data), nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func addPostFields(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Post title")
	cmd.Flags().String("body", "", "Post body")
	cmd.Flags().String("body-file", "", "Read the post body from a file (- for stdin)")
	cmd.Flags().String("tags", "", "Comma separated tags")
}

func init() {
	rootCmd.AddCommand(postCmd)
	postCmd.AddCommand(postGetCmd, postCreateCmd, postEditCmd, postDeleteCmd)

	postGetCmd.Flags().StringP("format", "f", render.FormatMarkdown, "Output format. Available: markdown, text, raw")

	addPostFields(postCreateCmd)
	postCreateCmd.Flags().String("status", api.StatusDraft, "Post status. Available: draft, published")

	addPostFields(postEditCmd)
	postEditCmd.Flags().String("status", "", "New post status. Available: draft, published")

	postDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
