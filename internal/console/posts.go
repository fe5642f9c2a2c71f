package console

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/session"
)

func (a *app) postsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List and edit blog posts",
	}
	cmd.AddCommand(
		a.postsListCommand(),
		a.postsCreateCommand(),
		a.postsUpdateCommand(),
		a.postsDeleteCommand(),
		a.postsUploadCommand(),
	)
	return cmd
}

func (a *app) postsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List published posts",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			posts := a.store.Posts()
			if len(posts) == 0 && a.store.PostsStale() {
				return errors.New("posts could not be loaded, try again later")
			}
			if len(posts) == 0 {
				a.printf("No posts yet\n")
				return nil
			}

			editing := a.store.Session().Mode == session.ModeCreator
			tw := tabwriter.NewWriter(a.env.Out, 0, 4, 2, ' ', 0)
			if editing {
				fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tDATE\tEDITABLE")
			} else {
				fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tDATE")
			}
			for _, p := range posts {
				if editing {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", p.ID, p.Title, p.Author, p.Date, a.store.CanEdit(p))
				} else {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Author, p.Date)
				}
			}
			return tw.Flush()
		},
	}
}

type draftFlags struct {
	title     string
	content   string
	excerpt   string
	imageURL  string
	imageFile string
	readTime  string
}

func (f *draftFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "post title")
	cmd.Flags().StringVar(&f.content, "content", "", "post body")
	cmd.Flags().StringVar(&f.excerpt, "excerpt", "", "short summary shown in listings")
	cmd.Flags().StringVar(&f.imageURL, "image", "", "cover image key or URL")
	cmd.Flags().StringVar(&f.imageFile, "image-file", "", "upload this file as the cover image")
	cmd.Flags().StringVar(&f.readTime, "read-time", "", "reading time label, e.g. \"4 min read\"")
}

// draft overlays the flags the user set onto base.
func (f *draftFlags) draft(cmd *cobra.Command, a *app, base models.PostDraft) (models.PostDraft, error) {
	set := func(name string, dst *string, val string) {
		if cmd.Flags().Changed(name) {
			*dst = val
		}
	}
	set("title", &base.Title, f.title)
	set("content", &base.Content, f.content)
	set("excerpt", &base.Excerpt, f.excerpt)
	set("image", &base.ImageURL, f.imageURL)
	set("read-time", &base.ReadTime, f.readTime)

	if f.imageFile != "" {
		key, err := a.upload(cmd, f.imageFile)
		if err != nil {
			return base, err
		}
		base.ImageURL = key
	}
	return base, nil
}

func (a *app) postsCreateCommand() *cobra.Command {
	var flags draftFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := flags.draft(cmd, a, models.PostDraft{})
			if err != nil {
				return err
			}
			if err := a.store.AddPost(cmd.Context(), draft); err != nil {
				return err
			}
			a.printf("Post published\n")
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func (a *app) postsUpdateCommand() *cobra.Command {
	var flags draftFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a post; fields not given keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var base models.PostDraft
			if existing, ok := a.store.Post(args[0]); ok {
				base = models.PostDraft{
					Title:    existing.Title,
					Content:  existing.Content,
					Excerpt:  existing.Excerpt,
					ImageURL: existing.ImageURL,
					ReadTime: existing.ReadTime,
				}
			}
			draft, err := flags.draft(cmd, a, base)
			if err != nil {
				return err
			}
			if err := a.store.UpdatePost(cmd.Context(), args[0], draft); err != nil {
				return err
			}
			a.printf("Post %s updated\n", args[0])
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func (a *app) postsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.DeletePost(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("Post %s deleted\n", args[0])
			return nil
		},
	}
}

func (a *app) postsUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a cover image and print its key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.upload(cmd, args[0])
			if err != nil {
				return err
			}
			a.printf("%s\n", key)
			return nil
		},
	}
}

func (a *app) upload(cmd *cobra.Command, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return a.store.UploadImage(cmd.Context(), path, data)
}
