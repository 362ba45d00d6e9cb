package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// FolderListing is the JSON shape of ls output.
type FolderListing struct {
	FolderID    string     `json:"folder_id"`
	Breadcrumbs []string   `json:"breadcrumbs"`
	Items       []TreeNode `json:"items"`
}

// NewTreeCommand creates the tree command.
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "tree <project-id>",
		Short:         "Print a project's item tree",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			return withApp(rootOpts, func(a *app) error {
				forest, err := a.items.Tree(cmd.Context(), projectID)
				if err != nil {
					return err
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(toTreeNodes(forest), func(w io.Writer) {
					RenderTree(w, forest)
				})
			})
		},
	}
}

// NewLsCommand creates the ls command.
func NewLsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <project-id> [folder-id]",
		Short: "List the items of one folder",
		Long: `List the items directly inside a folder, or the top level when no folder is given.

The path to the folder is printed first. Item ids are shown so they can be passed back to ls.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			folderID := ""
			if len(args) == 2 {
				folderID = args[1]
			}
			return withApp(rootOpts, func(a *app) error {
				view, err := a.items.Folder(cmd.Context(), projectID, folderID)
				if err != nil {
					return err
				}
				out := FolderListing{
					FolderID:    view.FolderID,
					Breadcrumbs: make([]string, 0, len(view.Breadcrumbs)),
					Items:       toTreeNodes(view.Items),
				}
				for _, c := range view.Breadcrumbs {
					out.Breadcrumbs = append(out.Breadcrumbs, c.Name)
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(out, func(w io.Writer) {
					fmt.Fprintln(w, "/"+strings.Join(out.Breadcrumbs, "/"))
					for _, n := range view.Items {
						fmt.Fprintf(w, "%s  %s %s\n", n.ID, marker(n.ItemType), describe(&n.Item))
					}
				})
			})
		},
	}
}
