package cli

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"inkwell/internal/service"
	"inkwell/internal/storage"
)

// ProjectSummary is the JSON shape of a project in CLI output.
type ProjectSummary struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Status          string `json:"status"`
	Genre           string `json:"genre,omitempty"`
	TargetWordCount int    `json:"target_word_count"`
	WritingTemplate string `json:"writing_template,omitempty"`
}

// ProjectStats is the JSON shape of project statistics.
type ProjectStats struct {
	ProjectID       int64          `json:"project_id"`
	TotalItems      int            `json:"total_items"`
	ItemsByType     map[string]int `json:"items_by_type"`
	TotalWords      int            `json:"total_words"`
	TargetWordCount int            `json:"target_word_count"`
	Progress        float64        `json:"progress"`
}

func toProjectSummary(p *storage.Project) ProjectSummary {
	return ProjectSummary{
		ID:              p.ID,
		Title:           p.Title,
		Status:          p.Status,
		Genre:           p.Genre,
		TargetWordCount: p.TargetWordCount,
		WritingTemplate: p.WritingTemplate,
	}
}

// NewProjectCommand creates the project command group.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create, list and inspect projects",
	}

	cmd.AddCommand(newProjectCreateCommand(rootOpts))
	cmd.AddCommand(newProjectListCommand(rootOpts))
	cmd.AddCommand(newProjectStatsCommand(rootOpts))

	return cmd
}

func newProjectCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var req service.CreateProjectRequest

	cmd := &cobra.Command{
		Use:           "create <title>",
		Short:         "Create a project",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Title = args[0]
			return withApp(rootOpts, func(a *app) error {
				project, err := a.projects.Create(cmd.Context(), req)
				if err != nil {
					return err
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(toProjectSummary(project), func(w io.Writer) {
					fmt.Fprintf(w, "Created project %d: %s\n", project.ID, project.Title)
				})
			})
		},
	}

	cmd.Flags().StringVar(&req.Genre, "genre", "", "genre")
	cmd.Flags().IntVar(&req.TargetWordCount, "target", 0, "target word count")
	cmd.Flags().StringVar(&req.WritingTemplate, "template", "", "writing template id")

	return cmd
}

func newProjectListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List projects",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, func(a *app) error {
				projects, err := a.projects.List(cmd.Context())
				if err != nil {
					return err
				}
				out := make([]ProjectSummary, 0, len(projects))
				for i := range projects {
					out = append(out, toProjectSummary(&projects[i]))
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(out, func(w io.Writer) {
					if len(out) == 0 {
						fmt.Fprintln(w, "No projects")
						return
					}
					for _, p := range out {
						fmt.Fprintf(w, "%4d  %-10s  %s\n", p.ID, p.Status, p.Title)
					}
				})
			})
		},
	}
}

func newProjectStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats <project-id>",
		Short:         "Show item and word counts of a project",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			return withApp(rootOpts, func(a *app) error {
				stats, err := a.projects.Stats(cmd.Context(), id)
				if err != nil {
					return err
				}
				out := ProjectStats{
					ProjectID:       stats.ProjectID,
					TotalItems:      stats.TotalItems,
					ItemsByType:     make(map[string]int, len(stats.ItemsByType)),
					TotalWords:      stats.TotalWords,
					TargetWordCount: stats.TargetWordCount,
					Progress:        stats.Progress,
				}
				for t, n := range stats.ItemsByType {
					out.ItemsByType[string(t)] = n
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(out, func(w io.Writer) {
					writeStats(w, out)
				})
			})
		},
	}
}

func writeStats(w io.Writer, s ProjectStats) {
	fmt.Fprintf(w, "Project %d: %d items, %d words\n", s.ProjectID, s.TotalItems, s.TotalWords)
	if s.TargetWordCount > 0 {
		fmt.Fprintf(w, "Progress: %.1f%% of %d\n", s.Progress*100, s.TargetWordCount)
	}
	kinds := make([]string, 0, len(s.ItemsByType))
	for k := range s.ItemsByType {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-10s %d\n", k, s.ItemsByType[k])
	}
}

func parseProjectID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid project id %q", raw)
	}
	return id, nil
}
