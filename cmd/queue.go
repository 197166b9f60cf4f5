package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/compozy/m2release/internal/domain"
	"github.com/spf13/cobra"
)

func newQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue [project...]",
		Short: "Print the queued builds of the given projects, or of every configured project",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(configFile)
			if err != nil {
				return err
			}
			defer func() { _ = c.logger.Sync() }()
			return printQueue(cmd.Context(), c, cmd.OutOrStdout(), args)
		},
	}
}

// printQueue writes a JSON object mapping project names to their queued builds.
func printQueue(ctx context.Context, c *container, out io.Writer, projects []string) error {
	if len(projects) == 0 {
		names, err := c.projects.List(ctx)
		if err != nil {
			return err
		}
		projects = names
	}
	queued := make(map[string][]*domain.QueuedBuild, len(projects))
	for _, name := range projects {
		if _, err := c.projects.Get(ctx, name); err != nil {
			return err
		}
		builds, err := c.history.Builds(ctx, name)
		if err != nil {
			return err
		}
		if builds == nil {
			builds = []*domain.QueuedBuild{}
		}
		queued[name] = builds
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(queued); err != nil {
		return fmt.Errorf("failed to encode queue: %w", err)
	}
	return nil
}
