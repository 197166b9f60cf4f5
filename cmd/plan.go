package cmd

import (
	"encoding/json"

	"github.com/compozy/m2release/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPlanCmd() *cobra.Command {
	var artifactID string
	cmd := &cobra.Command{
		Use:   "plan <current-version>",
		Short: "Print the release version, next development version and tag for a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			var id *string
			if cmd.Flags().Changed("artifact-id") {
				id = &artifactID
			}
			triple := usecase.NewVersionPlanner(logger).PlanVersion(args[0], id)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(triple)
		},
	}
	cmd.Flags().StringVar(&artifactID, "artifact-id", "", "Artifact id used as the tag prefix")
	return cmd
}
