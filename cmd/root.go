package cmd

import (
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "m2release",
	Short: "Release planning and submission service for Maven projects",
	Long: `m2release computes release and next development versions for Maven projects
and queues parameterized release builds submitted through its HTTP form endpoints.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "Config file (default is ./.m2release.yaml)")
}

func Execute() error {
	return rootCmd.Execute()
}
