package cmd

import (
	"github.com/abhisek/learnsense/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "learnsense",
	Short: "AI tutoring turn engine",
	Long:  "Learnsense — an AI tutor that diagnoses mistakes, hints Socratically, and tracks concept mastery across sessions.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LEARNSENSE_DB env var)")
	rootCmd.PersistentFlags().String("user", "default", "Learner profile ID")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then LEARNSENSE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
