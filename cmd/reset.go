package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase learner data (attempts, mastery, history)",
	Long: `Erase all attempts, concept mastery records and learning history.
LLM event logs are kept for usage accounting. Requires --yes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Println("This erases all learner data. Re-run with --yes to confirm.")
			return nil
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ResetAll(); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		fmt.Println("Learner data erased.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
