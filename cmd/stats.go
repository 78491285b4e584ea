package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the concept mastery dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		user := userID(cmd)

		dash, err := s.MasteryRepo().Dashboard(ctx, user)
		if err != nil {
			return fmt.Errorf("query dashboard: %w", err)
		}

		if len(dash.Weakest) == 0 {
			fmt.Println("No mastery data yet. Ask a question to get started.")
			return nil
		}

		sep := strings.Repeat("─", 64)

		fmt.Println("Weakest Concepts")
		fmt.Println(sep)
		fmt.Printf("%-32s  %7s  %6s  %6s\n", "Concept", "Mastery", "Missed", "Seen")
		fmt.Println(sep)
		for _, c := range dash.Weakest {
			fmt.Printf("%-32s  %6.0f%%  %6d  %6d\n",
				c.Concept, c.Mastery, c.MisconceptionCount, c.SeenCount)
		}

		fmt.Println()
		fmt.Println("Most Frequently Missed")
		fmt.Println(sep)
		for _, c := range dash.Frequent {
			fmt.Printf("%-32s  %6.0f%%  %6d  %6d\n",
				c.Concept, c.Mastery, c.MisconceptionCount, c.SeenCount)
		}

		history, err := s.MasteryRepo().History(ctx, user, 6)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		if len(history) > 0 {
			fmt.Println()
			fmt.Println("Recent History")
			fmt.Println(sep)
			for _, h := range history {
				fmt.Printf("%s  %-28s  %3d%%  %s\n",
					h.CreatedAt.Local().Format("2006-01-02"), h.Concept, h.Mastery, h.Note)
			}
		}
		return nil
	},
}
