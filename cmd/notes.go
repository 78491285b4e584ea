package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes [file]",
	Short: "Turn study notes into practice questions",
	Long: `Read study notes from a file (or stdin) and generate a mixed set of
practice questions: conceptual, application, and misconception traps.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		style, _ := cmd.Flags().GetString("style")

		var notes []byte
		var err error
		if len(args) == 1 {
			notes, err = os.ReadFile(args[0])
		} else {
			notes, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("read notes: %w", err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		engine, err := openEngine(ctx, cmd, s)
		if err != nil {
			return err
		}

		resp, err := engine.QuestionsFromNotes(ctx, userID(cmd), string(notes), topic, style)
		if err != nil {
			return err
		}
		if resp.Artifacts.Exam == nil || len(resp.Artifacts.Exam.Questions) == 0 {
			fmt.Println(resp.Messages[0].Text)
			return nil
		}

		for i, q := range resp.Artifacts.Exam.Questions {
			fmt.Printf("%2d. [%s, %s] %s\n", i+1, q.Difficulty, q.Type, q.Q)
		}
		return nil
	},
}

func init() {
	notesCmd.Flags().StringP("topic", "t", "", "Topic label for the questions")
	notesCmd.Flags().String("style", "Friendly", "Question style")
}
