package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/learnsense/internal/llm"
	"github.com/abhisek/learnsense/internal/tutor"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Run one tutoring turn",
	Long: `Run one tutoring turn: the engine records the attempt, picks a mode
(Socratic hinting, step diagnosis for an attached photo, or a full rubric
reveal after repeated attempts or --give-up) and prints the feedback.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		answer, _ := cmd.Flags().GetString("answer")
		topic, _ := cmd.Flags().GetString("topic")
		style, _ := cmd.Flags().GetString("style")
		hintLevel, _ := cmd.Flags().GetInt("hint")
		giveUp, _ := cmd.Flags().GetBool("give-up")
		attachPath, _ := cmd.Flags().GetString("attach")

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

		req := tutor.TurnRequest{
			UserID:    userID(cmd),
			Question:  args[0],
			Answer:    answer,
			Topic:     topic,
			Style:     style,
			HintLevel: hintLevel,
			GiveUp:    giveUp,
		}
		if attachPath != "" {
			att, err := readAttachment(attachPath)
			if err != nil {
				return err
			}
			req.Attachments = []llm.Attachment{att}
		}

		resp, err := engine.HandleTurn(ctx, req)
		if err != nil {
			return err
		}

		printTurn(resp)
		return nil
	},
}

func printTurn(resp *tutor.Response) {
	fmt.Printf("[%s] attempt %d, hint level %d\n\n", resp.Mode, resp.AttemptsUsed, resp.HintLevel)

	for _, m := range resp.Messages {
		fmt.Println(m.Text)
		fmt.Println()
	}

	if d := resp.Artifacts.Diagnose; d != nil && len(d.Steps) > 0 {
		fmt.Println("Your steps:")
		for i, step := range d.Steps {
			marker := " "
			if i == d.WrongStepIndex {
				marker = "✗"
			}
			fmt.Printf("  %s %d. %s\n", marker, i+1, step)
		}
		fmt.Println()
	}

	if r := resp.Artifacts.Rubric; r != nil {
		if len(r.SolutionSteps) > 0 {
			fmt.Println("Solution:")
			for i, step := range r.SolutionSteps {
				fmt.Printf("  %d. %s\n", i+1, step)
			}
			fmt.Println()
		}
		if len(r.Rubric) > 0 {
			fmt.Println("Rubric:")
			for _, item := range r.Rubric {
				fmt.Printf("  [%d marks] %s — expected: %s\n", item.Marks, item.Step, item.Expected)
			}
			fmt.Println()
		}
		if r.MinimalFix != "" {
			fmt.Printf("Minimal fix: %s\n\n", r.MinimalFix)
		}
	}

	printDashboard(resp)
}

func printDashboard(resp *tutor.Response) {
	dash := resp.Artifacts.ConceptDashboard
	if dash == nil || len(dash.Weakest) == 0 {
		return
	}

	fmt.Println(strings.Repeat("─", 48))
	fmt.Println("Weakest concepts:")
	for _, c := range dash.Weakest {
		fmt.Printf("  %-28s %3.0f%%  (seen %d)\n", c.Concept, c.Mastery, c.SeenCount)
	}
}

func init() {
	askCmd.Flags().StringP("answer", "a", "", "Your attempted answer")
	askCmd.Flags().StringP("topic", "t", "", "Topic label, e.g. 'Calculus'")
	askCmd.Flags().String("style", "Friendly", "Tutoring style")
	askCmd.Flags().Int("hint", 0, "Hint level 1-4 (default: derived from attempts)")
	askCmd.Flags().Bool("give-up", false, "Reveal the full answer and rubric now")
	askCmd.Flags().String("attach", "", "Path to a photo of your written work")
}
