package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/learnsense/internal/strategy"
	"github.com/abhisek/learnsense/internal/tutor"
	"github.com/spf13/cobra"
)

var examCmd = &cobra.Command{
	Use:   "exam <topic>",
	Short: "Take a short generated exam on a topic",
	Long: `Generate exam questions for a topic, collect your answers from the
terminal, then grade the whole exam and record your weakest concepts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := args[0]
		n, _ := cmd.Flags().GetInt("questions")
		style, _ := cmd.Flags().GetString("style")

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

		user := userID(cmd)
		resp, err := engine.StartExam(ctx, user, topic, style, n)
		if err != nil {
			return err
		}
		if resp.Artifacts.Exam == nil || len(resp.Artifacts.Exam.Questions) == 0 {
			fmt.Println(resp.Messages[0].Text)
			return nil
		}

		questions := resp.Artifacts.Exam.Questions
		reader := bufio.NewReader(os.Stdin)
		pairs := make([]strategy.QA, 0, len(questions))

		for i, q := range questions {
			fmt.Printf("\nQ%d [%s, %s]: %s\n> ", i+1, q.Difficulty, q.Type, q.Q)
			answer, err := reader.ReadString('\n')
			if err != nil {
				break
			}
			pairs = append(pairs, strategy.QA{Q: q.Q, A: strings.TrimSpace(answer)})
		}
		if len(pairs) == 0 {
			fmt.Println("\nNo answers given; exam discarded.")
			return nil
		}

		resp, err = engine.FinishExam(ctx, user, topic, pairs)
		if err != nil {
			return err
		}

		fmt.Println()
		if report := examReport(resp); report != nil {
			fmt.Printf("Score estimate: %d%%\n", report.ScoreEstimate)
			fmt.Printf("Summary: %s\n", report.Summary)
			if len(report.WeakestConcepts) > 0 {
				fmt.Printf("Weakest: %s\n", strings.Join(report.WeakestConcepts, ", "))
			}
			for _, step := range report.NextSteps {
				fmt.Printf("  - %s\n", step)
			}
		} else {
			fmt.Println(resp.Messages[0].Text)
		}
		return nil
	},
}

func examReport(resp *tutor.Response) *strategy.ExamReport {
	if resp.Artifacts.Exam == nil {
		return nil
	}
	return resp.Artifacts.Exam.Report
}

func init() {
	examCmd.Flags().IntP("questions", "n", 5, "Number of questions to generate")
	examCmd.Flags().String("style", "Exam prep", "Question style")
}
