package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbot/internal/quiz"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a quiz from a donor email",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("email")
		n, _ := cmd.Flags().GetInt("num-questions")
		user, _ := cmd.Flags().GetString("user")
		asJSON, _ := cmd.Flags().GetBool("json")

		content, err := readEmail(path)
		if err != nil {
			return err
		}

		svc, err := buildServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		if n <= 0 {
			n = svc.cfg.Quiz.DefaultQuestions
		}
		if user == "" {
			user = defaultUser()
		}

		ctx := cmd.Context()
		q, err := svc.generator.Generate(ctx, user, content, n)
		if err != nil {
			return fmt.Errorf("generate quiz: %w", err)
		}
		if err := svc.store.SaveQuiz(ctx, q); err != nil {
			return fmt.Errorf("save quiz: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(q)
		}
		printQuiz(out, q)
		return nil
	},
}

func printQuiz(w io.Writer, q *quiz.Quiz) {
	fmt.Fprintf(w, "Quiz %s (%d questions)\n\n", q.QuizID, len(q.Questions))
	for i, question := range q.Questions {
		fmt.Fprintf(w, "%d. %s\n", i+1, question.QuestionText)
		for _, opt := range question.Options {
			fmt.Fprintf(w, "   %s\n", opt)
		}
		fmt.Fprintf(w, "   Answer: %s\n", question.CorrectAnswer)
		if question.Explanation != "" {
			fmt.Fprintf(w, "   %s\n", strings.TrimSpace(question.Explanation))
		}
		fmt.Fprintln(w)
	}
}

func init() {
	generateCmd.Flags().StringP("email", "e", "", "Email file to read (- for stdin)")
	generateCmd.Flags().IntP("num-questions", "n", 0, "Number of questions (default from [quiz] default_questions)")
	generateCmd.Flags().StringP("user", "u", "", "User id that owns the quiz (default $USER)")
	generateCmd.Flags().Bool("json", false, "Print the quiz as JSON")
}
