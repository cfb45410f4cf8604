package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbot/internal/quiz"
	"github.com/abhisek/quizbot/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Generate a quiz from a donor email and take it in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("email")
		n, _ := cmd.Flags().GetInt("num-questions")
		user, _ := cmd.Flags().GetString("user")

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
		generate := func(ctx context.Context) (*quiz.Quiz, error) {
			q, err := svc.generator.Generate(ctx, user, content, n)
			if err != nil {
				return nil, err
			}
			if err := svc.store.SaveQuiz(ctx, q); err != nil {
				svc.logger.Warn("failed to save quiz", "quiz_id", q.QuizID, "error", err)
			}
			return q, nil
		}

		p, err := tui.Run(ctx, tui.NewPlayer(ctx, generate, svc.evaluator.Evaluate))
		if err != nil {
			return fmt.Errorf("run quiz player: %w", err)
		}
		if p.Err() != nil {
			return p.Err()
		}
		if p.Result() == nil {
			return nil
		}

		secs := int(p.Elapsed().Seconds())
		id, err := svc.recorder.Record(ctx, p.Quiz(), p.Result(), &secs)
		if err != nil {
			return fmt.Errorf("record result: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Result %s saved: %.0f%% (%s)\n",
			id, p.Result().Score, quiz.Grade(p.Result().Score))
		return nil
	},
}

func init() {
	playCmd.Flags().StringP("email", "e", "", "Email file to read (- for stdin)")
	playCmd.Flags().IntP("num-questions", "n", 0, "Number of questions (default from [quiz] default_questions)")
	playCmd.Flags().StringP("user", "u", "", "User id that owns the quiz (default $USER)")
}
