package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbot/internal/quiz"
	"github.com/abhisek/quizbot/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past quiz results",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")
		if user == "" {
			user = defaultUser()
		}

		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		results, err := st.ListResults(ctx, user, limit)
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintf(out, "No quiz results for %s.\n", user)
			return nil
		}

		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{
				r.CompletedAt.Local().Format("2006-01-02 15:04"),
				r.QuizID,
				fmt.Sprintf("%d/%d", r.CorrectAnswers, r.TotalQuestions),
				fmt.Sprintf("%.0f%%", r.Score),
				quiz.Grade(r.Score),
				formatSeconds(r.TimeTakenSeconds),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Completed", "Quiz", "Correct", "Score", "Grade", "Time"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight},
		))

		stats, err := st.GetUserStats(ctx, user)
		switch {
		case store.IsNotFound(err):
		case err != nil:
			return fmt.Errorf("user stats: %w", err)
		default:
			fmt.Fprintf(out, "%d quizzes, average %.1f%%\n", stats.TotalQuizzes, stats.AverageScore)
		}
		return nil
	},
}

func formatSeconds(secs *int) string {
	if secs == nil {
		return "-"
	}
	return strconv.Itoa(*secs) + "s"
}

func init() {
	historyCmd.Flags().StringP("user", "u", "", "User id (default $USER)")
	historyCmd.Flags().IntP("limit", "n", store.DefaultHistoryLimit, "Number of results to show")
}
