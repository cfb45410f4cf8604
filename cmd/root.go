package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quizbot",
	Short: "Donor email comprehension quizzes",
	Long: "QuizBot turns donor emails into multiple-choice quizzes, grades the answers " +
		"with model-written feedback and tracks progress over time.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.config/quizbot/config.toml, then ./quizbot.toml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZBOT_DB and [database] path)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
