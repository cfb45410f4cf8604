package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbot/internal/config"
	"github.com/abhisek/quizbot/internal/index"
	"github.com/abhisek/quizbot/internal/llm"
	"github.com/abhisek/quizbot/internal/logging"
	"github.com/abhisek/quizbot/internal/progress"
	"github.com/abhisek/quizbot/internal/quiz"
	"github.com/abhisek/quizbot/internal/store"
)

// loadConfig reads the file named by --config, applies --db and builds the
// logger. Logs go to stderr so command output stays clean.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Database.Path = db
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// services holds everything a quiz-taking command needs.
type services struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	client    *llm.Client
	indexer   *index.Indexer
	generator *quiz.Generator
	evaluator *quiz.Evaluator
	recorder  *progress.Recorder
}

// buildServices opens the store and wires the provider, generator,
// evaluator and progress recorder.
func buildServices(cmd *cobra.Command) (*services, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	llmLog := logger.With("component", "llm")
	provider, err := llm.NewProvider(cmd.Context(), llmCfg, st, llmLog)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	client := llm.NewClient(provider,
		llm.WithAttemptTimeout(llmCfg.Timeout),
		llm.WithLogger(llmLog))

	qc := cfg.QuizConfig()
	ix := index.New(st, logger.With("component", "index"))

	return &services{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		client:  client,
		indexer: ix,
		generator: quiz.NewGenerator(client, qc,
			quiz.WithLogger(logger.With("component", "generator")),
			quiz.WithIndexer(ix)),
		evaluator: quiz.NewEvaluator(client, qc,
			quiz.WithLogger(logger.With("component", "evaluator"))),
		recorder: progress.NewRecorder(st, logger.With("component", "progress")),
	}, nil
}

// Close waits for in-flight email indexing and then closes the store.
func (s *services) Close() error {
	s.generator.Wait()
	return s.store.Close()
}

// readEmail returns the contents of path, or stdin when path is "-".
func readEmail(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("--email is required")
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read email: %w", err)
	}
	return string(data), nil
}

// defaultUser names the local learner when --user is not given.
func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}
