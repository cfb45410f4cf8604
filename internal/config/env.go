package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnv overrides file values with QUIZBOT_* variables.
func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "QUIZBOT_ADDR")
	setString(&c.Server.FrontendURL, "QUIZBOT_FRONTEND_URL")
	setString(&c.Server.JWTSecret, "QUIZBOT_JWT_SECRET")
	setString(&c.Database.Path, "QUIZBOT_DB")
	setString(&c.Logging.Level, "QUIZBOT_LOG_LEVEL")
	setString(&c.Logging.Format, "QUIZBOT_LOG_FORMAT")
	setString(&c.LLM.Provider, "QUIZBOT_LLM_PROVIDER")
	setString(&c.LLM.Model, "QUIZBOT_LLM_MODEL")
	setString(&c.LLM.APIKey, "QUIZBOT_LLM_API_KEY")
	setString(&c.LLM.BaseURL, "QUIZBOT_LLM_BASE_URL")

	ints := []struct {
		dst *int
		key string
	}{
		{&c.Server.RequestTimeout, "QUIZBOT_REQUEST_TIMEOUT"},
		{&c.Quiz.DefaultQuestions, "QUIZBOT_DEFAULT_QUESTIONS"},
		{&c.Quiz.MaxQuestions, "QUIZBOT_MAX_QUESTIONS"},
		{&c.Quiz.Concurrency, "QUIZBOT_CONCURRENCY"},
		{&c.Quiz.RetryCeilingSeconds, "QUIZBOT_RETRY_CEILING"},
	}
	for _, v := range ints {
		if err := setInt(v.dst, v.key); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
