package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	c.Server.FrontendURL = strings.TrimRight(strings.TrimSpace(c.Server.FrontendURL), "/")
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = defaultRequestTimeout
	}

	var err error
	if c.Database.Path, err = expandPath(strings.TrimSpace(c.Database.Path)); err != nil {
		return fmt.Errorf("database.path: %w", err)
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))

	if c.Quiz.DefaultQuestions <= 0 {
		c.Quiz.DefaultQuestions = defaultQuestions
	}
	if c.Quiz.MaxQuestions <= 0 {
		c.Quiz.MaxQuestions = defaultMaxQuestions
	}
	if c.Quiz.Concurrency <= 0 {
		c.Quiz.Concurrency = defaultConcurrency
	}
	if c.Quiz.RetryCeilingSeconds < 0 {
		c.Quiz.RetryCeilingSeconds = 0
	}
	return nil
}
