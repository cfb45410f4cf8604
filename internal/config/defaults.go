package config

const (
	defaultAddr             = "127.0.0.1:8000"
	defaultFrontendURL      = "http://localhost:3000"
	defaultRequestTimeout   = 120
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
	defaultQuestions        = 5
	defaultMaxQuestions     = 20
	defaultConcurrency      = 4
	defaultRetryCeilingSecs = 90
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Addr:           defaultAddr,
			FrontendURL:    defaultFrontendURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Quiz: Quiz{
			DefaultQuestions:    defaultQuestions,
			MaxQuestions:        defaultMaxQuestions,
			Concurrency:         defaultConcurrency,
			RetryCeilingSeconds: defaultRetryCeilingSecs,
		},
	}
}
