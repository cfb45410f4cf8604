package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbot/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		cfg := svc.cfg
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if err := cfg.RequireServer(); err != nil {
			return err
		}

		srv := server.New(server.Deps{
			Generator: svc.generator,
			Evaluator: svc.evaluator,
			Recorder:  svc.recorder,
			Store:     svc.store,
			Searcher:  svc.indexer,
			Logger:    svc.logger,
		}, server.Options{
			JWTSecret:        cfg.Server.JWTSecret,
			FrontendURL:      cfg.Server.FrontendURL,
			RequestTimeout:   cfg.RequestTimeout(),
			DefaultQuestions: cfg.Quiz.DefaultQuestions,
			Model:            svc.client.ModelID(),
		})

		svc.logger.Info("starting API server",
			"addr", cfg.Server.Addr,
			"model", svc.client.ModelID(),
			"frontend_url", cfg.Server.FrontendURL)
		if err := srv.Listen(cmd.Context(), cfg.Server.Addr); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		svc.logger.Info("API server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides [server] addr)")
}
