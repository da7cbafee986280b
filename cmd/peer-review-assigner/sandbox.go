package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"peer-review-assigner/internal/sandbox"
	"peer-review-assigner/internal/server"
)

var fixturePath string

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Serve an in-memory Canvas seeded from a fixture",
	Long: `Starts a local server that answers the Canvas endpoints used by the
assigner, so a run can be rehearsed without touching a real course. Point
CANVAS_BASE_URL at the printed address and use SANDBOX_TOKEN as the token.`,
	Args: cobra.NoArgs,
	RunE: runSandbox,
}

func init() {
	sandboxCmd.Flags().StringVar(&fixturePath, "fixture", "", "Path to the YAML fixture with courses, students and submissions")
	_ = sandboxCmd.MarkFlagRequired("fixture")
}

func runSandbox(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	fixture, err := sandbox.LoadFixture(fixturePath)
	if err != nil {
		log.Error("cannot load fixture", zap.String("path", fixturePath), zap.Error(err))
		return err
	}

	store := sandbox.NewStore(fixture)
	router := sandbox.NewRouter(store, log, &cfg.Logger, cfg.Sandbox.Token, cfg.Sandbox.Timeout)
	addr := fmt.Sprintf("%s:%d", cfg.Sandbox.Host, cfg.Sandbox.Port)

	log.Info("sandbox platform ready",
		zap.String("base_url", "http://"+addr),
		zap.Int("courses", len(fixture.Courses)),
	)

	err = server.ListenAndRun(cmd.Context(), addr, router, cfg.Sandbox.ShutdownTimeout, log)

	log.Info("sandbox stopped", zap.Int("peer_reviews_created", len(store.PeerReviews())))
	return err
}
