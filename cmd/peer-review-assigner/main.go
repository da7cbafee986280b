package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"peer-review-assigner/internal/app"
	"peer-review-assigner/internal/config"
	"peer-review-assigner/internal/directory/canvas"
	"peer-review-assigner/internal/logger"
	"peer-review-assigner/internal/tui"
)

var (
	configPath string
	tokenPath  string
)

var rootCmd = &cobra.Command{
	Use:   "peer-review-assigner",
	Short: "Assign peer reviews for a Canvas assignment round-robin",
	Long: `Asks for a course, an assignment and the reviewers, then splits the
submissions of everyone else evenly among the reviewers and creates one
peer review per pairing after a final confirmation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAssign,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (environment only when empty)")
	rootCmd.Flags().StringVar(&tokenPath, "token", "", "Path to the file holding the API access token")
	_ = rootCmd.MarkFlagRequired("token")

	if usage := config.Usage(); usage != "" {
		rootCmd.Long += "\n\n" + usage
	}

	rootCmd.AddCommand(sandboxCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)

	code := execute(ctx)
	cancel()
	os.Exit(code)
}

func execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)

	code := app.ExitCode(err)
	if code == app.ExitFailure {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return code
}

func runAssign(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	token, err := config.ReadToken(tokenPath)
	if err != nil {
		log.Error("cannot read token", zap.String("path", tokenPath), zap.Error(err))
		return err
	}

	client, err := canvas.New(&cfg.Canvas, token, log)
	if err != nil {
		return fmt.Errorf("cannot initialize canvas client: %w", err)
	}

	term := tui.New(os.Stdin, os.Stdout)
	_, err = app.New(cfg.Issuance, client, term, term, log).Run(cmd.Context())
	return err
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.New(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot initialize config: %w", err)
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot initialize logger: %w", err)
	}

	return cfg, log, nil
}
