package main

import (
	"context"
	"fmt"
	"io"

	"customer-feedback-hub/backend/internal/models"
	"customer-feedback-hub/backend/internal/repository"
	"customer-feedback-hub/backend/internal/sentiment"
	"customer-feedback-hub/backend/internal/service"
	"customer-feedback-hub/backend/internal/triage"
	"customer-feedback-hub/backend/pkg/config"
	"customer-feedback-hub/backend/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "feedbackctl",
		Short:         "Operate the Customer Feedback Hub store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCmd(), newScoreCmd(), newSeedCmd())
	return root
}

// --- migrate ---

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the feedback schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return withDB(cmd.Context(), cfg, func(db *gorm.DB) error {
				if err := repository.Migrate(db); err != nil {
					return fmt.Errorf("migrating schema: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.Database.Driver)
				return nil
			})
		},
	}
}

// --- score ---

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <text>",
		Short: "Classify a message without storing it",
		Long: `Classify a message without storing it.

Examples:
  feedbackctl score "Great service!"
  feedbackctl score --rating 1 "It arrived on Tuesday."`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rating *int
			if cmd.Flags().Changed("rating") {
				r, err := cmd.Flags().GetInt("rating")
				if err != nil {
					return err
				}
				rating = &r
			}

			printScore(cmd.OutOrStdout(), sentiment.NewVaderScorer(), args[0], rating)
			return nil
		},
	}

	cmd.Flags().Int("rating", 0, "customer rating (1-5)")
	return cmd
}

func printScore(w io.Writer, scorer sentiment.Scorer, text string, rating *int) {
	score, label := scorer.ScoreText(text)
	priority := triage.Calculate(label, rating, len(text))

	fmt.Fprintf(w, "sentiment: %s\n", label)
	fmt.Fprintf(w, "score:     %.2f\n", service.RoundScore(score))
	fmt.Fprintf(w, "priority:  %s\n", priority)
}

// --- seed ---

var sampleFeedback = []struct {
	category string
	message  string
	rating   int
}{
	{"billing", "I was charged twice this month and nobody has answered my emails.", 1},
	{"billing", "Refund arrived quickly, thanks.", 4},
	{"support", "The agent was friendly and solved my problem in minutes!", 5},
	{"support", "Waited on hold for an hour. Terrible experience.", 2},
	{"product", "The new dashboard is okay.", 3},
	{"product", "Love the dark mode, great work.", 5},
	{"shipping", "Package arrived damaged and late.", 0},
	{"general", "Just wanted to say the app works.", 0},
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample feedback through the submission path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return withDB(cmd.Context(), cfg, func(db *gorm.DB) error {
				if err := repository.Migrate(db); err != nil {
					return fmt.Errorf("migrating schema: %w", err)
				}

				log := logger.New(logger.Config{Level: "warn", Output: cmd.ErrOrStderr()})
				svc := service.NewFeedbackService(
					repository.NewGormFeedbackRepository(db),
					sentiment.NewVaderScorer(),
					nil,
					nil,
					log,
				)

				source := "seed"
				for _, s := range sampleFeedback {
					req := &models.SubmitFeedbackRequest{
						Message:  &s.message,
						Category: &s.category,
						Source:   &source,
					}
					if s.rating > 0 {
						rating := s.rating
						req.Rating = &rating
					}

					fb, err := svc.Submit(cmd.Context(), req)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "#%d %-8s %-8s %s\n", fb.ID, fb.Sentiment, fb.Priority, fb.Category)
				}
				return nil
			})
		},
	}
}

func withDB(ctx context.Context, cfg *config.Config, fn func(db *gorm.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := config.NewDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer config.CloseDB(db)

	return fn(db)
}
