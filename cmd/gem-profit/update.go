package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"gem-profit/internal/update"
)

var checkUpdateCmd = &cobra.Command{
	Use:   "check-update",
	Short: "Check whether a newer release is published",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		res, err := update.NewChecker(update.WithTimeout(30*time.Second)).
			Check(ctx, &update.CheckInput{Repo: cfg.UpdateRepo, Version: version})
		if errors.Is(err, update.ErrDevBuild) {
			fmt.Println("Development build, nothing to compare against.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if res.UpdateAvailable {
			fmt.Printf("A new version is available (%s, you are on %s)\n", res.LatestVersion, version)
			return nil
		}
		fmt.Println("Already running the latest version.")
		return nil
	},
}

// checkForUpdate logs the outcome of a release check; failures are never fatal.
func checkForUpdate(ctx context.Context, repo string, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	res, err := update.NewChecker().Check(ctx, &update.CheckInput{Repo: repo, Version: version})
	switch {
	case errors.Is(err, update.ErrDevBuild):
		logger.Debug("update check skipped for development build")
	case err != nil:
		logger.Warn("failed to check for updates", slog.String("err", err.Error()))
	case res.UpdateAvailable:
		logger.Warn("a new version is available",
			slog.String("latest", res.LatestVersion),
			slog.String("current", version),
		)
	default:
		logger.Debug("running the latest version", slog.String("version", version))
	}
}
