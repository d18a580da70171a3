// internal/app/bootstrap/oneshot.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/newsletterhub/internal/app/services/weekly"
	"go.uber.org/zap"
)

// RunWeeklyOnce loads config, connects, runs the weekly assignment for
// every active newsletter a single time, and disconnects. It backs the
// weeklyassign command for deployments that schedule outside the server.
func RunWeeklyOnce(ctx context.Context, logger *zap.Logger) error {
	coreCfg, appCfg, err := LoadConfig(logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	appCfg.WeeklyAssignEnabled = false // no scheduler in one-shot mode
	if err := ValidateConfig(coreCfg, appCfg, logger); err != nil {
		return err
	}
	deps, err := ConnectDB(ctx, coreCfg, appCfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := Shutdown(context.Background(), coreCfg, appCfg, deps, logger); err != nil {
			logger.Warn("shutdown failed", zap.Error(err))
		}
	}()
	if err := EnsureSchema(ctx, coreCfg, appCfg, deps, logger); err != nil {
		return err
	}

	n, err := weekly.New(deps.NewsletterHubMongoDatabase, logger).RunAll(ctx)
	logger.Info("weekly assignment run complete", zap.Int("newsletters", n))
	return err
}
