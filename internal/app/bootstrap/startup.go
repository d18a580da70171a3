// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/newsletterhub/internal/app/services/weekly"
	userstore "github.com/dalemusser/newsletterhub/internal/app/store/users"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/tasks"
	"github.com/dalemusser/newsletterhub/internal/app/system/timeouts"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("timeouts overridden from environment",
			zap.Int("count", n),
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium),
			zap.Duration("long", cur.Long),
			zap.Duration("generate", cur.Generate))
	}

	if appCfg.AdminUID != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminUID, logger); err != nil {
			return err
		}
	}

	if !appCfg.WeeklyAssignEnabled {
		logger.Info("weekly assignment disabled")
		return nil
	}
	runner := weekly.New(deps.NewsletterHubMongoDatabase, logger)
	if err := deps.Scheduler.Add(tasks.WeeklyAssignmentJob(runner, logger, appCfg.WeeklyAssignSchedule)); err != nil {
		return err
	}
	deps.Scheduler.Start()
	return nil
}

// ensureAdmin makes uid an active admin, creating a bare profile when the
// user has not signed up yet.
func ensureAdmin(ctx context.Context, deps DBDeps, uid string, logger *zap.Logger) error {
	users := userstore.New(deps.NewsletterHubMongoDatabase)

	_, err := users.Update(ctx, uid, bson.M{"is_admin": true, "is_active": true})
	if err == nil {
		logger.Info("promoted existing profile to admin", zap.String("user_id", uid))
		return nil
	}
	if !apperr.Is(err, apperr.NotFound) {
		return err
	}

	now := time.Now().UTC()
	err = users.Create(ctx, models.User{
		ID:          uid,
		DisplayName: "Administrator",
		IsActive:    true,
		IsAdmin:     true,
		Preferences: models.DefaultPreferences(),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if apperr.Is(err, apperr.Conflict) {
		// Created concurrently by a sign-up; promote it instead.
		_, err = users.Update(ctx, uid, bson.M{"is_admin": true, "is_active": true})
	}
	if err != nil {
		return err
	}
	logger.Info("created admin profile", zap.String("user_id", uid))
	return nil
}
