// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/newsletterhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for NewsletterHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, firebase_project_id, etc.
//   - Environment variables: NEWSLETTERHUB_MONGO_URI, NEWSLETTERHUB_GENAI_API_KEY, etc.
//   - Command-line flags: --mongo_uri, --weekly_assign_schedule, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "newsletter_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},

	// Firebase token verification
	{Name: "firebase_project_id", Default: "", Desc: "Firebase project whose ID tokens are accepted (required)"},
	{Name: "firebase_certs_url", Default: "", Desc: "Override for the token signing certificate URL"},

	// Text generation
	{Name: "genai_api_key", Default: "", Desc: "Generative Language API key"},
	{Name: "genai_model", Default: "gemini-2.5-flash", Desc: "Model used to compose newsletters"},
	{Name: "genai_endpoint", Default: "", Desc: "Override for the Generative Language API base URL"},
	{Name: "genai_requests_per_minute", Default: 30, Desc: "Outbound generation requests per minute (0 = unlimited)"},
	{Name: "generate_per_user_per_hour", Default: 10, Desc: "Newsletter generations per user per hour (0 = unlimited)"},

	// Weekly assignment
	{Name: "weekly_assign_enabled", Default: true, Desc: "Run the weekly question assignment on a schedule"},
	{Name: "weekly_assign_schedule", Default: "0 9 * * 1", Desc: "Cron schedule for weekly assignment (UTC)"},

	// Admin bootstrap
	{Name: "admin_uid", Default: "", Desc: "Profile uid promoted to admin on startup"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, NEWSLETTERHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "NEWSLETTERHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),

		FirebaseProjectID: strings.TrimSpace(appValues.String("firebase_project_id")),
		FirebaseCertsURL:  appValues.String("firebase_certs_url"),

		GenAIAPIKey:            appValues.String("genai_api_key"),
		GenAIModel:             appValues.String("genai_model"),
		GenAIEndpoint:          appValues.String("genai_endpoint"),
		GenAIRequestsPerMinute: appValues.Int("genai_requests_per_minute"),
		GeneratePerUserPerHour: appValues.Int("generate_per_user_per_hour"),

		WeeklyAssignEnabled:  appValues.Bool("weekly_assign_enabled"),
		WeeklyAssignSchedule: strings.TrimSpace(appValues.String("weekly_assign_schedule")),

		AdminUID: strings.TrimSpace(appValues.String("admin_uid")),
	}

	if appCfg.GenAIAPIKey == "" {
		logger.Warn("genai_api_key is not set; newsletter generation will return the fallback text")
	}
	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI and cron schedule are checked here so a typo fails fast,
// before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.FirebaseProjectID == "" {
		return errors.New("firebase_project_id is required")
	}
	if appCfg.WeeklyAssignEnabled {
		if err := workers.ValidateSchedule(appCfg.WeeklyAssignSchedule); err != nil {
			return err
		}
	}
	if appCfg.GenAIRequestsPerMinute < 0 || appCfg.GeneratePerUserPerHour < 0 {
		return errors.New("rate limits cannot be negative")
	}
	return nil
}
