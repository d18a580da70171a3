// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	adminfeature "github.com/dalemusser/newsletterhub/internal/app/features/admin"
	assignmentsfeature "github.com/dalemusser/newsletterhub/internal/app/features/assignments"
	generatefeature "github.com/dalemusser/newsletterhub/internal/app/features/generate"
	healthfeature "github.com/dalemusser/newsletterhub/internal/app/features/health"
	newslettersfeature "github.com/dalemusser/newsletterhub/internal/app/features/newsletters"
	questionsfeature "github.com/dalemusser/newsletterhub/internal/app/features/questions"
	responsesfeature "github.com/dalemusser/newsletterhub/internal/app/features/responses"
	sessionsfeature "github.com/dalemusser/newsletterhub/internal/app/features/sessions"
	usersfeature "github.com/dalemusser/newsletterhub/internal/app/features/users"
	"github.com/dalemusser/newsletterhub/internal/app/services/generation"
	"github.com/dalemusser/newsletterhub/internal/app/system/auth"
	"github.com/dalemusser/newsletterhub/internal/app/system/metrics"
	"github.com/dalemusser/newsletterhub/internal/app/system/ratelimit"
	"github.com/dalemusser/newsletterhub/internal/app/system/textgen"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The token verifier and text generator
// are built here from config and injected into the router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	verifier := auth.NewFirebaseVerifier(appCfg.FirebaseProjectID, appCfg.FirebaseCertsURL, nil)
	gen := textgen.New(textgen.Config{
		APIKey:            appCfg.GenAIAPIKey,
		Model:             appCfg.GenAIModel,
		Endpoint:          appCfg.GenAIEndpoint,
		RequestsPerMinute: appCfg.GenAIRequestsPerMinute,
	})
	return newRouter(deps, verifier, newGenerationService(deps.NewsletterHubMongoDatabase, gen, appCfg, logger), logger), nil
}

// newGenerationService applies the per-user hourly cap from config.
func newGenerationService(db *mongo.Database, gen textgen.Generator, appCfg AppConfig, logger *zap.Logger) *generation.Service {
	return generation.New(db, gen, ratelimit.New(appCfg.GeneratePerUserPerHour, time.Hour), logger)
}

// newRouter mounts every feature. Everything except /health and /metrics
// requires a verified bearer token; /admin additionally requires an admin
// profile.
func newRouter(deps DBDeps, verifier auth.Verifier, gen *generation.Service, logger *zap.Logger) chi.Router {
	db := deps.NewsletterHubMongoDatabase

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// Ops endpoints for load balancers and scrapers
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.NewsletterHubMongoClient, logger)))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireBearer(verifier, logger))

		r.Mount("/newsletters", newslettersfeature.Routes(newslettersfeature.NewHandler(db, logger)))
		r.Mount("/questions", questionsfeature.Routes(questionsfeature.NewHandler(db, logger)))
		r.Mount("/responses", responsesfeature.Routes(responsesfeature.NewHandler(db, logger)))
		r.Mount("/sessions", sessionsfeature.Routes(sessionsfeature.NewHandler(db, logger)))
		r.Mount("/assignments", assignmentsfeature.Routes(assignmentsfeature.NewHandler(db, logger)))
		r.Mount("/generate-newsletter", generatefeature.Routes(generatefeature.NewHandler(gen, logger)))
		r.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(db, logger)))

		// Admin surface; the admin check lives in the admin router.
		r.Mount("/admin", adminfeature.Routes(adminfeature.NewHandler(db, logger)))
	})

	return r
}
