// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// The struct is passed to most lifecycle hooks, so any configuration
// needed during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64

	// Firebase ID-token verification
	FirebaseProjectID string // audience and issuer suffix of accepted tokens
	FirebaseCertsURL  string // blank uses Google's published signing certs

	// Text generation (Gemini generateContent API)
	GenAIAPIKey            string
	GenAIModel             string
	GenAIEndpoint          string
	GenAIRequestsPerMinute int // outbound throttle; 0 disables it

	// Per-user cap on POST /generate-newsletter calls; 0 disables it
	GeneratePerUserPerHour int

	// Weekly question assignment
	WeeklyAssignEnabled  bool
	WeeklyAssignSchedule string // cron expression, evaluated in UTC

	// Profile uid promoted to admin on startup (blank skips)
	AdminUID string
}
