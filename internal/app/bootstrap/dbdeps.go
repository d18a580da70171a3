// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/newsletterhub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	NewsletterHubMongoClient   *mongo.Client
	NewsletterHubMongoDatabase *mongo.Database

	// Scheduler is created stopped in ConnectDB, filled and started in
	// Startup, and stopped in Shutdown.
	Scheduler *workers.Scheduler
}
