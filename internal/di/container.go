/**
 * Package di provides dependency injection wiring and initialization.
 *
 * The Container is the single source of truth for all service instances.
 * It is created by Wire() and handed to the server for access to services.
 */
package di

import (
	"github.com/rs/zerolog"

	"github.com/aristath/watchdeck/internal/aggregator"
	"github.com/aristath/watchdeck/internal/database"
	"github.com/aristath/watchdeck/internal/events"
	"github.com/aristath/watchdeck/internal/persistence"
	"github.com/aristath/watchdeck/internal/sound"
	"github.com/aristath/watchdeck/internal/store"
	"github.com/aristath/watchdeck/internal/toast"
)

// Container holds all dependencies for the application
type Container struct {
	// Database
	StateDB *database.DB

	// Infrastructure
	EventBus *events.Bus
	Log      zerolog.Logger

	// Data access
	Persistence *persistence.Repository

	// Services
	Store      *store.Store
	Sound      *sound.Player
	Toast      *toast.Controller
	Aggregator *aggregator.Scheduler
}

// Close shuts down background services and closes the database
func (c *Container) Close() error {
	if c.Aggregator != nil {
		c.Aggregator.Stop()
	}
	if c.Toast != nil {
		c.Toast.Stop()
	}
	if c.StateDB != nil {
		return c.StateDB.Close()
	}
	return nil
}
