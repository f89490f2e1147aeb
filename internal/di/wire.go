package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/watchdeck/internal/aggregator"
	"github.com/aristath/watchdeck/internal/config"
	"github.com/aristath/watchdeck/internal/database"
	"github.com/aristath/watchdeck/internal/events"
	"github.com/aristath/watchdeck/internal/persistence"
	"github.com/aristath/watchdeck/internal/sound"
	"github.com/aristath/watchdeck/internal/store"
	"github.com/aristath/watchdeck/internal/toast"
)

// Wire initializes all dependencies and returns a fully configured container.
// Order of operations:
// 1. Open the state database and ensure its schema
// 2. Create the event bus
// 3. Create the store and hydrate it from persisted state
// 4. Start the toast controller and digest scheduler
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	// Step 1: State database
	stateDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "state.db"),
		Profile: database.ProfileStandard,
		Name:    "state",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	repo := persistence.NewRepository(stateDB.Conn(), log)
	if err := repo.EnsureSchema(); err != nil {
		stateDB.Close()
		return nil, fmt.Errorf("failed to ensure state schema: %w", err)
	}

	// Step 2: Event bus
	bus := events.NewBus(log)

	// Step 3: Store + hydration
	st := store.New(repo, bus, log)
	persisted, err := repo.Load()
	if err != nil {
		stateDB.Close()
		return nil, fmt.Errorf("failed to load persisted state: %w", err)
	}
	if persisted != nil {
		st.Hydrate(persisted.Alerts, persisted.Groups, persisted.Preferences)
		log.Info().
			Int("alerts", len(persisted.Alerts)).
			Int("groups", len(persisted.Groups)).
			Msg("Hydrated store from persisted state")
	}

	// Step 4: Background services
	player := sound.NewPlayer(cfg.SoundsDir, log)
	toastCtrl := toast.NewController(st, player, bus, toast.Config{}, log)
	toastCtrl.Start()

	scheduler := aggregator.NewScheduler(st, bus, log)
	scheduler.Start()

	return &Container{
		StateDB:     stateDB,
		EventBus:    bus,
		Log:         log,
		Persistence: repo,
		Store:       st,
		Sound:       player,
		Toast:       toastCtrl,
		Aggregator:  scheduler,
	}, nil
}
