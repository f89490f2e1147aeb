package server

import (
	"net/http"
	"time"

	"github.com/aristath/watchdeck/internal/domain"
	"github.com/aristath/watchdeck/internal/refdata"
	"github.com/aristath/watchdeck/internal/toast"
)

// The screen endpoints return everything a renderer needs to draw one of
// the three phone screens, so a thin client can stay stateless and just
// re-fetch on websocket events.

// handleLockScreen handles GET /screens/lock
func (s *Server) handleLockScreen(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	prefs := s.store.Preferences()

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"screen":      "lock",
		"time":        now.Format("15:04"),
		"date":        now.Format("Monday, January 2"),
		"toast":       s.toast.Active(),
		"detail":      s.toast.Detail(),
		"quiet_hours": toast.WithinWindow(now, prefs.QuietHours.Start, prefs.QuietHours.End) && prefs.QuietHours.Enabled,
		"navigation":  map[string]string{"unlock": "/screens/home"},
	})
}

// handleHomeScreen handles GET /screens/home
func (s *Server) handleHomeScreen(w http.ResponseWriter, r *http.Request) {
	notifications := s.store.Notifications()
	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"screen":        "home",
		"stocks":        refdata.Stocks,
		"notifications": notifications,
		"unread_count":  unread,
		"navigation": map[string]string{
			"settings": "/screens/settings",
			"lock":     "/screens/lock",
		},
	})
}

// handleSettingsScreen handles GET /screens/settings
func (s *Server) handleSettingsScreen(w http.ResponseWriter, r *http.Request) {
	alerts := s.store.Alerts()
	groups := s.store.Groups()

	// Alerts are presented grouped the way the settings list renders them:
	// grouped alerts under their group header, the rest ungrouped.
	grouped := make(map[string][]domain.Alert)
	var ungrouped []domain.Alert
	for _, alert := range alerts {
		if alert.Group != "" {
			grouped[alert.Group] = append(grouped[alert.Group], alert)
		} else {
			ungrouped = append(ungrouped, alert)
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"screen":           "settings",
		"alerts":           alerts,
		"alerts_by_group":  grouped,
		"ungrouped_alerts": ungrouped,
		"groups":           groups,
		"preferences":      s.store.Preferences(),
		"stocks":           refdata.Stocks,
		"navigation": map[string]string{
			"back": "/screens/home",
		},
	})
}
