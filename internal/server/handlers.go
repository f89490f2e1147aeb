package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aristath/watchdeck/internal/domain"
	"github.com/aristath/watchdeck/internal/refdata"
	"github.com/aristath/watchdeck/internal/store"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "watchdeck",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// ============================================================================
// Reference data
// ============================================================================

// handleListStocks handles GET /api/stocks
func (s *Server) handleListStocks(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, refdata.Stocks)
}

// handleGetStock handles GET /api/stocks/{id}
func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stock := refdata.StockByID(id)
	if stock == nil {
		http.Error(w, "Stock not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, stock)
}

// ============================================================================
// Alerts
// ============================================================================

// createAlertRequest is the alert form payload. Validation happens here, at
// the API boundary - the store trusts its callers.
type createAlertRequest struct {
	StockID    string                 `json:"stock_id"`
	Type       domain.AlertType       `json:"type"`
	Threshold  *float64               `json:"threshold,omitempty"`
	Condition  *domain.AlertCondition `json:"condition,omitempty"`
	Group      string                 `json:"group,omitempty"`
	GroupName  string                 `json:"group_name,omitempty"`  // Set to create a new group alongside the alert
	GroupColor string                 `json:"group_color,omitempty"`
	AIEnabled  bool                   `json:"ai_enabled"`
	Enabled    *bool                  `json:"enabled,omitempty"` // Defaults to true
}

// validate enforces the form-level rules: required fields, and
// threshold/condition present iff the alert type is price.
func (req *createAlertRequest) validate() string {
	if req.StockID == "" {
		return "stock_id is required"
	}
	if !req.Type.Valid() {
		return "type must be one of price, volume, news"
	}
	if req.Type == domain.AlertTypePrice {
		if req.Threshold == nil {
			return "threshold is required for price alerts"
		}
		if req.Condition == nil || !req.Condition.Valid() {
			return "condition must be above or below for price alerts"
		}
	} else if req.Threshold != nil || req.Condition != nil {
		return "threshold and condition are only valid for price alerts"
	}
	return ""
}

// handleListAlerts handles GET /api/alerts
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Alerts())
}

// handleCreateAlert handles POST /api/alerts.
// When group_name is set, a new group is created alongside the alert and the
// alert references it - the same flow the settings form uses.
func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	groupID := req.Group
	groupColor := req.GroupColor
	if req.GroupName != "" {
		group := domain.StockGroup{
			ID:       uuid.New().String(),
			Name:     req.GroupName,
			Color:    req.GroupColor,
			StockIDs: []string{},
		}
		s.store.AddGroup(group)
		s.store.AddStockToGroup(group.ID, req.StockID)
		groupID = group.ID
		groupColor = group.Color
	} else if groupID != "" {
		s.store.AddStockToGroup(groupID, req.StockID)
		for _, g := range s.store.Groups() {
			if g.ID == groupID {
				groupColor = g.Color
				break
			}
		}
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	alert := domain.Alert{
		ID:         uuid.New().String(),
		StockID:    req.StockID,
		Type:       req.Type,
		Threshold:  req.Threshold,
		Condition:  req.Condition,
		Group:      groupID,
		GroupColor: groupColor,
		AIEnabled:  req.AIEnabled,
		Enabled:    enabled,
		CreatedAt:  time.Now().UTC(),
	}

	s.store.AddAlert(alert)
	s.writeJSON(w, http.StatusCreated, alert)
}

// validateAlertUpdate enforces the same form-level rules as creation on a
// partial update, against the result the merge would produce.
func validateAlertUpdate(current domain.Alert, update store.AlertUpdate) string {
	if update.Type != nil && !update.Type.Valid() {
		return "type must be one of price, volume, news"
	}
	if update.Condition != nil && !update.Condition.Valid() {
		return "condition must be above or below"
	}

	mergedType := current.Type
	if update.Type != nil {
		mergedType = *update.Type
	}
	mergedThreshold := current.Threshold
	if update.Threshold != nil {
		mergedThreshold = update.Threshold
	}
	mergedCondition := current.Condition
	if update.Condition != nil {
		mergedCondition = update.Condition
	}

	if mergedType == domain.AlertTypePrice {
		if mergedThreshold == nil {
			return "threshold is required for price alerts"
		}
		if mergedCondition == nil {
			return "condition must be above or below for price alerts"
		}
	} else if update.Threshold != nil || update.Condition != nil {
		return "threshold and condition are only valid for price alerts"
	}
	return ""
}

// handleUpdateAlert handles PATCH /api/alerts/{id}
func (s *Server) handleUpdateAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var update store.AlertUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var current *domain.Alert
	for _, a := range s.store.Alerts() {
		if a.ID == id {
			c := a
			current = &c
			break
		}
	}
	if current == nil {
		http.Error(w, "Alert not found", http.StatusNotFound)
		return
	}

	if msg := validateAlertUpdate(*current, update); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if !s.store.UpdateAlert(id, update) {
		http.Error(w, "Alert not found", http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleDeleteAlert handles DELETE /api/alerts/{id}.
// Deleting is idempotent towards the client: a missing id is still a 200,
// matching the store's silent no-op semantics.
func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted := s.store.DeleteAlert(id)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "deleted": deleted})
}

// handleTestAlert handles POST /api/alerts/{id}/test
func (s *Server) handleTestAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.TestAlert(id) {
		http.Error(w, "Alert not found", http.StatusNotFound)
		return
	}

	// The freshly inserted notification is the newest feed entry.
	feed := s.store.Notifications()
	s.writeJSON(w, http.StatusCreated, feed[0])
}

// ============================================================================
// Notifications
// ============================================================================

// handleListNotifications handles GET /api/notifications
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Notifications())
}

// createNotificationRequest inserts a notification directly (demo trigger).
type createNotificationRequest struct {
	StockID   string           `json:"stock_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	AISummary string           `json:"ai_summary,omitempty"`
	Sentiment domain.Sentiment `json:"sentiment,omitempty"`
}

// handleCreateNotification handles POST /api/notifications
func (s *Server) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.StockID == "" || req.Title == "" {
		http.Error(w, "stock_id and title are required", http.StatusBadRequest)
		return
	}

	sentiment := req.Sentiment
	if sentiment == "" {
		sentiment = domain.SentimentNeutral
	}

	notification := domain.Notification{
		ID:        uuid.New().String(),
		StockID:   req.StockID,
		StockName: refdata.StockName(req.StockID),
		Title:     req.Title,
		Message:   req.Message,
		AISummary: req.AISummary,
		Timestamp: time.Now().UTC(),
		Sentiment: sentiment,
		Read:      false,
	}

	s.store.AddNotification(notification)
	s.writeJSON(w, http.StatusCreated, notification)
}

// handleDismissNotification handles DELETE /api/notifications/{id}
func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	dismissed := s.store.DismissNotification(id)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "dismissed": dismissed})
}

// handleMarkAsRead handles POST /api/notifications/{id}/read
func (s *Server) handleMarkAsRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.MarkAsRead(id) {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// ============================================================================
// Groups
// ============================================================================

// createGroupRequest is the group form payload.
type createGroupRequest struct {
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	StockIDs []string `json:"stock_ids,omitempty"`
}

// handleListGroups handles GET /api/groups
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Groups())
}

// handleCreateGroup handles POST /api/groups
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Color == "" {
		http.Error(w, "name and color are required", http.StatusBadRequest)
		return
	}

	group := domain.StockGroup{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Color:    req.Color,
		StockIDs: []string{},
	}
	s.store.AddGroup(group)
	for _, stockID := range req.StockIDs {
		s.store.AddStockToGroup(group.ID, stockID)
	}

	// Re-read so the response reflects the added members.
	for _, g := range s.store.Groups() {
		if g.ID == group.ID {
			group = g
			break
		}
	}

	s.writeJSON(w, http.StatusCreated, group)
}

// handleDeleteGroup handles DELETE /api/groups/{id}.
// Alerts referencing the group keep their dangling reference; renderers use
// a fallback color.
func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted := s.store.DeleteGroup(id)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "deleted": deleted})
}

// addStockToGroupRequest adds a member to a group.
type addStockToGroupRequest struct {
	StockID string `json:"stock_id"`
}

// handleAddStockToGroup handles POST /api/groups/{id}/stocks
func (s *Server) handleAddStockToGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req addStockToGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.StockID == "" {
		http.Error(w, "stock_id is required", http.StatusBadRequest)
		return
	}

	added := s.store.AddStockToGroup(id, req.StockID)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "added": added})
}

// ============================================================================
// Preferences
// ============================================================================

// handleGetPreferences handles GET /api/preferences
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Preferences())
}

// handleUpdatePreferences handles PATCH /api/preferences
func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var update store.PreferencesUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if update.AggregatorInterval != nil && !update.AggregatorInterval.Valid() {
		http.Error(w, "aggregator_interval must be one of daily, weekly, monthly", http.StatusBadRequest)
		return
	}

	s.store.UpdatePreferences(update)
	s.writeJSON(w, http.StatusOK, s.store.Preferences())
}

// ============================================================================
// Toast lifecycle
// ============================================================================

// handleGetToast handles GET /api/toast
func (s *Server) handleGetToast(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"active": s.toast.Active(),
		"detail": s.toast.Detail(),
	})
}

// handleDismissToast handles POST /api/toast/dismiss
func (s *Server) handleDismissToast(w http.ResponseWriter, r *http.Request) {
	s.toast.Dismiss()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleToastReadMore handles POST /api/toast/read-more.
// Escalates the active toast to the detail view; marking the notification
// read stays a separate call from the detail view.
func (s *Server) handleToastReadMore(w http.ResponseWriter, r *http.Request) {
	notification := s.toast.ReadMore()
	if notification == nil {
		http.Error(w, "No active toast", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, notification)
}

// handleCloseDetail handles POST /api/toast/close-detail
func (s *Server) handleCloseDetail(w http.ResponseWriter, r *http.Request) {
	s.toast.CloseDetail()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ============================================================================
// System
// ============================================================================

// handleReset handles POST /api/system/reset.
// Clears alerts and groups and restores default preferences. The
// notification feed is not touched.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.store.ResetAll()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// handleSeed handles POST /api/system/seed - loads the demo alerts and group.
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	for _, group := range refdata.SeedGroups() {
		s.store.AddGroup(group)
	}
	for _, alert := range refdata.SeedAlerts() {
		s.store.AddAlert(alert)
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}
