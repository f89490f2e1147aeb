// Package domain provides core domain models and types.
package domain

import "time"

// AlertType represents the kind of event an alert watches for
type AlertType string

const (
	// AlertTypePrice fires when a stock crosses a price threshold
	AlertTypePrice AlertType = "price"
	// AlertTypeVolume fires on unusual trading volume
	AlertTypeVolume AlertType = "volume"
	// AlertTypeNews fires on news coverage for the stock
	AlertTypeNews AlertType = "news"
)

// Valid reports whether the alert type is one of the known values
func (t AlertType) Valid() bool {
	switch t {
	case AlertTypePrice, AlertTypeVolume, AlertTypeNews:
		return true
	}
	return false
}

// AlertCondition represents the comparison direction for price alerts
type AlertCondition string

const (
	ConditionAbove AlertCondition = "above"
	ConditionBelow AlertCondition = "below"
)

// Valid reports whether the condition is one of the known values
func (c AlertCondition) Valid() bool {
	return c == ConditionAbove || c == ConditionBelow
}

// Sentiment classifies a notification for display (badge color, sound cue)
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// AggregatorInterval represents how often the news digest runs
type AggregatorInterval string

const (
	IntervalDaily   AggregatorInterval = "daily"
	IntervalWeekly  AggregatorInterval = "weekly"
	IntervalMonthly AggregatorInterval = "monthly"
)

// Valid reports whether the interval is one of the known values
func (i AggregatorInterval) Valid() bool {
	switch i {
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
		return true
	}
	return false
}

// Stock represents session-immutable reference data for a listed security.
// Stocks are looked up by id (ticker) and never owned or mutated by the store.
type Stock struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"` // Percent change for the session
}

// Alert represents a user-configured watch rule on a stock.
// Threshold and Condition are present iff Type is AlertTypePrice; the store
// never validates this - the API boundary does.
type Alert struct {
	ID         string          `json:"id"`
	StockID    string          `json:"stock_id"`
	Type       AlertType       `json:"type"`
	Threshold  *float64        `json:"threshold,omitempty"`
	Condition  *AlertCondition `json:"condition,omitempty"`
	Group      string          `json:"group,omitempty"`       // Group id, may dangle after group deletion
	GroupColor string          `json:"group_color,omitempty"` // Denormalized for render convenience
	AIEnabled  bool            `json:"ai_enabled"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Notification represents a transient, display-oriented event record
// describing a triggered alert or market event.
type Notification struct {
	ID         string    `json:"id"`
	StockID    string    `json:"stock_id"` // "market" for market-wide events
	StockName  string    `json:"stock_name"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	AISummary  string    `json:"ai_summary,omitempty"` // Takes rendering precedence over Message when present
	Timestamp  time.Time `json:"timestamp"`
	Sentiment  Sentiment `json:"sentiment"`
	Group      string    `json:"group,omitempty"`
	GroupColor string    `json:"group_color,omitempty"`
	Read       bool      `json:"read"`
}

// MarketStockID is the sentinel stock id for market-wide notifications
// that do not belong to a single security.
const MarketStockID = "market"

// StockGroup represents a named, colored collection of stock ids used to
// tag alerts and notifications for visual grouping.
type StockGroup struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	StockIDs []string `json:"stock_ids"`
}

// Contains reports whether the group already holds the given stock id
func (g *StockGroup) Contains(stockID string) bool {
	for _, id := range g.StockIDs {
		if id == stockID {
			return true
		}
	}
	return false
}

// QuietHours represents a configured time-of-day window during which
// alert delivery is suppressed.
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"` // "HH:MM"
	End     string `json:"end"`   // "HH:MM"
}

// Preferences is the single flat configuration record for the app.
// Updated by shallow-merged partial updates, reset to defaults on explicit reset.
type Preferences struct {
	QuietHours         QuietHours         `json:"quiet_hours"`
	GlobalMute         bool               `json:"global_mute"`
	AIEnabled          bool               `json:"ai_enabled"`
	LocationBased      bool               `json:"location_based"`
	Aggregator         bool               `json:"aggregator"`
	NewsSources        []string           `json:"news_sources"`
	AggregatorInterval AggregatorInterval `json:"aggregator_interval"`
}

// DefaultPreferences returns the documented preference defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		QuietHours: QuietHours{
			Enabled: false,
			Start:   "19:00",
			End:     "07:00",
		},
		GlobalMute:         false,
		AIEnabled:          false,
		LocationBased:      false,
		Aggregator:         false,
		NewsSources:        []string{},
		AggregatorInterval: IntervalDaily,
	}
}
