package refdata

import (
	"time"

	"github.com/aristath/watchdeck/internal/domain"
)

// SampleNotifications holds canned notifications keyed by alert id.
// When an alert with a matching id is test-fired, the canned notification
// is used in place of the synthesized one (the store still reassigns id,
// timestamp and read state before insertion).
var SampleNotifications = map[string]domain.Notification{
	"alert-1": {
		ID:         "notif-nvda",
		StockID:    "NVDA",
		StockName:  "NVIDIA",
		Title:      "Price Alert Triggered",
		Message:    "",
		AISummary:  "NVIDIA stock surged 4.2% today following strong earnings guidance and increased demand for AI chips.",
		Sentiment:  domain.SentimentPositive,
		Group:      "Tech",
		GroupColor: "#3B82F6",
	},
	"alert-2": {
		ID:         "notif-tsla",
		StockID:    "TSLA",
		StockName:  "Tesla",
		Title:      "News Alert",
		Message:    "",
		AISummary:  "Tesla shares declined 2.1% after reports of temporary production slowdowns at the Shanghai facility. The company cited supply chain adjustments and routine maintenance. Despite short-term headwinds, analysts remain optimistic about Q2 delivery targets and upcoming model launches.",
		Sentiment:  domain.SentimentNegative,
		Group:      "Tech",
		GroupColor: "#3B82F6",
	},
	"aapl-test": {
		ID:         "notif-aapl",
		StockID:    "AAPL",
		StockName:  "Apple",
		Title:      "Price Alert Triggered",
		Message:    "",
		AISummary:  "Apple shares gained 2.1% following positive reviews of the latest iPhone lineup and strong services revenue growth. The company's ecosystem expansion and wearables segment continue to drive diversified revenue streams. Institutional investors increased positions citing stable cash flow and shareholder returns.",
		Sentiment:  domain.SentimentPositive,
		Group:      "Growth",
		GroupColor: "#10B981",
	},
}

// SeedAlerts returns the pre-configured demo alerts (NVDA price, TSLA news).
// Returned fresh on every call so callers can't mutate shared state.
func SeedAlerts() []domain.Alert {
	threshold := 150.0
	condition := domain.ConditionAbove
	return []domain.Alert{
		{
			ID:         "alert-1",
			StockID:    "NVDA",
			Type:       domain.AlertTypePrice,
			Threshold:  &threshold,
			Condition:  &condition,
			Group:      "group-tech",
			GroupColor: "#3B82F6",
			AIEnabled:  true,
			Enabled:    true,
			CreatedAt:  time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:         "alert-2",
			StockID:    "TSLA",
			Type:       domain.AlertTypeNews,
			Group:      "group-tech",
			GroupColor: "#3B82F6",
			AIEnabled:  true,
			Enabled:    true,
			CreatedAt:  time.Date(2025, 1, 15, 10, 5, 0, 0, time.UTC),
		},
	}
}

// SeedGroups returns the pre-configured demo group (Tech, blue).
func SeedGroups() []domain.StockGroup {
	return []domain.StockGroup{
		{
			ID:       "group-tech",
			Name:     "Tech",
			Color:    "#3B82F6",
			StockIDs: []string{"NVDA", "TSLA"},
		},
	}
}
