package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/watchdeck/internal/domain"
)

// TestCategoryFor tests the stock-specific cues and the sentiment fallback.
func TestCategoryFor(t *testing.T) {
	testCases := []struct {
		name      string
		stockID   string
		sentiment domain.Sentiment
		expect    Category
	}{
		{"nvda cue", "NVDA", domain.SentimentPositive, CategoryNvda},
		{"tsla cue", "TSLA", domain.SentimentNegative, CategoryTsla},
		{"aapl cue", "AAPL", domain.SentimentNeutral, CategoryAapl},
		{"case insensitive", "nvda", domain.SentimentPositive, CategoryNvda},
		{"negative fallback", "MSFT", domain.SentimentNegative, CategoryWarning},
		{"neutral fallback", "MSFT", domain.SentimentNeutral, CategoryNews},
		{"market-wide digest", domain.MarketStockID, domain.SentimentNeutral, CategoryNews},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := domain.Notification{StockID: tc.stockID, Sentiment: tc.sentiment}
			assert.Equal(t, tc.expect, CategoryFor(n))
		})
	}
}

// TestEveryCategoryHasFile tests the category-to-file map is total.
func TestEveryCategoryHasFile(t *testing.T) {
	for _, c := range []Category{CategoryNvda, CategoryTsla, CategoryAapl, CategoryNews, CategoryWarning} {
		assert.NotEmpty(t, soundFiles[c], string(c))
	}
}
