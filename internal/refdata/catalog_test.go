package refdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStockByID tests catalog lookup and the unknown-id nil.
func TestStockByID(t *testing.T) {
	stock := StockByID("NVDA")
	assert.NotNil(t, stock)
	assert.Equal(t, "NVIDIA Corporation", stock.Name)

	assert.Nil(t, StockByID("UNKNOWN"))
}

// TestStockName_FallsBackToRawID tests the display-name fallback.
func TestStockName_FallsBackToRawID(t *testing.T) {
	assert.Equal(t, "Tesla, Inc.", StockName("TSLA"))
	assert.Equal(t, "market", StockName("market"))
}

// TestSeedData tests the demo seed shapes match the canned samples.
func TestSeedData(t *testing.T) {
	alerts := SeedAlerts()
	assert.Len(t, alerts, 2)
	for _, a := range alerts {
		_, ok := SampleNotifications[a.ID]
		assert.True(t, ok, "every seed alert has a canned sample: %s", a.ID)
	}

	groups := SeedGroups()
	assert.Len(t, groups, 1)
	assert.Equal(t, "group-tech", groups[0].ID)
	assert.Equal(t, alerts[0].Group, groups[0].ID)
}

// TestSeedAlerts_ReturnsFreshCopies tests that callers cannot mutate the
// seed data through a returned slice.
func TestSeedAlerts_ReturnsFreshCopies(t *testing.T) {
	first := SeedAlerts()
	first[0].StockID = "mutated"
	*first[0].Threshold = 0

	second := SeedAlerts()
	assert.Equal(t, "NVDA", second[0].StockID)
	assert.Equal(t, 150.0, *second[0].Threshold)
}
