// Package refdata provides the static reference data the demo runs on:
// the stock catalog, canned sample notifications, and seed alerts/groups.
// All data here is read-only for the lifetime of the process.
package refdata

import "github.com/aristath/watchdeck/internal/domain"

// Stocks is the demo stock catalog with realistic session data.
var Stocks = []domain.Stock{
	{
		ID:     "NVDA",
		Name:   "NVIDIA Corporation",
		Price:  152.34,
		Change: 4.2,
	},
	{
		ID:     "TSLA",
		Name:   "Tesla, Inc.",
		Price:  242.84,
		Change: -2.1,
	},
	{
		ID:     "AAPL",
		Name:   "Apple Inc.",
		Price:  165.30,
		Change: 0.0,
	},
	{
		ID:     "MSFT",
		Name:   "Microsoft Corporation",
		Price:  378.91,
		Change: 0.5,
	},
	{
		ID:     "AMZN",
		Name:   "Amazon.com, Inc.",
		Price:  145.63,
		Change: 3.7,
	},
}

// StockByID returns the stock for the given id, or nil if unknown.
func StockByID(id string) *domain.Stock {
	for i := range Stocks {
		if Stocks[i].ID == id {
			return &Stocks[i]
		}
	}
	return nil
}

// StockName returns the display name for a stock id, falling back to the
// raw id when the id doesn't resolve.
func StockName(id string) string {
	if stock := StockByID(id); stock != nil {
		return stock.Name
	}
	return id
}
