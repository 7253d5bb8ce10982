package models

import "strings"

// StockDefinition is one entry in the built-in symbol catalog used to
// resolve watchlist queries.
type StockDefinition struct {
	Symbol string
	Name   string
}

// maxStockMatches caps the number of catalog matches returned for a query.
const maxStockMatches = 8

// PopularStocks is the built-in symbol catalog offered for watchlist search.
var PopularStocks = []StockDefinition{
	{Symbol: "AAPL", Name: "Apple Inc."},
	{Symbol: "MSFT", Name: "Microsoft Corporation"},
	{Symbol: "GOOGL", Name: "Alphabet Inc."},
	{Symbol: "AMZN", Name: "Amazon.com Inc."},
	{Symbol: "NVDA", Name: "NVIDIA Corporation"},
	{Symbol: "META", Name: "Meta Platforms Inc."},
	{Symbol: "TSLA", Name: "Tesla Inc."},
	{Symbol: "AMD", Name: "Advanced Micro Devices"},
	{Symbol: "INTC", Name: "Intel Corporation"},
	{Symbol: "NFLX", Name: "Netflix Inc."},
	{Symbol: "CRM", Name: "Salesforce Inc."},
	{Symbol: "ORCL", Name: "Oracle Corporation"},
	{Symbol: "AVGO", Name: "Broadcom Inc."},
	{Symbol: "QCOM", Name: "Qualcomm Inc."},
	{Symbol: "PLTR", Name: "Palantir Technologies"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co."},
	{Symbol: "BAC", Name: "Bank of America"},
	{Symbol: "GS", Name: "Goldman Sachs Group"},
	{Symbol: "V", Name: "Visa Inc."},
	{Symbol: "MA", Name: "Mastercard Inc."},
	{Symbol: "BRK.B", Name: "Berkshire Hathaway"},
	{Symbol: "XOM", Name: "Exxon Mobil Corporation"},
	{Symbol: "CVX", Name: "Chevron Corporation"},
	{Symbol: "JNJ", Name: "Johnson & Johnson"},
	{Symbol: "PFE", Name: "Pfizer Inc."},
	{Symbol: "UNH", Name: "UnitedHealth Group"},
	{Symbol: "LLY", Name: "Eli Lilly and Company"},
	{Symbol: "WMT", Name: "Walmart Inc."},
	{Symbol: "COST", Name: "Costco Wholesale"},
	{Symbol: "HD", Name: "Home Depot Inc."},
	{Symbol: "NKE", Name: "Nike Inc."},
	{Symbol: "SBUX", Name: "Starbucks Corporation"},
	{Symbol: "DIS", Name: "Walt Disney Company"},
	{Symbol: "UBER", Name: "Uber Technologies"},
	{Symbol: "ABNB", Name: "Airbnb Inc."},
	{Symbol: "COIN", Name: "Coinbase Global"},
	{Symbol: "MSTR", Name: "MicroStrategy Inc."},
	{Symbol: "SHOP", Name: "Shopify Inc."},
	{Symbol: "SQ", Name: "Block Inc."},
	{Symbol: "PYPL", Name: "PayPal Holdings"},
	{Symbol: "BA", Name: "Boeing Company"},
	{Symbol: "GE", Name: "General Electric"},
	{Symbol: "F", Name: "Ford Motor Company"},
	{Symbol: "GM", Name: "General Motors"},
	{Symbol: "T", Name: "AT&T Inc."},
	{Symbol: "VZ", Name: "Verizon Communications"},
	{Symbol: "KO", Name: "Coca-Cola Company"},
	{Symbol: "PEP", Name: "PepsiCo Inc."},
	{Symbol: "MCD", Name: "McDonald's Corporation"},
	{Symbol: "IBM", Name: "IBM Corporation"},
}

// MatchStocks returns catalog entries whose symbol or name contains the
// query, case-insensitively, in catalog order, capped at eight matches.
func MatchStocks(query string) []StockDefinition {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var matches []StockDefinition
	for _, s := range PopularStocks {
		if strings.Contains(strings.ToLower(s.Symbol), query) ||
			strings.Contains(strings.ToLower(s.Name), query) {
			matches = append(matches, s)
			if len(matches) >= maxStockMatches {
				break
			}
		}
	}
	return matches
}

// ResolveStock returns the catalog entry whose symbol exactly matches the
// query (case-insensitive), if any.
func ResolveStock(query string) (StockDefinition, bool) {
	query = strings.TrimSpace(query)
	for _, s := range PopularStocks {
		if strings.EqualFold(s.Symbol, query) {
			return s, true
		}
	}
	return StockDefinition{}, false
}
