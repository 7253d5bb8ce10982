package gateway

import (
	"fmt"
	"time"

	"marketsense/internal/models"
)

// sentimentPrompt asks the model to assess one sector or stock and emit a
// fenced JSON block. The fence is required because search grounding cannot
// be combined with a structured-output schema at the provider.
func sentimentPrompt(name string, kind models.EntityKind) string {
	context := fmt.Sprintf("the stock/company associated with %q", name)
	if kind == models.KindSector {
		context = fmt.Sprintf("the %q market sector", name)
	}

	return fmt.Sprintf(`You are a sophisticated financial market sentiment scanner.

Task: Search for the latest news, analyst reports, and social sentiment regarding %s.

Based on the search results, provide:
1. A clear sentiment signal: BUY (Bullish), SELL (Bearish), or HOLD (Neutral).
2. A sentiment score from 0 to 100 (0 = Extreme Fear/Bearish, 50 = Neutral, 100 = Extreme Greed/Bullish).
3. A brief 1-2 sentence summary of the current mood.
4. 3 key positive catalysts/drivers.
5. 3 key negative risks/headwinds.
6. If the target is a market sector, provide UP TO 5 specific stocks in this sector to BUY and UP TO 5 to SELL/AVOID based on current sentiment, each with a tiny 3-5 word reason. If the target is a specific stock, leave these lists empty.

Output format:
Strictly output the analysis as JSON wrapped in a code block. The JSON structure must be:
{
  "signal": "BUY" | "SELL" | "HOLD",
  "score": number,
  "summary": "string",
  "positive_catalysts": ["string", "string", "string"],
  "negative_risks": ["string", "string", "string"],
  "top_picks_buy": [ {"symbol": "TICKER", "name": "Name", "reason": "reason"} ],
  "top_picks_sell": [ {"symbol": "TICKER", "name": "Name", "reason": "reason"} ]
}`, context)
}

// newsPrompt asks for the current market mood as a single sentence.
func newsPrompt() string {
	return `You are a real-time financial news aggregator.
Task: Search for the absolute latest, breaking financial news headlines, stock market movements, and economic data from the last hour.

Output Requirements:
1. "market_pulse": A single, concise sentence summarizing the overall market mood right now (e.g., "Tech stocks rally on earnings beat while energy lags due to oil prices").

Strictly output JSON:
{
    "market_pulse": "string"
}`
}

// calendarPrompt asks for the upcoming week's economic and earnings events.
// The current date is pinned into the prompt and the model is instructed to
// return only future events; this is a prompt-level trust boundary, not
// re-validated downstream.
func calendarPrompt(now time.Time) string {
	today := now.Format("Mon Jan 2 2006")
	return fmt.Sprintf(`Current Date: %s
You are a senior financial analyst.
Task: Using web search, find the most critical market events scheduled for the UPCOMING WEEK starting from today (%s).

CRITICAL INSTRUCTION: Ensure all dates are in the FUTURE relative to %s. Do NOT return historical data from previous years.

Split your findings into two distinct categories:

CATEGORY 1: ECONOMIC & POLITICAL
Search for:
- Major US economic data (CPI, PPI, Jobs, GDP, Fed interest rates) scheduled for this week.
- Federal Reserve events (FOMC meetings, speeches).
- Major scheduled political speeches or policy announcements with market impact.

CATEGORY 2: COMPANY EARNINGS
Search for:
- Major US companies (S&P 500) releasing earnings this week.
- Provide a schedule that covers MULTIPLE DAYS of the week if data exists.

Strictly output JSON in this format:
{
    "economic_events": [
        {
            "title": "Event Name",
            "date": "Day, Date & Time (e.g. Tue, Nov 14 - 8:30 AM EST)",
            "impact": "HIGH" | "MEDIUM",
            "category": "ECONOMIC" | "POLITICAL",
            "description": "Short explanation of why it matters."
        }
    ],
    "earnings_events": [
        {
            "ticker": "AAPL",
            "name": "Apple Inc.",
            "date": "Day, Date (e.g. Thu, Nov 16)",
            "time": "Pre-Market" | "After-Close" | "Unknown",
            "estimate": "EPS Est: $1.20"
        }
    ]
}`, today, today, today)
}

// searchQuery builds the query used by providers that emulate grounding
// through an external search API.
func entitySearchQuery(name string, kind models.EntityKind) string {
	if kind == models.KindSector {
		return fmt.Sprintf("%s sector stocks sentiment analyst outlook today", name)
	}
	return fmt.Sprintf("%s stock news sentiment today", name)
}
