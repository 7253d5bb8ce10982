package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marketsense/internal/models"
)

func newScanCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [entity]",
		Short: "Scan sector or stock sentiment",
		Long: `Fetch a fresh sentiment analysis. With no argument every sector is
scanned in sequence; with an argument only the matching sector or
watchlist stock is scanned.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Engine.ConfigError() {
				output.Error("Missing API key. Set GEMINI_API_KEY (or OPENAI_API_KEY) or edit credentials.toml.")
				return nil
			}

			st := app.Engine.Store()
			entities := append(st.Sectors(), st.Watchlist()...)

			if len(args) == 1 {
				target, ok := matchEntity(entities, args[0])
				if !ok {
					return fmt.Errorf("no tracked sector or stock matches %q", args[0])
				}
				entities = []models.TrackedEntity{target}
			}

			for _, entity := range entities {
				if !output.IsJSON() {
					output.Dim("%-24s scanning...", entity.DisplayName)
				}
				if err := app.Engine.RefreshEntity(cmd.Context(), entity.ID); err != nil {
					return err
				}
			}

			results := make([]models.TrackedEntity, 0, len(entities))
			for _, entity := range entities {
				if fresh, ok := st.Entity(entity.ID); ok {
					results = append(results, fresh)
				}
			}

			if output.IsJSON() {
				return output.JSON(results)
			}

			output.Println()
			for _, entity := range results {
				renderEntity(output, entity)
				for _, c := range entity.Citations {
					output.Dim("    %s (%s)", c.Title, c.Source)
				}
			}
			return nil
		},
	}
}

// matchEntity resolves a user-supplied name against tracked entities,
// case-insensitively, by id, display name, or substring.
func matchEntity(entities []models.TrackedEntity, query string) (models.TrackedEntity, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, e := range entities {
		if strings.ToLower(e.ID) == q || strings.ToLower(e.DisplayName) == q {
			return e, true
		}
	}
	for _, e := range entities {
		if strings.Contains(strings.ToLower(e.DisplayName), q) {
			return e, true
		}
	}
	return models.TrackedEntity{}, false
}

func newNewsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "news",
		Short: "Fetch the live market news pulse",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Engine.ConfigError() {
				output.Error("Missing API key. Set GEMINI_API_KEY (or OPENAI_API_KEY) or edit credentials.toml.")
				return nil
			}

			app.Engine.RefreshNews(cmd.Context())
			news := app.Engine.Store().News()

			if output.IsJSON() {
				return output.JSON(news)
			}

			output.Bold("Market Pulse")
			output.Printf("%s\n\n", news.MarketMood)
			if len(news.Items) == 0 {
				output.Dim("No headlines available.")
				return nil
			}
			for _, item := range news.Items {
				output.Printf("  %s\n", item.Title)
				output.Dim("    %s  %s", item.Source, item.URL)
			}
			return nil
		},
	}
}

func newCalendarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar",
		Short: "Fetch this week's economic and earnings calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Engine.ConfigError() {
				output.Error("Missing API key. Set GEMINI_API_KEY (or OPENAI_API_KEY) or edit credentials.toml.")
				return nil
			}

			app.Engine.RefreshCalendar(cmd.Context())
			cal := app.Engine.Store().Calendar()

			if output.IsJSON() {
				return output.JSON(cal)
			}

			output.Bold("Economic Events")
			if len(cal.EconomicEvents) == 0 {
				output.Dim("  none found")
			}
			for _, ev := range cal.EconomicEvents {
				output.Printf("  [%s] %-10s %s\n", ev.Impact, ev.WhenText, ev.Title)
				if ev.Description != "" {
					output.Dim("      %s", ev.Description)
				}
			}

			output.Println()
			output.Bold("Earnings")
			if len(cal.EarningsEvents) == 0 {
				output.Dim("  none found")
			}
			for _, ev := range cal.EarningsEvents {
				output.Printf("  %-6s %-24s %-10s %s\n", ev.Ticker, ev.CompanyName, ev.WhenText, ev.Session)
				if ev.EstimateText != "" {
					output.Dim("      est. %s", ev.EstimateText)
				}
			}
			return nil
		},
	}
}
