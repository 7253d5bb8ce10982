package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"marketsense/internal/models"
	"marketsense/internal/stream"
)

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the live sentiment engine until interrupted",
		Long: `Activate the refresh engine: an immediate news and calendar fetch, then
periodic re-fetches on the configured cadence. State transitions are
rendered to the terminal as they land. Ctrl-C tears the engine down.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Engine.ConfigError() {
				output.Error("Missing API key. Set GEMINI_API_KEY (or OPENAI_API_KEY) or edit credentials.toml.")
				output.Dim("The sentiment engine cannot fetch real-time data without a credential.")
				return nil
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			events := app.Engine.Hub().Subscribe()

			if err := app.Engine.Activate(ctx); err != nil {
				return err
			}

			scanAll, _ := cmd.Flags().GetBool("scan")
			if scanAll {
				if err := app.Engine.ScanAll(ctx); err != nil {
					return err
				}
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			output.Info("Engine running. Press Ctrl-C to stop.")

			for {
				select {
				case <-sigCh:
					output.Println()
					output.Dim("Shutting down...")
					app.Engine.Teardown()
					return nil
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					renderEvent(output, app, ev)
				}
			}
		},
	}

	cmd.Flags().Bool("scan", false, "run a full staggered scan of all sectors and watchlist stocks on startup")

	return cmd
}

func renderEvent(output *Output, app *App, ev stream.Event) {
	switch ev.Type {
	case stream.EventEntityUpdated:
		entity, ok := app.Engine.Store().Entity(ev.EntityID)
		if !ok {
			return
		}
		renderEntity(output, entity)
	case stream.EventNewsUpdated:
		news := app.Engine.Store().News()
		if news.IsRefreshing {
			output.Dim("news: refreshing...")
			return
		}
		output.Bold("NEWS  %s", news.MarketMood)
		for _, item := range news.Items {
			output.Dim("  - %s (%s)", item.Title, item.Source)
		}
	case stream.EventCalendarUpdated:
		cal := app.Engine.Store().Calendar()
		if cal.IsRefreshing {
			output.Dim("calendar: refreshing...")
			return
		}
		output.Bold("CALENDAR  %d economic, %d earnings events",
			len(cal.EconomicEvents), len(cal.EarningsEvents))
	case stream.EventWatchlistChanged:
		output.Dim("watchlist changed: %s", ev.EntityID)
	}
}

func renderEntity(output *Output, e models.TrackedEntity) {
	switch e.Status {
	case models.StatusRefreshing:
		output.Dim("%-24s scanning...", e.DisplayName)
	case models.StatusError:
		output.Error("%-24s ERROR: %s", e.DisplayName, e.ErrorMessage)
	default:
		output.Printf("%-24s %s%-7s%s %3d  %s\n",
			e.DisplayName, SignalColor(string(e.Signal)), e.Signal, ColorReset, e.Score, e.Summary)
	}
}
