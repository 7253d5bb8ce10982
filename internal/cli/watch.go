package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"marketsense/internal/models"
)

func newWatchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the stock watchlist",
	}

	cmd.AddCommand(newWatchAddCmd(app))
	cmd.AddCommand(newWatchRemoveCmd(app))
	cmd.AddCommand(newWatchListCmd(app))
	cmd.AddCommand(newWatchSearchCmd(app))

	return cmd
}

func newWatchAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <symbol or name>",
		Short: "Add a stock to the watchlist and scan it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			query := strings.Join(args, " ")

			entity, err := app.Engine.AddStock(cmd.Context(), query)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(entity)
			}
			output.Success("Added %s", entity.DisplayName)
			output.Dim("First scan is running in the background; see 'marketsense watch list'.")
			return nil
		},
	}
}

func newWatchRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id or name>",
		Aliases: []string{"rm"},
		Short:   "Remove a stock from the watchlist",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			query := strings.Join(args, " ")

			id := query
			if entity, ok := matchEntity(app.Engine.Store().Watchlist(), query); ok {
				id = entity.ID
			}

			if err := app.Engine.RemoveStock(id); err != nil {
				return err
			}
			output.Success("Removed %s", query)
			return nil
		},
	}
}

func newWatchListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the watchlist with the latest sentiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			watchlist := app.Engine.Store().Watchlist()

			if output.IsJSON() {
				return output.JSON(watchlist)
			}
			if len(watchlist) == 0 {
				output.Dim("Watchlist is empty. Add a stock with 'marketsense watch add AAPL'.")
				return nil
			}
			for _, entity := range watchlist {
				renderEntity(output, entity)
			}
			return nil
		},
	}
}

func newWatchSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the symbol catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			query := strings.Join(args, " ")

			matches := models.MatchStocks(query)
			if output.IsJSON() {
				return output.JSON(matches)
			}
			if len(matches) == 0 {
				output.Dim("No matches for %q.", query)
				return nil
			}
			for _, def := range matches {
				output.Printf("  %-6s %s\n", def.Symbol, def.Name)
			}
			return nil
		},
	}
}
