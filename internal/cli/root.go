package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"marketsense/internal/config"
	"marketsense/internal/engine"
	"marketsense/internal/gateway"
	"marketsense/internal/llm"
	"marketsense/internal/logging"
	"marketsense/internal/models"
	"marketsense/internal/store"
	"marketsense/internal/stream"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Engine *engine.Engine
}

// buildClient selects the completion-service backend from configuration.
func buildClient(cfg *config.Config) llm.Client {
	if cfg.Provider.Name == "openai" {
		var search llm.WebSearchClient
		if cfg.Credentials.Tavily.APIKey != "" {
			search = llm.NewTavilyClient(cfg.Credentials.Tavily.APIKey)
		}
		return llm.NewOpenAIClient(cfg.Credentials.OpenAI.APIKey, cfg.Provider.OpenAIModel, search)
	}
	return llm.NewGeminiClient(cfg.Credentials.Gemini.APIKey, cfg.Provider.GeminiModel)
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	hub := stream.NewHub()
	st := store.New(models.DefaultSectors, hub)
	gw := gateway.New(buildClient(cfg), gateway.Caps{
		Entity: cfg.Engine.EntityCitations,
		News:   cfg.Engine.NewsCitations,
	}, cfg.Engine.RequestTimeout, logger)

	app := &App{
		Config: cfg,
		Logger: logger,
		Engine: engine.New(cfg.Engine, gw, st, hub, cfg.HasProviderCredential(), logger),
	}

	rootCmd := &cobra.Command{
		Use:   "marketsense",
		Short: "MarketSense - AI market sentiment dashboard",
		Long: `MarketSense scans market sectors, watchlist stocks, breaking news and the
weekly economic/earnings calendar through a search-grounded LLM and keeps
the results refreshed on a fixed cadence.

Use 'marketsense run' for the live dashboard loop, or the one-shot
commands (scan, news, calendar) for single fetches.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/marketsense)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newNewsCmd(app))
	rootCmd.AddCommand(newCalendarCmd(app))
	rootCmd.AddCommand(newWatchCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("MarketSense v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Provider")
	output.Printf("  Backend:          %s\n", cfg.Provider.Name)
	output.Printf("  Gemini model:     %s\n", cfg.Provider.GeminiModel)
	output.Printf("  OpenAI model:     %s\n", cfg.Provider.OpenAIModel)
	output.Println()

	output.Bold("Engine")
	output.Printf("  News interval:     %s\n", cfg.Engine.NewsInterval)
	output.Printf("  Calendar interval: %s\n", cfg.Engine.CalendarInterval)
	output.Printf("  Scan stagger:      %s\n", cfg.Engine.ScanStagger)
	output.Printf("  Entity citations:  %d\n", cfg.Engine.EntityCitations)
	output.Printf("  News citations:    %d\n", cfg.Engine.NewsCitations)
	output.Println()

	output.Bold("Credentials")
	output.Printf("  Gemini key:  %v\n", cfg.Credentials.Gemini.APIKey != "")
	output.Printf("  OpenAI key:  %v\n", cfg.Credentials.OpenAI.APIKey != "")
	output.Printf("  Tavily key:  %v\n", cfg.Credentials.Tavily.APIKey != "")
}
