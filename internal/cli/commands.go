package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"FundCortex/internal/config"
	"FundCortex/internal/dataflows"
	"FundCortex/internal/display"
	"FundCortex/internal/models"
	"FundCortex/internal/trading"
)

const version = "1.0.0"

// NewRootCmd builds the CLI command tree.
func NewRootCmd() *cobra.Command {
	var cfgPath string
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "fundcortex",
		Short: "FundCortex, an LLM-backed equity analysis pipeline",
		Long: `FundCortex fetches market and disclosure data, runs deterministic
analyst agents over it and asks an LLM portfolio manager for final per-ticker
trading decisions.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath, debug)
			if err != nil {
				return err
			}
			return runInteractive(cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a JSON config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newDecideCmd(&cfgPath, &debug))
	rootCmd.AddCommand(newDataCmd(&cfgPath, &debug))
	rootCmd.AddCommand(newRefreshCmd(&cfgPath, &debug))
	rootCmd.AddCommand(newConfigCmd(&cfgPath, &debug))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func loadConfig(path string, debug bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Debug = true
	}
	return cfg, nil
}

func newDecideCmd(cfgPath *string, debug *bool) *cobra.Command {
	var endDate, startDate string
	var cash float64
	var margin float64

	cmd := &cobra.Command{
		Use:   "decide TICKER [TICKER...]",
		Short: "Run one decision cycle for the given tickers",
		Long: `Run the full pipeline for one or more tickers.
Example: fundcortex decide 600519 000001 --end-date 2024-03-15`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, *debug)
			if err != nil {
				return err
			}
			if endDate == "" {
				endDate = time.Now().Format("2006-01-02")
			}
			portfolio := models.NewPortfolio(decimal.NewFromFloat(cash), margin)
			return runDecide(cfg, args, startDate, endDate, portfolio)
		},
	}

	cmd.Flags().StringVar(&endDate, "end-date", "", "analysis end date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&startDate, "start-date", "", "data window start YYYY-MM-DD (default 3 months before end)")
	cmd.Flags().Float64Var(&cash, "cash", 100000, "portfolio cash")
	cmd.Flags().Float64Var(&margin, "margin", 0.5, "margin requirement for shorts")

	return cmd
}

func runDecide(cfg *config.Config, tickers []string, startDate, endDate string, portfolio models.Portfolio) error {
	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := app.session(ctx)
	if err != nil {
		return err
	}

	result, err := session.Run(ctx, trading.RunParams{
		Tickers:   tickers,
		StartDate: startDate,
		EndDate:   endDate,
		Portfolio: portfolio,
	})
	if err != nil {
		display.ShowError(err, "decision cycle")
		return err
	}

	display.ShowResult(result, endDate)
	return nil
}

func newDataCmd(cfgPath *string, debug *bool) *cobra.Command {
	var startDate, endDate string
	var limit int

	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Inspect the data layer without running decisions",
	}

	run := func(fn func(ctx context.Context, app *app, ticker string) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, *debug)
			if err != nil {
				return err
			}
			app, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if endDate == "" {
				endDate = time.Now().Format("2006-01-02")
			}
			if startDate == "" {
				end, _ := time.Parse("2006-01-02", endDate)
				startDate = end.AddDate(0, -3, 0).Format("2006-01-02")
			}

			out, err := fn(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		}
	}

	dataCmd.AddCommand(&cobra.Command{
		Use:   "prices TICKER",
		Short: "Show daily prices in the date window",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *app, ticker string) (any, error) {
			return app.service.GetPrices(ctx, ticker, startDate, endDate)
		}),
	})
	dataCmd.AddCommand(&cobra.Command{
		Use:   "metrics TICKER",
		Short: "Show financial metrics up to the end date",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *app, ticker string) (any, error) {
			return app.service.GetFinancialMetrics(ctx, ticker, endDate, models.PeriodTTM, limit)
		}),
	})
	dataCmd.AddCommand(&cobra.Command{
		Use:   "insiders TICKER",
		Short: "Show insider holding changes in the date window",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *app, ticker string) (any, error) {
			return app.service.GetInsiderTrades(ctx, ticker, startDate, endDate, limit)
		}),
	})
	var fullArticles int
	newsCmd := &cobra.Command{
		Use:   "news TICKER",
		Short: "Show company news in the date window",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *app, ticker string) (any, error) {
			news, err := app.service.GetCompanyNews(ctx, ticker, startDate, endDate, limit)
			if err != nil {
				return nil, err
			}
			if fullArticles > 0 {
				news = dataflows.NewNewsScraper().EnrichNews(ctx, news, fullArticles)
			}
			return news, nil
		}),
	}
	newsCmd.Flags().IntVar(&fullArticles, "full", 0, "fetch article bodies for up to N items")
	dataCmd.AddCommand(newsCmd)

	dataCmd.PersistentFlags().StringVar(&startDate, "start", "", "window start YYYY-MM-DD")
	dataCmd.PersistentFlags().StringVar(&endDate, "end", "", "window end YYYY-MM-DD (default today)")
	dataCmd.PersistentFlags().IntVar(&limit, "limit", 10, "maximum records to return")

	return dataCmd
}

func newRefreshCmd(cfgPath *string, debug *bool) *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run the scheduled disclosure sync for the watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, *debug)
			if err != nil {
				return err
			}
			if len(cfg.Watchlist) == 0 {
				return fmt.Errorf("watchlist is empty; set it in the config file")
			}

			app, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			refresher := dataflows.NewRefresher(app.service, cfg.Watchlist, app.log)
			if now {
				refresher.RunNow()
				return nil
			}

			if err := refresher.Register(cfg.RefreshCron); err != nil {
				return err
			}
			refresher.Start()
			defer refresher.Stop()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "sync immediately instead of scheduling")
	return cmd
}

func newConfigCmd(cfgPath *string, debug *bool) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, *debug)
			if err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration including LLM credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, *debug)
			if err != nil {
				return err
			}
			if err := cfg.ValidateKeys(); err != nil {
				return err
			}
			fmt.Println("configuration OK")
			return nil
		},
	})

	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("FundCortex v%s\n", version)
		},
	}
}

// runInteractive prompts for the cycle parameters, then runs decide.
func runInteractive(cfg *config.Config) error {
	tickers, err := PromptForTickers()
	if err != nil {
		return err
	}
	endDate, err := PromptForEndDate()
	if err != nil {
		return err
	}
	cash, err := PromptForCash()
	if err != nil {
		return err
	}

	portfolio := models.NewPortfolio(decimal.NewFromFloat(cash), 0.5)
	return runDecide(cfg, tickers, "", endDate, portfolio)
}

func splitTickers(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(strings.ToUpper(f))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
