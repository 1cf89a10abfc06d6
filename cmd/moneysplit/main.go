package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moneysplit/moneysplit/internal/compare"
	"github.com/moneysplit/moneysplit/internal/config"
	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/moneysplit/moneysplit/internal/forecast"
	"github.com/moneysplit/moneysplit/internal/output"
	"github.com/moneysplit/moneysplit/internal/registry"
	"github.com/moneysplit/moneysplit/internal/server"
	"github.com/moneysplit/moneysplit/internal/store"
	"github.com/moneysplit/moneysplit/internal/taxengine"
	"github.com/moneysplit/moneysplit/internal/tui"
)

// simpleCLILogger implements taxengine.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "moneysplit %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.String())
			}
		},
	}
}

var rootCmd = &cobra.Command{
	Use:   "moneysplit",
	Short: "Commission income tax strategy calculator",
	Long:  "Compares Individual vs Business taxation strategies for commission income and recommends the one with the highest take-home pay",
}

// engines bundles everything a command needs after setup.
type engines struct {
	calc  *taxengine.Engine
	cmp   *compare.Engine
	reg   *registry.Registry
	store *store.Store
}

// setup wires the registry, rules file, optional database, and engines
// from the shared flags.
func setup(cmd *cobra.Command) (*engines, error) {
	rulesPath, _ := cmd.Flags().GetString("rules")
	rules, tables, err := config.LoadRules(rulesPath)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	if err := config.ApplyTables(reg, tables); err != nil {
		return nil, err
	}

	var provider domain.BracketProvider = reg
	var st *store.Store
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		st, err = store.Open(dbPath)
		if err != nil {
			return nil, err
		}
		if err := st.SeedDefaults(cmd.Context(), reg); err != nil {
			st.Close()
			return nil, err
		}
		provider = st
	}

	calc := taxengine.NewEngine(provider, rules)
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		calc.SetLogger(simpleCLILogger{})
	}

	cmp := compare.NewEngine(calc)
	cmp.Options.IncludeReinvest, _ = cmd.Flags().GetBool("include-reinvest")

	return &engines{calc: calc, cmp: cmp, reg: reg, store: st}, nil
}

func (e *engines) close() {
	if e.store != nil {
		e.store.Close()
	}
}

// projectFromFlags builds the engine input from the shared project flags.
func projectFromFlags(cmd *cobra.Command) (domain.ProjectInput, error) {
	revenueStr, _ := cmd.Flags().GetString("revenue")
	costsStr, _ := cmd.Flags().GetString("costs")

	revenue, err := decimal.NewFromString(revenueStr)
	if err != nil {
		return domain.ProjectInput{}, fmt.Errorf("invalid revenue %q: %w", revenueStr, err)
	}
	costs, err := decimal.NewFromString(costsStr)
	if err != nil {
		return domain.ProjectInput{}, fmt.Errorf("invalid costs %q: %w", costsStr, err)
	}

	country, _ := cmd.Flags().GetString("country")
	state, _ := cmd.Flags().GetString("state")
	people, _ := cmd.Flags().GetInt("people")
	method, _ := cmd.Flags().GetString("method")

	project := domain.ProjectInput{
		Revenue:            revenue,
		Costs:              costs,
		NumPeople:          people,
		Country:            country,
		State:              strings.ToUpper(state),
		DistributionMethod: domain.DistributionMethod(method),
	}

	if taxTypeStr, _ := cmd.Flags().GetString("tax-type"); taxTypeStr != "" {
		taxType, err := domain.ParseTaxType(taxTypeStr)
		if err != nil {
			return domain.ProjectInput{}, err
		}
		project.TaxTypePreference = &taxType
	}

	if salaryStr, _ := cmd.Flags().GetString("salary"); salaryStr != "" {
		salary, err := decimal.NewFromString(salaryStr)
		if err != nil {
			return domain.ProjectInput{}, fmt.Errorf("invalid salary %q: %w", salaryStr, err)
		}
		project.SalaryAmount = salary
	}

	return project, nil
}

// addProjectFlags registers the flags shared by every command that
// evaluates a project.
func addProjectFlags(cmd *cobra.Command) {
	cmd.Flags().String("revenue", "0", "Project revenue")
	cmd.Flags().String("costs", "0", "Project costs")
	cmd.Flags().StringP("country", "c", "US", "Country (US, Spain, UK, Canada)")
	cmd.Flags().String("state", "", "US state code (CA, NY, TX, FL)")
	cmd.Flags().IntP("people", "p", 1, "Number of people splitting the income")
	cmd.Flags().String("method", "", "Distribution method (Salary, Dividend, Mixed, Reinvest)")
	cmd.Flags().String("salary", "", "Explicit salary amount for the Mixed method")
	cmd.Flags().String("rules", "", "Path to a YAML rules file overriding tax constants")
	cmd.Flags().String("db", "", "SQLite database path (persists runs, serves brackets)")
	cmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare every tax strategy for a project",
	Long: `Compare Individual taxation against the Business strategies and
recommend the one with the highest group take-home.

Examples:
  moneysplit compare --revenue 100000 --country US
  moneysplit compare --revenue 250000 --costs 50000 --people 2 --country Spain --format json
  moneysplit compare --revenue 100000 --state CA --include-reinvest
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		project, err := projectFromFlags(cmd)
		if err != nil {
			return err
		}

		result, err := e.cmp.Compare(cmd.Context(), &project)
		if err != nil {
			return err
		}

		if e.store != nil && result.Optimal != nil {
			if _, err := e.store.SaveRecord(cmd.Context(), store.Record{
				Country:         project.Country,
				State:           project.State,
				Revenue:         project.Revenue,
				Costs:           project.Costs,
				NumPeople:       project.NumPeople,
				OptimalStrategy: result.Optimal.Strategy.String(),
				TotalTax:        result.Optimal.TotalTax,
				NetIncome:       result.Optimal.NetIncomeGroup,
			}); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save record: %v\n", err)
			}
		}

		outputFormat, _ := cmd.Flags().GetString("format")
		switch strings.ToLower(outputFormat) {
		case "csv":
			formatter := &compare.CSVFormatter{}
			out, err := formatter.Format(result)
			if err != nil {
				return err
			}
			fmt.Print(out)

		case "json":
			formatter := &compare.JSONFormatter{Pretty: true}
			out, err := formatter.Format(result)
			if err != nil {
				return err
			}
			fmt.Print(out)

		case "table", "console", "":
			formatter := &compare.TableFormatter{}
			fmt.Print(formatter.Format(result))

		default:
			return fmt.Errorf("unknown output format: %s (valid: table, csv, json)", outputFormat)
		}
		return nil
	},
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate tax for a single strategy",
	Long: `Calculate the tax outcome for one strategy, chosen from the tax type
preference and distribution method.

Examples:
  moneysplit calculate --revenue 100000 --tax-type Individual
  moneysplit calculate --revenue 100000 --tax-type Business --method Dividend
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		project, err := projectFromFlags(cmd)
		if err != nil {
			return err
		}

		result, err := e.calc.SimulatePreferred(cmd.Context(), &project)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", result.StrategyName)
		fmt.Println(strings.Repeat("=", len(result.StrategyName)))
		for _, bl := range result.Breakdown {
			if bl.Note != "" {
				fmt.Printf("  %-32s %14s  (%s)\n", bl.Label+":", "$"+bl.Amount.StringFixed(2), bl.Note)
			} else {
				fmt.Printf("  %-32s %14s\n", bl.Label+":", "$"+bl.Amount.StringFixed(2))
			}
		}
		fmt.Printf("  %-32s %14s\n", "Total Tax:", "$"+result.TotalTax.StringFixed(2))
		fmt.Printf("  %-32s %14s\n", "Net Income (Group):", "$"+result.NetIncomeGroup.StringFixed(2))
		fmt.Printf("  %-32s %14s\n", "Net Income (Per Person):", "$"+result.NetIncomePerPerson.StringFixed(2))
		fmt.Printf("  %-32s %13s%%\n", "Effective Rate:", result.EffectiveRate.Mul(decimal.NewFromInt(100)).StringFixed(2))
		if result.Note != "" {
			fmt.Printf("  Note: %s\n", result.Note)
		}
		return nil
	},
}

var bracketsCmd = &cobra.Command{
	Use:   "brackets",
	Short: "Show the bracket table for a country",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		country, _ := cmd.Flags().GetString("country")
		taxTypeStr, _ := cmd.Flags().GetString("tax-type")
		taxType := domain.TaxTypeIndividual
		if taxTypeStr != "" {
			taxType, err = domain.ParseTaxType(taxTypeStr)
			if err != nil {
				return err
			}
		}

		brackets, err := e.reg.Brackets(cmd.Context(), country, taxType)
		if err != nil {
			return err
		}

		fmt.Printf("%s %s tax brackets\n", country, taxType)
		fmt.Println(strings.Repeat("-", 38))
		lower := decimal.Zero
		for _, b := range brackets {
			rate := b.Rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
			if b.Unbounded {
				fmt.Printf("  over %-18s %8s\n", "$"+lower.StringFixed(0), rate)
			} else {
				fmt.Printf("  $%s - $%-12s %8s\n", lower.StringFixed(0), b.IncomeLimit.StringFixed(0), rate)
				lower = b.IncomeLimit
			}
		}
		return nil
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast revenue from saved comparison history",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		if dbPath == "" {
			return fmt.Errorf("--db is required: forecasting needs saved history")
		}

		st, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		totals, err := st.MonthlyTotals(cmd.Context())
		if err != nil {
			return err
		}

		history := make([]forecast.Point, len(totals))
		for i, t := range totals {
			history[i] = forecast.Point{Month: t.Month, Revenue: t.Revenue}
		}

		months, _ := cmd.Flags().GetInt("months")
		fc, err := forecast.Revenue(history, months)
		if err != nil {
			return err
		}

		fmt.Println("REVENUE FORECAST")
		fmt.Println("================")
		fmt.Printf("Months of history: %d (%s data)\n", len(history), fc.DataQuality)
		fmt.Printf("Trend:             %s\n", fc.Trend)
		fmt.Printf("Model:             %s\n", fc.ModelType)
		fmt.Printf("Confidence:        %s (%s)\n", fc.Confidence, fc.ConfidenceDesc)
		fmt.Printf("Average revenue:   $%.2f/month\n", fc.HistoricalAvg)
		fmt.Printf("Overall growth:    %+.1f%%\n", fc.GrowthRate)
		fmt.Println()
		for _, p := range fc.Predictions {
			fmt.Printf("  %-14s $%12.2f   ($%.0f - $%.0f)\n", p.Month, p.Revenue, p.LowerBound, p.UpperBound)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a detailed comparison report",
	Long: `Run a comparison and render a long-form report.

Examples:
  moneysplit report --revenue 100000 --country US --format console
  moneysplit report --revenue 100000 --country US --format pdf
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		project, err := projectFromFlags(cmd)
		if err != nil {
			return err
		}

		result, err := e.cmp.Compare(cmd.Context(), &project)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		return output.GenerateReport(project, result, format)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; environment variables win regardless.
		_ = godotenv.Load()

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = os.Getenv("MONEYSPLIT_ADDR")
		}
		if addr == "" {
			addr = ":8080"
		}

		srv := server.New(e.calc, e.cmp, e.reg, e.store, logger)
		return srv.ListenAndServe(addr)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		return tui.Run(e.cmp)
	},
}

func init() {
	addProjectFlags(compareCmd)
	compareCmd.Flags().StringP("format", "f", "table", "Output format (table, csv, json)")
	compareCmd.Flags().Bool("include-reinvest", false, "Rank Business + Reinvest alongside cash strategies")

	addProjectFlags(calculateCmd)
	calculateCmd.Flags().String("tax-type", "", "Tax type preference (Individual, Business)")

	bracketsCmd.Flags().StringP("country", "c", "US", "Country or table name (US, Spain, UK, Canada, US-CA, ...)")
	bracketsCmd.Flags().String("tax-type", "Individual", "Tax type (Individual, Business)")
	bracketsCmd.Flags().String("rules", "", "Path to a YAML rules file with table overrides")
	bracketsCmd.Flags().String("db", "", "SQLite database path")
	bracketsCmd.Flags().Bool("debug", false, "Enable debug output")

	forecastCmd.Flags().String("db", "", "SQLite database path (required)")
	forecastCmd.Flags().IntP("months", "m", 3, "Months to forecast")

	addProjectFlags(reportCmd)
	reportCmd.Flags().StringP("format", "f", "console", "Report format (console, html, pdf)")
	reportCmd.Flags().Bool("include-reinvest", false, "Rank Business + Reinvest alongside cash strategies")

	addProjectFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default :8080, or MONEYSPLIT_ADDR)")
	serveCmd.Flags().Bool("include-reinvest", false, "Rank Business + Reinvest alongside cash strategies")

	addProjectFlags(tuiCmd)
	tuiCmd.Flags().Bool("include-reinvest", false, "Rank Business + Reinvest alongside cash strategies")

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(bracketsCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
