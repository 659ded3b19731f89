// Command pricer is the CLI entry point for the annuity pricing and
// statutory reserving engine (spec.md §6), grounded on the pack's
// `NimbleMarkets-dbn-go` multi-subcommand Cobra/pflag CLI shape: a root
// command with one persistent config/logging setup and one subcommand per
// engine call (price, reserve, validate, scenario, batch, serve).
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/aristath/annuity-pricer/internal/batch"
	"github.com/aristath/annuity-pricer/internal/config"
	"github.com/aristath/annuity-pricer/internal/glwb"
	"github.com/aristath/annuity-pricer/internal/gwb"
	"github.com/aristath/annuity-pricer/internal/market"
	"github.com/aristath/annuity-pricer/internal/obslog"
	"github.com/aristath/annuity-pricer/internal/pricing"
	"github.com/aristath/annuity-pricer/internal/product"
	"github.com/aristath/annuity-pricer/internal/scenario"
	"github.com/aristath/annuity-pricer/internal/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	devMode  bool
	cfg      config.Config
	log      zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pricer",
	Short: "pricer prices and reserves U.S. retail annuities (MYGA/FIA/RILA, GLWB riders)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(config.Overrides{
			LogLevel: flagOrNil(logLevel),
			DevMode:  boolFlagOrNil(cmd, "dev"),
		})
		if err != nil {
			return err
		}
		cfg = loaded
		log = obslog.New(obslog.Config{Level: cfg.LogLevel})
		return nil
	},
}

func flagOrNil(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func boolFlagOrNil(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "relax validation HALTs to WARNs for local iteration")

	rootCmd.AddCommand(priceCmd, reserveCmd, validateCmd, scenarioCmd, batchCmd, serveCmd)
}

// --- price ---

var (
	priceKind         string
	priceSpot         float64
	priceRate         float64
	priceDividend     float64
	priceVol          float64
	pricePremium      float64
	priceSeed         uint64
	priceNumPaths     int
	priceTermYears    int
	priceFixedRate    float64
	priceGuaranteeYrs int
	priceCapRate      float64
	priceParticipate  float64
	priceSpread       float64
	priceTrigger      float64
	priceProtection   string
	priceProtectRate  float64
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "price a single MYGA, FIA, or RILA product",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := market.New(priceSpot, priceRate, priceDividend, priceVol)
		if err != nil {
			return err
		}

		p, err := buildProductFromFlags()
		if err != nil {
			return err
		}

		result, err := pricing.Price(pricing.Request{
			Product:  p,
			Market:   m,
			Premium:  pricePremium,
			Seed:     priceSeed,
			NumPaths: priceNumPaths,
		})
		if err != nil {
			return err
		}

		log.Info().Str("kind", priceKind).Msg("priced product")
		return printJSON(result)
	},
}

func buildProductFromFlags() (product.Product, error) {
	switch priceKind {
	case "MYGA":
		return product.Product{Kind: product.KindMYGA, MYGA: product.MYGA{FixedRate: priceFixedRate, GuaranteeDurationYrs: priceGuaranteeYrs}}, nil
	case "FIA":
		f := product.FIA{TermYears: priceTermYears}
		switch {
		case rateFlagSet(priceCapRate):
			f.CapRate = &priceCapRate
		case rateFlagSet(priceParticipate):
			f.ParticipationRate = &priceParticipate
		case rateFlagSet(priceSpread):
			f.SpreadRate = &priceSpread
		case rateFlagSet(priceTrigger):
			f.TriggerRate = &priceTrigger
		}
		return product.Product{Kind: product.KindFIA, FIA: f}, nil
	case "RILA":
		protKind, err := product.DeriveProtectionKind(priceProtection)
		if err != nil {
			return product.Product{}, err
		}
		r := product.RILA{Protection: product.Protection{Kind: protKind, Rate: priceProtectRate}, TermYears: priceTermYears}
		if rateFlagSet(priceCapRate) {
			r.CapRate = &priceCapRate
		}
		return product.Product{Kind: product.KindRILA, RILA: r}, nil
	default:
		return product.Product{}, fmt.Errorf("pricer: unknown --kind %q, want MYGA, FIA, or RILA", priceKind)
	}
}

// rateFlagSet treats an unset rate flag as its zero value; rate fields are
// never legitimately exactly 0 in the product families this CLI supports.
func rateFlagSet(v float64) bool { return v != 0 }

func init() {
	priceCmd.Flags().StringVar(&priceKind, "kind", "", "product kind: MYGA, FIA, or RILA (required)")
	priceCmd.Flags().Float64Var(&priceSpot, "spot", 100, "market spot level")
	priceCmd.Flags().Float64Var(&priceRate, "risk-free-rate", 0.04, "risk-free rate")
	priceCmd.Flags().Float64Var(&priceDividend, "dividend-yield", 0, "dividend yield")
	priceCmd.Flags().Float64Var(&priceVol, "volatility", 0.18, "equity volatility")
	priceCmd.Flags().Float64Var(&pricePremium, "premium", 100, "premium")
	priceCmd.Flags().Uint64Var(&priceSeed, "seed", 42, "Monte Carlo seed")
	priceCmd.Flags().IntVar(&priceNumPaths, "num-paths", 100_000, "Monte Carlo path count")
	priceCmd.Flags().IntVar(&priceTermYears, "term-years", 1, "FIA/RILA crediting term")
	priceCmd.Flags().Float64Var(&priceFixedRate, "fixed-rate", 0, "MYGA fixed credited rate")
	priceCmd.Flags().IntVar(&priceGuaranteeYrs, "guarantee-years", 0, "MYGA guarantee duration")
	priceCmd.Flags().Float64Var(&priceCapRate, "cap-rate", 0, "FIA/RILA cap rate")
	priceCmd.Flags().Float64Var(&priceParticipate, "participation-rate", 0, "FIA participation rate")
	priceCmd.Flags().Float64Var(&priceSpread, "spread-rate", 0, "FIA spread rate")
	priceCmd.Flags().Float64Var(&priceTrigger, "trigger-rate", 0, "FIA trigger rate")
	priceCmd.Flags().StringVar(&priceProtection, "protection", "up to", `RILA downside protection modifier: "up to" (buffer) or "after" (floor)`)
	priceCmd.Flags().Float64Var(&priceProtectRate, "protection-rate", 0.10, "RILA protection rate")
}

// --- reserve ---

var (
	reserveScenarios int
	reserveYears     int
	reserveSeed      uint64
	reserveBaseRate  float64
	reservePremium   float64
	reserveAge       int
	reserveVol       float64
)

var reserveCmd = &cobra.Command{
	Use:   "reserve",
	Short: "compute a CTE70 statutory reserve for a GLWB policy across an AG43 scenario bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		policy := glwb.Inputs{
			GWBConfig: gwb.Config{
				RollupType: gwb.RollupCompound, RollupRate: 0.05, RollupCapYears: 10,
				WithdrawalRate: 0.05, FeeRate: 0.01, FeeBasis: gwb.FeeBasisAccountValue, Premium: reservePremium,
			},
			Premium: reservePremium, Age: reserveAge, Volatility: reserveVol,
		}

		result, err := pricing.Reserve(pricing.ReserveRequest{
			Policy: policy,
			ScenarioCfg: scenario.GenerateConfig{
				NumScenarios: reserveScenarios, ProjectionYears: reserveYears, Seed: reserveSeed,
				InitialRate: reserveBaseRate, RateParams: scenario.DefaultVasicekParams(), EquityParams: scenario.DefaultEquityParams(),
				Correlation: -0.2,
			},
		})
		if err != nil {
			return err
		}

		log.Info().Int("numScenarios", reserveScenarios).Msg("computed reserve")
		return printJSON(result)
	},
}

func init() {
	reserveCmd.Flags().IntVar(&reserveScenarios, "num-scenarios", 1000, "AG43 scenario bundle size")
	reserveCmd.Flags().IntVar(&reserveYears, "projection-years", 30, "projection horizon in years")
	reserveCmd.Flags().Uint64Var(&reserveSeed, "seed", 42, "scenario generator seed")
	reserveCmd.Flags().Float64Var(&reserveBaseRate, "base-rate", 0.04, "initial short rate")
	reserveCmd.Flags().Float64Var(&reservePremium, "premium", 100, "GLWB policy premium")
	reserveCmd.Flags().IntVar(&reserveAge, "age", 65, "policyholder issue age")
	reserveCmd.Flags().Float64Var(&reserveVol, "volatility", 0.18, "equity volatility")
}

// --- validate ---

var (
	validatePV       float64
	validatePremium  float64
	validateDuration float64
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "run the standard gate set against a premium/PV/duration triple",
	RunE: func(cmd *cobra.Command, args []string) error {
		report := pricing.Validate(pricing.PricingResult{}, validatePremium, validatePV, validateDuration)
		if cfg.DevMode {
			report = report.Relaxed()
		}
		return printJSON(report)
	},
}

func init() {
	validateCmd.Flags().Float64Var(&validatePV, "pv", 0, "present value to validate")
	validateCmd.Flags().Float64Var(&validatePremium, "premium", 100, "premium")
	validateCmd.Flags().Float64Var(&validateDuration, "duration", 1, "contract duration in years")
}

// --- scenario ---

var (
	scenNumScenarios int
	scenYears        int
	scenSeed         uint64
	scenBaseRate     float64
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "generate an AG43 economic scenario bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := scenario.Generate(scenario.GenerateConfig{
			NumScenarios: scenNumScenarios, ProjectionYears: scenYears, Seed: scenSeed,
			InitialRate: scenBaseRate, RateParams: scenario.DefaultVasicekParams(), EquityParams: scenario.DefaultEquityParams(),
			Correlation: -0.2,
		})
		if err != nil {
			return err
		}
		stats := scenario.CalculateStatistics(bundle)
		log.Info().Str("bundleId", bundle.BundleID.String()).Msg("generated scenario bundle")
		return printJSON(stats)
	},
}

func init() {
	scenarioCmd.Flags().IntVar(&scenNumScenarios, "num-scenarios", 1000, "scenario bundle size")
	scenarioCmd.Flags().IntVar(&scenYears, "projection-years", 30, "projection horizon in years")
	scenarioCmd.Flags().Uint64Var(&scenSeed, "seed", 42, "generator seed")
	scenarioCmd.Flags().Float64Var(&scenBaseRate, "base-rate", 0.04, "initial short rate")
}

// --- batch ---

var (
	batchFile     string
	batchSpot     float64
	batchRate     float64
	batchDividend float64
	batchVol      float64
	batchSeed     uint64
	batchNumPaths int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "price and validate every product in a YAML product file (spec.md §7)",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := batch.LoadProductFile(batchFile)
		if err != nil {
			os.Exit(batch.ExitBadInput)
			return err
		}
		m, err := market.New(batchSpot, batchRate, batchDividend, batchVol)
		if err != nil {
			os.Exit(batch.ExitBadInput)
			return err
		}

		gwbCfg := gwb.Config{RollupType: gwb.RollupCompound, RollupRate: 0.05, RollupCapYears: 10, WithdrawalRate: 0.05, FeeRate: 0.01, FeeBasis: gwb.FeeBasisAccountValue}
		result := batch.Run(file, m, gwbCfg, batchSeed, batchNumPaths, cfg.DevMode)

		fmt.Print(batch.Summary(result))
		os.Exit(result.ExitCode())
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "path to the YAML product file (required)")
	batchCmd.Flags().Float64Var(&batchSpot, "spot", 100, "market spot level")
	batchCmd.Flags().Float64Var(&batchRate, "risk-free-rate", 0.04, "risk-free rate")
	batchCmd.Flags().Float64Var(&batchDividend, "dividend-yield", 0, "dividend yield")
	batchCmd.Flags().Float64Var(&batchVol, "volatility", 0.18, "equity volatility")
	batchCmd.Flags().Uint64Var(&batchSeed, "seed", 42, "Monte Carlo seed")
	batchCmd.Flags().IntVar(&batchNumPaths, "num-paths", 10_000, "Monte Carlo path count per product")
	_ = batchCmd.MarkFlagRequired("file")
}

// --- serve ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the HTTP pricing/reserving/validation surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := servePort
		if !cmd.Flags().Changed("port") {
			port = cfg.HTTPPort
		}
		addr := fmt.Sprintf(":%d", port)
		log.Info().Str("addr", addr).Msg("starting pricer HTTP server")
		srv := server.New(log, cfg.DevMode)
		return http.ListenAndServe(addr, srv.Routes())
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP listen port")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
