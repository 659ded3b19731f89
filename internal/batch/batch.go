// Package batch implements the YAML-driven batch driver (spec.md §6/§7): a
// product file is priced and validated product-by-product, aggregating
// per-product failures into a result column rather than aborting the batch,
// grounded on the teacher pack's `ChoSanghyuk-blackholedex/configs/config.go`
// YAML-struct-plus-converter shape.
package batch

import (
	"fmt"
	"os"

	"github.com/aristath/annuity-pricer/internal/engerr"
	"github.com/aristath/annuity-pricer/internal/gwb"
	"github.com/aristath/annuity-pricer/internal/market"
	"github.com/aristath/annuity-pricer/internal/pricing"
	"github.com/aristath/annuity-pricer/internal/product"
	"github.com/aristath/annuity-pricer/internal/validate"
	"gopkg.in/yaml.v3"
)

// ExitBadInput, ExitHalt, and ExitPass are the process exit codes spec.md §6
// assigns to a batch run: 0 = every product passed validation, 1 = at least
// one product HALTed, 2 = at least one product record could not be converted,
// validated, or priced.
const (
	ExitPass     = 0
	ExitHalt     = 1
	ExitBadInput = 2
)

// ProductYAMLData is a single product record's on-disk shape. It also
// carries json tags so internal/server can decode the identical shape from
// an HTTP request body without a second mapping.
type ProductYAMLData struct {
	Company string  `yaml:"company" json:"company"`
	Name    string  `yaml:"name" json:"name"`
	Status  string  `yaml:"status" json:"status"`
	Kind    string  `yaml:"kind" json:"kind"`
	Premium float64 `yaml:"premium" json:"premium"`

	FixedRate            float64 `yaml:"fixedRate,omitempty" json:"fixedRate,omitempty"`
	GuaranteeDurationYrs int     `yaml:"guaranteeDurationYears,omitempty" json:"guaranteeDurationYears,omitempty"`

	CapRate           *float64 `yaml:"capRate,omitempty" json:"capRate,omitempty"`
	ParticipationRate *float64 `yaml:"participationRate,omitempty" json:"participationRate,omitempty"`
	SpreadRate        *float64 `yaml:"spreadRate,omitempty" json:"spreadRate,omitempty"`
	TriggerRate       *float64 `yaml:"triggerRate,omitempty" json:"triggerRate,omitempty"`
	Index             string   `yaml:"index,omitempty" json:"index,omitempty"`
	IndexingMethod    string   `yaml:"indexingMethod,omitempty" json:"indexingMethod,omitempty"`
	TermYears         int      `yaml:"termYears,omitempty" json:"termYears,omitempty"`

	ProtectionModifier string  `yaml:"protectionModifier,omitempty" json:"protectionModifier,omitempty"`
	ProtectionRate     float64 `yaml:"protectionRate,omitempty" json:"protectionRate,omitempty"`
}

// ToProduct converts a YAML record into a product.Product, deriving the
// RILA protection kind from its textual modifier (spec.md §3) when present.
func (d ProductYAMLData) ToProduct() (product.Product, error) {
	header := product.Header{Company: d.Company, Name: d.Name, Status: d.Status}

	switch d.Kind {
	case "MYGA":
		return product.Product{
			Header: header,
			Kind:   product.KindMYGA,
			MYGA:   product.MYGA{FixedRate: d.FixedRate, GuaranteeDurationYrs: d.GuaranteeDurationYrs},
		}, nil
	case "FIA":
		return product.Product{
			Header: header,
			Kind:   product.KindFIA,
			FIA: product.FIA{
				CapRate: d.CapRate, ParticipationRate: d.ParticipationRate,
				SpreadRate: d.SpreadRate, TriggerRate: d.TriggerRate,
				Index: d.Index, IndexingMethod: d.IndexingMethod, TermYears: d.TermYears,
			},
		}, nil
	case "RILA":
		protKind, err := product.DeriveProtectionKind(d.ProtectionModifier)
		if err != nil {
			return product.Product{}, err
		}
		return product.Product{
			Header: header,
			Kind:   product.KindRILA,
			RILA: product.RILA{
				Protection: product.Protection{Kind: protKind, Rate: d.ProtectionRate},
				CapRate:    d.CapRate, TermYears: d.TermYears, Index: d.Index,
			},
		}, nil
	default:
		return product.Product{}, &engerr.DataError{Component: "batch", Invariant: `kind must be "MYGA", "FIA", or "RILA"`, Value: d.Kind}
	}
}

// ProductFile is the top-level on-disk batch document.
type ProductFile struct {
	Products []ProductYAMLData `yaml:"products"`
}

// LoadProductFile reads and parses a batch product file.
func LoadProductFile(path string) (ProductFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProductFile{}, &engerr.DataError{Component: "batch", Invariant: "product file must be readable", Value: err.Error()}
	}
	var file ProductFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ProductFile{}, &engerr.DataError{Component: "batch", Invariant: "product file must be valid YAML", Value: err.Error()}
	}
	return file, nil
}

// ProductOutcome is one product's pricing+validation result, or the error
// that stopped processing that single product (never the whole batch).
type ProductOutcome struct {
	Name   string
	Error  error
	Result pricing.PricingResult
	Report validate.Report
}

// Result is the full batch run outcome.
type Result struct {
	Outcomes []ProductOutcome
}

// ExitCode derives the batch-level exit code: any per-product error
// dominates any HALT, which dominates a pass, regardless of product order,
// matching spec.md §6's exit code contract.
func (r Result) ExitCode() int {
	code := ExitPass
	for _, o := range r.Outcomes {
		if o.Error != nil {
			return ExitBadInput
		}
		if o.Report.OverallStatus() == validate.StatusHalt {
			code = ExitHalt
		}
	}
	return code
}

// Run prices and validates every product in the file, recording each
// product's outcome independently: a malformed or rejected product never
// stops the rest of the batch from running (spec.md §7).
func Run(file ProductFile, m market.Params, gwbCfg gwb.Config, seed uint64, numPaths int, devMode bool) Result {
	outcomes := make([]ProductOutcome, 0, len(file.Products))

	for _, record := range file.Products {
		name := record.Name
		p, err := record.ToProduct()
		if err != nil {
			outcomes = append(outcomes, ProductOutcome{Name: name, Error: err})
			continue
		}
		if err := product.Validate(p); err != nil {
			outcomes = append(outcomes, ProductOutcome{Name: name, Error: err})
			continue
		}

		req := pricing.Request{
			Product:   p,
			Market:    m,
			Premium:   record.Premium,
			Seed:      seed,
			NumPaths:  numPaths,
			GWBConfig: gwbCfg,
		}

		result, err := pricing.Price(req)
		if err != nil {
			outcomes = append(outcomes, ProductOutcome{Name: name, Error: err})
			continue
		}

		pv, duration := pricing.PVAndDurationFor(result, record.Premium)
		report := pricing.Validate(result, record.Premium, pv, duration)
		if devMode {
			report = report.Relaxed()
		}

		outcomes = append(outcomes, ProductOutcome{Name: name, Result: result, Report: report})
	}

	return Result{Outcomes: outcomes}
}

// Summary renders a one-line-per-product human-readable report, matching the
// teacher's plain-fmt CLI output style (no table library wired: spec.md's
// batch surface is a scriptable exit code plus a terse log, not a TUI).
func Summary(r Result) string {
	out := ""
	for _, o := range r.Outcomes {
		if o.Error != nil {
			out += fmt.Sprintf("%s: ERROR %v\n", o.Name, o.Error)
			continue
		}
		out += fmt.Sprintf("%s: %s\n", o.Name, o.Report.OverallStatus())
	}
	return out
}
