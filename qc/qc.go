// Package qc holds QC result records: reading the measured concentrations of
// a source plate and describing the calculated concentrations of the plate
// made from it.
package qc

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"platecalc/binning"
	"platecalc/plate"
)

const (
	KeyConcentration = "concentration"
	UnitsNgPerUl     = "ng/ul"
	// AssayCalculated is the assay type of results derived from a transfer
	// rather than measured.
	AssayCalculated = "Calculated"
)

var ErrMissingConcentration = errors.New("missing concentration")

type Result struct {
	UUID         string          `yaml:"uuid,omitempty" json:"uuid,omitempty"`
	WellLocation string          `yaml:"well" json:"well"`
	Key          string          `yaml:"key" json:"key"`
	Value        decimal.Decimal `yaml:"value" json:"value"`
	Units        string          `yaml:"units" json:"units"`
	CV           decimal.Decimal `yaml:"cv" json:"cv"`
	AssayType    string          `yaml:"assay_type" json:"assay_type"`
	AssayVersion string          `yaml:"assay_version" json:"assay_version"`
	CreatedAt    time.Time       `yaml:"created_at,omitempty" json:"created_at,omitempty"`
}

// LatestConcentrations picks, for every well, the value of its most recent
// concentration result. Results with other keys are ignored. On equal
// timestamps the later result in the slice wins.
func LatestConcentrations(results []Result) map[string]decimal.Decimal {
	latest := make(map[string]Result)
	for _, r := range results {
		if !strings.EqualFold(r.Key, KeyConcentration) {
			continue
		}
		well := strings.ToUpper(strings.TrimSpace(r.WellLocation))
		if prev, ok := latest[well]; ok && r.CreatedAt.Before(prev.CreatedAt) {
			continue
		}
		latest[well] = r
	}
	ret := make(map[string]decimal.Decimal, len(latest))
	for well, r := range latest {
		ret[well] = r.Value
	}
	return ret
}

// MissingConcentrations lists, in column-major order, the wells that have
// no concentration.
func MissingConcentrations(wells []string, concentrations map[string]decimal.Decimal) []string {
	var missing []string
	for _, w := range wells {
		if _, ok := concentrations[strings.ToUpper(w)]; !ok {
			missing = append(missing, strings.ToUpper(w))
		}
	}
	slices.SortFunc(missing, plate.CompareColumnMajor)
	return missing
}

// RequireConcentrations fails when any of the wells has no concentration.
func RequireConcentrations(wells []string, concentrations map[string]decimal.Decimal) error {
	if missing := MissingConcentrations(wells, concentrations); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConcentration, strings.Join(missing, ", "))
	}
	return nil
}

// DestinationResults builds one calculated concentration result per
// destination well, in column-major order of the destination.
func DestinationResults(childUUID, assayType, assayVersion string, transfers binning.Transfers, now time.Time) []Result {
	ret := make([]Result, 0, len(transfers))
	for _, t := range transfers {
		ret = append(ret, Result{
			UUID:         childUUID,
			WellLocation: t.Destination,
			Key:          KeyConcentration,
			Value:        t.Concentration,
			Units:        UnitsNgPerUl,
			CV:           decimal.Zero,
			AssayType:    assayType,
			AssayVersion: assayVersion,
			CreatedAt:    now,
		})
	}
	slices.SortFunc(ret, func(a, b Result) int {
		return plate.CompareColumnMajor(a.WellLocation, b.WellLocation)
	})
	return ret
}
