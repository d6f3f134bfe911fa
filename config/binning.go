package config

import (
	"fmt"

	"github.com/shopspring/decimal"

	"platecalc/binning"
)

type BinConfig struct {
	Min       *decimal.Decimal `yaml:"min,omitempty"`
	Max       *decimal.Decimal `yaml:"max,omitempty"`
	Colour    *int             `yaml:"colour"`
	PCRCycles *int             `yaml:"pcr_cycles"`
}

type ConcentrationBinningConfig struct {
	SourceVolume  *decimal.Decimal `yaml:"source_volume"`
	DiluentVolume *decimal.Decimal `yaml:"diluent_volume"`
	Bins          []BinConfig      `yaml:"bins"`
}

type NormalisedBinningConfig struct {
	TargetAmount        *decimal.Decimal `yaml:"target_amount_ng"`
	TargetVolume        *decimal.Decimal `yaml:"target_volume"`
	MinimumSourceVolume *decimal.Decimal `yaml:"minimum_source_volume"`
	Bins                []BinConfig      `yaml:"bins"`
}

type FixedNormalisationConfig struct {
	SourceVolume  *decimal.Decimal `yaml:"source_volume"`
	DiluentVolume *decimal.Decimal `yaml:"diluent_volume"`
}

// Bins converts the bin list, in order. Every bin needs a colour and a
// number of PCR cycles; either bound may be left out.
func Bins(cfg []BinConfig) (binning.Bins, error) {
	bins := make(binning.Bins, 0, len(cfg))
	for i, b := range cfg {
		if b.Colour == nil {
			return nil, fmt.Errorf("%w: bin %d has no colour", ErrInvalid, i+1)
		}
		if b.PCRCycles == nil {
			return nil, fmt.Errorf("%w: bin %d has no pcr_cycles", ErrInvalid, i+1)
		}
		bin := binning.Bin{Colour: *b.Colour, PCRCycles: *b.PCRCycles}
		if b.Min != nil {
			bin.Min = decimal.NewNullDecimal(*b.Min)
		}
		if b.Max != nil {
			bin.Max = decimal.NewNullDecimal(*b.Max)
		}
		if bin.Min.Valid && bin.Max.Valid && !bin.Min.Decimal.LessThan(bin.Max.Decimal) {
			return nil, fmt.Errorf("%w: bin %d is empty: %s", ErrInvalid, i+1, bin)
		}
		bins = append(bins, bin)
	}
	return bins, nil
}

func required(name string, v *decimal.Decimal) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s is required", ErrInvalid, name)
	}
	return *v, nil
}

func (c *ConcentrationBinningConfig) Calculator() (*binning.ConcentrationBinning, error) {
	src, err := required("source_volume", c.SourceVolume)
	if err != nil {
		return nil, err
	}
	dil, err := required("diluent_volume", c.DiluentVolume)
	if err != nil {
		return nil, err
	}
	bins, err := Bins(c.Bins)
	if err != nil {
		return nil, err
	}
	return binning.NewConcentrationBinning(binning.ConcentrationConfig{
		SourceVolume:  src,
		DiluentVolume: dil,
		Bins:          bins,
	})
}

func (c *NormalisedBinningConfig) Calculator() (*binning.NormalisedBinning, error) {
	amount, err := required("target_amount_ng", c.TargetAmount)
	if err != nil {
		return nil, err
	}
	vol, err := required("target_volume", c.TargetVolume)
	if err != nil {
		return nil, err
	}
	minimum := decimal.Zero
	if c.MinimumSourceVolume != nil {
		minimum = *c.MinimumSourceVolume
	}
	bins, err := Bins(c.Bins)
	if err != nil {
		return nil, err
	}
	return binning.NewNormalisedBinning(binning.NormalisedConfig{
		TargetAmount:        amount,
		TargetVolume:        vol,
		MinimumSourceVolume: minimum,
		Bins:                bins,
	})
}

func (c *FixedNormalisationConfig) Calculator() (*binning.FixedNormalisation, error) {
	src, err := required("source_volume", c.SourceVolume)
	if err != nil {
		return nil, err
	}
	dil, err := required("diluent_volume", c.DiluentVolume)
	if err != nil {
		return nil, err
	}
	return binning.NewFixedNormalisation(binning.FixedConfig{SourceVolume: src, DiluentVolume: dil})
}

// Calculator builds the purpose's calculation.
func (p PurposeConfig) Calculator() (binning.Calculator, error) {
	n := 0
	for _, set := range []bool{p.ConcentrationBinning != nil, p.NormalisedBinning != nil, p.FixedNormalisation != nil} {
		if set {
			n++
		}
	}
	switch {
	case n == 0:
		return nil, ErrNoCalculation
	case n > 1:
		return nil, ErrAmbiguous
	case p.ConcentrationBinning != nil:
		c, err := p.ConcentrationBinning.Calculator()
		if err != nil {
			return nil, fmt.Errorf("concentration_binning: %w", err)
		}
		return c, nil
	case p.NormalisedBinning != nil:
		c, err := p.NormalisedBinning.Calculator()
		if err != nil {
			return nil, fmt.Errorf("normalised_binning: %w", err)
		}
		return c, nil
	default:
		c, err := p.FixedNormalisation.Calculator()
		if err != nil {
			return nil, fmt.Errorf("fixed_normalisation: %w", err)
		}
		return c, nil
	}
}

func decimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func intPtr(i int) *int {
	return &i
}
