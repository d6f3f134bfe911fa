package binning

import (
	"fmt"

	"github.com/shopspring/decimal"

	"platecalc/plate"
)

type FixedConfig struct {
	SourceVolume  decimal.Decimal
	DiluentVolume decimal.Decimal
}

// FixedNormalisation stamps every well across unchanged, diluting each by
// the same fixed source and diluent volumes.
type FixedNormalisation struct {
	cfg FixedConfig
}

var _ Calculator = (*FixedNormalisation)(nil)

func NewFixedNormalisation(cfg FixedConfig) (*FixedNormalisation, error) {
	if !cfg.SourceVolume.IsPositive() {
		return nil, fmt.Errorf("%w: source volume %s", ErrInvalidVolume, cfg.SourceVolume)
	}
	if cfg.DiluentVolume.IsNegative() {
		return nil, fmt.Errorf("%w: diluent volume %s", ErrInvalidVolume, cfg.DiluentVolume)
	}
	return &FixedNormalisation{cfg: cfg}, nil
}

func (f *FixedNormalisation) SourceVolume() decimal.Decimal {
	return f.cfg.SourceVolume
}

func (f *FixedNormalisation) AssayVersion() string {
	return "Fixed Normalisation"
}

func (f *FixedNormalisation) Transfers(concentrations map[string]decimal.Decimal, dest plate.Geometry) (Transfers, error) {
	if len(concentrations) == 0 {
		return nil, ErrNoWells
	}
	total := f.cfg.SourceVolume.Add(f.cfg.DiluentVolume)
	ret := make(Transfers, len(concentrations))
	for well, conc := range concentrations {
		if !dest.Contains(well) {
			return nil, fmt.Errorf("%w: %s does not exist on %s", ErrPlateFull, well, dest)
		}
		ret[well] = Transfer{
			Destination:   well,
			Concentration: conc.Mul(f.cfg.SourceVolume).Div(total).Round(roundPlaces),
			Volume:        decimal.NewNullDecimal(f.cfg.SourceVolume),
		}
	}
	return ret, nil
}
