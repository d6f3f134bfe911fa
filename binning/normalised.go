package binning

import (
	"fmt"

	"github.com/shopspring/decimal"

	"platecalc/plate"
)

type NormalisedConfig struct {
	TargetAmount        decimal.Decimal
	TargetVolume        decimal.Decimal
	MinimumSourceVolume decimal.Decimal
	Bins                Bins
}

// Normalisation is how one source well is diluted towards the target amount.
// All values are rounded to three places.
type Normalisation struct {
	SourceVolume   decimal.Decimal
	DiluentVolume  decimal.Decimal
	AmountInTarget decimal.Decimal
	Concentration  decimal.Decimal
}

// NormalisedBinning takes enough of each source well to reach the target
// amount in the target volume, then bins the wells by the amount actually
// reached.
type NormalisedBinning struct {
	cfg NormalisedConfig
}

var _ Calculator = (*NormalisedBinning)(nil)

func NewNormalisedBinning(cfg NormalisedConfig) (*NormalisedBinning, error) {
	if len(cfg.Bins) == 0 {
		return nil, ErrNoBins
	}
	if !cfg.TargetVolume.IsPositive() {
		return nil, fmt.Errorf("%w: target volume %s", ErrInvalidVolume, cfg.TargetVolume)
	}
	if !cfg.TargetAmount.IsPositive() {
		return nil, fmt.Errorf("%w: target amount %s", ErrInvalidVolume, cfg.TargetAmount)
	}
	if cfg.MinimumSourceVolume.IsNegative() || cfg.MinimumSourceVolume.GreaterThan(cfg.TargetVolume) {
		return nil, fmt.Errorf("%w: minimum source volume %s", ErrInvalidVolume, cfg.MinimumSourceVolume)
	}
	return &NormalisedBinning{cfg: cfg}, nil
}

func (n *NormalisedBinning) SourceVolume() decimal.Decimal {
	return n.cfg.TargetVolume
}

func (n *NormalisedBinning) AssayVersion() string {
	return "Normalised Binning"
}

// SourceVolumeRequired is the unrounded volume needed to reach the target
// amount, clamped to [minimum source volume, target volume]. A zero or
// negative concentration takes the whole target volume.
func (n *NormalisedBinning) SourceVolumeRequired(conc decimal.Decimal) decimal.Decimal {
	if !conc.IsPositive() {
		return n.cfg.TargetVolume
	}
	vol := n.cfg.TargetAmount.Div(conc)
	return decimal.Min(decimal.Max(vol, n.cfg.MinimumSourceVolume), n.cfg.TargetVolume)
}

func (n *NormalisedBinning) Normalise(conc decimal.Decimal) Normalisation {
	src := n.SourceVolumeRequired(conc)
	amount := conc.Mul(src)
	return Normalisation{
		SourceVolume:   src.Round(roundPlaces),
		DiluentVolume:  n.cfg.TargetVolume.Sub(src).Round(roundPlaces),
		AmountInTarget: amount.Round(roundPlaces),
		Concentration:  amount.Div(n.cfg.TargetVolume).Round(roundPlaces),
	}
}

func (n *NormalisedBinning) NormalisationDetails(concentrations map[string]decimal.Decimal) map[string]Normalisation {
	ret := make(map[string]Normalisation, len(concentrations))
	for well, conc := range concentrations {
		ret[well] = n.Normalise(conc)
	}
	return ret
}

// ComputeTransfers bins the normalised wells by amount in target and lays
// them out on the destination. Each transfer carries its source volume.
func (n *NormalisedBinning) ComputeTransfers(details map[string]Normalisation, dest plate.Geometry) (Transfers, error) {
	amounts := make(map[string]decimal.Decimal, len(details))
	for well, d := range details {
		amounts[well] = d.AmountInTarget
	}
	locations, binOf, err := arrange(amounts, n.cfg.Bins, dest)
	if err != nil {
		return nil, err
	}
	ret := make(Transfers, len(details))
	for well, d := range details {
		bin := n.cfg.Bins[binOf[well]]
		ret[well] = Transfer{
			Destination:   locations[well],
			Concentration: d.Concentration,
			Volume:        decimal.NewNullDecimal(d.SourceVolume),
			Colour:        bin.Colour,
			PCRCycles:     bin.PCRCycles,
		}
	}
	return ret, nil
}

func (n *NormalisedBinning) Transfers(concentrations map[string]decimal.Decimal, dest plate.Geometry) (Transfers, error) {
	return n.ComputeTransfers(n.NormalisationDetails(concentrations), dest)
}

// BinDetails reports the bin of each well on a normalised plate from the
// concentrations measured on it.
func (n *NormalisedBinning) BinDetails(concentrations map[string]decimal.Decimal) (map[string]BinDetail, error) {
	amounts := make(map[string]decimal.Decimal, len(concentrations))
	for well, conc := range concentrations {
		amounts[well] = conc.Mul(n.cfg.TargetVolume)
	}
	return n.cfg.Bins.Details(amounts)
}
