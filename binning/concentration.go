package binning

import (
	"fmt"

	"github.com/shopspring/decimal"

	"platecalc/plate"
)

// ConcentrationConfig drives a concentration binned plate. The source volume
// is also the factor that turns a measured concentration into the amount in
// the well.
type ConcentrationConfig struct {
	SourceVolume  decimal.Decimal
	DiluentVolume decimal.Decimal
	Bins          Bins
}

// ConcentrationBinning places each source well by its amount (concentration
// times source volume). Bins are laid out by column; each bin starts a new
// column when there is room, otherwise bins run on without gaps.
type ConcentrationBinning struct {
	cfg ConcentrationConfig
}

var _ Calculator = (*ConcentrationBinning)(nil)

func NewConcentrationBinning(cfg ConcentrationConfig) (*ConcentrationBinning, error) {
	if len(cfg.Bins) == 0 {
		return nil, ErrNoBins
	}
	if !cfg.SourceVolume.IsPositive() {
		return nil, fmt.Errorf("%w: source volume %s", ErrInvalidVolume, cfg.SourceVolume)
	}
	if cfg.DiluentVolume.IsNegative() {
		return nil, fmt.Errorf("%w: diluent volume %s", ErrInvalidVolume, cfg.DiluentVolume)
	}
	return &ConcentrationBinning{cfg: cfg}, nil
}

func (c *ConcentrationBinning) MultiplicationFactor() decimal.Decimal {
	return c.cfg.SourceVolume
}

// DestinationMultiplicationFactor is the total volume in a destination well.
func (c *ConcentrationBinning) DestinationMultiplicationFactor() decimal.Decimal {
	return c.cfg.SourceVolume.Add(c.cfg.DiluentVolume)
}

func (c *ConcentrationBinning) SourceVolume() decimal.Decimal {
	return c.cfg.SourceVolume
}

func (c *ConcentrationBinning) AssayVersion() string {
	return "Binning"
}

func (c *ConcentrationBinning) WellAmounts(concentrations map[string]decimal.Decimal) map[string]decimal.Decimal {
	factor := c.MultiplicationFactor()
	ret := make(map[string]decimal.Decimal, len(concentrations))
	for well, conc := range concentrations {
		ret[well] = conc.Mul(factor)
	}
	return ret
}

// ComputeTransfers assigns each well amount a destination well and the
// concentration it will have there, rounded to three places.
func (c *ConcentrationBinning) ComputeTransfers(amounts map[string]decimal.Decimal, dest plate.Geometry) (Transfers, error) {
	locations, binOf, err := arrange(amounts, c.cfg.Bins, dest)
	if err != nil {
		return nil, err
	}
	divisor := c.DestinationMultiplicationFactor()
	ret := make(Transfers, len(amounts))
	for well, amount := range amounts {
		bin := c.cfg.Bins[binOf[well]]
		ret[well] = Transfer{
			Destination:   locations[well],
			Concentration: amount.Div(divisor).Round(roundPlaces),
			Colour:        bin.Colour,
			PCRCycles:     bin.PCRCycles,
		}
	}
	return ret, nil
}

func (c *ConcentrationBinning) Transfers(concentrations map[string]decimal.Decimal, dest plate.Geometry) (Transfers, error) {
	return c.ComputeTransfers(c.WellAmounts(concentrations), dest)
}

// BinDetails reports the bin of each well on an already binned plate, given
// the concentrations measured on it.
func (c *ConcentrationBinning) BinDetails(concentrations map[string]decimal.Decimal) (map[string]BinDetail, error) {
	factor := c.DestinationMultiplicationFactor()
	amounts := make(map[string]decimal.Decimal, len(concentrations))
	for well, conc := range concentrations {
		amounts[well] = conc.Mul(factor)
	}
	return c.cfg.Bins.Details(amounts)
}

// ComputeTransfers bins well amounts onto a plate of the given dimensions.
func ComputeTransfers(amounts map[string]decimal.Decimal, cfg ConcentrationConfig, rows, columns int) (Transfers, error) {
	g, err := plate.NewGeometry(rows, columns)
	if err != nil {
		return nil, err
	}
	c, err := NewConcentrationBinning(cfg)
	if err != nil {
		return nil, err
	}
	return c.ComputeTransfers(amounts, g)
}
