package binning

import (
	"github.com/shopspring/decimal"

	"platecalc/plate"
)

// Transfer is where the material of one source well goes and what it
// becomes there.
type Transfer struct {
	Destination   string
	Concentration decimal.Decimal
	// Volume is the source volume to move. It is only set by calculators
	// that vary it per well.
	Volume    decimal.NullDecimal
	Colour    int
	PCRCycles int
}

// Transfers are keyed by source well.
type Transfers map[string]Transfer

// Sources lists the source wells in column-major order.
func (t Transfers) Sources() []string {
	return plate.SortedColumnMajor(t)
}

func (t Transfers) DestinationConcentrations() map[string]decimal.Decimal {
	ret := make(map[string]decimal.Decimal, len(t))
	for _, tr := range t {
		ret[tr.Destination] = tr.Concentration
	}
	return ret
}

// Calculator turns measured source well concentrations into transfers onto
// a destination plate.
type Calculator interface {
	Transfers(concentrations map[string]decimal.Decimal, dest plate.Geometry) (Transfers, error)
	// SourceVolume is the volume moved for transfers that do not carry one.
	SourceVolume() decimal.Decimal
	// AssayVersion names the calculation on the QC results it produces.
	AssayVersion() string
}

const roundPlaces = 3
