package binning

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNoBins        = errors.New("no bins configured")
	ErrNoWells       = errors.New("no wells to transfer")
	ErrUnbinnable    = errors.New("amount matches no bin")
	ErrPlateFull     = errors.New("destination plate has too few wells")
	ErrInvalidVolume = errors.New("invalid volume")
)

// Bin is one amount range with the downstream processing parameters of the
// wells that fall into it. The range is [Min, Max); an unset Min is zero and
// an unset Max is unbounded.
type Bin struct {
	Colour    int
	PCRCycles int
	Min       decimal.NullDecimal
	Max       decimal.NullDecimal
}

func (b Bin) Contains(amount decimal.Decimal) bool {
	lower := decimal.Zero
	if b.Min.Valid {
		lower = b.Min.Decimal
	}
	if amount.LessThan(lower) {
		return false
	}
	return !b.Max.Valid || amount.LessThan(b.Max.Decimal)
}

func (b Bin) String() string {
	lower, upper := "0", "inf"
	if b.Min.Valid {
		lower = b.Min.Decimal.String()
	}
	if b.Max.Valid {
		upper = b.Max.Decimal.String()
	}
	return fmt.Sprintf("[%s, %s) colour %d, %d cycles", lower, upper, b.Colour, b.PCRCycles)
}

// Bins are evaluated in declaration order.
type Bins []Bin

// Classify returns the index of the first bin containing amount. Overlapping
// ranges are not rejected; the earlier bin wins.
func (bs Bins) Classify(amount decimal.Decimal) (int, error) {
	for i, b := range bs {
		if b.Contains(amount) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrUnbinnable, amount)
}

// BinDetail is the colour and cycle count shown against a well.
type BinDetail struct {
	Colour    int
	PCRCycles int
}

// Details classifies each amount and reports the colour and cycles of its bin.
func (bs Bins) Details(amounts map[string]decimal.Decimal) (map[string]BinDetail, error) {
	if len(bs) == 0 {
		return nil, ErrNoBins
	}
	ret := make(map[string]BinDetail, len(amounts))
	for well, amount := range amounts {
		i, err := bs.Classify(amount)
		if err != nil {
			return nil, fmt.Errorf("well %s: %w", well, err)
		}
		ret[well] = BinDetail{Colour: bs[i].Colour, PCRCycles: bs[i].PCRCycles}
	}
	return ret, nil
}
