package binning

import (
	"fmt"

	"github.com/shopspring/decimal"

	"platecalc/plate"
)

// group splits the wells by bin. Within a bin the wells keep their
// column-major source order; amounts never reorder them.
func group(amounts map[string]decimal.Decimal, bins Bins) ([][]string, map[string]int, error) {
	groups := make([][]string, len(bins))
	binOf := make(map[string]int, len(amounts))
	for _, well := range plate.SortedColumnMajor(amounts) {
		i, err := bins.Classify(amounts[well])
		if err != nil {
			return nil, nil, fmt.Errorf("well %s: %w", well, err)
		}
		groups[i] = append(groups[i], well)
		binOf[well] = i
	}
	return groups, binOf, nil
}

// freshColumns decides, per bin, whether the bin starts at the top of a new
// destination column. Every occupied bin gets a fresh column when the columns
// they need in total fit on the plate; otherwise all bins pack contiguously.
func freshColumns(groups [][]string, g plate.Geometry) []bool {
	demand := 0
	for _, wells := range groups {
		demand += (len(wells) + g.Rows - 1) / g.Rows
	}
	fits := demand <= g.Columns

	fresh := make([]bool, len(groups))
	for i, wells := range groups {
		fresh[i] = fits && len(wells) > 0
	}
	return fresh
}

// place walks one column-major cursor over the destination, jumping to the
// next column boundary before each bin flagged fresh.
func place(groups [][]string, fresh []bool, g plate.Geometry) (map[string]string, error) {
	total := 0
	for _, wells := range groups {
		total += len(wells)
	}
	if total > g.Size() {
		return nil, fmt.Errorf("%w: %d wells onto %s", ErrPlateFull, total, g)
	}

	dest := make(map[string]string, total)
	cursor := 0
	for i, wells := range groups {
		if len(wells) == 0 {
			continue
		}
		if fresh[i] && cursor%g.Rows != 0 {
			cursor += g.Rows - cursor%g.Rows
		}
		for _, well := range wells {
			dest[well] = plate.WellName(cursor%g.Rows, cursor/g.Rows)
			cursor++
		}
	}
	return dest, nil
}

// arrange classifies the amounts and lays the bins out on the destination.
// It returns the destination and bin index of every source well.
func arrange(amounts map[string]decimal.Decimal, bins Bins, g plate.Geometry) (map[string]string, map[string]int, error) {
	if len(bins) == 0 {
		return nil, nil, ErrNoBins
	}
	if len(amounts) == 0 {
		return nil, nil, ErrNoWells
	}
	if !g.Valid() {
		return nil, nil, fmt.Errorf("%w: %s", plate.ErrInvalidGeometry, g)
	}
	groups, binOf, err := group(amounts, bins)
	if err != nil {
		return nil, nil, err
	}
	dest, err := place(groups, freshColumns(groups, g), g)
	if err != nil {
		return nil, nil, err
	}
	return dest, binOf, nil
}
