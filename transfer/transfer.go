// Package transfer turns calculated transfers into the ordered liquid
// handling requests that move material from a source plate to its child.
package transfer

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"platecalc/binning"
)

var (
	ErrCountMismatch        = errors.New("transfer count does not match well count")
	ErrDuplicateDestination = errors.New("destination well used more than once")
	ErrInvalidVolume        = errors.New("invalid transfer volume")
)

type Request struct {
	Source string          `yaml:"source" json:"source"`
	Target string          `yaml:"target" json:"target"`
	Volume decimal.Decimal `yaml:"volume" json:"volume"`
}

// Requests orders transfers by source well, column first. Transfers that do
// not carry their own volume move the fallback volume.
func Requests(transfers binning.Transfers, fallback decimal.Decimal) ([]Request, error) {
	ret := make([]Request, 0, len(transfers))
	for _, src := range transfers.Sources() {
		t := transfers[src]
		vol := fallback
		if t.Volume.Valid {
			vol = t.Volume.Decimal
		}
		if !vol.IsPositive() {
			return nil, fmt.Errorf("%w: %s from %s", ErrInvalidVolume, vol, src)
		}
		ret = append(ret, Request{Source: src, Target: t.Destination, Volume: vol})
	}
	return ret, nil
}

// Validate checks that there is one request per expected well and that no
// two requests share a target.
func Validate(requests []Request, expected int) error {
	if len(requests) != expected {
		return fmt.Errorf("%w: %d transfers for %d wells", ErrCountMismatch, len(requests), expected)
	}
	seen := make(map[string]string, len(requests))
	for _, r := range requests {
		if prev, ok := seen[r.Target]; ok {
			return fmt.Errorf("%w: %s from %s and %s", ErrDuplicateDestination, r.Target, prev, r.Source)
		}
		seen[r.Target] = r.Source
	}
	return nil
}

// TotalVolume is the sum of the volumes moved.
func TotalVolume(requests []Request) decimal.Decimal {
	total := decimal.Zero
	for _, r := range requests {
		total = total.Add(r.Volume)
	}
	return total
}
