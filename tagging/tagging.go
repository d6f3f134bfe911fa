// Package tagging assigns sequencing tags to the occupied wells of a plate.
//
// Tags are drawn from one or two tag groups. The first group's tags come
// first, the second group's follow them, and an offset skips tags at the
// start of that combined list. Wells that run past the end of the list are
// given the Insufficient sentinel rather than failing the whole layout.
package tagging

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/iancoleman/strcase"

	"platecalc/plate"
)

var (
	ErrNoTags            = errors.New("no tags available")
	ErrNoWells           = errors.New("no wells to tag")
	ErrInvalidDimensions = errors.New("invalid plate dimensions")
	ErrInvalidOffset     = errors.New("invalid tag offset")
	ErrUnknownStrategy   = errors.New("unknown layout strategy")
)

// Insufficient marks a well that could not be given a tag.
const Insufficient = -1

type Tag struct {
	Index int    `yaml:"index" json:"index"`
	Oligo string `yaml:"oligo" json:"oligo"`
}

type Group struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Tags []Tag  `yaml:"tags" json:"tags"`
}

// Well is an input well. Wells without aliquots are treated as empty.
type Well struct {
	Position     string `yaml:"position" json:"position"`
	AliquotCount int    `yaml:"aliquots" json:"aliquots"`
	PoolIndex    int    `yaml:"pool" json:"pool"`
}

type Strategy string

const (
	// ByPlateSequential numbers the occupied wells in walk order.
	ByPlateSequential Strategy = "by_plate_seq"
	// ByPlateFixed ties each tag to a plate position, occupied or not.
	ByPlateFixed Strategy = "by_plate_fixed"
	// ByPool numbers the wells of each pool separately.
	ByPool Strategy = "by_pool"
)

var strategyAliases = map[string]Strategy{
	"by_plate_seq":        ByPlateSequential,
	"by_plate_sequential": ByPlateSequential,
	"sequential":          ByPlateSequential,
	"by_plate_fixed":      ByPlateFixed,
	"fixed":               ByPlateFixed,
	"by_pool":             ByPool,
	"pool":                ByPool,
}

// ParseStrategy accepts any casing of a strategy name, e.g. "by-plate-seq",
// "ByPlateSeq" or "by_plate_seq".
func ParseStrategy(s string) (Strategy, error) {
	if st, ok := strategyAliases[strcase.ToSnake(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

func ParseDirection(s string) (plate.Direction, error) {
	switch strcase.ToSnake(strings.TrimSpace(s)) {
	case "by_columns", "columns", "column":
		return plate.ByColumns, nil
	case "by_rows", "rows", "row":
		return plate.ByRows, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// Layout maps well position to tag index.
type Layout map[string]int

// CalculateLayout assigns a tag index to every occupied well on a plate of
// the given dimensions. Any structural problem with the inputs fails the
// whole layout.
func CalculateLayout(wells []Well, dims plate.Geometry, group1, group2 *Group, strategy Strategy, direction plate.Direction, offset int) (Layout, error) {
	if len(wells) == 0 {
		return nil, ErrNoWells
	}
	if !dims.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDimensions, dims)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOffset, offset)
	}
	tags := available(group1, group2)
	if len(tags) == 0 {
		return nil, ErrNoTags
	}
	walk, err := dims.Walk(direction)
	if err != nil {
		return nil, err
	}

	occupied := make(map[string]Well, len(wells))
	for _, w := range wells {
		if w.AliquotCount > 0 {
			occupied[strings.ToUpper(strings.TrimSpace(w.Position))] = w
		}
	}

	var next func(position int, w Well) int
	switch strategy {
	case ByPlateSequential:
		seq := 0
		next = func(int, Well) int {
			seq++
			return seq - 1
		}
	case ByPlateFixed:
		next = func(position int, _ Well) int {
			return position
		}
	case ByPool:
		pools := make(map[int]int)
		next = func(_ int, w Well) int {
			n := pools[w.PoolIndex]
			pools[w.PoolIndex] = n + 1
			return n
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(strategy))
	}

	layout := make(Layout, len(occupied))
	for position, name := range walk {
		w, ok := occupied[name]
		if !ok {
			continue
		}
		i := offset + next(position, w)
		if i < len(tags) {
			layout[name] = tags[i].Index
		} else {
			layout[name] = Insufficient
		}
	}
	return layout, nil
}

func available(group1, group2 *Group) []Tag {
	var tags []Tag
	for _, g := range []*Group{group1, group2} {
		if g != nil {
			tags = append(tags, g.Tags...)
		}
	}
	return tags
}

// Wells lists the laid out wells in column-major order.
func (l Layout) Wells() []string {
	return plate.SortedColumnMajor(l)
}

// WellsBy lists the laid out wells in the order of a plate walk.
func (l Layout) WellsBy(d plate.Direction) []string {
	wells := l.Wells()
	if d == plate.ByRows {
		slices.SortFunc(wells, plate.CompareRowMajor)
	}
	return wells
}

// Untagged lists, in column-major order, the wells that ran out of tags.
func (l Layout) Untagged() []string {
	var ret []string
	for well, index := range l {
		if index == Insufficient {
			ret = append(ret, well)
		}
	}
	slices.SortFunc(ret, plate.CompareColumnMajor)
	return ret
}

// Oligos resolves each assigned tag index to its sequence, looking the
// index up in the groups in order. Untagged wells are left out.
func (l Layout) Oligos(groups ...*Group) map[string]string {
	seqs := make(map[int]string)
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, t := range g.Tags {
			if _, seen := seqs[t.Index]; !seen {
				seqs[t.Index] = t.Oligo
			}
		}
	}
	ret := make(map[string]string, len(l))
	for well, index := range l {
		if oligo, ok := seqs[index]; ok {
			ret[well] = oligo
		}
	}
	return ret
}
