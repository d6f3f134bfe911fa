package plate

import (
	"fmt"
	"strconv"
)

// Layout describes the standard labware the calculators know how to address.
type Layout struct {
	Matrices []*Matrix
}

func DefaultLayout() *Layout {
	ret := &Layout{
		Matrices: make([]*Matrix, 4),
	}

	ret.Matrices[0] = NewMatrix(Well, "96", Geometry{Rows: 8, Columns: 12})
	ret.Matrices[1] = NewMatrix(Well, "384", Geometry{Rows: 16, Columns: 24})
	ret.Matrices[2] = NewMatrix(Tube, "12", Geometry{Rows: 3, Columns: 4})
	ret.Matrices[3] = NewMatrix(Tube, "strip", Geometry{Rows: 8, Columns: 1})

	return ret
}

// Find returns the geometry of the named labware. A bare well count that is
// not a known name is converted with ForSize.
func (l *Layout) Find(name string) (Geometry, error) {
	for _, m := range l.Matrices {
		if m.Name == name {
			return m.Geometry, nil
		}
	}
	if size, err := strconv.Atoi(name); err == nil {
		return ForSize(size)
	}
	return Geometry{}, fmt.Errorf("%w: unknown labware %q", ErrInvalidGeometry, name)
}
