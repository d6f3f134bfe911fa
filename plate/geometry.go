package plate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidWell     = errors.New("invalid well name")
	ErrInvalidGeometry = errors.New("invalid plate geometry")
)

// Direction is the order in which the wells of a plate are walked.
type Direction string

const (
	ByColumns Direction = "by_columns"
	ByRows    Direction = "by_rows"
)

// Geometry is the row and column count of a plate or rack. Wells are
// addressed by a row letter and a 1-based column number, e.g. "A1".
type Geometry struct {
	Rows    int `yaml:"rows" json:"rows"`
	Columns int `yaml:"columns" json:"columns"`
}

func NewGeometry(rows, columns int) (Geometry, error) {
	g := Geometry{Rows: rows, Columns: columns}
	if !g.Valid() {
		return Geometry{}, fmt.Errorf("%w: %d rows x %d columns", ErrInvalidGeometry, rows, columns)
	}
	return g, nil
}

// ForSize derives the dimensions of a standard 2:3 plate from its well count.
func ForSize(size int) (Geometry, error) {
	if size <= 0 {
		return Geometry{}, fmt.Errorf("%w: size %d", ErrInvalidGeometry, size)
	}
	unit := int(math.Sqrt(float64(size / 6)))
	return NewGeometry(unit*2, unit*3)
}

func (g Geometry) Valid() bool {
	return g.Rows > 0 && g.Columns > 0
}

func (g Geometry) Size() int {
	return g.Rows * g.Columns
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Rows, g.Columns)
}

// Contains reports whether name addresses a well inside the plate.
func (g Geometry) Contains(name string) bool {
	row, col, err := ParseWell(name)
	if err != nil {
		return false
	}
	return row >= 0 && col >= 0 && row < g.Rows && col < g.Columns
}

// ColumnMajor lists the wells top to bottom, then left to right:
// A1, B1, ... H1, A2, ...
func (g Geometry) ColumnMajor() []string {
	wells := make([]string, 0, g.Size())
	for col := 0; col < g.Columns; col++ {
		for row := 0; row < g.Rows; row++ {
			wells = append(wells, WellName(row, col))
		}
	}
	return wells
}

// RowMajor lists the wells left to right, then top to bottom:
// A1, A2, ... A12, B1, ...
func (g Geometry) RowMajor() []string {
	wells := make([]string, 0, g.Size())
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Columns; col++ {
			wells = append(wells, WellName(row, col))
		}
	}
	return wells
}

func (g Geometry) Walk(d Direction) ([]string, error) {
	switch d {
	case ByColumns:
		return g.ColumnMajor(), nil
	case ByRows:
		return g.RowMajor(), nil
	}
	return nil, fmt.Errorf("unknown direction %q", string(d))
}

// WellName converts zero-based coordinates to a well name. Rows past Z
// continue as AA, AB, ...
func WellName(row, col int) string {
	return rowLetters(row) + strconv.Itoa(col+1)
}

func rowLetters(row int) string {
	var b []byte
	for n := row + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// maxRowLetters bounds row names at ZZZ, 18278 rows.
const maxRowLetters = 3

// ParseWell converts a well name to zero-based row and column coordinates.
func ParseWell(name string) (row, col int, err error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	i := 0
	for i < len(name) && name[i] >= 'A' && name[i] <= 'Z' {
		if i == maxRowLetters {
			return 0, 0, fmt.Errorf("%w: %q has too many row letters", ErrInvalidWell, name)
		}
		row = row*26 + int(name[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(name) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWell, name)
	}
	n, convErr := strconv.Atoi(name[i:])
	if convErr != nil || n < 1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWell, name)
	}
	return row - 1, n - 1, nil
}
