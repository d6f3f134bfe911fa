package plate

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type CellType uint8

const (
	Well CellType = iota
	Tube
	Tip
	Unknown
)

func (t CellType) String() string {
	switch t {
	case Well:
		return "well"
	case Tube:
		return "tube"
	case Tip:
		return "tip"
	}
	return "unknown"
}

// Cell is the fundamental discrete addressable unit in the system.
// A cell can be a well of a plate, a tube in a rack, a pipette tip position, etc.
type Cell struct {
	Name   string
	Row    int
	Column int
	// Label is free text shown when the matrix is rendered, e.g. the source
	// well and bin that were transferred into this cell.
	Label string
}

// Matrix is an aggregate of Cells. This can be a well plate, tip box,
// tube rack, etc.
type Matrix struct {
	Kind  CellType
	Name  string
	Cells [][]*Cell
	Geometry
}

func NewMatrix(kind CellType, name string, g Geometry) *Matrix {
	m := &Matrix{
		Kind:     kind,
		Name:     name,
		Cells:    make([][]*Cell, g.Rows),
		Geometry: g,
	}
	for row := 0; row < g.Rows; row++ {
		m.Cells[row] = make([]*Cell, g.Columns)
		for col := 0; col < g.Columns; col++ {
			m.Cells[row][col] = &Cell{
				Name:   WellName(row, col),
				Row:    row,
				Column: col,
			}
		}
	}
	return m
}

func (m *Matrix) Cell(name string) (*Cell, error) {
	row, col, err := ParseWell(name)
	if err != nil {
		return nil, err
	}
	if row < 0 || col < 0 || row >= m.Rows || col >= m.Columns {
		return nil, fmt.Errorf("%w: %s is outside %s %s", ErrInvalidWell, name, m.Name, m.Geometry)
	}
	return m.Cells[row][col], nil
}

// Fill labels every named cell. It stops at the first name outside the matrix.
func (m *Matrix) Fill(labels map[string]string) error {
	for name, label := range labels {
		c, err := m.Cell(name)
		if err != nil {
			return err
		}
		c.Label = label
	}
	return nil
}

// Render writes the matrix as a grid with column numbers across the top and
// row letters down the side. Empty cells are shown as ".".
func (m *Matrix) Render(w io.Writer) error {
	grid := make([][]string, 0, m.Rows+1)
	header := make([]string, 0, m.Columns+1)
	header = append(header, "")
	for col := 0; col < m.Columns; col++ {
		header = append(header, fmt.Sprint(col+1))
	}
	grid = append(grid, header)
	for row := 0; row < m.Rows; row++ {
		line := make([]string, 0, m.Columns+1)
		line = append(line, rowLetters(row))
		for col := 0; col < m.Columns; col++ {
			label := m.Cells[row][col].Label
			if label == "" {
				label = "."
			}
			line = append(line, label)
		}
		grid = append(grid, line)
	}

	widths := make([]int, m.Columns+1)
	for _, line := range grid {
		for i, cell := range line {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var sb strings.Builder
	cells := make([]string, m.Columns+1)
	for _, line := range grid {
		for i, cell := range line {
			cells[i] = lipgloss.NewStyle().Width(widths[i]).Align(lipgloss.Right).Render(cell)
		}
		sb.WriteString(strings.Join(cells, " "))
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
