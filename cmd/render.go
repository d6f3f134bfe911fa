package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iancoleman/strcase"
	"github.com/takuoki/gocase"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"platecalc/plate"
)

var printer = message.NewPrinter(language.English)

// header turns field names such as "child_uuid" into column headers such as
// "ChildUUID".
func header(fields ...string) []string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = gocase.To(strcase.ToCamel(f))
	}
	return cols
}

// table collects rows and writes them as padded columns on flush.
type table struct {
	w       io.Writer
	headers []string
	rows    [][]string
}

func newTable(w io.Writer, fields ...string) *table {
	return &table{w: w, headers: header(fields...)}
}

func (t *table) row(values ...any) {
	cols := make([]string, len(values))
	for i, v := range values {
		cols[i] = fmt.Sprint(v)
	}
	t.rows = append(t.rows, cols)
}

func (t *table) flush() error {
	_, err := io.WriteString(t.w, t.String())
	return err
}

func (t *table) String() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	// lipgloss counts padding in the width
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	var sb strings.Builder
	line := func(cells []string) {
		for i, c := range cells {
			if i >= len(widths) {
				break
			}
			sb.WriteString(cell.Width(widths[i]).Render(c))
			if i < len(cells)-1 {
				sb.WriteString("|")
			}
		}
		sb.WriteString("\n")
	}
	line(t.headers)
	sb.WriteString(strings.Repeat("-", total) + "\n")
	for _, row := range t.rows {
		line(row)
	}
	return sb.String()
}

// plateMap draws the destination plate with each well labelled.
func plateMap(w io.Writer, name string, g plate.Geometry, labels map[string]string) error {
	m := plate.NewMatrix(plate.Well, name, g)
	if err := m.Fill(labels); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (%s)\n", name, g)
	return m.Render(w)
}
