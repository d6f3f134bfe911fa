package plate

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix_FillAndRender(t *testing.T) {
	m := NewMatrix(Well, "test", Geometry{Rows: 2, Columns: 3})
	require.NoError(t, m.Fill(map[string]string{"A1": "x", "B3": "y"}))

	var buf bytes.Buffer
	require.NoError(t, m.Render(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"1", "2", "3"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"A", "x", ".", "."}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"B", ".", ".", "y"}, strings.Fields(lines[2]))
}

func TestMatrix_RenderAlignsRight(t *testing.T) {
	m := NewMatrix(Well, "test", Geometry{Rows: 2, Columns: 1})
	require.NoError(t, m.Fill(map[string]string{"A1": "A12/3", "B1": "x"}))

	var buf bytes.Buffer
	require.NoError(t, m.Render(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "A A12/3", lines[1])
	assert.Equal(t, "B     x", lines[2])
}

func TestMatrix_CellOutside(t *testing.T) {
	m := NewMatrix(Tube, "12", Geometry{Rows: 3, Columns: 4})
	_, err := m.Cell("D1")
	assert.ErrorIs(t, err, ErrInvalidWell)
	assert.Error(t, m.Fill(map[string]string{"A5": "x"}))

	c, err := m.Cell("C4")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Row)
	assert.Equal(t, 3, c.Column)
}

func TestLayout_Find(t *testing.T) {
	l := DefaultLayout()

	g, err := l.Find("384")
	require.NoError(t, err)
	assert.Equal(t, Geometry{Rows: 16, Columns: 24}, g)

	g, err = l.Find("12")
	require.NoError(t, err)
	assert.Equal(t, Geometry{Rows: 3, Columns: 4}, g)

	g, err = l.Find("1536")
	require.NoError(t, err)
	assert.Equal(t, Geometry{Rows: 32, Columns: 48}, g)

	_, err = l.Find("deep-well")
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestCompareColumnMajor(t *testing.T) {
	wells := []string{"A2", "zz", "H1", "A10", "B1", "A1"}
	slices.SortFunc(wells, CompareColumnMajor)
	assert.Equal(t, []string{"A1", "B1", "H1", "A2", "A10", "zz"}, wells)

	slices.SortFunc(wells, CompareRowMajor)
	assert.Equal(t, []string{"A1", "A2", "A10", "B1", "H1", "zz"}, wells)
}

func TestSortedColumnMajor(t *testing.T) {
	got := SortedColumnMajor(map[string]int{"B2": 1, "A2": 2, "C1": 3})
	assert.Equal(t, []string{"C1", "A2", "B2"}, got)
}
