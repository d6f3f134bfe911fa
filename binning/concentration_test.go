package binning

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platecalc/plate"
)

func standardBinning(t *testing.T, bins Bins) *ConcentrationBinning {
	t.Helper()
	c, err := NewConcentrationBinning(ConcentrationConfig{
		SourceVolume:  d("10"),
		DiluentVolume: d("25"),
		Bins:          bins,
	})
	require.NoError(t, err)
	return c
}

func TestConcentrationBinning_Factors(t *testing.T) {
	c := standardBinning(t, threeBins())
	assert.Equal(t, "10", c.MultiplicationFactor().String())
	assert.Equal(t, "35", c.DestinationMultiplicationFactor().String())

	got := c.WellAmounts(amounts(map[string]string{"A1": "1.5", "B1": "56.0", "C1": "3.5", "D1": "1.8"}))
	assert.Equal(t, "15", got["A1"].String())
	assert.Equal(t, "560", got["B1"].String())
	assert.Equal(t, "35", got["C1"].String())
	assert.Equal(t, "18", got["D1"].String())
}

func TestConcentrationBinning_Simple(t *testing.T) {
	in := amounts(map[string]string{"A1": "15.0", "B1": "560.0", "C1": "35.0", "D1": "18.0"})
	expected := map[string]want{
		"A1": {"A1", "0.429"},
		"B1": {"A3", "16"},
		"C1": {"A2", "1"},
		"D1": {"B1", "0.514"},
	}

	for name, bins := range map[string]Bins{"three bins": threeBins(), "graduated bins": graduatedBins()} {
		t.Run(name, func(t *testing.T) {
			got, err := ComputeTransfers(in, ConcentrationConfig{
				SourceVolume:  d("10"),
				DiluentVolume: d("25"),
				Bins:          bins,
			}, 8, 12)
			require.NoError(t, err)
			requireTransfers(t, expected, got)
		})
	}
}

func TestConcentrationBinning_SameBin(t *testing.T) {
	c := standardBinning(t, threeBins())
	got, err := c.ComputeTransfers(amounts(map[string]string{"A1": "26", "B1": "26", "C1": "26", "D1": "26"}), plate96)
	require.NoError(t, err)
	requireTransfers(t, map[string]want{
		"A1": {"A1", "0.743"},
		"B1": {"B1", "0.743"},
		"C1": {"C1", "0.743"},
		"D1": {"D1", "0.743"},
	}, got)
	assert.Equal(t, 2, got["A1"].Colour)
	assert.Equal(t, 12, got["A1"].PCRCycles)
	assert.False(t, got["A1"].Volume.Valid)
}

func TestConcentrationBinning_BinsSpanColumns(t *testing.T) {
	in := map[string]string{"A1": "1.0", "C1": "501.0"}
	for _, w := range []string{
		"B1", "D1", "E1", "F1", "G1", "H1", "A2", "B2", "C2", "D2",
		"E2", "F2", "G2", "H2", "A3", "B3", "C3", "D3", "E3", "F3",
	} {
		in[w] = "26.0"
	}
	c := standardBinning(t, threeBins())
	got, err := c.ComputeTransfers(amounts(in), plate96)
	require.NoError(t, err)

	requireTransfers(t, map[string]want{
		"A1": {"A1", "0.029"},
		"B1": {"A2", "0.743"},
		"C1": {"A5", "14.314"},
		"D1": {"B2", "0.743"},
		"E1": {"C2", "0.743"},
		"F1": {"D2", "0.743"},
		"G1": {"E2", "0.743"},
		"H1": {"F2", "0.743"},
		"A2": {"G2", "0.743"},
		"B2": {"H2", "0.743"},
		"C2": {"A3", "0.743"},
		"D2": {"B3", "0.743"},
		"E2": {"C3", "0.743"},
		"F2": {"D3", "0.743"},
		"G2": {"E3", "0.743"},
		"H2": {"F3", "0.743"},
		"A3": {"G3", "0.743"},
		"B3": {"H3", "0.743"},
		"C3": {"A4", "0.743"},
		"D3": {"B4", "0.743"},
		"E3": {"C4", "0.743"},
		"F3": {"D4", "0.743"},
	}, got)
}

func TestConcentrationBinning_CompressionByWellCount(t *testing.T) {
	wells := plate96.ColumnMajor()
	in := make(map[string]string, len(wells))
	expected := make(map[string]want, len(wells))
	for i, w := range wells {
		switch {
		case i < 33:
			in[w], expected[w] = "1.0", want{w, "0.029"}
		case i < 63:
			in[w], expected[w] = "26.0", want{w, "0.743"}
		default:
			in[w], expected[w] = "501.0", want{w, "14.314"}
		}
	}

	c := standardBinning(t, threeBins())
	got, err := c.ComputeTransfers(amounts(in), plate96)
	require.NoError(t, err)
	requireTransfers(t, expected, got)
}

func TestConcentrationBinning_CompressionByBinCount(t *testing.T) {
	in := amounts(map[string]string{
		"A1": "1.0", "B1": "11.0", "C1": "21.0", "D1": "31.0", "E1": "41.0", "F1": "51.0", "G1": "61.0",
		"H1": "71.0", "A2": "81.0", "B2": "91.0", "C2": "101.0", "D2": "111.0", "E2": "121.0",
	})
	c := standardBinning(t, graduatedBins())
	got, err := c.ComputeTransfers(in, plate96)
	require.NoError(t, err)

	requireTransfers(t, map[string]want{
		"A1": {"A1", "0.029"},
		"B1": {"B1", "0.314"},
		"C1": {"C1", "0.6"},
		"D1": {"D1", "0.886"},
		"E1": {"E1", "1.171"},
		"F1": {"F1", "1.457"},
		"G1": {"G1", "1.743"},
		"H1": {"H1", "2.029"},
		"A2": {"A2", "2.314"},
		"B2": {"B2", "2.6"},
		"C2": {"C2", "2.886"},
		"D2": {"D2", "3.171"},
		"E2": {"E2", "3.457"},
	}, got)
	assert.Equal(t, 13, got["E2"].Colour)
}

func TestConcentrationBinning_FewerColumnsThanBins(t *testing.T) {
	in := amounts(map[string]string{"A1": "1", "B1": "26", "C1": "600"})
	c := standardBinning(t, threeBins())
	got, err := c.ComputeTransfers(in, plate.Geometry{Rows: 2, Columns: 2})
	require.NoError(t, err)
	requireTransfers(t, map[string]want{
		"A1": {"A1", "0.029"},
		"B1": {"B1", "0.743"},
		"C1": {"A2", "17.143"},
	}, got)
}

func TestConcentrationBinning_Invariants(t *testing.T) {
	c := standardBinning(t, graduatedBins())
	for n := 1; n <= 96; n += 7 {
		t.Run(fmt.Sprintf("%d wells", n), func(t *testing.T) {
			in := make(map[string]decimal.Decimal, n)
			for i, w := range plate96.ColumnMajor()[:n] {
				in[w] = decimal.NewFromInt(int64((i * 37) % 150))
			}

			got, err := c.ComputeTransfers(in, plate96)
			require.NoError(t, err)
			require.Len(t, got, n)

			seen := make(map[string]string, n)
			for src, tr := range got {
				other, dup := seen[tr.Destination]
				require.False(t, dup, "%s and %s both go to %s", src, other, tr.Destination)
				require.True(t, plate96.Contains(tr.Destination))
				seen[tr.Destination] = src
			}

			again, err := c.ComputeTransfers(in, plate96)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestConcentrationBinning_FreshColumnStarts(t *testing.T) {
	// Four bins, few wells: every bin starts at row A of its own column.
	in := amounts(map[string]string{"A1": "5", "B1": "15", "C1": "16", "D1": "25", "E1": "130"})
	c := standardBinning(t, graduatedBins())
	got, err := c.ComputeTransfers(in, plate96)
	require.NoError(t, err)

	assert.Equal(t, "A1", got["A1"].Destination)
	assert.Equal(t, "A2", got["B1"].Destination)
	assert.Equal(t, "B2", got["C1"].Destination)
	assert.Equal(t, "A3", got["D1"].Destination)
	assert.Equal(t, "A4", got["E1"].Destination)
}

func TestConcentrationBinning_Errors(t *testing.T) {
	_, err := NewConcentrationBinning(ConcentrationConfig{SourceVolume: d("10"), DiluentVolume: d("25")})
	assert.ErrorIs(t, err, ErrNoBins)

	_, err = NewConcentrationBinning(ConcentrationConfig{SourceVolume: d("0"), Bins: threeBins()})
	assert.ErrorIs(t, err, ErrInvalidVolume)

	_, err = NewConcentrationBinning(ConcentrationConfig{SourceVolume: d("10"), DiluentVolume: d("-1"), Bins: threeBins()})
	assert.ErrorIs(t, err, ErrInvalidVolume)

	c := standardBinning(t, threeBins())
	_, err = c.ComputeTransfers(map[string]decimal.Decimal{}, plate96)
	assert.ErrorIs(t, err, ErrNoWells)

	_, err = ComputeTransfers(amounts(map[string]string{"A1": "1"}), ConcentrationConfig{}, 0, 12)
	assert.ErrorIs(t, err, plate.ErrInvalidGeometry)

	many := make(map[string]decimal.Decimal)
	for _, w := range (plate.Geometry{Rows: 16, Columns: 24}).ColumnMajor()[:97] {
		many[w] = d("1")
	}
	_, err = c.ComputeTransfers(many, plate96)
	assert.ErrorIs(t, err, ErrPlateFull)
}

func TestConcentrationBinning_BinDetails(t *testing.T) {
	c := standardBinning(t, threeBins())
	got, err := c.BinDetails(amounts(map[string]string{"A1": "0.429", "A3": "16", "A2": "1"}))
	require.NoError(t, err)
	assert.Equal(t, BinDetail{Colour: 1, PCRCycles: 16}, got["A1"])
	assert.Equal(t, BinDetail{Colour: 2, PCRCycles: 12}, got["A2"])
	assert.Equal(t, BinDetail{Colour: 3, PCRCycles: 8}, got["A3"])
}

func TestTransfers_DestinationConcentrations(t *testing.T) {
	tr := Transfers{
		"A1": {Destination: "A2", Concentration: d("0.665")},
		"B1": {Destination: "A1", Concentration: d("0.343")},
		"C1": {Destination: "A3", Concentration: d("2.135")},
	}
	got := tr.DestinationConcentrations()
	require.Len(t, got, 3)
	assert.Equal(t, "0.665", got["A2"].String())
	assert.Equal(t, "0.343", got["A1"].String())
	assert.Equal(t, "2.135", got["A3"].String())
	assert.Equal(t, []string{"A1", "B1", "C1"}, tr.Sources())
}
