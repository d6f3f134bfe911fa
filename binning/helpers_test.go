package binning

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bound(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(s))
}

func amounts(kv map[string]string) map[string]decimal.Decimal {
	ret := make(map[string]decimal.Decimal, len(kv))
	for k, v := range kv {
		ret[k] = d(v)
	}
	return ret
}

// threeBins is the standard concentration binning purpose.
func threeBins() Bins {
	return Bins{
		{Colour: 1, PCRCycles: 16, Max: bound("25")},
		{Colour: 2, PCRCycles: 12, Min: bound("25"), Max: bound("500")},
		{Colour: 3, PCRCycles: 8, Min: bound("500")},
	}
}

// graduatedBins has thirteen bins ten units wide.
func graduatedBins() Bins {
	bins := Bins{{Colour: 1, PCRCycles: 20, Max: bound("10")}}
	for i := 1; i < 12; i++ {
		bins = append(bins, Bin{
			Colour:    i + 1,
			PCRCycles: 20 - i,
			Min:       decimal.NewNullDecimal(decimal.NewFromInt(int64(i * 10))),
			Max:       decimal.NewNullDecimal(decimal.NewFromInt(int64(i*10 + 10))),
		})
	}
	return append(bins, Bin{Colour: 13, PCRCycles: 8, Min: bound("120")})
}

type want struct {
	dest string
	conc string
}

func requireTransfers(t *testing.T, expected map[string]want, got Transfers) {
	t.Helper()
	require.Len(t, got, len(expected))
	for src, w := range expected {
		tr, ok := got[src]
		require.True(t, ok, "missing transfer for %s", src)
		require.Equal(t, w.dest, tr.Destination, "destination of %s", src)
		require.Equal(t, w.conc, tr.Concentration.String(), "concentration of %s", src)
	}
}
