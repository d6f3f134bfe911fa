package plate

import (
	"cmp"
	"slices"
)

// CompareColumnMajor orders well names by column, then row. Names that do
// not parse sort after valid ones, by plain string comparison.
func CompareColumnMajor(a, b string) int {
	ra, ca, errA := ParseWell(a)
	rb, cb, errB := ParseWell(b)
	switch {
	case errA != nil && errB != nil:
		return cmp.Compare(a, b)
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	}
	if c := cmp.Compare(ca, cb); c != 0 {
		return c
	}
	return cmp.Compare(ra, rb)
}

// CompareRowMajor orders well names by row, then column.
func CompareRowMajor(a, b string) int {
	ra, ca, errA := ParseWell(a)
	rb, cb, errB := ParseWell(b)
	switch {
	case errA != nil && errB != nil:
		return cmp.Compare(a, b)
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	}
	if c := cmp.Compare(ra, rb); c != 0 {
		return c
	}
	return cmp.Compare(ca, cb)
}

// SortedColumnMajor returns the keys of m in column-major well order.
func SortedColumnMajor[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareColumnMajor)
	return keys
}
