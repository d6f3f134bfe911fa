package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"platecalc/binning"
	"platecalc/config"
	"platecalc/plate"
	"platecalc/qc"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sourcePlate = `
barcode: DN1S
size: 96
wells:
  - location: A1
    aliquots: 1
    qc_results:
      - {key: concentration, value: 1, units: ng/ul, created_at: 2023-06-01T09:00:00Z}
      - {key: concentration, value: 0.5, units: ng/ul, created_at: 2023-06-01T10:00:00Z}
  - location: B1
    aliquots: 1
    qc_results:
      - {key: concentration, value: 56, units: ng/ul}
  - location: C1
    aliquots: 1
    qc_results:
      - {key: concentration, value: 3.5, units: ng/ul}
  - location: D1
    aliquots: 0
`

func calculator(t *testing.T) binning.Calculator {
	t.Helper()
	p, err := config.DefaultConfig().Purpose("LB Lib PCR-XP")
	require.NoError(t, err)
	calc, err := p.Calculator()
	require.NoError(t, err)
	return calc
}

func writePlate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fixedClock() time.Time {
	return time.Date(2023, 6, 2, 12, 0, 0, 0, time.UTC)
}

func TestRunner_Process(t *testing.T) {
	p, err := config.ParsePlate([]byte(sourcePlate))
	require.NoError(t, err)

	r := NewRunner(calculator(t), plate.Geometry{Rows: 8, Columns: 12},
		WithLogger(zaptest.NewLogger(t)), WithClock(fixedClock))
	res, err := r.Process(p, "child")
	require.NoError(t, err)

	assert.Equal(t, "DN1S", res.Barcode)
	require.Len(t, res.Transfers, 3)
	// amounts 5, 560, 35 fall in bins 1, 3, 2
	assert.Equal(t, "A1", res.Transfers["A1"].Destination)
	assert.Equal(t, "A2", res.Transfers["C1"].Destination)
	assert.Equal(t, "A3", res.Transfers["B1"].Destination)
	assert.Equal(t, "0.143", res.Transfers["A1"].Concentration.String())
	assert.Equal(t, 3, res.Transfers["B1"].Colour)

	require.Len(t, res.Requests, 3)
	assert.Equal(t, "A1", res.Requests[0].Source)
	assert.True(t, res.Requests[0].Volume.Equal(decimal.NewFromInt(10)))

	require.Len(t, res.QCResults, 3)
	for _, q := range res.QCResults {
		assert.Equal(t, "child", q.UUID)
		assert.Equal(t, qc.AssayCalculated, q.AssayType)
		assert.Equal(t, "Binning", q.AssayVersion)
		assert.Equal(t, fixedClock(), q.CreatedAt)
	}
	assert.Equal(t, "16", res.QCResults[2].Value.String())
}

func TestRunner_ProcessNewUUID(t *testing.T) {
	p, err := config.ParsePlate([]byte(sourcePlate))
	require.NoError(t, err)

	r := NewRunner(calculator(t), plate.Geometry{Rows: 8, Columns: 12}, WithUUIDs(func() string { return "generated" }))
	res, err := r.Process(p, "")
	require.NoError(t, err)
	assert.Equal(t, "generated", res.ChildUUID)
}

func TestRunner_ProcessMissingConcentration(t *testing.T) {
	p, err := config.ParsePlate([]byte("barcode: DN2\nwells:\n  - {location: A1, aliquots: 1}\n"))
	require.NoError(t, err)

	r := NewRunner(calculator(t), plate.Geometry{Rows: 8, Columns: 12})
	_, err = r.Process(p, "child")
	assert.ErrorIs(t, err, qc.ErrMissingConcentration)
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePlate(t, dir, "one.yaml", sourcePlate),
		writePlate(t, dir, "missing.yaml", "barcode: DN2\nwells:\n  - {location: A1, aliquots: 1}\n"),
		filepath.Join(dir, "absent.yaml"),
		writePlate(t, dir, "two.json", `{"barcode": "DN3", "wells": [{"location": "b2", "aliquots": 1, "qc_results": [{"key": "concentration", "value": 2}]}]}`),
	}

	r := NewRunner(calculator(t), plate.Geometry{Rows: 8, Columns: 12},
		WithWorkers(2), WithLogger(zaptest.NewLogger(t)))
	results, err := r.Run(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, paths[0], results[0].Path)
	assert.Len(t, results[0].Requests, 3)

	assert.ErrorIs(t, results[1].Err, qc.ErrMissingConcentration)
	assert.Equal(t, "DN2", results[1].Barcode)

	assert.ErrorIs(t, results[2].Err, os.ErrNotExist)

	require.NoError(t, results[3].Err)
	assert.Equal(t, "DN3", results[3].Barcode)
	assert.Equal(t, "A1", results[3].Transfers["B2"].Destination)
	assert.NotEmpty(t, results[3].ChildUUID)
}

func TestRunner_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(calculator(t), plate.Geometry{Rows: 8, Columns: 12})
	_, err := r.Run(ctx, []string{"a.yaml", "b.yaml"})
	assert.ErrorIs(t, err, context.Canceled)
}
