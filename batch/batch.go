// Package batch runs a calculation over source plates, one plate or many at
// a time.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"platecalc/binning"
	"platecalc/config"
	"platecalc/plate"
	"platecalc/qc"
	"platecalc/transfer"
)

// Result is everything calculated for one source plate.
type Result struct {
	Path      string
	Barcode   string
	ChildUUID string
	Transfers binning.Transfers
	Requests  []transfer.Request
	QCResults []qc.Result
	Err       error
}

type Runner struct {
	calc    binning.Calculator
	dest    plate.Geometry
	workers int
	logger  *zap.Logger

	now     func() time.Time
	newUUID func() string
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithClock sets the timestamp given to calculated QC results.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithUUIDs sets how child plate UUIDs are made.
func WithUUIDs(f func() string) Option {
	return func(r *Runner) {
		r.newUUID = f
	}
}

func NewRunner(calc binning.Calculator, dest plate.Geometry, opts ...Option) *Runner {
	r := &Runner{
		calc:    calc,
		dest:    dest,
		workers: 1,
		logger:  zap.NewNop(),
		now:     time.Now,
		newUUID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Process calculates the transfers for one plate. Only occupied wells are
// transferred, and every one of them needs a concentration.
func (r *Runner) Process(p *config.SourcePlate, childUUID string) (*Result, error) {
	if childUUID == "" {
		childUUID = r.newUUID()
	}
	occupied := p.Occupied()
	latest := qc.LatestConcentrations(p.QCResults())
	if err := qc.RequireConcentrations(occupied, latest); err != nil {
		return nil, err
	}
	concs := make(map[string]decimal.Decimal, len(occupied))
	for _, well := range occupied {
		concs[well] = latest[well]
	}

	transfers, err := r.calc.Transfers(concs, r.dest)
	if err != nil {
		return nil, err
	}
	requests, err := transfer.Requests(transfers, r.calc.SourceVolume())
	if err != nil {
		return nil, err
	}
	if err := transfer.Validate(requests, len(concs)); err != nil {
		return nil, err
	}

	r.logger.Debug("plate calculated",
		zap.String("barcode", p.Barcode),
		zap.String("assay_version", r.calc.AssayVersion()),
		zap.Int("wells", len(concs)),
	)
	return &Result{
		Barcode:   p.Barcode,
		ChildUUID: childUUID,
		Transfers: transfers,
		Requests:  requests,
		QCResults: qc.DestinationResults(childUUID, qc.AssayCalculated, r.calc.AssayVersion(), transfers, r.now()),
	}, nil
}

// Run processes the plate files concurrently. A plate that fails records
// its error on its own result and does not stop the others. Results come
// back in the order of paths.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.runOne(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	r.logger.Info("batch complete",
		zap.Int("plates", len(paths)),
		zap.Int("failed", failed),
		zap.Int("workers", r.workers),
	)
	return results, nil
}

func (r *Runner) runOne(path string) Result {
	log := r.logger.With(zap.String("plate", path))
	p, err := config.LoadPlate(path)
	if err != nil {
		log.Warn("could not load plate", zap.Error(err))
		return Result{Path: path, Err: err}
	}
	res, err := r.Process(p, "")
	if err != nil {
		err = fmt.Errorf("%s: %w", p.Barcode, err)
		log.Warn("could not calculate plate", zap.Error(err))
		return Result{Path: path, Barcode: p.Barcode, Err: err}
	}
	res.Path = path
	return *res
}
