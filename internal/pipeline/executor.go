package pipeline

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"go-insights-engine/internal/logger"
	"go-insights-engine/internal/metrics"
	"go-insights-engine/internal/model"
)

// RecordStore is the record collection the executor reads from. It must
// allow concurrent read-only use.
type RecordStore interface {
	// Scan iterates every record in storage order.
	Scan(ctx context.Context) (model.RecordIterator, error)
	// Find returns the records matching filter.
	Find(ctx context.Context, filter model.Filter) ([]model.Record, error)
}

// DistinctStore is implemented by stores that can list distinct values
// without a full scan.
type DistinctStore interface {
	Distinct(ctx context.Context, field model.Field) ([]model.Value, error)
}

// Executor runs queries against a RecordStore.
type Executor struct {
	store   RecordStore
	filters *FilterBuilder
	log     logger.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithMetrics records query metrics on m.
func WithMetrics(m *metrics.Metrics) ExecutorOption {
	return func(e *Executor) { e.metrics = m }
}

// WithQueryTimeout bounds every query by d. Zero or negative disables the
// bound.
func WithQueryTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = d }
}

// NewExecutor returns an executor over store.
func NewExecutor(store RecordStore, log logger.Logger, opts ...ExecutorOption) *Executor {
	if log == nil {
		log = logger.NewNop()
	}
	e := &Executor{
		store:   store,
		filters: NewFilterBuilder(log),
		log:     log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query runs the named shape with the given filter parameters.
func (e *Executor) Query(ctx context.Context, shape string, params Params) (*model.Result, error) {
	spec, err := LookupShape(shape)
	if err != nil {
		e.metrics.ObserveQuery(shapeLabel(shape), metrics.StatusConfigError, 0, 0)
		return nil, err
	}
	return e.Aggregate(ctx, spec, params)
}

// Aggregate runs an arbitrary AggregationSpec, validated before the store
// is contacted.
func (e *Executor) Aggregate(ctx context.Context, spec model.AggregationSpec, params Params) (result *model.Result, err error) {
	start := time.Now()
	scanned := 0

	defer func() {
		e.metrics.ObserveQuery(shapeLabel(spec.Name), statusOf(err), time.Since(start), scanned)
	}()

	if err = ValidateSpec(spec); err != nil {
		return nil, err
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	filter := e.filters.Build(params)

	it, err := e.store.Scan(ctx)
	if err != nil {
		return nil, wrapStoreError("scan", err)
	}
	counted := &countingIterator{RecordIterator: it}
	defer func() {
		scanned = counted.n
		if cerr := it.Close(); cerr != nil {
			e.log.Warn("Failed to close record iterator", logger.Error(cerr))
		}
	}()

	rows, err := Run(ctx, counted, filter, spec)
	if err != nil {
		e.log.Error("Aggregation failed",
			logger.String("shape", spec.Name),
			logger.Any("params", params),
			logger.Error(err),
		)
		return nil, err
	}

	e.log.Debug("Aggregation completed",
		logger.String("shape", spec.Name),
		logger.Int("constraints", filter.Len()),
		logger.Int("rows", len(rows)),
		logger.Duration("duration", time.Since(start)),
	)

	return &model.Result{
		Shape:    spec.Name,
		Measures: spec.MeasureNames(),
		Rows:     rows,
	}, nil
}

// Records returns the raw records matching params.
func (e *Executor) Records(ctx context.Context, params Params) ([]model.Record, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	records, err := e.store.Find(ctx, e.filters.Build(params))
	if err != nil {
		return nil, wrapStoreError("find", err)
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}

// AllRecords returns every stored record.
func (e *Executor) AllRecords(ctx context.Context) ([]model.Record, error) {
	return e.Records(ctx, nil)
}

// FilterOptions collects the distinct values of every filterable field
// concurrently.
func (e *Executor) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	fields := model.FilterableFields()
	values := make([][]model.Value, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	for i, field := range fields {
		g.Go(func() error {
			v, err := e.distinct(gctx, field)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts := &FilterOptions{}
	for i, field := range fields {
		opts.Set(field, values[i])
	}
	return opts, nil
}

func (e *Executor) distinct(ctx context.Context, field model.Field) ([]model.Value, error) {
	if ds, ok := e.store.(DistinctStore); ok {
		values, err := ds.Distinct(ctx, field)
		if err != nil {
			return nil, wrapStoreError("distinct "+string(field), err)
		}
		return values, nil
	}

	it, err := e.store.Scan(ctx)
	if err != nil {
		return nil, wrapStoreError("scan", err)
	}
	defer it.Close()
	return DistinctValues(ctx, it, field)
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

// wrapStoreError wraps err unless it already is a *StoreError or a context
// error.
func wrapStoreError(op string, err error) error {
	var se *StoreError
	if errors.As(err, &se) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func statusOf(err error) string {
	var ce *ConfigError
	switch {
	case err == nil:
		return metrics.StatusOK
	case errors.As(err, &ce):
		return metrics.StatusConfigError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.StatusCanceled
	default:
		return metrics.StatusStoreError
	}
}

// countingIterator counts the records pulled through it.
type countingIterator struct {
	model.RecordIterator
	n int
}

func (c *countingIterator) Next() bool {
	if c.RecordIterator.Next() {
		c.n++
		return true
	}
	return false
}
