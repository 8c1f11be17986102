// Package pipeline orchestrates the batch transformation from raw records to
// a decomposed rule table: normalize -> encode -> (external mining engine) ->
// decompose. Each stage fully consumes its input and produces a new immutable
// collection before the next stage begins.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/seqflow/seqflow/internal/model"
	"github.com/seqflow/seqflow/pkg/encode"
	"github.com/seqflow/seqflow/pkg/mining"
	"github.com/seqflow/seqflow/pkg/normalize"
	"github.com/seqflow/seqflow/pkg/rules"
)

// Config holds the field mapping and mining parameters for one run.
type Config struct {
	SessionField   string
	TimestampField string
	ActionField    string

	Normalize normalize.Options
	Mining    mining.Params

	// Workers > 1 enables parallel per-session encoding. The sequence-ID
	// bijection is always computed from the full key set first, so results
	// are identical at any worker count.
	Workers int
}

// ProgressFunc receives stage completion notifications.
type ProgressFunc func(stage string, elapsed time.Duration)

// Prepared holds the output of the preparation stages.
type Prepared struct {
	RunID        string
	Events       []model.Event
	Transactions *encode.TransactionSet
}

// Result holds the output of a full run, including the engine call.
type Result struct {
	Prepared

	Rules []mining.Rule
	Table rules.Table

	Duration time.Duration
}

// Pipeline runs the preparation stages and, given an engine, the full
// transform. Safe for concurrent use; it holds no per-run state.
type Pipeline struct {
	cfg      Config
	engine   mining.Engine
	tracer   trace.Tracer
	progress ProgressFunc
}

// New creates a pipeline. engine may be nil when only Prepare is used.
func New(cfg Config, engine mining.Engine) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Pipeline{
		cfg:    cfg,
		engine: engine,
		tracer: otel.Tracer("seqflow/pipeline"),
	}
}

// SetProgressCallback installs a stage-completion callback.
func (p *Pipeline) SetProgressCallback(fn ProgressFunc) {
	p.progress = fn
}

// Prepare runs the normalize and encode stages.
func (p *Pipeline) Prepare(ctx context.Context, ds *model.Dataset) (*Prepared, error) {
	runID := uuid.New().String()

	ctx, span := p.tracer.Start(ctx, "pipeline.prepare",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("rows", len(ds.Rows)),
		))
	defer span.End()

	events, err := p.normalizeStage(ctx, ds)
	if err != nil {
		return nil, err
	}

	transactions, err := p.encodeStage(ctx, events)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("sessions", transactions.Sessions()),
		attribute.Int("events", transactions.Events()),
	)

	return &Prepared{
		RunID:        runID,
		Events:       events,
		Transactions: transactions,
	}, nil
}

// Run executes the full pipeline: prepare, mine, decompose. The engine call
// is treated as an opaque blocking call; cancellation is the engine's
// responsibility via ctx.
func (p *Pipeline) Run(ctx context.Context, ds *model.Dataset) (*Result, error) {
	start := time.Now()

	prepared, err := p.Prepare(ctx, ds)
	if err != nil {
		return nil, err
	}

	mined, err := p.mineStage(ctx, prepared.Transactions)
	if err != nil {
		return nil, err
	}

	table := p.decomposeStage(ctx, mined)

	return &Result{
		Prepared: *prepared,
		Rules:    mined,
		Table:    table,
		Duration: time.Since(start),
	}, nil
}

func (p *Pipeline) normalizeStage(ctx context.Context, ds *model.Dataset) ([]model.Event, error) {
	_, span := p.tracer.Start(ctx, "pipeline.normalize")
	defer span.End()
	start := time.Now()

	events, err := normalize.Normalize(ds, p.cfg.SessionField, p.cfg.TimestampField, p.cfg.Normalize)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	p.report("normalize", start)
	return events, nil
}

func (p *Pipeline) encodeStage(ctx context.Context, events []model.Event) (*encode.TransactionSet, error) {
	_, span := p.tracer.Start(ctx, "pipeline.encode")
	defer span.End()
	start := time.Now()

	var transactions *encode.TransactionSet
	var err error
	if p.cfg.Workers > 1 {
		transactions, err = encode.EncodeParallel(events, p.cfg.SessionField, p.cfg.ActionField, p.cfg.Workers)
	} else {
		transactions, err = encode.Encode(events, p.cfg.SessionField, p.cfg.ActionField)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	p.report("encode", start)
	return transactions, nil
}

func (p *Pipeline) mineStage(ctx context.Context, transactions *encode.TransactionSet) ([]mining.Rule, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.mine")
	defer span.End()
	start := time.Now()

	mined, err := p.engine.Mine(ctx, transactions, p.cfg.Mining)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("rules", len(mined)))
	p.report("mine", start)
	return mined, nil
}

func (p *Pipeline) decomposeStage(ctx context.Context, mined []mining.Rule) rules.Table {
	_, span := p.tracer.Start(ctx, "pipeline.decompose")
	defer span.End()
	start := time.Now()

	table := rules.Decompose(mined)

	span.SetAttributes(attribute.Int("malformed", table.MalformedCount))
	p.report("decompose", start)
	return table
}

func (p *Pipeline) report(stage string, start time.Time) {
	if p.progress != nil {
		p.progress(stage, time.Since(start))
	}
}
