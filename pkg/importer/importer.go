// Package importer replays a recorded construction history against a live
// kernel document. Sketches are rebuilt curve by curve and their recorded
// profiles are re-associated with the profiles the kernel derives; extrudes
// then consume those profiles through a lookup table that accumulates over
// the timeline.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/chazu/lignin-replay/pkg/design"
	"github.com/chazu/lignin-replay/pkg/identity"
	"github.com/chazu/lignin-replay/pkg/kernel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/chazu/lignin-replay/pkg/importer"

// Options configures an Importer. Zero values select defaults.
type Options struct {
	Logger    *zap.Logger
	Tolerance float64
	Tagger    identity.Tagger
	Tracer    trace.Tracer
}

// Importer replays designs into one document. It is not safe for
// concurrent use; a run is strictly sequential.
type Importer struct {
	doc     kernel.Document
	log     *zap.Logger
	tags    identity.Tagger
	tracer  trace.Tracer
	matcher *Matcher
}

// New returns an Importer that mutates doc.
func New(doc kernel.Document, opts Options) *Importer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tags := opts.Tagger
	if tags == nil {
		tags = identity.NewStore()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	return &Importer{
		doc:     doc,
		log:     log,
		tags:    tags,
		tracer:  tracer,
		matcher: &Matcher{Tags: tags, Tolerance: tol, Logger: log},
	}
}

// EntityOutcome reports what happened to one timeline entry.
type EntityOutcome struct {
	Position int
	ID       string
	Name     string
	Type     string

	// Skipped is set for entity types the replay ignores and for reference
	// sketches without curve data.
	Skipped bool

	// Sketch results.
	Profiles  int
	Unmatched int

	// Extrude results.
	Feature   kernel.Handle
	Operation kernel.Operation

	Duration time.Duration
	Err      error
}

// Result is the outcome of a run. On failure it holds every entity
// processed up to and including the failing one.
type Result struct {
	Entities []EntityOutcome
	Table    ProfileTable
}

// Failed returns the outcome of the entity that halted the run, if any.
func (r *Result) Failed() (EntityOutcome, bool) {
	if n := len(r.Entities); n > 0 && r.Entities[n-1].Err != nil {
		return r.Entities[n-1], true
	}
	return EntityOutcome{}, false
}

// Run replays the timeline of d in order. The first error halts the run;
// mutations already applied to the document are kept. ctx is checked
// between entries only.
func (im *Importer) Run(ctx context.Context, d *design.Design) (*Result, error) {
	res := &Result{Table: make(ProfileTable)}

	for pos, entry := range d.Timeline {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("timeline %d: %w", pos, err)
		}

		e, ok := d.Entities[entry.Entity]
		if !ok {
			err := fmt.Errorf("timeline %d: %w: %q", pos, ErrEntityNotFound, entry.Entity)
			res.Entities = append(res.Entities, EntityOutcome{Position: pos, ID: entry.Entity, Err: err})
			return res, err
		}

		out := im.runEntity(ctx, pos, entry.Entity, e, res.Table)
		res.Entities = append(res.Entities, out)
		if out.Err != nil {
			return res, fmt.Errorf("timeline %d: %s %q: %w", pos, e.Type, e.Name, out.Err)
		}
	}
	return res, nil
}

// runEntity reconstructs one entity inside its own span.
func (im *Importer) runEntity(ctx context.Context, pos int, id string, e *design.Entity, table ProfileTable) (out EntityOutcome) {
	out = EntityOutcome{Position: pos, ID: id, Name: e.Name, Type: e.Type}
	start := time.Now()
	defer func() { out.Duration = time.Since(start) }()

	switch e.Type {
	case design.TypeSketch, design.TypeExtrude:
	default:
		im.log.Debug("ignoring entity", zap.String("id", id), zap.String("type", e.Type))
		out.Skipped = true
		return out
	}

	ctx, span := im.tracer.Start(ctx, "importer."+e.Type,
		trace.WithAttributes(
			attribute.String("entity.id", id),
			attribute.String("entity.name", e.Name),
			attribute.Int("timeline.position", pos),
		),
	)
	defer span.End()

	im.log.Info("reconstructing",
		zap.String("name", e.Name), zap.String("type", e.Type), zap.Int("index", pos))

	switch {
	case e.Sketch != nil:
		t, err := im.ReconstructSketch(ctx, e.Sketch)
		if err != nil {
			out.Err = err
			break
		}
		if t == nil {
			out.Skipped = true
			break
		}
		out.Profiles = len(t)
		out.Unmatched = len(t.Unmatched())
		table.Merge(t)
		span.SetAttributes(attribute.Int("profiles", out.Profiles), attribute.Int("unmatched", out.Unmatched))
	case e.Extrude != nil:
		f, err := im.ReconstructExtrude(ctx, e.Extrude, table)
		if err != nil {
			out.Err = err
			break
		}
		out.Feature = f.Handle()
		out.Operation = f.Operation()
		span.SetAttributes(attribute.String("feature", string(out.Feature)))
	default:
		out.Err = fmt.Errorf("entity %q has type %s but no body", id, e.Type)
	}

	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Err.Error())
	}
	return out
}
