package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chazu/lignin-replay/pkg/design"
	"github.com/chazu/lignin-replay/pkg/engine"
	"github.com/chazu/lignin-replay/pkg/importer"
	"github.com/chazu/lignin-replay/pkg/journal"
	"github.com/chazu/lignin-replay/pkg/kernel/sdfx"
	"github.com/chazu/lignin-replay/pkg/metrics"
	"github.com/chazu/lignin-replay/pkg/tessellate"
)

// lispExtensions select the authoring front end instead of a recorded
// timeline.
var lispExtensions = map[string]bool{".lisp": true, ".lsp": true, ".zy": true}

// loadDesign reads a recorded timeline (JSON or YAML) or evaluates an
// authored Lisp design and captures its profile properties.
func (a *app) loadDesign(path string) (*design.Design, error) {
	if !lispExtensions[strings.ToLower(filepath.Ext(path))] {
		return design.Load(path)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, evalErrs, err := engine.NewEngine(engine.WithTimeout(a.cfg.Engine.Timeout.Duration)).Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return nil, fmt.Errorf("%s: %w", path, errors.Join(errs...))
	}
	if err := engine.Capture(d); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// replayOptions are the outputs requested for one replay.
type replayOptions struct {
	stl       string
	meshJSON  string
	metrics   string
	journal   string
	tolerance float64
}

// report is everything a replay produced.
type report struct {
	source   string
	findings []design.Finding
	result   *importer.Result
	err      error
	doc      *sdfx.Document
	elapsed  time.Duration
	runID    string
	stats    *tessellate.Stats
}

// replay loads path, runs it against a fresh document and writes the
// requested outputs. The returned error covers loading and output
// failures; a failed run is reported in report.err.
func (a *app) replay(ctx context.Context, path string, opts replayOptions) (*report, error) {
	d, err := a.loadDesign(path)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	rep := &report{source: path, findings: design.Check(d)}
	for _, f := range rep.findings {
		a.log.Warn("pre-flight finding",
			zap.String("entity", f.Entity), zap.String("severity", f.Severity.String()), zap.String("message", f.Message))
	}

	rep.doc = sdfx.New(sdfx.WithMeshCells(a.cfg.Mesh.Cells))
	im := importer.New(rep.doc, importer.Options{
		Logger:    a.log,
		Tolerance: opts.tolerance,
	})

	started := time.Now()
	rep.result, rep.err = im.Run(ctx, d)
	rep.elapsed = time.Since(started)
	bodies := len(rep.doc.Bodies())

	if opts.journal != "" {
		j, err := journal.Open(opts.journal)
		if err != nil {
			return rep, err
		}
		rep.runID, err = record(ctx, j, path, started, rep, bodies)
		if err != nil {
			return rep, fmt.Errorf("journal: %w", err)
		}
	}

	if opts.metrics != "" {
		c := metrics.NewCollector()
		c.Observe(rep.result, rep.err, bodies)
		if err := c.WriteTextfile(opts.metrics); err != nil {
			return rep, fmt.Errorf("metrics: %w", err)
		}
	}

	if rep.err != nil {
		return rep, nil
	}

	if opts.stl != "" {
		if err := rep.doc.WriteSTL(opts.stl); err != nil {
			return rep, fmt.Errorf("stl: %w", err)
		}
		a.log.Info("wrote stl", zap.String("path", opts.stl))
	}
	if opts.meshJSON != "" {
		if err := a.writeMeshJSON(rep, opts.meshJSON); err != nil {
			return rep, fmt.Errorf("mesh json: %w", err)
		}
	}
	return rep, nil
}

// runRecorder is the part of the journal a replay writes to.
type runRecorder interface {
	Record(ctx context.Context, source string, started time.Time, res *importer.Result, runErr error, bodies int) (string, error)
	Close() error
}

// record writes the run to j and closes it. A Close error is returned when
// Record succeeded.
func record(ctx context.Context, j runRecorder, path string, started time.Time, rep *report, bodies int) (id string, err error) {
	defer func() {
		if cerr := j.Close(); err == nil {
			err = cerr
		}
	}()
	return j.Record(ctx, path, started, rep.result, rep.err, bodies)
}

func (a *app) writeMeshJSON(rep *report, path string) error {
	meshes, err := tessellate.Tessellate(rep.doc.Bodies(), rep.doc)
	if err != nil {
		return err
	}
	stats := tessellate.Summarize(meshes)
	rep.stats = &stats

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tessellate.WriteJSON(f, meshes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
