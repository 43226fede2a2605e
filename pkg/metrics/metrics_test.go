package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/lignin-replay/pkg/importer"
)

func sampleResult() *importer.Result {
	return &importer.Result{Entities: []importer.EntityOutcome{
		{Type: "Sketch", Profiles: 3, Unmatched: 1, Duration: 2 * time.Millisecond},
		{Type: "ConstructionPlane", Skipped: true},
		{Type: "ExtrudeFeature", Feature: "f-1", Duration: 5 * time.Millisecond},
	}}
}

func TestObserveSuccessfulRun(t *testing.T) {
	c := NewCollector()
	c.Observe(sampleResult(), nil, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Runs.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.Runs.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Entities.WithLabelValues("Sketch", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Entities.WithLabelValues("ConstructionPlane", "skipped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Profiles.WithLabelValues("matched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Profiles.WithLabelValues("unmatched")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Bodies))
	assert.Equal(t, 2, testutil.CollectAndCount(c.EntityDuration))
}

func TestObserveFailedRun(t *testing.T) {
	c := NewCollector()
	cause := errors.New("boom")
	res := &importer.Result{Entities: []importer.EntityOutcome{
		{Type: "ExtrudeFeature", Err: cause},
		{ID: "ghost", Err: cause},
	}}
	c.Observe(res, cause, 0)
	c.Observe(nil, cause, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Runs.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Entities.WithLabelValues("ExtrudeFeature", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Entities.WithLabelValues("unknown", "failed")))
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := NewCollector(), NewCollector()
	a.Observe(sampleResult(), nil, 1)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Runs.WithLabelValues("ok")))
}

func TestWriteTextfile(t *testing.T) {
	c := NewCollector()
	c.Observe(sampleResult(), nil, 1)

	path := filepath.Join(t.TempDir(), "replay.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `lignin_replay_runs_total{status="ok"} 1`), text)
	assert.True(t, strings.Contains(text, "lignin_replay_bodies 1"), text)
}
