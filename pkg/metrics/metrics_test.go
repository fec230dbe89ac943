package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/df07/go-wavefront-tracer/pkg/kernel"
)

func TestMetrics_ObserveDecision(t *testing.T) {
	m := New()
	m.ObserveDecision(kernel.DeviceKernelTerminated)
	m.ObserveDecision(kernel.DeviceKernelTerminated)
	m.ObserveDecision(kernel.DeviceKernelShadeSurfaceRaytrace)

	if got := testutil.ToFloat64(m.pathsShaded); got != 3 {
		t.Errorf("paths shaded = %f, want 3", got)
	}
	if got := testutil.ToFloat64(m.stageDecisions.WithLabelValues("terminated")); got != 2 {
		t.Errorf("terminated decisions = %f, want 2", got)
	}
	if got := testutil.ToFloat64(m.stageDecisions.WithLabelValues("shade_surface_raytrace")); got != 1 {
		t.Errorf("raytrace decisions = %f, want 1", got)
	}
}

func TestMetrics_Registry(t *testing.T) {
	m := New()
	m.ObserveBatch(5 * time.Millisecond)
	m.ObserveRender("ok")

	expected := `
# HELP wavefront_renders_total Total renders by result
# TYPE wavefront_renders_total counter
wavefront_renders_total{result="ok"} 1
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "wavefront_renders_total"); err != nil {
		t.Error(err)
	}

	if got := testutil.CollectAndCount(m.batchDuration); got != 1 {
		t.Errorf("batch histogram series = %d, want 1", got)
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveRender("ok")
	if got := testutil.ToFloat64(b.rendersTotal.WithLabelValues("ok")); got != 0 {
		t.Errorf("second registry saw %f renders, want 0", got)
	}
}
