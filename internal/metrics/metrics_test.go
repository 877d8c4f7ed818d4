package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNew(reg)

	m.ObserveRequest("/playlist/monthly", "200", 10*time.Millisecond)
	m.ObserveRequest("/playlist/monthly", "200", 20*time.Millisecond)
	m.ObserveUpload(nil)
	m.ObserveUpload(errors.New("denied"))
	m.ObserveRender("monthly", time.Millisecond, nil)
	m.RenderStarted()

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/playlist/monthly", "200")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.uploads.WithLabelValues("error")); got != 1 {
		t.Errorf("failed uploads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rendersActive); got != 1 {
		t.Errorf("renders active = %v, want 1", got)
	}
	m.RenderFinished()
	if got := testutil.ToFloat64(m.rendersActive); got != 0 {
		t.Errorf("renders active = %v, want 0", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("/", "200", time.Second)
	m.ObserveRender("weekly", time.Second, nil)
	m.ObserveUpload(nil)
	m.RenderStarted()
	m.RenderFinished()
}
