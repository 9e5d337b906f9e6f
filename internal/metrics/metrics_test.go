package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMustRegister(t *testing.T) {
	MustRegister(prometheus.NewRegistry())
}

func TestObserve(t *testing.T) {
	before := testutil.ToFloat64(StoreOperations.WithLabelValues("test", "op", "error"))
	Observe("test", "op", errors.New("boom"))
	Observe("test", "op", nil)

	if got := testutil.ToFloat64(StoreOperations.WithLabelValues("test", "op", "error")); got != before+1 {
		t.Errorf("error count = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(StoreOperations.WithLabelValues("test", "op", "ok")); got < 1 {
		t.Errorf("ok count = %v", got)
	}
}

func TestExported(t *testing.T) {
	Exported("csv", 100, nil)
	Exported("csv", 0, errors.New("fail"))

	if got := testutil.ToFloat64(ExportsTotal.WithLabelValues("csv", "ok")); got < 1 {
		t.Errorf("ok exports = %v", got)
	}
	if got := testutil.ToFloat64(ExportsTotal.WithLabelValues("csv", "error")); got < 1 {
		t.Errorf("failed exports = %v", got)
	}
}
