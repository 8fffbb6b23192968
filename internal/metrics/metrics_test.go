package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncTurn(t *testing.T) {
	before := testutil.ToFloat64(chatTurnsTotal.WithLabelValues("timed_out"))
	IncTurn("timed_out")
	IncTurn("timed_out")
	if got := testutil.ToFloat64(chatTurnsTotal.WithLabelValues("timed_out")); got != before+2 {
		t.Fatalf("want %v, got %v", before+2, got)
	}
}

func TestObserveServiceCall_LabelsFailure(t *testing.T) {
	err := errors.New("boom")
	ObserveServiceCall("status", time.Now(), &err)
	ObserveServiceCall("status", time.Now(), nil)
	if n := testutil.CollectAndCount(serviceCallsLatencyMs); n != 2 {
		t.Fatalf("want 2 label sets, got %d", n)
	}
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	MustRegister()
	MustRegister()
}
