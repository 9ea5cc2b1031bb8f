package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestLedgerRecords(t *testing.T) {
	m := NewLedger()
	start := time.Now().Add(-time.Second)

	if inc := delta(t, blocksMinedTotal, func() {
		m.ObserveMining(nil, 42, start)
	}); inc != 1 {
		t.Fatalf("expected blocks mined increment, got %v", inc)
	}

	if inc := delta(t, blocksMinedTotal, func() {
		m.ObserveMining(errors.New("cancelled"), 0, start)
	}); inc != 0 {
		t.Fatalf("expected no blocks mined increment on error, got %v", inc)
	}

	if inc := delta(t, persistTotal.WithLabelValues("error"), func() {
		m.ObservePersist(errors.New("disk full"), 3, start)
	}); inc != 1 {
		t.Fatalf("expected persist error increment, got %v", inc)
	}
	if got := testutil.ToFloat64(persistConsecutiveFailures); got != 3 {
		t.Fatalf("expected 3 consecutive failures, got %v", got)
	}

	m.SetSizes(7, 2)
	if got := testutil.ToFloat64(chainHeight); got != 7 {
		t.Fatalf("expected chain height 7, got %v", got)
	}
	if got := testutil.ToFloat64(poolSize); got != 2 {
		t.Fatalf("expected pool size 2, got %v", got)
	}

	if inc := delta(t, submittedTotal, m.ObserveSubmit); inc != 1 {
		t.Fatalf("expected submitted increment, got %v", inc)
	}
}

func TestEventsRecords(t *testing.T) {
	m := NewEvents()

	if inc := delta(t, eventsDroppedTotal, func() {
		m.ObserveSend(2)
	}); inc != 2 {
		t.Fatalf("expected dropped increment of 2, got %v", inc)
	}

	m.SetSubscribers(4)
	if got := testutil.ToFloat64(eventsSubscribers); got != 4 {
		t.Fatalf("expected 4 subscribers, got %v", got)
	}
}

func TestWebRecords(t *testing.T) {
	m := NewWeb()
	start := time.Now()

	if inc := delta(t, webRequestsTotal.WithLabelValues("GET", "success"), func() {
		m.ObserveRequest("GET", nil, start)
	}); inc != 1 {
		t.Fatalf("expected request increment, got %v", inc)
	}

	if inc := delta(t, webErrorsTotal, m.IncError); inc != 1 {
		t.Fatalf("expected error increment, got %v", inc)
	}

	if inc := delta(t, webPanicsTotal, m.IncPanic); inc != 1 {
		t.Fatalf("expected panic increment, got %v", inc)
	}
}
