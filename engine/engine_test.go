package engine

import (
	"reflect"
	"testing"
	"time"
)

// ============================================================================
// ENGINE TESTS — filter state lifecycle and recomputation
// ============================================================================

func mustDate(t *testing.T, day string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", day)
	if err != nil {
		t.Fatalf("bad test date %q: %v", day, err)
	}
	return ts
}

func fixedClock(t *testing.T, day string) func() time.Time {
	ts := mustDate(t, day)
	return func() time.Time { return ts }
}

func TestNewStartsWithDefaultWindow(t *testing.T) {
	eng := New(testSnapshot(), WithClock(fixedClock(t, "2024-03-31")))

	f := eng.Filters()
	if f.DateFrom != "2024-01-01" || f.DateTo != "2024-03-31" {
		t.Errorf("default window = %q..%q, want 2024-01-01..2024-03-31", f.DateFrom, f.DateTo)
	}
}

func TestSettersMutateOneFieldEach(t *testing.T) {
	eng := New(testSnapshot(), WithClock(fixedClock(t, "2024-03-31")))

	eng.SetProvince("Córdoba")
	eng.SetClassification(ClassPurchase)

	f := eng.Filters()
	if f.Province != "Córdoba" || f.Classification != ClassPurchase {
		t.Errorf("setters not applied: %+v", f)
	}
	if f.DateFrom != "2024-01-01" {
		t.Errorf("SetProvince touched DateFrom: %q", f.DateFrom)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	eng := New(testSnapshot(), WithClock(fixedClock(t, "2024-03-31")))

	eng.SetFilters(Filters{
		DateFrom:  "2020-01-01",
		DateTo:    "2020-12-31",
		AgentCode: "A1",
		Province:  "Córdoba",
		Referred:  ReferredYes,
	})
	eng.Reset()

	if got, want := eng.Filters(), DefaultFilters(mustDate(t, "2024-03-31")); got != want {
		t.Errorf("after Reset: %+v, want %+v", got, want)
	}
}

func TestRecomputeReturnsFreshResults(t *testing.T) {
	eng := New(testSnapshot(), WithClock(fixedClock(t, "2024-03-31")))

	first := eng.Recompute()
	second := eng.Recompute()

	if first == second || first.Overview == second.Overview {
		t.Error("Recompute must allocate fresh result structures")
	}
}

func TestRecomputeIsDeterministic(t *testing.T) {
	eng := New(testSnapshot(), WithClock(fixedClock(t, "2024-03-31")))
	eng.SetProvince("Córdoba")

	first := eng.Recompute()
	second := eng.Recompute()

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical dashboards")
	}
}

func TestReplaceSnapshotFeedsNextRecompute(t *testing.T) {
	eng := New(testSnapshot(), WithClock(fixedClock(t, "2024-03-31")))
	eng.SetFilters(Filters{})

	eng.ReplaceSnapshot(NewSnapshot(nil, nil, nil, nil))
	d := eng.Recompute()

	if d.Overview.Total != 0 {
		t.Errorf("Total = %d after empty snapshot swap, want 0", d.Overview.Total)
	}
}

func TestRecomputeEmptySnapshotYieldsDefaults(t *testing.T) {
	eng := New(NewSnapshot(nil, nil, nil, nil), WithClock(fixedClock(t, "2024-03-31")))
	d := eng.Recompute()

	if d.Overview.Total != 0 || d.Overview.UniqueClients != 0 {
		t.Errorf("overview counts = %d/%d, want 0/0", d.Overview.Total, d.Overview.UniqueClients)
	}
	if d.Overview.Responded.Rate != "0" {
		t.Errorf("responded rate = %q, want \"0\"", d.Overview.Responded.Rate)
	}
	if d.Agents.AvgConversion != "0.0" {
		t.Errorf("avg conversion = %q, want \"0.0\"", d.Agents.AvgConversion)
	}
	if len(d.Geo.Provinces) != len(KnownProvinces) {
		t.Errorf("geo buckets = %d, want %d", len(d.Geo.Provinces), len(KnownProvinces))
	}
}
