package engine

import (
	"reflect"
	"testing"
)

// ============================================================================
// GEOGRAPHIC AGGREGATOR TESTS
// ============================================================================

func TestBuildGeoStatsBucketsEveryKnownProvince(t *testing.T) {
	g := BuildGeoStats(NewSnapshot(nil, nil, nil, nil))

	if len(g.Provinces) != len(KnownProvinces) {
		t.Fatalf("buckets = %d, want %d", len(g.Provinces), len(KnownProvinces))
	}
	for _, p := range KnownProvinces {
		if _, ok := g.Provinces[p]; !ok {
			t.Errorf("missing bucket for %q", p)
		}
	}
}

func TestBuildGeoStatsRollup(t *testing.T) {
	snap := testSnapshot()
	g := BuildGeoStats(snap)

	cordoba := g.Provinces["Córdoba"]
	// C1 and C3 live in Córdoba; their interactions are IDs 1, 3, 4 with
	// two purchases.
	if cordoba.Clients != 2 || cordoba.Interactions != 3 || cordoba.Purchases != 2 {
		t.Errorf("Córdoba = %+v, want {2 3 2}", cordoba)
	}

	ba := g.Provinces["Buenos Aires"]
	if ba.Clients != 1 || ba.Interactions != 1 || ba.Purchases != 0 {
		t.Errorf("Buenos Aires = %+v, want {1 1 0}", ba)
	}
}

func TestBuildGeoStatsDropsUnknownProvinces(t *testing.T) {
	clients := []Client{
		{Code: "C1", Province: "Narnia"},
		{Code: "C2", Province: ""},
	}
	interactions := []Interaction{
		{ID: 1, ClientCode: "C1", Classification: ClassPurchase},
	}
	g := BuildGeoStats(NewSnapshot(interactions, clients, nil, nil))

	if len(g.Provinces) != len(KnownProvinces) {
		t.Errorf("unknown provinces must not create buckets, got %d", len(g.Provinces))
	}
	for name, b := range g.Provinces {
		if b.Clients != 0 || b.Interactions != 0 {
			t.Errorf("bucket %q = %+v, want zero", name, b)
		}
	}
}

func TestGeoMetricValid(t *testing.T) {
	for _, m := range []GeoMetric{MetricClients, MetricInteractions, MetricPurchases} {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if GeoMetric("revenue").Valid() {
		t.Error("unknown metric should be invalid")
	}
}

func TestGeoStatsMaxFloorsAtOne(t *testing.T) {
	g := BuildGeoStats(NewSnapshot(nil, nil, nil, nil))
	if got := g.Max(MetricClients); got != 1 {
		t.Errorf("Max on empty data = %d, want 1", got)
	}

	g = BuildGeoStats(testSnapshot())
	if got := g.Max(MetricInteractions); got != 3 {
		t.Errorf("Max = %d, want 3", got)
	}
}

func TestGeoStatsTop(t *testing.T) {
	g := BuildGeoStats(testSnapshot())
	top := g.Top(MetricClients, 2)

	want := []ProvinceRank{
		{Name: "Córdoba", Value: 2},
		{Name: "Buenos Aires", Value: 1},
	}
	if !reflect.DeepEqual(top, want) {
		t.Errorf("Top = %v, want %v", top, want)
	}
}

func TestBubbleRadius(t *testing.T) {
	if got := BubbleRadius(0, 100); got != 4.0 {
		t.Errorf("radius(0) = %v, want 4", got)
	}
	if got := BubbleRadius(100, 100); got != 25.0 {
		t.Errorf("radius(max) = %v, want 25", got)
	}
	if got := BubbleRadius(50, 100); got != 14.5 {
		t.Errorf("radius(half) = %v, want 14.5", got)
	}
	// A degenerate max never divides by zero.
	if got := BubbleRadius(0, 0); got != 4.0 {
		t.Errorf("radius(0,0) = %v, want 4", got)
	}
}
