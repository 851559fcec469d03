package engine

import "sort"

// ============================================================================
// GEOGRAPHIC AGGREGATOR — per-province rollup for the map view
// ============================================================================
// Always computed over the FULL client and interaction collections: the map
// shows national coverage regardless of the active filter state. Provinces
// outside the known set are silently dropped; they never create buckets.
// ============================================================================

// GeoMetric selects which bucket value drives the map display.
type GeoMetric string

const (
	MetricClients      GeoMetric = "clients"
	MetricInteractions GeoMetric = "interactions"
	MetricPurchases    GeoMetric = "purchases"
)

// Valid reports whether m is a displayable metric.
func (m GeoMetric) Valid() bool {
	switch m {
	case MetricClients, MetricInteractions, MetricPurchases:
		return true
	}
	return false
}

// Value extracts the metric value from a bucket.
func (b GeoBucket) Value(m GeoMetric) int {
	switch m {
	case MetricClients:
		return b.Clients
	case MetricPurchases:
		return b.Purchases
	default:
		return b.Interactions
	}
}

// KnownProvinces is the static set of map buckets, including the spelling
// aliases under which the capital district appears in client records.
var KnownProvinces = []string{
	"Buenos Aires",
	"CABA",
	"Ciudad Autónoma de Buenos Aires",
	"Capital Federal",
	"Catamarca",
	"Chaco",
	"Chubut",
	"Córdoba",
	"Corrientes",
	"Entre Ríos",
	"Formosa",
	"Jujuy",
	"La Pampa",
	"La Rioja",
	"Mendoza",
	"Misiones",
	"Neuquén",
	"Río Negro",
	"Salta",
	"San Juan",
	"San Luis",
	"Santa Cruz",
	"Santa Fe",
	"Santiago del Estero",
	"Tierra del Fuego",
	"Tucumán",
}

// Bubble radius range of the map's linear scale.
const (
	minBubbleRadius = 4.0
	maxBubbleRadius = 25.0
)

// BuildGeoStats rolls the full dataset up by known province: client counts
// directly, interaction and purchase counts through the owning client's
// province.
func BuildGeoStats(snap *Snapshot) *GeoStats {
	buckets := make(map[string]GeoBucket, len(KnownProvinces))
	for _, p := range KnownProvinces {
		buckets[p] = GeoBucket{}
	}

	for _, c := range snap.Clients {
		b, known := buckets[c.Province]
		if !known {
			continue
		}
		b.Clients++
		buckets[c.Province] = b
	}

	provinceOf := make(map[string]string, len(snap.Clients))
	for _, c := range snap.Clients {
		provinceOf[c.Code] = c.Province
	}

	for _, i := range snap.Interactions {
		province := provinceOf[i.ClientCode]
		b, known := buckets[province]
		if !known {
			continue
		}
		b.Interactions++
		if i.Classification == ClassPurchase {
			b.Purchases++
		}
		buckets[province] = b
	}

	return &GeoStats{Provinces: buckets}
}

// Max returns the largest bucket value for the metric, floored at 1 so the
// bubble scale never divides by zero.
func (g *GeoStats) Max(m GeoMetric) int {
	max := 1
	for _, b := range g.Provinces {
		if v := b.Value(m); v > max {
			max = v
		}
	}
	return max
}

// Top ranks provinces by the metric descending (name ascending on ties)
// and keeps the first n.
func (g *GeoStats) Top(m GeoMetric, n int) []ProvinceRank {
	ranks := make([]ProvinceRank, 0, len(g.Provinces))
	for name, b := range g.Provinces {
		ranks = append(ranks, ProvinceRank{Name: name, Value: b.Value(m)})
	}
	sort.Slice(ranks, func(a, b int) bool {
		if ranks[a].Value != ranks[b].Value {
			return ranks[a].Value > ranks[b].Value
		}
		return ranks[a].Name < ranks[b].Name
	})
	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}

// BubbleRadius maps a bucket value onto the map's radius range with a
// linear scale from [0, max] to [4, 25].
func BubbleRadius(value, max int) float64 {
	if max < 1 {
		max = 1
	}
	return minBubbleRadius + (maxBubbleRadius-minBubbleRadius)*float64(value)/float64(max)
}
