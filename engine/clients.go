package engine

import "sort"

// ============================================================================
// CLIENT AGGREGATOR — directory KPIs, sector/province histograms
// ============================================================================

const (
	provinceHistogramLimit = 10

	// Default buckets for absent categorical fields.
	bucketNoSector   = "Sin Sector"
	bucketNoProvince = "N/A"
)

// BuildClientStats computes the client-view metrics from the filtered pair.
// The per-client interaction count map is built once here and reused by the
// client directory table.
func BuildClientStats(clients []Client, interactions []Interaction) *ClientStats {
	counts := make(map[string]int)
	active := make(map[string]bool)
	for _, i := range interactions {
		counts[i.ClientCode]++
		active[i.ClientCode] = true
	}

	sectors := make(map[string]int)
	provinces := make(map[string]int)
	for _, c := range clients {
		sector := c.Sector
		if sector == "" {
			sector = bucketNoSector
		}
		sectors[sector]++

		province := c.Province
		if province == "" {
			province = bucketNoProvince
		}
		provinces[province]++
	}

	return &ClientStats{
		TotalClients:       len(clients),
		TotalInteractions:  len(interactions),
		WithInteraction:    len(active),
		WithoutInteraction: len(clients) - len(active), // signed on purpose
		ProvinceCount:      len(provinces),
		SectorHistogram:    buildHistogram(sectors, 0),
		ProvinceHistogram:  buildHistogram(provinces, provinceHistogramLimit),
		InteractionCounts:  counts,
	}
}

// buildHistogram sorts buckets by count descending (name ascending on ties,
// so identical inputs always produce identical output) and truncates to
// limit when limit > 0.
func buildHistogram(buckets map[string]int, limit int) []HistogramBucket {
	out := make([]HistogramBucket, 0, len(buckets))
	for name, value := range buckets {
		out = append(out, HistogramBucket{Name: name, Value: value})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Value != out[b].Value {
			return out[a].Value > out[b].Value
		}
		return out[a].Name < out[b].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
