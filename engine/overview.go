package engine

import (
	"math"
	"sort"
	"strconv"
)

// ============================================================================
// OVERVIEW AGGREGATOR — KPIs, daily series, classification pie, agent ranking
// ============================================================================
// Pure function of the filtered interaction set. The full agent collection
// is consulted only to resolve display names for the ranking.
// ============================================================================

const agentRankingLimit = 10

// BuildOverview computes the summary-view metrics from the filtered
// interactions. Zero-length input yields zero counts and "0" rates.
func BuildOverview(interactions []Interaction, snap *Snapshot) *Overview {
	total := len(interactions)

	uniqueClients := make(map[string]bool)
	var responded, purchase, info, churn, referred int
	for _, i := range interactions {
		uniqueClients[i.ClientCode] = true
		if i.Status == StatusResponded {
			responded++
		}
		switch i.Classification {
		case ClassPurchase:
			purchase++
		case ClassInfo:
			info++
		case ClassChurn:
			churn++
		}
		if i.IsReferred() {
			referred++
		}
	}

	o := &Overview{
		Total:         total,
		UniqueClients: len(uniqueClients),
		Responded:     RateMetric{responded, ratePercent(responded, total)},
		Purchase:      RateMetric{purchase, ratePercent(purchase, total)},
		Info:          RateMetric{info, ratePercent(info, total)},
		Churn:         RateMetric{churn, ratePercent(churn, total)},
		Referred:      RateMetric{referred, ratePercent(referred, total)},
	}

	o.ByDay = buildDailySeries(interactions)
	o.ClassificationPie = buildPie([]PieSlice{
		{Name: ClassPurchase, Value: purchase, Color: colorTeal},
		{Name: ClassInfo, Value: info, Color: colorBlue},
		{Name: ClassChurn, Value: churn, Color: colorRose},
	})
	o.AgentRanking = buildAgentRanking(interactions, snap)

	return o
}

// buildDailySeries groups interactions by calendar day, ascending by date.
// Records without a send timestamp fall into the "N/A" bucket.
func buildDailySeries(interactions []Interaction) []SeriesPoint {
	byDay := make(map[string]int)
	for _, i := range interactions {
		day := i.SentDate()
		if day == "" {
			day = "N/A"
		}
		byDay[day]++
	}

	series := make([]SeriesPoint, 0, len(byDay))
	for day, count := range byDay {
		series = append(series, SeriesPoint{Date: day, Count: count})
	}
	sort.Slice(series, func(a, b int) bool { return series[a].Date < series[b].Date })
	return series
}

// buildAgentRanking computes responded/total per agent (unassigned
// interactions are skipped), resolves display names, and keeps the top 10
// by rate descending.
func buildAgentRanking(interactions []Interaction, snap *Snapshot) []AgentRate {
	type tally struct{ total, responded int }
	byAgent := make(map[string]*tally)
	for _, i := range interactions {
		if i.AgentCode == "" {
			continue
		}
		t := byAgent[i.AgentCode]
		if t == nil {
			t = &tally{}
			byAgent[i.AgentCode] = t
		}
		t.total++
		if i.Status == StatusResponded {
			t.responded++
		}
	}

	ranking := make([]AgentRate, 0, len(byAgent))
	for code, t := range byAgent {
		rate := 0
		if t.total > 0 {
			rate = int(math.Round(float64(t.responded) / float64(t.total) * 100))
		}
		ranking = append(ranking, AgentRate{
			Code: code,
			Name: snap.AgentName(code, code),
			Rate: rate,
		})
	}
	sort.Slice(ranking, func(a, b int) bool {
		if ranking[a].Rate != ranking[b].Rate {
			return ranking[a].Rate > ranking[b].Rate
		}
		return ranking[a].Code < ranking[b].Code
	})
	if len(ranking) > agentRankingLimit {
		ranking = ranking[:agentRankingLimit]
	}
	return ranking
}

// buildPie drops zero-valued slices, preserving the given order.
func buildPie(slices []PieSlice) []PieSlice {
	out := make([]PieSlice, 0, len(slices))
	for _, s := range slices {
		if s.Value > 0 {
			out = append(out, s)
		}
	}
	return out
}

// ratePercent formats count/total*100 with one decimal. A zero total yields
// the literal "0"; the presentation layer renders it as-is, never a
// division fault.
func ratePercent(count, total int) string {
	if total == 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(count)/float64(total)*100, 'f', 1, 64)
}

// conversionPercent is the same ratio with the sales-team zero guard "0.0".
func conversionPercent(count, total int) string {
	if total == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(float64(count)/float64(total)*100, 'f', 1, 64)
}
