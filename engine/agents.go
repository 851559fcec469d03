package engine

import (
	"math"
	"sort"
	"time"
)

// ============================================================================
// AGENT AGGREGATOR — performance table, referral effectiveness, delay alerts
// ============================================================================
// Two independent halves share the agent collection:
//
//   (a) the per-agent performance table, scoped to the filtered pair;
//   (b) referral effectiveness (filtered) plus the overdue-referral ranking,
//       which scans the UNFILTERED interaction set so that alerts stay
//       visible no matter which filters are active.
// ============================================================================

const delayRankingLimit = 10

// Display values for the referral pie and unassigned agents.
const (
	labelContacted  = "Contactados"
	labelPending    = "Pendientes"
	labelUnassigned = "Sin Asignar"
)

// BuildAgentStats computes the agent-view metrics. The base agent list is
// the whole collection, or the single selected agent when an agent filter
// is active. now anchors the delay computation.
func BuildAgentStats(snap *Snapshot, interactions []Interaction, clients []Client, agentFilter string, now time.Time) *AgentStats {
	baseAgents := snap.Agents
	if agentFilter != "" {
		baseAgents = nil
		for _, a := range snap.Agents {
			if a.Code == agentFilter {
				baseAgents = append(baseAgents, a)
			}
		}
	}

	stats := &AgentStats{
		List: make([]AgentPerformance, 0, len(baseAgents)),
	}

	// (a) Performance table.
	for _, a := range baseAgents {
		row := AgentPerformance{
			Code:   a.Code,
			Name:   a.Name,
			Lab:    a.Lab,
			Active: a.Active,
		}
		for _, i := range interactions {
			if i.AgentCode != a.Code {
				continue
			}
			row.Interactions++
			if i.Classification == ClassPurchase {
				row.Purchases++
			}
			if i.IsReferred() {
				row.Referred++
			}
		}
		for _, c := range clients {
			if c.AgentCode == a.Code {
				row.Clients++
			}
		}
		row.Conversion = conversionPercent(row.Purchases, row.Interactions)

		stats.List = append(stats.List, row)
		if a.Active {
			stats.ActiveCount++
		}
		stats.TotalInteractions += row.Interactions
		stats.TotalPurchases += row.Purchases
	}
	stats.AvgConversion = conversionPercent(stats.TotalPurchases, stats.TotalInteractions)

	// (b) Referral effectiveness over the filtered set.
	for _, i := range interactions {
		if !i.IsReferred() {
			continue
		}
		stats.TotalReferred++
		if i.Status == StatusResponded {
			stats.TotalContacted++
		}
	}
	stats.ReferralPie = buildPie([]PieSlice{
		{Name: labelContacted, Value: stats.TotalContacted, Color: colorTeal},
		{Name: labelPending, Value: stats.TotalReferred - stats.TotalContacted, Color: colorRose},
	})

	stats.DelayRanking = buildDelayRanking(snap, now)

	return stats
}

// buildDelayRanking selects every referred-and-unanswered interaction from
// the full snapshot, ages it in whole days, and keeps the ten most overdue.
func buildDelayRanking(snap *Snapshot, now time.Time) []DelayedReferral {
	ranking := make([]DelayedReferral, 0)
	for _, i := range snap.Interactions {
		if !i.IsReferred() || i.Status == StatusResponded {
			continue
		}

		date := i.SentDate()
		if date == "" {
			date = "-"
		}

		ranking = append(ranking, DelayedReferral{
			ID:          i.ID,
			AgentCode:   i.AgentCode,
			AgentName:   snap.AgentName(i.AgentCode, labelUnassigned),
			ClientName:  snap.ClientName(i.ClientCode),
			Date:        date,
			DaysDelayed: daysDelayed(i.SentAt, now),
		})
	}

	sort.Slice(ranking, func(a, b int) bool {
		if ranking[a].DaysDelayed != ranking[b].DaysDelayed {
			return ranking[a].DaysDelayed > ranking[b].DaysDelayed
		}
		return ranking[a].ID < ranking[b].ID
	})
	if len(ranking) > delayRankingLimit {
		ranking = ranking[:delayRankingLimit]
	}
	return ranking
}

// daysDelayed ages a send timestamp: ceil(|now-sent| / 24h). A missing or
// unparseable timestamp is treated as "now", yielding age 0.
func daysDelayed(sentAt string, now time.Time) int {
	sent, ok := parseTimestamp(sentAt)
	if !ok {
		return 0
	}
	diff := now.Sub(sent)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// timestampLayouts covers the send-timestamp shapes seen in the store:
// full RFC 3339, zoneless date-time, and bare calendar day.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
