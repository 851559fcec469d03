package engine

// ============================================================================
// FILTER ENGINE — produces the filtered working set
// ============================================================================
// Predicates apply independently: a record survives only if it satisfies
// every active predicate; unset predicates are no-ops. The inputs are never
// mutated: Apply always returns freshly allocated slices, so downstream
// aggregators can assume a stable pair per recomputation pass.
//
// Timestamps are ISO-8601 strings, so the date range uses plain string
// comparison. The upper bound is calendar-day inclusive: "T23:59:59" is
// appended to DateTo before comparing.
// ============================================================================

// Apply filters the snapshot's interactions and clients with f and returns
// the filtered pair. Empty results are valid outputs, never errors.
func Apply(snap *Snapshot, f Filters) ([]Interaction, []Client) {
	interactions := filterInteractions(snap.Interactions, f)
	clients := filterClients(snap.Clients, f)

	// The province predicate is join-dependent: clients are filtered
	// first, then interactions are kept only when their client survived.
	if f.Province != "" {
		allowed := make(map[string]bool, len(clients))
		for _, c := range clients {
			allowed[c.Code] = true
		}
		kept := interactions[:0:0]
		for _, i := range interactions {
			if allowed[i.ClientCode] {
				kept = append(kept, i)
			}
		}
		interactions = kept
	}

	return interactions, clients
}

func filterInteractions(interactions []Interaction, f Filters) []Interaction {
	dateTo := ""
	if f.DateTo != "" {
		dateTo = f.DateTo + "T23:59:59"
	}
	wantReferred := f.Referred == ReferredYes

	out := make([]Interaction, 0, len(interactions))
	for _, i := range interactions {
		if f.DateFrom != "" && i.SentAt < f.DateFrom {
			continue
		}
		if dateTo != "" && i.SentAt > dateTo {
			continue
		}
		if f.Classification != "" && i.Classification != f.Classification {
			continue
		}
		if f.Status != "" && i.Status != f.Status {
			continue
		}
		// The referral flag is tri-state: rows without a flag match
		// neither the "Sí" nor the "No" selection.
		if f.Referred != "" && (i.Referred == nil || *i.Referred != wantReferred) {
			continue
		}
		if f.AgentCode != "" && i.AgentCode != f.AgentCode {
			continue
		}
		out = append(out, i)
	}
	return out
}

// filterClients applies the agent and province predicates to the client
// collection. The agent predicate runs in parallel with the interaction
// side: same value, two collections, no join through interactions.
func filterClients(clients []Client, f Filters) []Client {
	out := make([]Client, 0, len(clients))
	for _, c := range clients {
		if f.AgentCode != "" && c.AgentCode != f.AgentCode {
			continue
		}
		if f.Province != "" && c.Province != f.Province {
			continue
		}
		out = append(out, c)
	}
	return out
}
