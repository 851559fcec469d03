package engine

// ============================================================================
// TABLE BUILDERS — render-ready rows for the record tables
// ============================================================================
// Joins are resolved through the snapshot index maps; a missing join target
// degrades to the raw code (or "-"), never an error.
// ============================================================================

// DefaultTableLimit caps table output the way the record tables render it.
const DefaultTableLimit = 100

// InteractionRow is one row of the interaction log.
type InteractionRow struct {
	ID             int64  `json:"id"`
	Client         string `json:"client"`
	Agent          string `json:"agent"`
	Classification string `json:"classification"`
	Status         string `json:"status"`
	Referred       bool   `json:"referred"`
	Summary        string `json:"summary"`
	Date           string `json:"date"`
}

// BuildInteractionLog resolves display names for the filtered interactions,
// narrows by the search term, and caps the output at limit rows (0 = no cap).
func BuildInteractionLog(interactions []Interaction, snap *Snapshot, term string, limit int) []InteractionRow {
	rows := make([]InteractionRow, 0, len(interactions))
	for _, i := range interactions {
		if !MatchesInteraction(i, term) {
			continue
		}
		rows = append(rows, InteractionRow{
			ID:             i.ID,
			Client:         snap.ClientName(i.ClientCode),
			Agent:          snap.AgentName(i.AgentCode, "-"),
			Classification: i.Classification,
			Status:         i.Status,
			Referred:       i.IsReferred(),
			Summary:        i.Summary,
			Date:           i.SentDate(),
		})
		if limit > 0 && len(rows) == limit {
			break
		}
	}
	return rows
}

// ClientRow is one row of the client directory.
type ClientRow struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Province     string `json:"province"`
	Locality     string `json:"locality"`
	Sector       string `json:"sector"`
	Agent        string `json:"agent"`
	Email        string `json:"email"`
	Interactions int    `json:"interactions"`
}

// BuildClientDirectory builds directory rows from the filtered clients,
// reusing the per-client interaction count map from the client aggregator.
func BuildClientDirectory(clients []Client, counts map[string]int, snap *Snapshot, term string, limit int) []ClientRow {
	rows := make([]ClientRow, 0, len(clients))
	for _, c := range clients {
		if !MatchesClient(c, term) {
			continue
		}
		rows = append(rows, ClientRow{
			Code:         c.Code,
			Name:         c.Name,
			Province:     c.Province,
			Locality:     c.Locality,
			Sector:       c.Sector,
			Agent:        snap.AgentName(c.AgentCode, c.AgentCode),
			Email:        c.Email,
			Interactions: counts[c.Code],
		})
		if limit > 0 && len(rows) == limit {
			break
		}
	}
	return rows
}
