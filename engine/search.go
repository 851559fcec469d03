package engine

import (
	"encoding/json"
	"strings"
)

// ============================================================================
// SEARCH — free-text matching for the record tables
// ============================================================================
// Applied downstream of the filter engine, never part of the aggregation
// contract: the aggregators see the filtered pair, the tables additionally
// narrow by the search term.
// ============================================================================

// interactionDoc is the searchable projection of an interaction: the
// stored column names and raw values, so a term can hit either side.
type interactionDoc struct {
	ID             int64  `json:"id"`
	ClientCode     string `json:"client_codigo"`
	AgentCode      string `json:"vendedor_codigo"`
	Summary        string `json:"resumen"`
	Classification string `json:"clasificacion"`
	Status         string `json:"estado"`
	Referred       *bool  `json:"derivado"`
	SentAt         string `json:"fecha_envio"`
	RespondedAt    string `json:"fecha_respuesta"`
}

// MatchesInteraction reports whether the interaction's serialized content
// contains the term, case-insensitively. An empty term matches everything.
func MatchesInteraction(i Interaction, term string) bool {
	if term == "" {
		return true
	}
	raw, err := json.Marshal(interactionDoc{
		ID:             i.ID,
		ClientCode:     i.ClientCode,
		AgentCode:      i.AgentCode,
		Summary:        i.Summary,
		Classification: i.Classification,
		Status:         i.Status,
		Referred:       i.Referred,
		SentAt:         i.SentAt,
		RespondedAt:    i.RespondedAt,
	})
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(raw)), strings.ToLower(term))
}

// MatchesClient matches on the client's name or code.
func MatchesClient(c Client, term string) bool {
	return matchesNameOrCode(c.Name, c.Code, term)
}

// MatchesAgent matches on the agent's name or code.
func MatchesAgent(a Agent, term string) bool {
	return matchesNameOrCode(a.Name, a.Code, term)
}

func matchesNameOrCode(name, code, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(name), term) ||
		strings.Contains(strings.ToLower(code), term)
}
