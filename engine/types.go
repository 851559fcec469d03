package engine

import "time"

// ============================================================================
// TABLERO ENGINE TYPES — CRM Dashboard Analytics
// ============================================================================
// Four immutable record collections per load (interactions, clients, agents,
// follow-ups), one mutable filter state, and fully recomputed view models.
//
// Dependency: engine has ZERO external dependencies.
// ============================================================================

// Canonical classification values for an interaction outcome.
const (
	ClassPurchase = "COMPRA"
	ClassInfo     = "INFO"
	ClassChurn    = "BAJA"
)

// StatusResponded is the status value meaning the counterpart replied.
const StatusResponded = "respondido"

// ReferredYes is the tri-state filter value selecting referred interactions.
const ReferredYes = "Sí"

// Fixed display colors shared by the classification and referral pies.
const (
	colorTeal = "#2DD4A8"
	colorBlue = "#3B82F6"
	colorRose = "#F43F5E"
)

// ============================================================================
// RECORDS — flat shapes as delivered by the record store
// ============================================================================

// Interaction is one outbound bot contact with a client.
// Classification is already reconciled to a single canonical field by the
// store layer; the engine never sees the two historical spellings.
type Interaction struct {
	ID             int64  `json:"id"`
	ClientCode     string `json:"clientCode"` // always present
	AgentCode      string `json:"agentCode"`  // empty = unassigned
	Classification string `json:"classification"`
	Status         string `json:"status"`
	Referred       *bool  `json:"referred"` // nil = flag absent in the source row
	SentAt         string `json:"sentAt"`   // ISO-8601, empty when absent
	RespondedAt    string `json:"respondedAt"`
	Summary        string `json:"summary"`
}

// IsReferred reports an explicit true referral flag.
func (i Interaction) IsReferred() bool {
	return i.Referred != nil && *i.Referred
}

// Bool returns a pointer to v, for building referral flags in place.
func Bool(v bool) *bool { return &v }

// SentDate returns the calendar-day part of SentAt, or "" when absent.
func (i Interaction) SentDate() string {
	for p := 0; p < len(i.SentAt); p++ {
		if i.SentAt[p] == 'T' {
			return i.SentAt[:p]
		}
	}
	return i.SentAt
}

// Client is one customer account. Code is the join key used by Interaction.
type Client struct {
	Code      string `json:"code"` // unique
	Name      string `json:"name"`
	Province  string `json:"province"`
	Locality  string `json:"locality"`
	Sector    string `json:"sector"`
	Email     string `json:"email"`
	AgentCode string `json:"agentCode"`
}

// Agent is one sales representative. Code is the join key used by both
// Interaction and Client.
type Agent struct {
	Code   string `json:"code"` // unique
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Lab    string `json:"lab"`
	Active bool   `json:"active"`
}

// FollowUp is one manual follow-up record. Loaded as the fourth snapshot
// collection and passed through to the presentation layer unaggregated.
type FollowUp struct {
	ID           int64  `json:"id"`
	SentDate     string `json:"sentDate"`
	SentTime     string `json:"sentTime"`
	ResponseDate string `json:"responseDate"`
	ResponseTime string `json:"responseTime"`
	ClientID     string `json:"clientId"`
	AgentID      string `json:"agentId"`
	Contacted    bool   `json:"contacted"`
}

// ============================================================================
// SNAPSHOT — one immutable load of the four collections
// ============================================================================

// Snapshot bundles the four record collections of one load together with
// code→record index maps built once and reused by every aggregator pass.
type Snapshot struct {
	Interactions []Interaction
	Clients      []Client
	Agents       []Agent
	FollowUps    []FollowUp

	clientsByCode map[string]int
	agentsByCode  map[string]int
}

// NewSnapshot indexes the collections and returns a snapshot.
func NewSnapshot(interactions []Interaction, clients []Client, agents []Agent, followUps []FollowUp) *Snapshot {
	s := &Snapshot{
		Interactions:  interactions,
		Clients:       clients,
		Agents:        agents,
		FollowUps:     followUps,
		clientsByCode: make(map[string]int, len(clients)),
		agentsByCode:  make(map[string]int, len(agents)),
	}
	for idx, c := range clients {
		s.clientsByCode[c.Code] = idx
	}
	for idx, a := range agents {
		s.agentsByCode[a.Code] = idx
	}
	return s
}

// Client looks up a client by code.
func (s *Snapshot) Client(code string) (Client, bool) {
	idx, ok := s.clientsByCode[code]
	if !ok {
		return Client{}, false
	}
	return s.Clients[idx], true
}

// Agent looks up an agent by code.
func (s *Snapshot) Agent(code string) (Agent, bool) {
	idx, ok := s.agentsByCode[code]
	if !ok {
		return Agent{}, false
	}
	return s.Agents[idx], true
}

// ClientName resolves a client display name, falling back to the raw code.
func (s *Snapshot) ClientName(code string) string {
	if c, ok := s.Client(code); ok && c.Name != "" {
		return c.Name
	}
	return code
}

// AgentName resolves an agent display name, falling back to fallback.
func (s *Snapshot) AgentName(code, fallback string) string {
	if a, ok := s.Agent(code); ok && a.Name != "" {
		return a.Name
	}
	return fallback
}

// ============================================================================
// FILTER STATE
// ============================================================================

// Filters is the mutable filter specification. Empty fields mean
// "no constraint". DateFrom/DateTo are inclusive ISO calendar days.
type Filters struct {
	DateFrom       string `json:"dateFrom"`
	DateTo         string `json:"dateTo"`
	Classification string `json:"classification"`
	Status         string `json:"status"`
	Referred       string `json:"referred"` // "" = off, "Sí" = explicit true, anything else = explicit false
	AgentCode      string `json:"agentCode"`
	Province       string `json:"province"`
}

// IsEmpty reports whether no predicate is set.
func (f Filters) IsEmpty() bool {
	return f == Filters{}
}

// DefaultFilters returns the initial filter state: a trailing 90-day
// window ending today, all other predicates unset.
func DefaultFilters(now time.Time) Filters {
	return Filters{
		DateFrom: now.AddDate(0, 0, -90).Format("2006-01-02"),
		DateTo:   now.Format("2006-01-02"),
	}
}

// ============================================================================
// VIEW MODELS — read-only output structures for the presentation layer
// ============================================================================

// SeriesPoint is one bucket of the daily interaction time series.
type SeriesPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// PieSlice is one slice of a categorical pie. Zero-valued slices are
// omitted from the series by the aggregators.
type PieSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// HistogramBucket is one bar of a categorical histogram.
type HistogramBucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// RateMetric pairs a count with its share of the filtered total,
// formatted with one decimal ("0" when the total is zero).
type RateMetric struct {
	Count int    `json:"count"`
	Rate  string `json:"rate"`
}

// AgentRate is one bar of the per-agent response-rate ranking.
type AgentRate struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Rate int    `json:"rate"` // percent, rounded to nearest integer
}

// Overview carries the KPI and chart data of the summary view.
type Overview struct {
	Total         int `json:"total"`
	UniqueClients int `json:"uniqueClients"`

	Responded RateMetric `json:"responded"`
	Purchase  RateMetric `json:"purchase"`
	Info      RateMetric `json:"info"`
	Churn     RateMetric `json:"churn"`
	Referred  RateMetric `json:"referred"`

	ByDay             []SeriesPoint `json:"byDay"`
	ClassificationPie []PieSlice    `json:"classificationPie"`
	AgentRanking      []AgentRate   `json:"agentRanking"` // top 10 by response rate
}

// ClientStats carries the client-view KPIs and breakdowns.
type ClientStats struct {
	TotalClients      int `json:"totalClients"`
	TotalInteractions int `json:"totalInteractions"`
	WithInteraction   int `json:"withInteraction"`
	// WithoutInteraction preserves the signed value: combined agent and
	// province filters can leave filtered-clients smaller than the client
	// set implied by filtered-interactions, which drives this negative.
	WithoutInteraction int `json:"withoutInteraction"`
	ProvinceCount      int `json:"provinceCount"`

	SectorHistogram   []HistogramBucket `json:"sectorHistogram"`
	ProvinceHistogram []HistogramBucket `json:"provinceHistogram"` // top 10
	InteractionCounts map[string]int    `json:"interactionCounts"` // client code → count
}

// AgentPerformance is one row of the sales-team table.
type AgentPerformance struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Lab          string `json:"lab"`
	Active       bool   `json:"active"`
	Clients      int    `json:"clients"`
	Interactions int    `json:"interactions"`
	Purchases    int    `json:"purchases"`
	Conversion   string `json:"conversion"` // percent, one decimal, "0.0" guard
	Referred     int    `json:"referred"`
}

// DelayedReferral is one entry of the global overdue-referrals ranking.
type DelayedReferral struct {
	ID          int64  `json:"id"`
	AgentCode   string `json:"agentCode"`
	AgentName   string `json:"agentName"`
	ClientName  string `json:"clientName"`
	Date        string `json:"date"` // calendar day of send, "-" when absent
	DaysDelayed int    `json:"daysDelayed"`
}

// AgentStats carries the agent-view table, referral effectiveness and the
// overdue-referral alert list. The alert list is deliberately computed from
// the unfiltered interaction set: operational alerts must not hide overdue
// items behind active filters.
type AgentStats struct {
	List        []AgentPerformance `json:"list"`
	ActiveCount int                `json:"activeCount"`

	TotalInteractions int    `json:"totalInteractions"`
	TotalPurchases    int    `json:"totalPurchases"`
	AvgConversion     string `json:"avgConversion"`

	TotalReferred  int        `json:"totalReferred"`
	TotalContacted int        `json:"totalContacted"`
	ReferralPie    []PieSlice `json:"referralPie"`

	DelayRanking []DelayedReferral `json:"delayRanking"` // top 10, global
}

// GeoBucket is the per-province rollup of the geographic view.
type GeoBucket struct {
	Clients      int `json:"clients"`
	Interactions int `json:"interactions"`
	Purchases    int `json:"purchases"`
}

// ProvinceRank is one row of the top-province ranking.
type ProvinceRank struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// GeoStats is the full geographic rollup keyed by known province.
// It always reflects the complete dataset, independent of filter state.
type GeoStats struct {
	Provinces map[string]GeoBucket `json:"provinces"`
}

// Dashboard bundles every aggregator output of one recomputation pass.
type Dashboard struct {
	Filters  Filters      `json:"filters"`
	Overview *Overview    `json:"overview"`
	Clients  *ClientStats `json:"clients"`
	Agents   *AgentStats  `json:"agents"`
	Geo      *GeoStats    `json:"geo"`
}
