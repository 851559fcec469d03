package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/calier-ar/tablero/engine"
)

// ============================================================================
// REST STORE — bulk reads against a PostgREST-style endpoint
// ============================================================================

// Remote table names. "seguimientio" is the table's real (misspelled) name.
const (
	tableInteractions = "calier_interacciones"
	tableFollowUps    = "calier_seguimientio"
	tableClients      = "calier_clientes"
	tableAgents       = "calier_vendedores"
)

// RESTStore reads full-table snapshots from a PostgREST-compatible API.
type RESTStore struct {
	baseURL string
	anonKey string
	client  *http.Client
}

// RESTOption customises the REST store.
type RESTOption func(*RESTStore)

// WithHTTPClient replaces the underlying HTTP client (tests, custom
// transports). Default: 30s timeout.
func WithHTTPClient(c *http.Client) RESTOption {
	return func(s *RESTStore) { s.client = c }
}

// NewREST creates a store reading from baseURL with the given anon key.
func NewREST(baseURL, anonKey string, opts ...RESTOption) *RESTStore {
	s := &RESTStore{
		baseURL: baseURL,
		anonKey: anonKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fetch GETs /rest/v1/<table>?select=* and decodes the JSON array into out.
func (s *RESTStore) fetch(ctx context.Context, table string, out any) error {
	u := fmt.Sprintf("%s/rest/v1/%s?select=%s", s.baseURL, url.PathEscape(table), url.QueryEscape("*"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("rest: build request for %s: %w", table, err)
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+s.anonKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("rest: fetch %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("rest: fetch %s: status %d: %s", table, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("rest: decode %s: %w", table, err)
	}
	return nil
}

// ============================================================================
// WIRE ROWS — remote column names, nullable fields, reconciliation
// ============================================================================

// interactionRow carries BOTH historical spellings of the classification
// column; toDomain merges them into the canonical field.
type interactionRow struct {
	ID              int64   `json:"id"`
	ClientCode      string  `json:"client_codigo"`
	AgentCode       *string `json:"vendedor_codigo"`
	Summary         *string `json:"resumen"`
	ClassAccented   *string `json:"clasificación"`
	ClassUnaccented *string `json:"clasificacion"`
	Status          *string `json:"estado"`
	Referred        *bool   `json:"derivado"`
	SentAt          *string `json:"fecha_envio"`
	RespondedAt     *string `json:"fecha_respuesta"`
}

func (r interactionRow) toDomain() engine.Interaction {
	classification := deref(r.ClassAccented)
	if classification == "" {
		classification = deref(r.ClassUnaccented)
	}
	return engine.Interaction{
		ID:             r.ID,
		ClientCode:     r.ClientCode,
		AgentCode:      deref(r.AgentCode),
		Classification: classification,
		Status:         deref(r.Status),
		Referred:       r.Referred, // tri-state survives: null stays nil
		SentAt:         deref(r.SentAt),
		RespondedAt:    deref(r.RespondedAt),
		Summary:        deref(r.Summary),
	}
}

type clientRow struct {
	Code      string  `json:"codigo"`
	Name      string  `json:"nombre"`
	Province  string  `json:"provincia"`
	Locality  string  `json:"localidad"`
	Sector    string  `json:"sector"`
	Email     string  `json:"email"`
	AgentCode string  `json:"cod_vendedor"`
	Number    *string `json:"numero"`
}

func (r clientRow) toDomain() engine.Client {
	return engine.Client{
		Code:      r.Code,
		Name:      r.Name,
		Province:  r.Province,
		Locality:  r.Locality,
		Sector:    r.Sector,
		Email:     r.Email,
		AgentCode: r.AgentCode,
	}
}

type agentRow struct {
	Code   string  `json:"codigo"`
	Name   string  `json:"nombre"`
	Email  string  `json:"email"`
	Phone  string  `json:"telefono"`
	Lab    string  `json:"laboratorio"`
	Active bool    `json:"activo"`
	Notes  *string `json:"notas"`
}

func (r agentRow) toDomain() engine.Agent {
	return engine.Agent{
		Code:   r.Code,
		Name:   r.Name,
		Email:  r.Email,
		Phone:  r.Phone,
		Lab:    r.Lab,
		Active: r.Active,
	}
}

type followUpRow struct {
	ID           int64   `json:"id"`
	SentDate     *string `json:"fecha_enviado"`
	SentTime     *string `json:"hora_enviado"`
	ResponseDate *string `json:"fecha_respuesta"`
	ResponseTime *string `json:"hora_respuesta"`
	ClientID     *string `json:"cliente_id"`
	AgentID      *string `json:"vendedor_id"`
	Contacted    *bool   `json:"contactado"`
}

func (r followUpRow) toDomain() engine.FollowUp {
	return engine.FollowUp{
		ID:           r.ID,
		SentDate:     deref(r.SentDate),
		SentTime:     deref(r.SentTime),
		ResponseDate: deref(r.ResponseDate),
		ResponseTime: deref(r.ResponseTime),
		ClientID:     deref(r.ClientID),
		AgentID:      deref(r.AgentID),
		Contacted:    r.Contacted != nil && *r.Contacted,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ============================================================================
// STORE INTERFACE
// ============================================================================

// Interactions reads the full interaction table.
func (s *RESTStore) Interactions(ctx context.Context) ([]engine.Interaction, error) {
	var rows []interactionRow
	if err := s.fetch(ctx, tableInteractions, &rows); err != nil {
		return nil, err
	}
	out := make([]engine.Interaction, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// Clients reads the full client table.
func (s *RESTStore) Clients(ctx context.Context) ([]engine.Client, error) {
	var rows []clientRow
	if err := s.fetch(ctx, tableClients, &rows); err != nil {
		return nil, err
	}
	out := make([]engine.Client, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// Agents reads the full agent table.
func (s *RESTStore) Agents(ctx context.Context) ([]engine.Agent, error) {
	var rows []agentRow
	if err := s.fetch(ctx, tableAgents, &rows); err != nil {
		return nil, err
	}
	out := make([]engine.Agent, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// FollowUps reads the full follow-up table.
func (s *RESTStore) FollowUps(ctx context.Context) ([]engine.FollowUp, error) {
	var rows []followUpRow
	if err := s.fetch(ctx, tableFollowUps, &rows); err != nil {
		return nil, err
	}
	out := make([]engine.FollowUp, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}
