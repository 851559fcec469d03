package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// ============================================================================
// REST STORE TESTS
// ============================================================================

func newTestREST(t *testing.T, handler http.HandlerFunc) *RESTStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewREST(srv.URL, "test-key", WithHTTPClient(srv.Client()))
}

func TestRESTInteractionsDecodesRows(t *testing.T) {
	s := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/calier_interacciones" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("select") != "*" {
			t.Errorf("select = %q, want *", r.URL.Query().Get("select"))
		}
		if r.Header.Get("apikey") != "test-key" {
			t.Errorf("apikey header = %q", r.Header.Get("apikey"))
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("authorization header = %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "client_codigo": "C1", "vendedor_codigo": "A1",
			 "clasificación": "COMPRA", "estado": "respondido",
			 "derivado": true, "fecha_envio": "2024-03-01T10:00:00",
			 "resumen": "pedido"},
			{"id": 2, "client_codigo": "C2", "vendedor_codigo": null,
			 "clasificacion": "INFO", "estado": null,
			 "derivado": null, "fecha_envio": null, "resumen": null}
		]`))
	})

	rows, err := s.Interactions(context.Background())
	if err != nil {
		t.Fatalf("Interactions: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	// Accented column wins when present.
	if rows[0].Classification != "COMPRA" {
		t.Errorf("classification = %q, want COMPRA", rows[0].Classification)
	}
	if !rows[0].IsReferred() || rows[0].AgentCode != "A1" {
		t.Errorf("row 0 = %+v", rows[0])
	}

	// Unaccented fallback; null strings become zero values, the null
	// referral flag survives as nil.
	if rows[1].Classification != "INFO" {
		t.Errorf("classification fallback = %q, want INFO", rows[1].Classification)
	}
	if rows[1].AgentCode != "" || rows[1].Status != "" || rows[1].SentAt != "" {
		t.Errorf("row 1 nulls = %+v", rows[1])
	}
	if rows[1].Referred != nil {
		t.Errorf("null referral flag = %v, want nil", *rows[1].Referred)
	}
}

func TestRESTAccentedSpellingWinsOverUnaccented(t *testing.T) {
	s := newTestREST(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"id": 1, "client_codigo": "C1",
			"clasificación": "COMPRA", "clasificacion": "BAJA"}]`))
	})

	rows, err := s.Interactions(context.Background())
	if err != nil {
		t.Fatalf("Interactions: %v", err)
	}
	if rows[0].Classification != "COMPRA" {
		t.Errorf("classification = %q, want COMPRA (accented column wins)", rows[0].Classification)
	}
}

func TestRESTClientsAndAgents(t *testing.T) {
	s := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/calier_clientes":
			w.Write([]byte(`[{"codigo": "C1", "nombre": "Agro Norte",
				"provincia": "Córdoba", "localidad": "Río Cuarto",
				"sector": "Bovinos", "cod_vendedor": "A1"}]`))
		case "/rest/v1/calier_vendedores":
			w.Write([]byte(`[{"codigo": "A1", "nombre": "Laura Gómez",
				"laboratorio": "Calier", "activo": true}]`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	})

	clients, err := s.Clients(context.Background())
	if err != nil {
		t.Fatalf("Clients: %v", err)
	}
	if len(clients) != 1 || clients[0].Province != "Córdoba" || clients[0].AgentCode != "A1" {
		t.Errorf("clients = %+v", clients)
	}

	agents, err := s.Agents(context.Background())
	if err != nil {
		t.Fatalf("Agents: %v", err)
	}
	if len(agents) != 1 || agents[0].Name != "Laura Gómez" || !agents[0].Active {
		t.Errorf("agents = %+v", agents)
	}
}

func TestRESTFollowUpsTableName(t *testing.T) {
	s := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		// The misspelled table name is the real one.
		if r.URL.Path != "/rest/v1/calier_seguimientio" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[{"id": 10, "fecha_enviado": "2024-03-01",
			"cliente_id": "C1", "contactado": true}]`))
	})

	rows, err := s.FollowUps(context.Background())
	if err != nil {
		t.Fatalf("FollowUps: %v", err)
	}
	if len(rows) != 1 || rows[0].SentDate != "2024-03-01" || !rows[0].Contacted {
		t.Errorf("rows = %+v", rows)
	}
}

func TestRESTNonOKStatusIsAnError(t *testing.T) {
	s := newTestREST(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "permission denied", http.StatusUnauthorized)
	})

	if _, err := s.Interactions(context.Background()); err == nil {
		t.Fatal("expected error on 401 response")
	}
}
