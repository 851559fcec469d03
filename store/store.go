// Package store supplies the four record snapshots the engine consumes.
//
// Two implementations exist: a REST client for the remote PostgREST-style
// store and a local SQLite copy. Both hand the engine fully reconciled
// records; in particular the two historical spellings of the
// classification column are merged into one canonical field here, at the
// ingestion boundary, so no downstream code ever re-checks them.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/calier-ar/tablero/engine"
)

// Store is the record-store contract: four bulk reads with full-snapshot
// semantics. No pagination, no incremental sync.
type Store interface {
	Interactions(ctx context.Context) ([]engine.Interaction, error)
	Clients(ctx context.Context) ([]engine.Client, error)
	Agents(ctx context.Context) ([]engine.Agent, error)
	FollowUps(ctx context.Context) ([]engine.FollowUp, error)
}

// LoadAll issues the four bulk reads concurrently and joins on all of them
// before building the snapshot. A failed read is never fatal: the
// corresponding collection keeps its previous value (empty when prev is
// nil) and the failure goes to the log, not the caller.
func LoadAll(ctx context.Context, s Store, prev *engine.Snapshot, logger *slog.Logger) *engine.Snapshot {
	if logger == nil {
		logger = slog.Default()
	}

	var interactions []engine.Interaction
	var clients []engine.Client
	var agents []engine.Agent
	var followUps []engine.FollowUp
	if prev != nil {
		interactions = prev.Interactions
		clients = prev.Clients
		agents = prev.Agents
		followUps = prev.FollowUps
	}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		rows, err := s.Interactions(ctx)
		if err != nil {
			logger.Error("interactions fetch failed, keeping previous snapshot", "error", err)
			return
		}
		interactions = rows
	}()
	go func() {
		defer wg.Done()
		rows, err := s.Clients(ctx)
		if err != nil {
			logger.Error("clients fetch failed, keeping previous snapshot", "error", err)
			return
		}
		clients = rows
	}()
	go func() {
		defer wg.Done()
		rows, err := s.Agents(ctx)
		if err != nil {
			logger.Error("agents fetch failed, keeping previous snapshot", "error", err)
			return
		}
		agents = rows
	}()
	go func() {
		defer wg.Done()
		rows, err := s.FollowUps(ctx)
		if err != nil {
			logger.Error("follow-ups fetch failed, keeping previous snapshot", "error", err)
			return
		}
		followUps = rows
	}()

	wg.Wait()
	return engine.NewSnapshot(interactions, clients, agents, followUps)
}
