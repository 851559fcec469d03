// Package tablero provides the derived-analytics core of a CRM dashboard.
//
// Usage:
//
//	import "github.com/calier-ar/tablero/engine"
//
//	snap := engine.NewSnapshot(interactions, clients, agents, followUps)
//	eng := engine.New(snap)
//	dashboard := eng.Recompute()
//
// The engine takes four record collections fetched in bulk from a record
// store and a mutable filter state, and returns render-ready view models
// (KPIs, time series, categorical breakdowns, rankings). Every
// recomputation produces fresh structures; nothing is patched in place.
//
// Fetching is handled separately by the store package. The engine never
// calls any external service; all computation is local and synchronous.
package tablero
