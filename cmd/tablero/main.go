package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/calier-ar/tablero/api"
	"github.com/calier-ar/tablero/config"
	"github.com/calier-ar/tablero/engine"
	"github.com/calier-ar/tablero/store"
)

// ============================================================================
// TABLERO CLI — derived analytics for the Calier dashboard
// ============================================================================

const version = "0.1.0"

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	configPath := flag.String("config", "", "Path to YAML config file")
	listen := flag.String("listen", "", "Listen address (overrides config)")
	dump := flag.Bool("dump", false, "Compute the dashboard once, write it, and exit")
	format := flag.String("format", "json", "Dump format: json, pretty, csv")
	outFile := flag.String("out", "", "Write dump output to file instead of stdout")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Tablero — derived analytics for the Calier dashboard

Usage:
  tablero --config tablero.yaml
  tablero --config tablero.yaml --dump --format pretty
  tablero --dump --format csv --out dashboard.csv

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Formats (with --dump):
  json      Full JSON output (default)
  pretty    Pretty-printed JSON
  csv       Overview series and rankings as CSV
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("tablero %s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// ── Config ────────────────────────────────────────────────────────────
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	// ── Store ─────────────────────────────────────────────────────────────
	var st store.Store
	switch cfg.Store.Kind {
	case config.KindREST:
		st = store.NewREST(cfg.Store.URL, cfg.Store.AnonKey)
	case config.KindSQLite:
		s, err := store.OpenSQLite(cfg.Store.DBPath)
		if err != nil {
			fatalf("Failed to open database: %v", err)
		}
		defer s.Close()
		st = s
	default:
		fatalf("Unknown store kind %q", cfg.Store.Kind)
	}

	// ── Initial load ──────────────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	snap := store.LoadAll(ctx, st, nil, logger)
	cancel()
	logger.Info("snapshot loaded",
		"interactions", len(snap.Interactions),
		"clients", len(snap.Clients),
		"agents", len(snap.Agents),
		"followUps", len(snap.FollowUps))

	eng := engine.New(snap)

	// ── Dump mode ─────────────────────────────────────────────────────────
	if *dump {
		writer := os.Stdout
		if *outFile != "" {
			f, err := os.Create(*outFile)
			if err != nil {
				fatalf("Failed to create output file: %v", err)
			}
			defer f.Close()
			writer = f
		}

		dashboard := eng.Recompute()
		switch *format {
		case "csv":
			writeCSV(writer, dashboard)
		case "json", "pretty":
			writeJSON(writer, dashboard, *format)
		default:
			fatalf("Unknown format %q", *format)
		}
		return
	}

	// ── Serve mode ────────────────────────────────────────────────────────
	srv := api.New(eng, st, logger)
	logger.Info("listening", "addr", cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, srv.Router()); err != nil {
		fatalf("Server failed: %v", err)
	}
}

// ============================================================================
// CSV OUTPUT — the rollups a spreadsheet can use directly
// ============================================================================

func writeCSV(w *os.File, d *engine.Dashboard) {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{"Section", "Label", "Value"})

	cw.Write([]string{"overview", "total_interactions", itoa(d.Overview.Total)})
	cw.Write([]string{"overview", "purchase_rate", d.Overview.Purchase.Rate})
	cw.Write([]string{"overview", "response_rate", d.Overview.Responded.Rate})

	for _, p := range d.Overview.ByDay {
		cw.Write([]string{"daily", p.Date, itoa(p.Count)})
	}
	for _, a := range d.Overview.AgentRanking {
		cw.Write([]string{"agent_ranking", a.Name, itoa(a.Rate)})
	}
	for _, b := range d.Clients.SectorHistogram {
		cw.Write([]string{"sector", b.Name, itoa(b.Value)})
	}
	for _, b := range d.Clients.ProvinceHistogram {
		cw.Write([]string{"province", b.Name, itoa(b.Value)})
	}
	for _, r := range d.Agents.DelayRanking {
		cw.Write([]string{"delayed_referrals", r.ClientName, itoa(r.DaysDelayed)})
	}
}

func itoa(v int) string { return fmt.Sprintf("%d", v) }

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w *os.File, v any, format string) {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}

	if err != nil {
		fatalf("Failed to marshal output: %v", err)
	}
	fmt.Fprintln(w, string(out))
}

// ============================================================================
// HELPERS
// ============================================================================

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
