package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/sheetsync/reconcile/internal/config"
	"github.com/sheetsync/reconcile/internal/decoder"
	"github.com/sheetsync/reconcile/internal/domain"
	"github.com/sheetsync/reconcile/internal/reconcile"
	"github.com/sheetsync/reconcile/internal/transfer"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	storePath := flag.String("store", "", "JSON file with the existing record collection")
	outPath := flag.String("out", "", "write the resulting collection to this JSON file")
	showAudit := flag.Bool("audit", false, "print the full audit trail after the run")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("usage: reconcile [flags] <file.csv|file.xlsx> ...")
	}

	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store, err := loadStore(*storePath)
	if err != nil {
		log.Fatalf("failed to load record store: %v", err)
	}

	session, err := reconcile.Open(reconcile.Options{
		Rules:     cfg.Rules,
		Strategy:  cfg.Strategy,
		Threshold: cfg.Threshold,
		Overrides: cfg.Overrides,
		ActorID:   cfg.ActorID,
	})
	if err != nil {
		log.Fatalf("failed to open session: %v", err)
	}

	var runErrs *multierror.Error
	for _, path := range flag.Args() {
		result, err := runFile(session, path, store)
		if err != nil {
			runErrs = multierror.Append(runErrs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		store = result.Records
	}

	if *showAudit {
		printAuditTrail(session.AuditTrail())
	}

	if *outPath != "" {
		if err := writeStore(*outPath, store); err != nil {
			runErrs = multierror.Append(runErrs, err)
		}
	}

	if err := runErrs.ErrorOrNil(); err != nil {
		color.Red("reconciliation finished with failures:\n%v", err)
		os.Exit(1)
	}
}

func runFile(session *reconcile.Session, path string, store []domain.Record) (transfer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return transfer.Result{}, err
	}
	defer f.Close()

	table, err := decoder.Decode(filepath.Base(path), f)
	if err != nil {
		return transfer.Result{}, err
	}

	session.MatchHeaders(table.Headers, table.Rows)

	// Non-interactive runs leave unmatched columns out of the merge; the
	// pending proposals are surfaced so the caller can rerun with overrides.
	for _, mapping := range session.Pending() {
		color.Yellow("column %q left unmapped (%s); add a matcher override to map it", mapping.RawHeader, mapping.Description)
		if err := session.SkipColumn(mapping.RawHeader); err != nil {
			return transfer.Result{}, err
		}
	}

	result, err := session.Run(table.Rows, store)
	if err != nil {
		return transfer.Result{}, err
	}

	printSummary(path, result)
	return result, nil
}

func printSummary(path string, result transfer.Result) {
	if result.Success {
		color.Green("%s: merged cleanly in %s", filepath.Base(path), result.Elapsed.Round(time.Millisecond))
	} else {
		color.Red("%s: completed with %d validation error(s)", filepath.Base(path), len(result.Errors))
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Inserted", "Updated", "Skipped", "Conflicts", "Warnings"})
	table.Append([]string{
		strconv.Itoa(result.TransferredCount),
		strconv.Itoa(result.DuplicateCount),
		strconv.Itoa(result.SkippedCount),
		strconv.Itoa(len(result.Conflicts)),
		strconv.Itoa(len(result.Warnings)),
	})
	table.Render()

	for _, e := range result.Errors {
		color.Red("  row %d, %s: %s", e.Row+1, e.Field, e.Message)
	}
	for _, c := range result.Conflicts {
		for _, fc := range c.Conflicts {
			color.Yellow("  conflict on %s/%s: existing=%v incoming=%v", c.Key, fc.Field, fc.Existing, fc.Incoming)
		}
	}
}

func printAuditTrail(trail []domain.AuditEntry) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Action", "Record", "Changes", "Actor"})
	for _, entry := range trail {
		table.Append([]string{
			entry.Timestamp.Format(time.RFC3339),
			string(entry.Action),
			entry.RecordID,
			formatChanges(entry.Changes),
			entry.ActorID,
		})
	}
	table.Render()
}

func formatChanges(changes map[string]domain.FieldChange) string {
	if len(changes) == 0 {
		return "-"
	}
	out := ""
	for field, change := range changes {
		if out != "" {
			out += "; "
		}
		out += fmt.Sprintf("%s: %v -> %v", field, change.Old, change.New)
	}
	return out
}

func loadStore(path string) ([]domain.Record, error) {
	if path == "" {
		return nil, nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []domain.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("invalid record store %s: %w", path, err)
	}
	return records, nil
}

func writeStore(path string, records []domain.Record) error {
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
