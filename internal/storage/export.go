package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wonny/realdeal/internal/contracts"
)

// csvHeader is the ranked-deals report layout. Order is part of the
// format: downstream spreadsheets reference columns by position.
var csvHeader = []string{
	"rank",
	"listing_id",
	"address",
	"city",
	"price",
	"bedrooms",
	"rent_monthly",
	"cashflow_monthly",
	"stress_cashflow_monthly",
	"cap_rate",
	"cash_on_cash",
	"dscr",
	"margin_of_safety_score",
	"confidence_score",
	"passed",
	"url",
}

// ExportCSV writes ranked deals to a CSV file, creating parent
// directories as needed. Results are written in the order given.
func ExportCSV(results []contracts.UnderwritingResult, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i, r := range results {
		record := []string{
			strconv.Itoa(i + 1),
			r.ListingID,
			r.Listing.Address,
			r.Listing.City,
			formatFloat(r.Listing.Price),
			strconv.Itoa(r.Listing.Bedrooms),
			formatFloat(r.RentMonthly),
			formatFloat(r.CashflowMonthly),
			formatFloat(r.StressCashflowMonthly),
			formatFloat(r.CapRate),
			formatFloat(r.CashOnCash),
			formatFloat(r.DSCR),
			strconv.Itoa(r.MarginOfSafetyScore),
			formatFloat(r.ConfidenceScore),
			strconv.FormatBool(r.Passed),
			r.Listing.URL,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// jsonExport is the full-detail JSON report envelope.
type jsonExport struct {
	RunAt   time.Time                      `json:"run_at"`
	RunID   string                         `json:"run_id,omitempty"`
	Count   int                            `json:"count"`
	Results []contracts.UnderwritingResult `json:"results"`
}

// ExportJSON writes full underwriting detail to a JSON file.
func ExportJSON(results []contracts.UnderwritingResult, runID, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	payload := jsonExport{
		RunAt:   time.Now().UTC(),
		RunID:   runID,
		Count:   len(results),
		Results: results,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
