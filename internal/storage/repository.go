package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/realdeal/internal/contracts"
	"github.com/wonny/realdeal/pkg/database"
	"github.com/wonny/realdeal/pkg/logger"
)

// Repository persists raw listings and underwriting runs in PostgreSQL.
// listings_raw is an upsert cache keyed by listing id; deals_underwritten
// is append-per-run keyed by (run_id, listing_id), so reruns with new
// assumptions never overwrite old runs.
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

// InitSchema creates the tables when missing. Idempotent.
func (r *Repository) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS listings_raw (
			id            TEXT PRIMARY KEY,
			source        TEXT NOT NULL,
			address       TEXT NOT NULL DEFAULT '',
			city          TEXT NOT NULL DEFAULT '',
			province      TEXT NOT NULL DEFAULT '',
			postal_code   TEXT NOT NULL DEFAULT '',
			price         DOUBLE PRECISION NOT NULL,
			bedrooms      INTEGER NOT NULL DEFAULT 0,
			bathrooms     DOUBLE PRECISION NOT NULL DEFAULT 0,
			property_type TEXT NOT NULL DEFAULT '',
			description   TEXT NOT NULL DEFAULT '',
			url           TEXT NOT NULL DEFAULT '',
			fetched_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS deals_underwritten (
			run_id                  TEXT NOT NULL,
			listing_id              TEXT NOT NULL,
			rent_monthly            DOUBLE PRECISION NOT NULL,
			noi_annual              DOUBLE PRECISION NOT NULL,
			cashflow_monthly        DOUBLE PRECISION NOT NULL,
			cap_rate                DOUBLE PRECISION NOT NULL,
			cash_on_cash            DOUBLE PRECISION NOT NULL,
			dscr                    DOUBLE PRECISION NOT NULL,
			stress_cashflow_monthly DOUBLE PRECISION NOT NULL,
			margin_of_safety_score  INTEGER NOT NULL,
			confidence_score        DOUBLE PRECISION NOT NULL,
			passed                  BOOLEAN NOT NULL,
			reason_flags            JSONB NOT NULL,
			full_result             JSONB NOT NULL,
			created_at              TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (run_id, listing_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deals_passed
			ON deals_underwritten (passed, margin_of_safety_score DESC)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// UpsertListings writes listings into listings_raw, replacing existing
// rows by id. Returns the number written.
func (r *Repository) UpsertListings(ctx context.Context, listings []contracts.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, l := range listings {
		batch.Queue(`
			INSERT INTO listings_raw
				(id, source, address, city, province, postal_code, price, bedrooms,
				 bathrooms, property_type, description, url, fetched_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (id) DO UPDATE SET
				source = EXCLUDED.source,
				address = EXCLUDED.address,
				city = EXCLUDED.city,
				province = EXCLUDED.province,
				postal_code = EXCLUDED.postal_code,
				price = EXCLUDED.price,
				bedrooms = EXCLUDED.bedrooms,
				bathrooms = EXCLUDED.bathrooms,
				property_type = EXCLUDED.property_type,
				description = EXCLUDED.description,
				url = EXCLUDED.url,
				fetched_at = EXCLUDED.fetched_at`,
			l.ID, l.Source, l.Address, l.City, l.Province, l.PostalCode,
			l.Price, l.Bedrooms, l.Bathrooms, l.PropertyType, l.Description,
			l.URL, l.FetchedAt,
		)
	}

	results := r.db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	for range listings {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("upsert listings: %w", err)
		}
	}

	r.logger.WithField("count", len(listings)).Info("Listings upserted")
	return len(listings), nil
}

// LoadListings returns every cached listing.
func (r *Repository) LoadListings(ctx context.Context) ([]contracts.Listing, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, source, address, city, province, postal_code, price, bedrooms,
		       bathrooms, property_type, description, url, fetched_at
		FROM listings_raw
		ORDER BY fetched_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	defer rows.Close()

	var listings []contracts.Listing
	for rows.Next() {
		var l contracts.Listing
		if err := rows.Scan(
			&l.ID, &l.Source, &l.Address, &l.City, &l.Province, &l.PostalCode,
			&l.Price, &l.Bedrooms, &l.Bathrooms, &l.PropertyType, &l.Description,
			&l.URL, &l.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// SaveResults writes one run's underwriting results.
func (r *Repository) SaveResults(ctx context.Context, runID string, results []contracts.UnderwritingResult) error {
	if len(results) == 0 {
		return nil
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, res := range results {
		flagsJSON, err := json.Marshal(res.ReasonFlags)
		if err != nil {
			return fmt.Errorf("marshal reason flags: %w", err)
		}
		fullJSON, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}

		batch.Queue(`
			INSERT INTO deals_underwritten
				(run_id, listing_id, rent_monthly, noi_annual, cashflow_monthly,
				 cap_rate, cash_on_cash, dscr, stress_cashflow_monthly,
				 margin_of_safety_score, confidence_score, passed,
				 reason_flags, full_result, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (run_id, listing_id) DO UPDATE SET
				full_result = EXCLUDED.full_result,
				created_at = EXCLUDED.created_at`,
			runID, res.ListingID, res.RentMonthly, res.NOIAnnual, res.CashflowMonthly,
			res.CapRate, res.CashOnCash, res.DSCR, res.StressCashflowMonthly,
			res.MarginOfSafetyScore, res.ConfidenceScore, res.Passed,
			flagsJSON, fullJSON, now,
		)
	}

	batchResults := r.db.Pool.SendBatch(ctx, batch)
	defer batchResults.Close()

	for range results {
		if _, err := batchResults.Exec(); err != nil {
			return fmt.Errorf("save results: %w", err)
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"count":  len(results),
	}).Info("Underwriting results saved")
	return nil
}

// TopDeals returns the best stored deals from the most recent run,
// ordered by margin of safety then cashflow. passedOnly limits to deals
// that cleared every threshold.
func (r *Repository) TopDeals(ctx context.Context, limit int, passedOnly bool) ([]contracts.UnderwritingResult, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT full_result
		FROM deals_underwritten
		WHERE run_id = (
			SELECT run_id FROM deals_underwritten ORDER BY created_at DESC LIMIT 1
		)`
	if passedOnly {
		query += ` AND passed`
	}
	query += `
		ORDER BY margin_of_safety_score DESC, cashflow_monthly DESC
		LIMIT $1`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top deals: %w", err)
	}
	defer rows.Close()

	var deals []contracts.UnderwritingResult
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		var result contracts.UnderwritingResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("decode deal: %w", err)
		}
		deals = append(deals, result)
	}
	return deals, rows.Err()
}

// LatestRunID returns the most recent run id, or empty when none exist.
func (r *Repository) LatestRunID(ctx context.Context) (string, error) {
	var runID string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT run_id FROM deals_underwritten ORDER BY created_at DESC LIMIT 1`,
	).Scan(&runID)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest run: %w", err)
	}
	return runID, nil
}
