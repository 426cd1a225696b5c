package crosswalk

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"civicfin/internal/finance/models"
	txcontext "civicfin/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// PostgresStore serves the crosswalk from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the crosswalk tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create crosswalk schema: %w", err)
	}
	return nil
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Legislator(ctx context.Context, legislatorID string) (models.LegislatorRef, error) {
	query := `
		SELECT bioguide_id, display_name, chamber, state, district
		FROM legislators
		WHERE bioguide_id = $1
	`
	var ref models.LegislatorRef
	var chamber string
	err := s.db.QueryRowContext(ctx, query, normalizeID(legislatorID)).
		Scan(&ref.ExternalID, &ref.DisplayName, &chamber, &ref.State, &ref.District)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LegislatorRef{}, ErrNotFound
		}
		return models.LegislatorRef{}, fmt.Errorf("find legislator: %w", err)
	}
	if chamber != "" {
		if ch, err := models.ParseChamber(chamber); err == nil {
			ref.Chamber = ch
		}
	}
	return ref, nil
}

func (s *PostgresStore) FECIDs(ctx context.Context, legislatorID string) ([]string, error) {
	query := `
		SELECT l.bioguide_id, f.fec_id
		FROM legislators l
		LEFT JOIN legislator_fec_ids f ON f.bioguide_id = l.bioguide_id
		WHERE l.bioguide_id = $1
		ORDER BY f.position
	`
	rows, err := s.db.QueryContext(ctx, query, normalizeID(legislatorID))
	if err != nil {
		return nil, fmt.Errorf("query fec ids: %w", err)
	}
	defer rows.Close()

	found := false
	ids := []string{}
	for rows.Next() {
		var bioguide string
		var fecID sql.NullString
		if err := rows.Scan(&bioguide, &fecID); err != nil {
			return nil, fmt.Errorf("scan fec id: %w", err)
		}
		found = true
		if fecID.Valid {
			ids = append(ids, fecID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fec ids: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return ids, nil
}

// Import upserts entries and replaces their FEC id lists in one transaction.
func (s *PostgresStore) Import(ctx context.Context, entries []Legislator) error {
	return txcontext.Run(ctx, s.db, 30*time.Second, func(ctx context.Context) error {
		for _, e := range entries {
			if err := s.upsert(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) upsert(ctx context.Context, e Legislator) error {
	ref := e.Ref()
	if ref.ExternalID == "" {
		return nil
	}
	ref.ExternalID = normalizeID(ref.ExternalID)
	exec := s.execer(ctx)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO legislators (bioguide_id, display_name, chamber, state, district, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (bioguide_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			chamber = EXCLUDED.chamber,
			state = EXCLUDED.state,
			district = EXCLUDED.district,
			updated_at = now()
	`, ref.ExternalID, ref.DisplayName, string(ref.Chamber), ref.State, ref.District)
	if err != nil {
		return fmt.Errorf("upsert legislator %s: %w", ref.ExternalID, err)
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM legislator_fec_ids WHERE bioguide_id = $1`, ref.ExternalID); err != nil {
		return fmt.Errorf("clear fec ids %s: %w", ref.ExternalID, err)
	}
	for i, fecID := range e.CandidateIDs() {
		_, err := exec.ExecContext(ctx,
			`INSERT INTO legislator_fec_ids (bioguide_id, fec_id, position) VALUES ($1, $2, $3)`,
			ref.ExternalID, fecID, i)
		if err != nil {
			return fmt.Errorf("insert fec id %s: %w", fecID, err)
		}
	}
	return nil
}
