package overrides

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const SchemaSQL = `
CREATE SCHEMA IF NOT EXISTS site;

CREATE TABLE IF NOT EXISTS site.message_overrides (
	video_id   TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	date_label TEXT NOT NULL DEFAULT '',
	is_active  BOOLEAN NOT NULL DEFAULT TRUE,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PGStore keeps override records in Postgres so editors can curate them
// without redeploying messages.json.
type PGStore struct {
	Pool *pgxpool.Pool
}

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	normalizedURL, schema := normalizeDatabaseURL(databaseURL)
	cfg, err := pgxpool.ParseConfig(normalizedURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		if cfg.ConnConfig.RuntimeParams == nil {
			cfg.ConnConfig.RuntimeParams = map[string]string{}
		}
		cfg.ConnConfig.RuntimeParams["search_path"] = schema
	}
	// SimpleProtocol lets ApplySchema run multi-statement SQL.
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return p, nil
}

// normalizeDatabaseURL strips a non-standard ?schema= parameter and returns it
// separately so it can become the search_path.
func normalizeDatabaseURL(databaseURL string) (string, string) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return databaseURL, ""
	}
	q := u.Query()
	schema := q.Get("schema")
	if schema == "" {
		return databaseURL, ""
	}
	q.Del("schema")
	u.RawQuery = q.Encode()
	return u.String(), schema
}

func (s *PGStore) ApplySchema(ctx context.Context) error {
	if s == nil || s.Pool == nil {
		return fmt.Errorf("nil pool")
	}
	if _, err := s.Pool.Exec(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Load returns the active overrides, most recently edited first so that
// NewIndex keeps the freshest record on duplicate IDs.
func (s *PGStore) Load(ctx context.Context) ([]Record, error) {
	if s == nil || s.Pool == nil {
		return nil, fmt.Errorf("nil pool")
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT video_id, title, date_label
		FROM site.message_overrides
		WHERE is_active = true
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Title, &r.Date); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate overrides: %w", rows.Err())
	}
	return out, nil
}

// Validate rejects records that cannot change a display item.
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("override: video id is required")
	}
	if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Date) == "" {
		return fmt.Errorf("override %s: needs a title or a date label", r.ID)
	}
	return nil
}

func (s *PGStore) Upsert(ctx context.Context, r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if s == nil || s.Pool == nil {
		return fmt.Errorf("nil pool")
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO site.message_overrides (
			video_id,
			title,
			date_label,
			is_active,
			updated_at
		) VALUES ($1,$2,$3,TRUE,now())
		ON CONFLICT (video_id)
		DO UPDATE SET
			title = EXCLUDED.title,
			date_label = EXCLUDED.date_label,
			is_active = TRUE,
			updated_at = now()
	`, r.ID, r.Title, r.Date)
	if err != nil {
		return fmt.Errorf("upsert override (id=%s): %w", r.ID, err)
	}
	return nil
}

// Deactivate hides an override without losing its history.
func (s *PGStore) Deactivate(ctx context.Context, videoID string) error {
	if strings.TrimSpace(videoID) == "" {
		return errors.New("override: video id is required")
	}
	if s == nil || s.Pool == nil {
		return fmt.Errorf("nil pool")
	}
	tag, err := s.Pool.Exec(ctx, `
		UPDATE site.message_overrides
		SET is_active = FALSE, updated_at = now()
		WHERE video_id = $1
	`, videoID)
	if err != nil {
		return fmt.Errorf("deactivate override (id=%s): %w", videoID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deactivate override (id=%s): no such record", videoID)
	}
	return nil
}
