package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql"
)

// CreateGINIndexes creates full-text search GIN indexes for PostgreSQL.
// These indexes enable efficient full-text search over hearing titles,
// descriptions, and transcript text (§9 Open Question: full-text search
// over hearings/transcripts).
func CreateGINIndexes(ctx context.Context, driver *sql.Driver) error {
	db := driver.DB()

	_, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_hearings_title_gin
		ON hearings USING gin(to_tsvector('english', title))`)
	if err != nil {
		return fmt.Errorf("failed to create title GIN index: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_hearings_description_gin
		ON hearings USING gin(to_tsvector('english', COALESCE(description, '')))`)
	if err != nil {
		return fmt.Errorf("failed to create description GIN index: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_transcripts_full_text_gin
		ON transcripts USING gin(to_tsvector('english', full_text))`)
	if err != nil {
		return fmt.Errorf("failed to create transcript full_text GIN index: %w", err)
	}

	return nil
}
