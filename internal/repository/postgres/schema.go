package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                          TEXT PRIMARY KEY,
		email                       TEXT NOT NULL UNIQUE,
		password_hash               TEXT NOT NULL DEFAULT '',
		reset_code_hash             TEXT NOT NULL DEFAULT '',
		reset_code_expires_at       TIMESTAMPTZ,
		reset_code_attempts         INT NOT NULL DEFAULT 0,
		name                        TEXT NOT NULL DEFAULT '',
		gender                      TEXT NOT NULL DEFAULT '',
		pronouns                    TEXT NOT NULL DEFAULT '',
		nationality                 TEXT NOT NULL DEFAULT '',
		resident_country            TEXT NOT NULL DEFAULT '',
		timezone                    TEXT NOT NULL DEFAULT '',
		qualification               TEXT NOT NULL DEFAULT '',
		dream_job_title             TEXT NOT NULL DEFAULT '',
		branding_statement          TEXT NOT NULL DEFAULT '',
		phone                       TEXT NOT NULL DEFAULT '',
		interview_mode              TEXT NOT NULL DEFAULT '',
		willing_to_relocate         BOOLEAN NOT NULL DEFAULT FALSE,
		willing_to_travel           BOOLEAN NOT NULL DEFAULT FALSE,
		known_languages             TEXT[] NOT NULL DEFAULT '{}',
		achievements                TEXT[] NOT NULL DEFAULT '{}',
		skills                      TEXT[] NOT NULL DEFAULT '{}',
		hobbies                     TEXT[] NOT NULL DEFAULT '{}',
		preferred_job_types         TEXT[] NOT NULL DEFAULT '{}',
		preferred_work_environments TEXT[] NOT NULL DEFAULT '{}',
		preferred_locations         TEXT[] NOT NULL DEFAULT '{}',
		education                   JSONB NOT NULL DEFAULT '[]',
		work_experience             JSONB NOT NULL DEFAULT '[]',
		emergency_contact           JSONB,
		social_links                JSONB,
		expected_salary             JSONB,
		address                     JSONB,
		work_domain                 TEXT,
		resumes                     JSONB NOT NULL DEFAULT '[]',
		resume_url                  TEXT NOT NULL DEFAULT '',
		resume_storage_id           TEXT NOT NULL DEFAULT '',
		resume_downloadable         BOOLEAN NOT NULL DEFAULT FALSE,
		saved_jobs                  TEXT[] NOT NULL DEFAULT '{}',
		not_interested_categories   JSONB NOT NULL DEFAULT '[]',
		applied_jobs                JSONB NOT NULL DEFAULT '[]',
		version                     BIGINT NOT NULL DEFAULT 1,
		created_at                  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at                  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS reset_code_attempts INT NOT NULL DEFAULT 0`,
	`CREATE INDEX IF NOT EXISTS idx_users_work_domain ON users (work_domain) WHERE work_domain IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS work_domains (
		name        TEXT PRIMARY KEY,
		user_emails TEXT[] NOT NULL DEFAULT '{}',
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS security_events (
		id            BIGSERIAL PRIMARY KEY,
		event_type    TEXT NOT NULL,
		severity      TEXT NOT NULL,
		service       TEXT NOT NULL DEFAULT '',
		environment   TEXT NOT NULL DEFAULT '',
		level         TEXT NOT NULL DEFAULT '',
		subject_type  TEXT NOT NULL DEFAULT '',
		subject_value TEXT NOT NULL DEFAULT '',
		ip_address    TEXT,
		user_agent    TEXT NOT NULL DEFAULT '',
		request_id    TEXT NOT NULL DEFAULT '',
		details       JSONB,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_security_events_created_at ON security_events (created_at DESC)`,
}

// EnsureSchema creates the tables used by the service when they are missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for i, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
