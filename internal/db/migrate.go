package db

import (
	"context"
	"database/sql"
)

const schemaMigration = `
CREATE TABLE IF NOT EXISTS users (
    id bigserial PRIMARY KEY,
    email text NOT NULL,
    name text NOT NULL,
    picture text,
    role text NOT NULL DEFAULT 'USER',
    provider text NOT NULL,
    provider_id text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique
ON users (LOWER(email));

CREATE INDEX IF NOT EXISTS users_provider_subject_idx
ON users (provider, provider_id);

CREATE TABLE IF NOT EXISTS checklists (
    id bigserial PRIMARY KEY,
    user_id text,
    target_date date NOT NULL,
    goal text NOT NULL,
    checklist_json text,
    status text NOT NULL DEFAULT 'PENDING',
    error_message text,
    started_at timestamptz NOT NULL DEFAULT NOW(),
    completed_at timestamptz,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS checklists_user_id_idx
ON checklists (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS recommend_checklists (
    id bigserial PRIMARY KEY,
    user_id text,
    target_date date NOT NULL,
    goal text NOT NULL,
    checklist_json text,
    status text NOT NULL DEFAULT 'PENDING',
    error_message text,
    started_at timestamptz NOT NULL DEFAULT NOW(),
    completed_at timestamptz,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS recommend_checklists_user_id_idx
ON recommend_checklists (user_id, created_at DESC);
`

func RunMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaMigration)
	return err
}
