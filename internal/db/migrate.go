package db

import "context"

const schema = `
CREATE TABLE IF NOT EXISTS visitors (
	id UUID PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	username TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	token TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	revoked_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS pois (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	lat DOUBLE PRECISION NOT NULL,
	lon DOUBLE PRECISION NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (name, lat, lon)
);

CREATE TABLE IF NOT EXISTS visits (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	poi_id UUID NOT NULL,
	visited_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS visits_user_poi_idx ON visits (user_id, poi_id, visited_at);

CREATE TABLE IF NOT EXISTS nav_sessions (
	user_id TEXT PRIMARY KEY,
	last_lat DOUBLE PRECISION,
	last_lon DOUBLE PRECISION,
	last_update TIMESTAMPTZ,
	target_poi_id UUID,
	notified_near BOOLEAN NOT NULL DEFAULT FALSE,
	notified_arrived BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS user_progress (
	user_id TEXT PRIMARY KEY,
	total_distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
	first_visit DATE,
	last_visit DATE,
	current_streak INT NOT NULL DEFAULT 0,
	max_streak INT NOT NULL DEFAULT 0,
	favorite_poi_id UUID
);

CREATE TABLE IF NOT EXISTS user_interests (
	user_id TEXT NOT NULL,
	interest TEXT NOT NULL,
	PRIMARY KEY (user_id, interest)
);
`

// Migrate applies the schema. Statements are idempotent so it runs on every
// startup.
func Migrate(ctx context.Context, q Querier) error {
	_, err := q.Exec(ctx, schema)
	return err
}
