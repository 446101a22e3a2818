// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package database

// initialSchema creates every table this module needs in one statement
// batch. Column names are snake_case; struct <-> row mapping is handled
// by each entity's scanner, not by a generic ORM.
//
// DuckDB does not support partial indexes, so "unique among non-deleted
// rows" cannot be declared as UNIQUE ... WHERE deleted_at IS NULL. The
// indexes below are plain lookup indexes; each repository's Create checks
// live rows before insert and returns Conflict on a duplicate. Update
// statements do not repeat that check, so an update can give a row the
// same name or number as another live row. Scores
// have no soft delete, so their triple uniqueness IS a real constraint.
const initialSchema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	date TIMESTAMP NOT NULL,
	location TEXT,
	status TEXT NOT NULL,
	scoring_scale_min DOUBLE NOT NULL,
	scoring_scale_max DOUBLE NOT NULL,
	scoring_scale_step DOUBLE NOT NULL,
	aggregation_method TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tables (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL REFERENCES events(id),
	table_number INTEGER NOT NULL,
	qr_token TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tables_event_number ON tables(event_id, table_number);
CREATE INDEX IF NOT EXISTS idx_tables_qr_token ON tables(qr_token);

CREATE TABLE IF NOT EXISTS seats (
	id TEXT PRIMARY KEY,
	table_id TEXT NOT NULL REFERENCES tables(id),
	seat_number INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_seats_table_number ON seats(table_id, seat_number);

CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL REFERENCES events(id),
	name TEXT NOT NULL,
	sort_order INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS criteria (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL REFERENCES events(id),
	name TEXT NOT NULL,
	weight DOUBLE NOT NULL,
	sort_order INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS teams (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL REFERENCES events(id),
	name TEXT NOT NULL,
	team_number INTEGER NOT NULL,
	barcode_payload TEXT NOT NULL,
	code_invalidated_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_teams_event_number ON teams(event_id, team_number);
CREATE INDEX IF NOT EXISTS idx_teams_barcode ON teams(barcode_payload);

CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	team_id TEXT NOT NULL REFERENCES teams(id),
	category_id TEXT NOT NULL REFERENCES categories(id),
	status TEXT NOT NULL,
	turned_in_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_submissions_team_category ON submissions(team_id, category_id);

CREATE TABLE IF NOT EXISTS scores (
	id TEXT PRIMARY KEY,
	submission_id TEXT NOT NULL REFERENCES submissions(id),
	seat_id TEXT NOT NULL REFERENCES seats(id),
	criterion_id TEXT NOT NULL REFERENCES criteria(id),
	score_value DOUBLE NOT NULL,
	comment TEXT,
	phase TEXT NOT NULL,
	submitted_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_scores_submission_seat_criterion ON scores(submission_id, seat_id, criterion_id);

CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	timestamp TIMESTAMP NOT NULL,
	actor_type TEXT NOT NULL,
	actor_id TEXT,
	action TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	old_value BLOB,
	new_value BLOB,
	event_id TEXT,
	ip_address TEXT,
	device_fingerprint TEXT,
	idempotency_key TEXT
);
CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_audit_event ON audit_log(event_id);
CREATE INDEX IF NOT EXISTS idx_audit_idempotency ON audit_log(idempotency_key);
`
