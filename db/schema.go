// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS people (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	avatar TEXT,
	relation TEXT NOT NULL DEFAULT 'other' CHECK(relation IN ('family', 'close', 'friends', 'work', 'other')),
	circles TEXT NOT NULL DEFAULT '[]',
	tags TEXT NOT NULL DEFAULT '[]',
	last_contact DATETIME,
	contact_frequency INTEGER NOT NULL DEFAULT 0,
	health_score INTEGER NOT NULL DEFAULT 0,
	milestone_type TEXT,
	milestone_date DATETIME,
	milestone_description TEXT,
	cadence_frequency TEXT,
	cadence_last_contact DATETIME,
	cadence_overdue INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_people_name ON people(name);
CREATE INDEX IF NOT EXISTS idx_people_email ON people(email);

CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	person_id TEXT NOT NULL,
	content TEXT NOT NULL,
	date DATETIME NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_notes_person ON notes(person_id);

CREATE TABLE IF NOT EXISTS promises (
	id TEXT PRIMARY KEY,
	person_id TEXT NOT NULL,
	description TEXT NOT NULL,
	due_date DATETIME NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	completed_date DATETIME,
	priority TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('high', 'medium', 'low')),
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_promises_person ON promises(person_id);

CREATE TABLE IF NOT EXISTS interactions (
	id TEXT PRIMARY KEY,
	person_id TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('call', 'message', 'meeting', 'email', 'photo', 'gift')),
	date DATETIME NOT NULL,
	description TEXT,
	sentiment TEXT CHECK(sentiment IN ('', 'positive', 'neutral', 'negative')),
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_interactions_person ON interactions(person_id);
CREATE INDEX IF NOT EXISTS idx_interactions_date ON interactions(date DESC);

CREATE TABLE IF NOT EXISTS daily_actions (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	type TEXT NOT NULL CHECK(type IN ('birthday', 'followup', 'promise', 'checkin', 'milestone')),
	priority TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('high', 'medium', 'low')),
	person_id TEXT NOT NULL,
	person_name TEXT NOT NULL,
	ai_draft TEXT,
	due_date DATETIME,
	completed INTEGER NOT NULL DEFAULT 0,
	tags TEXT NOT NULL DEFAULT '[]',
	position INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_daily_actions_person ON daily_actions(person_id);

CREATE TABLE IF NOT EXISTS inbox_items (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL CHECK(type IN ('birthday_detected', 'job_change', 'photo_memory', 'overdue_promise', 'relationship_insight')),
	title TEXT NOT NULL,
	description TEXT,
	person_id TEXT,
	person_name TEXT,
	date DATETIME NOT NULL,
	actionable INTEGER NOT NULL DEFAULT 0,
	suggested_actions TEXT NOT NULL DEFAULT '[]',
	dismissed INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_inbox_items_date ON inbox_items(date DESC);

CREATE TABLE IF NOT EXISTS circles (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	members TEXT NOT NULL DEFAULT '[]',
	health_score INTEGER NOT NULL DEFAULT 0,
	last_group_activity DATETIME,
	upcoming_events TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS tags (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	people_count INTEGER NOT NULL DEFAULT 0,
	memories_count INTEGER NOT NULL DEFAULT 0,
	activities_count INTEGER NOT NULL DEFAULT 0,
	color TEXT
);

CREATE TABLE IF NOT EXISTS advice_responses (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL CHECK(type IN ('message_draft', 'action_suggestion', 'gift_idea', 'general_advice')),
	content TEXT NOT NULL,
	tone TEXT,
	confidence REAL NOT NULL DEFAULT 0,
	reasoning TEXT
);

CREATE TABLE IF NOT EXISTS daily_questions (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	text TEXT NOT NULL,
	type TEXT NOT NULL,
	options TEXT NOT NULL DEFAULT '[]',
	person_id TEXT,
	person_name TEXT
);

CREATE TABLE IF NOT EXISTS sync_state (
	service TEXT PRIMARY KEY,
	last_sync_time DATETIME,
	status TEXT CHECK(status IN ('idle', 'syncing', 'error')),
	error_message TEXT,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_log (
	id TEXT PRIMARY KEY,
	source_service TEXT NOT NULL,
	source_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	imported_at DATETIME NOT NULL,
	UNIQUE(source_service, source_id)
);

CREATE INDEX IF NOT EXISTS idx_sync_log_entity ON sync_log(entity_type, entity_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
