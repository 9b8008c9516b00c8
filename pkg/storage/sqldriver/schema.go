package sqldriver

// The two schemas must stay column-for-column identical; only id generation,
// time, and boolean column types differ between engines.

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS facts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entity TEXT NOT NULL,
	text TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_facts_entity ON facts(entity);
CREATE INDEX IF NOT EXISTS idx_facts_created_at ON facts(created_at);

CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	topic TEXT NOT NULL DEFAULT '',
	transcript TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS goals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text TEXT NOT NULL,
	target_date DATETIME,
	status TEXT NOT NULL DEFAULT 'active',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS learning_skills (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	category TEXT NOT NULL DEFAULT '',
	current_level TEXT NOT NULL DEFAULT '',
	roadmap_context TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS learning_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	skill_id INTEGER NOT NULL REFERENCES learning_skills(id) ON DELETE CASCADE,
	item_type TEXT NOT NULL,
	prompt TEXT NOT NULL,
	answer TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '[]',
	review_count INTEGER NOT NULL DEFAULT 0,
	correct_count INTEGER NOT NULL DEFAULT 0,
	last_reviewed_at DATETIME,
	next_review_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_learning_items_next_review ON learning_items(next_review_at);

CREATE TABLE IF NOT EXISTS review_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id INTEGER NOT NULL REFERENCES learning_items(id) ON DELETE CASCADE,
	reviewed_at DATETIME NOT NULL,
	was_correct INTEGER NOT NULL,
	confidence INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS learning_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	skill_id INTEGER NOT NULL REFERENCES learning_skills(id) ON DELETE CASCADE,
	topic TEXT NOT NULL DEFAULT '',
	minutes INTEGER NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT '',
	occurred_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS learning_milestones (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	skill_id INTEGER NOT NULL REFERENCES learning_skills(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	achieved_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS learning_challenges (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	skill_id INTEGER NOT NULL REFERENCES learning_skills(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	difficulty TEXT NOT NULL,
	estimated_hours REAL NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'available',
	progress_pct INTEGER NOT NULL DEFAULT 0,
	minutes_spent INTEGER NOT NULL DEFAULT 0,
	started_at DATETIME,
	completed_at DATETIME,
	completion_notes TEXT NOT NULL DEFAULT '',
	completion_link TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_challenges_skill_status ON learning_challenges(skill_id, status);

CREATE TABLE IF NOT EXISTS challenge_obstacles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	challenge_id INTEGER NOT NULL REFERENCES learning_challenges(id) ON DELETE CASCADE,
	problem TEXT NOT NULL,
	solution TEXT,
	insight TEXT,
	minutes_to_solve INTEGER,
	logged_at DATETIME NOT NULL,
	solved_at DATETIME
);

CREATE TABLE IF NOT EXISTS daily_streaks (
	date TEXT PRIMARY KEY,
	active INTEGER NOT NULL DEFAULT 1
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS facts (
	id BIGSERIAL PRIMARY KEY,
	entity TEXT NOT NULL,
	text TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_facts_entity ON facts(entity);
CREATE INDEX IF NOT EXISTS idx_facts_created_at ON facts(created_at);

CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	topic TEXT NOT NULL DEFAULT '',
	transcript TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS goals (
	id BIGSERIAL PRIMARY KEY,
	text TEXT NOT NULL,
	target_date TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT 'active',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS learning_skills (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	category TEXT NOT NULL DEFAULT '',
	current_level TEXT NOT NULL DEFAULT '',
	roadmap_context TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS learning_items (
	id BIGSERIAL PRIMARY KEY,
	skill_id BIGINT NOT NULL REFERENCES learning_skills(id) ON DELETE CASCADE,
	item_type TEXT NOT NULL,
	prompt TEXT NOT NULL,
	answer TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '[]',
	review_count INTEGER NOT NULL DEFAULT 0,
	correct_count INTEGER NOT NULL DEFAULT 0,
	last_reviewed_at TIMESTAMPTZ,
	next_review_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_learning_items_next_review ON learning_items(next_review_at);

CREATE TABLE IF NOT EXISTS review_history (
	id BIGSERIAL PRIMARY KEY,
	item_id BIGINT NOT NULL REFERENCES learning_items(id) ON DELETE CASCADE,
	reviewed_at TIMESTAMPTZ NOT NULL,
	was_correct BOOLEAN NOT NULL,
	confidence INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS learning_sessions (
	id BIGSERIAL PRIMARY KEY,
	skill_id BIGINT NOT NULL REFERENCES learning_skills(id) ON DELETE CASCADE,
	topic TEXT NOT NULL DEFAULT '',
	minutes INTEGER NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS learning_milestones (
	id BIGSERIAL PRIMARY KEY,
	skill_id BIGINT NOT NULL REFERENCES learning_skills(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	achieved_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS learning_challenges (
	id BIGSERIAL PRIMARY KEY,
	skill_id BIGINT NOT NULL REFERENCES learning_skills(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	difficulty TEXT NOT NULL,
	estimated_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'available',
	progress_pct INTEGER NOT NULL DEFAULT 0,
	minutes_spent INTEGER NOT NULL DEFAULT 0,
	started_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	completion_notes TEXT NOT NULL DEFAULT '',
	completion_link TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_challenges_skill_status ON learning_challenges(skill_id, status);

CREATE TABLE IF NOT EXISTS challenge_obstacles (
	id BIGSERIAL PRIMARY KEY,
	challenge_id BIGINT NOT NULL REFERENCES learning_challenges(id) ON DELETE CASCADE,
	problem TEXT NOT NULL,
	solution TEXT,
	insight TEXT,
	minutes_to_solve INTEGER,
	logged_at TIMESTAMPTZ NOT NULL,
	solved_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS daily_streaks (
	date TEXT PRIMARY KEY,
	active BOOLEAN NOT NULL DEFAULT TRUE
);
`
