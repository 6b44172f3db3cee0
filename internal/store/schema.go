package store

// schema is the full table set from spec.md §4.1: spaces, elements,
// positions, sizes, colors, texts, media_blobs, connections, drawings,
// action_log, settings. Element attributes are normalized into their own
// tables (one row per element, present only for elements that have that
// attribute) rather than one wide elements row, mirroring the spec's table
// list directly; space-level colors live inline on spaces since they are
// not addressed by element_id.
const schema = `
CREATE TABLE IF NOT EXISTS spaces (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	parent_id   TEXT REFERENCES spaces(id),
	bg_r        REAL NOT NULL DEFAULT 1,
	bg_g        REAL NOT NULL DEFAULT 1,
	bg_b        REAL NOT NULL DEFAULT 1,
	bg_a        REAL NOT NULL DEFAULT 1,
	show_grid   INTEGER NOT NULL DEFAULT 0,
	grid_r      REAL NOT NULL DEFAULT 0,
	grid_g      REAL NOT NULL DEFAULT 0,
	grid_b      REAL NOT NULL DEFAULT 0,
	grid_a      REAL NOT NULL DEFAULT 1,
	created_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS elements (
	id               TEXT PRIMARY KEY,
	space_id         TEXT NOT NULL REFERENCES spaces(id),
	kind             TEXT NOT NULL,
	shape_kind       TEXT,
	rotation_degrees REAL NOT NULL DEFAULT 0,
	hidden           INTEGER NOT NULL DEFAULT 0,
	locked           INTEGER NOT NULL DEFAULT 0,
	shape_opts_json  TEXT
);

CREATE INDEX IF NOT EXISTS idx_elements_space ON elements(space_id);

CREATE TABLE IF NOT EXISTS positions (
	element_id TEXT PRIMARY KEY REFERENCES elements(id),
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	z INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sizes (
	element_id TEXT PRIMARY KEY REFERENCES elements(id),
	w INTEGER NOT NULL,
	h INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS colors (
	element_id TEXT PRIMARY KEY REFERENCES elements(id),
	r REAL NOT NULL,
	g REAL NOT NULL,
	b REAL NOT NULL,
	a REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS texts (
	element_id TEXT PRIMARY KEY REFERENCES elements(id),
	text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS media_blobs (
	element_id       TEXT PRIMARY KEY REFERENCES elements(id),
	kind             TEXT NOT NULL,
	bytes            BLOB,
	thumbnail        BLOB,
	duration_seconds REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS connections (
	element_id      TEXT PRIMARY KEY REFERENCES elements(id),
	from_element_id TEXT NOT NULL,
	to_element_id   TEXT NOT NULL,
	from_point      INTEGER NOT NULL,
	to_point        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS drawings (
	element_id   TEXT PRIMARY KEY REFERENCES elements(id),
	points_json  TEXT NOT NULL,
	stroke_width REAL NOT NULL,
	color_r      REAL NOT NULL,
	color_g      REAL NOT NULL,
	color_b      REAL NOT NULL,
	color_a      REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS action_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	origin     TEXT NOT NULL,
	prompt     TEXT,
	dsl        TEXT,
	error      TEXT,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const currentSchemaVersion = "1"
