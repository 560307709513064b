package sqlite

// Schema creates all tables and indexes. Statements are idempotent so
// the schema can be applied on every open.
const Schema = `
CREATE TABLE IF NOT EXISTS themes (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    category    TEXT NOT NULL,
    subcategory TEXT NOT NULL,
    specific    TEXT NOT NULL,
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (category, subcategory, specific)
);

CREATE TABLE IF NOT EXISTS events (
    id                TEXT PRIMARY KEY,
    theme_category    TEXT NOT NULL,
    theme_subcategory TEXT NOT NULL,
    theme_specific    TEXT NOT NULL,
    analysis          TEXT NOT NULL DEFAULT '',
    confidence        REAL NOT NULL DEFAULT 0,
    degraded          INTEGER NOT NULL DEFAULT 0,
    occurred_at       TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_occurred_at ON events(occurred_at);

CREATE TABLE IF NOT EXISTS settings (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
