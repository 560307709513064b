package postgres

// Schema creates all tables and indexes. Statements are idempotent so
// the schema can be applied on every open.
const Schema = `
CREATE TABLE IF NOT EXISTS themes (
    id          BIGSERIAL PRIMARY KEY,
    category    TEXT NOT NULL,
    subcategory TEXT NOT NULL,
    specific    TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (category, subcategory, specific)
);

CREATE TABLE IF NOT EXISTS events (
    id                TEXT PRIMARY KEY,
    theme_category    TEXT NOT NULL,
    theme_subcategory TEXT NOT NULL,
    theme_specific    TEXT NOT NULL,
    analysis          TEXT NOT NULL DEFAULT '',
    confidence        DOUBLE PRECISION NOT NULL DEFAULT 0,
    degraded          BOOLEAN NOT NULL DEFAULT FALSE,
    occurred_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_occurred_at ON events(occurred_at);

CREATE TABLE IF NOT EXISTS settings (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
