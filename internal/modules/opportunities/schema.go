package opportunities

import "database/sql"

// OpportunitiesSchema holds the opportunities and opportunity_songs tables.
const OpportunitiesSchema = `
CREATE TABLE IF NOT EXISTS opportunities (
    id INTEGER PRIMARY KEY,
    client TEXT NOT NULL,
    project TEXT NOT NULL,
    flow_direction TEXT NOT NULL,
    status TEXT NOT NULL,
    budget REAL NOT NULL,
    mfn INTEGER NOT NULL DEFAULT 0,
    currency TEXT NOT NULL DEFAULT 'USD',
    deadline TEXT,
    work_id INTEGER,
    recording_id INTEGER,
    publishing_amount REAL NOT NULL DEFAULT 0,
    recording_amount REAL NOT NULL DEFAULT 0,
    total_amount REAL NOT NULL DEFAULT 0,
    percent_of_budget REAL NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS opportunity_songs (
    id INTEGER PRIMARY KEY,
    opportunity_id INTEGER NOT NULL REFERENCES opportunities(id),
    work_id INTEGER NOT NULL,
    recording_id INTEGER,
    budget REAL NOT NULL,
    mfn INTEGER NOT NULL DEFAULT 0,
    publishing_amount REAL NOT NULL DEFAULT 0,
    recording_amount REAL NOT NULL DEFAULT 0,
    total_amount REAL NOT NULL DEFAULT 0,
    percent_of_budget REAL NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_opportunities_status ON opportunities(status);
CREATE INDEX IF NOT EXISTS idx_opportunities_deadline ON opportunities(deadline);
CREATE INDEX IF NOT EXISTS idx_opportunity_songs_opportunity ON opportunity_songs(opportunity_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(OpportunitiesSchema)
	return err
}
