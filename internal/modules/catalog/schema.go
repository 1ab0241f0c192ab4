package catalog

import "database/sql"

// CatalogSchema holds the works and recordings tables.
const CatalogSchema = `
CREATE TABLE IF NOT EXISTS works (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    artist TEXT NOT NULL,
    writers TEXT,
    control_percentage REAL NOT NULL,
    share_percentage REAL NOT NULL,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recordings (
    id INTEGER PRIMARY KEY,
    work_id INTEGER NOT NULL REFERENCES works(id),
    title TEXT NOT NULL,
    control_percentage REAL NOT NULL,
    percentage REAL NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_works_title ON works(title);
CREATE INDEX IF NOT EXISTS idx_works_artist ON works(artist);
CREATE INDEX IF NOT EXISTS idx_recordings_work ON recordings(work_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(CatalogSchema)
	return err
}
