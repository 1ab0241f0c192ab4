package activity

import "database/sql"

// ActivitySchema holds the append-only activity log table.
const ActivitySchema = `
CREATE TABLE IF NOT EXISTS activity_log (
    id INTEGER PRIMARY KEY,
    opportunity_id INTEGER NOT NULL,
    type TEXT NOT NULL,
    actor TEXT NOT NULL,
    message TEXT NOT NULL,
    data_json TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_opportunity ON activity_log(opportunity_id);
CREATE INDEX IF NOT EXISTS idx_activity_type ON activity_log(type);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(ActivitySchema)
	return err
}
