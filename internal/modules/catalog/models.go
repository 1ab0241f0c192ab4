package catalog

import "time"

// Work represents a musical composition in the Dale Play catalog.
// ControlPercentage is Dale Play's degree of control over licensing
// decisions; SharePercentage is the publishing revenue share actually
// allocated to Dale Play.
type Work struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Artist            string    `json:"artist"`
	Writers           *string   `json:"writers,omitempty"`
	ControlPercentage float64   `json:"control_percentage"`
	SharePercentage   float64   `json:"share_percentage"`
	CreatedAt         time.Time `json:"created_at"`
}

// Recording represents a sound recording (fonograma) of a work.
// Percentage is Dale Play's master revenue share; ControlPercentage feeds
// the MFN pricing branch.
type Recording struct {
	ID                int64     `json:"id"`
	WorkID            int64     `json:"work_id"`
	Title             string    `json:"title"`
	ControlPercentage float64   `json:"control_percentage"`
	Percentage        float64   `json:"percentage"`
	CreatedAt         time.Time `json:"created_at"`
}
