package models

// StandingEntry is a projection over completed matches, recomputed on demand.
// It is never the source of truth.
type StandingEntry struct {
	EntrantID       int    `json:"entrant_id"`
	Name            string `json:"name,omitempty"`
	Seed            int    `json:"seed"`
	Rank            int    `json:"rank"`
	Wins            int    `json:"wins"`
	Losses          int    `json:"losses"`
	MapsWon         int    `json:"maps_won"`
	MapsLost        int    `json:"maps_lost"`
	MapDifference   int    `json:"map_difference"`
	Points          int    `json:"points"`
	Buchholz        int    `json:"buchholz"`
	SonnebornBerger int    `json:"sonneborn_berger"`
	// Placement is a final placement band ("1st", "3rd-4th") for completed
	// elimination brackets; empty while the bracket is still running.
	Placement string `json:"placement,omitempty"`
}
