package models

// Entrant is a team competing in a tournament. The set of entrants is fixed
// once a bracket has been generated; Seed values are dense and unique (1..N).
type Entrant struct {
	ID     int    `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Seed   int    `json:"seed" db:"seed"`
	Rating int    `json:"rating,omitempty" db:"rating"`
}

// Team is the external entrant-directory record. Only consulted at
// generation time.
type Team struct {
	ID     int    `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Rating int    `json:"rating" db:"rating"`
}
