package models

type StageStatus string

const (
	StageNotStarted StageStatus = "not_started"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
)

// BracketStage groups the matches of one tournament phase. Ordinal orders
// stages relative to each other within the tournament. Rounds is the planned
// round count where it is known upfront (Swiss, round robin); zero otherwise.
type BracketStage struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Tag          StageTag    `json:"tag" db:"tag"`
	Name         string      `json:"name" db:"name"`
	Ordinal      int         `json:"ordinal" db:"ordinal"`
	Status       StageStatus `json:"status" db:"status"`
	Rounds       int         `json:"rounds,omitempty" db:"rounds"`
}

// Bracket is the persisted generation record for one tournament: the chosen
// format, the frozen entrant list, and the config the bracket was built with.
type Bracket struct {
	TournamentID int           `json:"tournament_id" db:"tournament_id"`
	Format       Format        `json:"format" db:"format"`
	Entrants     []Entrant     `json:"entrants"`
	Config       BracketConfig `json:"config"`
}
