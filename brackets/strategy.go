package brackets

import (
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

// Strategy is one tournament format: it builds the initial stages and matches
// onto an empty state, and advances the graph after a match completes.
// Advance must be idempotent under at-least-once delivery of the same
// completed match.
type Strategy interface {
	Format() models.Format

	// Build populates st.Stages and st.Matches from st.Entrants (already in
	// seed order) and st.Config.
	Build(st *State) error

	// Advance reacts to a completed match and returns every match it created
	// or mutated.
	Advance(st *State, completed *models.Match) ([]*models.Match, error)
}

// RoundGenerator is implemented by formats that create rounds incrementally
// once the previous round has finished (Swiss).
type RoundGenerator interface {
	// NextRound pairs and creates the next round, or finalizes the stage when
	// the configured round count is reached (returning no matches).
	NextRound(st *State) ([]*models.Match, error)
}

// Promoter is implemented by formats with an explicit promotion seam between
// phases (group stage into playoffs).
type Promoter interface {
	// Promote moves the qualifying entrants into the next phase, creating its
	// stages and matches.
	Promote(st *State) ([]*models.Match, error)
}

// ForFormat returns the strategy implementing the given format.
func ForFormat(format models.Format) (Strategy, error) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleElimination(), nil
	case models.FormatDoubleElimination:
		return NewDoubleElimination(), nil
	case models.FormatSwiss:
		return NewSwiss(), nil
	case models.FormatRoundRobin:
		return NewRoundRobin(), nil
	case models.FormatGroupStage:
		return NewGroupStage(), nil
	}
	return nil, fmt.Errorf("unsupported tournament format %q", format)
}
