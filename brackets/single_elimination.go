package brackets

import (
	"fmt"
	"math"

	"github.com/Dosada05/bracket-engine/models"
)

// SingleElimination builds one knockout stage: ceil(log2 N) rounds with the
// classic seed placement, winner pointers wired forward round by round. Byes
// complete at build time and cascade through the same placeholder-resolution
// path as played matches.
type SingleElimination struct {
	uidPrefix string
	stageTag  models.StageTag
	stageName string
}

func NewSingleElimination() *SingleElimination {
	return &SingleElimination{uidPrefix: "SE", stageTag: models.StagePlayoff, stageName: "Playoffs"}
}

func (f *SingleElimination) Format() models.Format { return models.FormatSingleElimination }

func (f *SingleElimination) Build(st *State) error {
	n := len(st.Entrants)
	if n < 2 {
		return fmt.Errorf("%w: need at least 2, got %d", ErrInvalidEntrantCount, n)
	}

	size := nextPowerOfTwo(n)
	rounds := int(math.Log2(float64(size)))
	stage := st.AddStage(f.stageTag, f.stageName, rounds)

	buildEliminationRounds(st, stage, f.uidPrefix, firstRoundSlots(st.Entrants, size), st.Config.BestOf)

	if err := st.Validate(); err != nil {
		return err
	}
	_, err := st.CascadeByes()
	return err
}

func (f *SingleElimination) Advance(st *State, completed *models.Match) ([]*models.Match, error) {
	mutated, err := st.ResolveTargets(completed)
	if err != nil {
		return nil, err
	}
	cascaded, err := st.CascadeByes()
	if err != nil {
		return nil, err
	}
	return dedupeMatches(append(mutated, cascaded...)), nil
}

// firstRoundSlots places the seed-ordered entrants into bracket order, padded
// with byes up to the bracket size.
func firstRoundSlots(entrants []models.Entrant, size int) []models.Slot {
	slots := make([]models.Slot, size)
	for i, seed := range bracketOrder(size) {
		if seed <= len(entrants) {
			slots[i] = models.EntrantSlot(entrants[seed-1].ID)
		} else {
			slots[i] = models.ByeSlot()
		}
	}
	return slots
}

// buildEliminationRounds creates a full knockout tree over the given first
// round slots and wires winner advancement forward. It returns the matches
// grouped by round for callers that add further pointers (the double
// elimination upper bracket).
func buildEliminationRounds(st *State, stage *models.BracketStage, prefix string, slots []models.Slot, bestOf int) [][]*models.Match {
	size := len(slots)
	rounds := int(math.Log2(float64(size)))
	byRound := make([][]*models.Match, rounds+1)

	for r := 1; r <= rounds; r++ {
		count := size >> uint(r)
		byRound[r] = make([]*models.Match, count)
		for i := 1; i <= count; i++ {
			m := &models.Match{
				UID:     fmt.Sprintf("%s_R%d_M%d", prefix, r, i),
				Stage:   stage.Tag,
				StageID: stage.ID,
				Round:   r,
				Order:   i,
				BestOf:  bestOf,
				Status:  models.MatchPending,
			}
			if r == 1 {
				m.Slot1 = slots[2*i-2]
				m.Slot2 = slots[2*i-1]
			} else {
				prev1, prev2 := byRound[r-1][2*i-2], byRound[r-1][2*i-1]
				m.Slot1 = models.WinnerOf(prev1.UID)
				m.Slot2 = models.WinnerOf(prev2.UID)
				prev1.WinnerTo = &models.Target{MatchUID: m.UID, Slot: 1}
				prev2.WinnerTo = &models.Target{MatchUID: m.UID, Slot: 2}
			}
			byRound[r][i-1] = m
			st.AddMatch(m)
		}
	}
	return byRound
}
