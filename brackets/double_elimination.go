package brackets

import (
	"fmt"
	"math"

	"github.com/Dosada05/bracket-engine/models"
)

// DoubleElimination mirrors the upper bracket with a lower one. An entrant is
// eliminated only on its second loss: upper-bracket losers drop into the
// lower-bracket round matching the round they lost in, and the two bracket
// winners meet in a grand final. If the lower-bracket entrant wins the first
// grand final, a pre-created reset match decides the title; otherwise the
// reset match is cancelled.
type DoubleElimination struct{}

func NewDoubleElimination() *DoubleElimination { return &DoubleElimination{} }

func (f *DoubleElimination) Format() models.Format { return models.FormatDoubleElimination }

const (
	grandFinalUID      = "GF_M1"
	grandFinalResetUID = "GF_M2"
)

func (f *DoubleElimination) Build(st *State) error {
	n := len(st.Entrants)
	if n < 2 {
		return fmt.Errorf("%w: need at least 2, got %d", ErrInvalidEntrantCount, n)
	}

	size := nextPowerOfTwo(n)
	upperRounds := int(math.Log2(float64(size)))
	bestOf := st.Config.BestOf

	upperStage := st.AddStage(models.StageUpperBracket, "Upper Bracket", upperRounds)
	upper := buildEliminationRounds(st, upperStage, "UB", firstRoundSlots(st.Entrants, size), bestOf)
	upperFinal := upper[upperRounds][0]

	// Feeder for grand final slot 2: the lower-bracket final, or for a
	// two-entrant bracket (no lower rounds) the upper final's loser directly.
	var lowerFinal *models.Match
	if upperRounds >= 2 {
		lowerFinal = f.buildLowerBracket(st, upper, size, bestOf)
	}

	gfStage := st.AddStage(models.StageGrandFinal, "Grand Final", 0)
	gf := &models.Match{
		UID:     grandFinalUID,
		Stage:   models.StageGrandFinal,
		StageID: gfStage.ID,
		Round:   1,
		Order:   1,
		Slot1:   models.WinnerOf(upperFinal.UID),
		BestOf:  bestOf,
		Status:  models.MatchPending,
	}
	upperFinal.WinnerTo = &models.Target{MatchUID: gf.UID, Slot: 1}
	if lowerFinal != nil {
		gf.Slot2 = models.WinnerOf(lowerFinal.UID)
		lowerFinal.WinnerTo = &models.Target{MatchUID: gf.UID, Slot: 2}
	} else {
		gf.Slot2 = models.LoserOf(upperFinal.UID)
		upperFinal.LoserTo = &models.Target{MatchUID: gf.UID, Slot: 2}
	}
	st.AddMatch(gf)

	reset := &models.Match{
		UID:     grandFinalResetUID,
		Stage:   models.StageGrandFinal,
		StageID: gfStage.ID,
		Round:   2,
		Order:   1,
		Slot1:   models.WinnerOf(gf.UID),
		Slot2:   models.LoserOf(gf.UID),
		BestOf:  bestOf,
		Status:  models.MatchPending,
	}
	gf.WinnerTo = &models.Target{MatchUID: reset.UID, Slot: 1}
	gf.LoserTo = &models.Target{MatchUID: reset.UID, Slot: 2}
	st.AddMatch(reset)

	if err := st.Validate(); err != nil {
		return err
	}
	_, err := st.CascadeByes()
	return err
}

// buildLowerBracket creates rounds 1..2k-2. Odd rounds pair lower-bracket
// survivors; even rounds pit each survivor against an upper-bracket dropper.
// Drop order within a round is reversed so early-round opponents do not meet
// again immediately.
func (f *DoubleElimination) buildLowerBracket(st *State, upper [][]*models.Match, size, bestOf int) *models.Match {
	upperRounds := len(upper) - 1
	lowerRounds := 2*upperRounds - 2
	stage := st.AddStage(models.StageLowerBracket, "Lower Bracket", lowerRounds)

	byRound := make([][]*models.Match, lowerRounds+1)
	lowerUID := func(round, order int) string { return fmt.Sprintf("LB_R%d_M%d", round, order) }

	for m := 1; m <= lowerRounds; m++ {
		var count int
		if m == 1 {
			count = size / 4
		} else if m%2 == 0 {
			count = len(byRound[m-1])
		} else {
			count = len(byRound[m-1]) / 2
		}

		byRound[m] = make([]*models.Match, count)
		for i := 1; i <= count; i++ {
			match := &models.Match{
				UID:     lowerUID(m, i),
				Stage:   models.StageLowerBracket,
				StageID: stage.ID,
				Round:   m,
				Order:   i,
				BestOf:  bestOf,
				Status:  models.MatchPending,
			}

			switch {
			case m == 1:
				src1, src2 := upper[1][2*i-2], upper[1][2*i-1]
				match.Slot1 = models.LoserOf(src1.UID)
				match.Slot2 = models.LoserOf(src2.UID)
				src1.LoserTo = &models.Target{MatchUID: match.UID, Slot: 1}
				src2.LoserTo = &models.Target{MatchUID: match.UID, Slot: 2}
			case m%2 == 0:
				// Survivor of the previous lower round vs a fresh dropper
				// from upper round m/2+1, in reversed order.
				upperRound := m/2 + 1
				prev := byRound[m-1][i-1]
				dropper := upper[upperRound][count-i]
				match.Slot1 = models.WinnerOf(prev.UID)
				match.Slot2 = models.LoserOf(dropper.UID)
				prev.WinnerTo = &models.Target{MatchUID: match.UID, Slot: 1}
				dropper.LoserTo = &models.Target{MatchUID: match.UID, Slot: 2}
			default:
				prev1, prev2 := byRound[m-1][2*i-2], byRound[m-1][2*i-1]
				match.Slot1 = models.WinnerOf(prev1.UID)
				match.Slot2 = models.WinnerOf(prev2.UID)
				prev1.WinnerTo = &models.Target{MatchUID: match.UID, Slot: 1}
				prev2.WinnerTo = &models.Target{MatchUID: match.UID, Slot: 2}
			}

			byRound[m][i-1] = match
			st.AddMatch(match)
		}
	}
	return byRound[lowerRounds][0]
}

func (f *DoubleElimination) Advance(st *State, completed *models.Match) ([]*models.Match, error) {
	switch completed.UID {
	case grandFinalUID:
		return f.advanceGrandFinal(st, completed)
	case grandFinalResetUID:
		return nil, nil // tournament decided
	}
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

// advanceGrandFinal applies the bracket-reset rule. Slot 2 of the grand final
// always holds the lower-bracket entrant; if they win, both sides stand at
// one loss and the reset match is played. If the upper-bracket entrant wins,
// the reset match is cancelled.
func (f *DoubleElimination) advanceGrandFinal(st *State, gf *models.Match) ([]*models.Match, error) {
	reset := st.Match(grandFinalResetUID)
	if reset == nil {
		return nil, fmt.Errorf("%w: match %s", ErrDanglingAdvancement, grandFinalResetUID)
	}
	if gf.WinnerID == nil {
		return nil, fmt.Errorf("%w: grand final completed without winner", ErrIllegalTransition)
	}

	if *gf.WinnerID == gf.Slot2.EntrantID {
		return st.ResolveTargets(gf)
	}

	if reset.Terminal() {
		// Already settled by a previous delivery of this result.
		if reset.Status == models.MatchCancelled {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reset match is %s", ErrIllegalTransition, reset.Status)
	}
	reset.Status = models.MatchCancelled
	return []*models.Match{reset}, nil
}

// Champion returns the decided winner of a double elimination bracket, or nil
// while it is still running.
func (f *DoubleElimination) Champion(st *State) *models.Entrant {
	reset := st.Match(grandFinalResetUID)
	gf := st.Match(grandFinalUID)
	if reset == nil || gf == nil {
		return nil
	}
	if reset.Status == models.MatchCompleted && reset.WinnerID != nil {
		return st.Entrant(*reset.WinnerID)
	}
	if reset.Status == models.MatchCancelled && gf.Status == models.MatchCompleted && gf.WinnerID != nil {
		return st.Entrant(*gf.WinnerID)
	}
	return nil
}
