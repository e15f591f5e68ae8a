package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/bracket-engine/models"
)

func TestDoubleEliminationBuildStructure(t *testing.T) {
	st, _ := buildState(t, models.FormatDoubleElimination, 8, models.BracketConfig{})

	require.Len(t, st.Stages, 3)
	assert.Equal(t, models.StageUpperBracket, st.Stages[0].Tag)
	assert.Equal(t, models.StageLowerBracket, st.Stages[1].Tag)
	assert.Equal(t, models.StageGrandFinal, st.Stages[2].Tag)
	assert.Equal(t, 3, st.Stages[0].Rounds)
	assert.Equal(t, 4, st.Stages[1].Rounds)

	// Upper 7 + lower 6 + grand final pair.
	assert.Len(t, st.Matches, 15)

	gf := st.Match("GF_M1")
	require.NotNil(t, gf)
	assert.Equal(t, models.SlotWinnerOf, gf.Slot1.Kind)
	assert.Equal(t, "UB_R3_M1", gf.Slot1.MatchUID)
	assert.Equal(t, "LB_R4_M1", gf.Slot2.MatchUID)

	reset := st.Match("GF_M2")
	require.NotNil(t, reset)
	assert.Equal(t, models.SlotWinnerOf, reset.Slot1.Kind)
	assert.Equal(t, models.SlotLoserOf, reset.Slot2.Kind)

	require.NoError(t, st.Validate())
}

func TestDoubleEliminationUpperWinnerSkipsReset(t *testing.T) {
	st, strat := buildState(t, models.FormatDoubleElimination, 4, models.BracketConfig{})

	played := playOut(t, st, strat)
	assert.Equal(t, 6, played)

	reset := st.Match("GF_M2")
	assert.Equal(t, models.MatchCancelled, reset.Status,
		"upper-bracket entrant winning the grand final skips the reset")

	de := strat.(*DoubleElimination)
	champ := de.Champion(st)
	require.NotNil(t, champ)
	assert.Equal(t, 1, champ.ID)
}

func TestDoubleEliminationBracketReset(t *testing.T) {
	st, strat := buildState(t, models.FormatDoubleElimination, 4, models.BracketConfig{})
	de := strat.(*DoubleElimination)

	play(t, st, strat, "UB_R1_M1", 2, 0) // 1 over 4
	play(t, st, strat, "UB_R1_M2", 2, 1) // 2 over 3
	play(t, st, strat, "UB_R2_M1", 2, 0) // 1 over 2; 2 drops
	play(t, st, strat, "LB_R1_M1", 2, 0) // 4 over 3
	play(t, st, strat, "LB_R2_M1", 0, 2) // 2 over 4

	gf := st.Match("GF_M1")
	require.Equal(t, models.MatchReady, gf.Status)
	assert.Equal(t, 1, gf.Slot1.EntrantID)
	assert.Equal(t, 2, gf.Slot2.EntrantID)

	// Lower-bracket entrant wins: both sides now stand at one loss.
	play(t, st, strat, "GF_M1", 0, 2)
	assert.Nil(t, de.Champion(st), "title is not decided before the reset match")

	reset := st.Match("GF_M2")
	require.Equal(t, models.MatchReady, reset.Status)
	assert.Equal(t, 2, reset.Slot1.EntrantID)
	assert.Equal(t, 1, reset.Slot2.EntrantID)

	play(t, st, strat, "GF_M2", 2, 1)
	champ := de.Champion(st)
	require.NotNil(t, champ)
	assert.Equal(t, 2, champ.ID)
}

func TestDoubleEliminationGrandFinalAdvanceIsIdempotent(t *testing.T) {
	st, strat := buildState(t, models.FormatDoubleElimination, 4, models.BracketConfig{})

	playOut(t, st, strat)
	require.Equal(t, models.MatchCancelled, st.Match("GF_M2").Status)

	mutated, err := strat.Advance(st, st.Match("GF_M1"))
	require.NoError(t, err)
	assert.Empty(t, mutated)
	assert.Equal(t, models.MatchCancelled, st.Match("GF_M2").Status)
}

func TestDoubleEliminationNobodyLosesTwiceBeforeElimination(t *testing.T) {
	st, strat := buildState(t, models.FormatDoubleElimination, 8, models.BracketConfig{})

	playOut(t, st, strat)

	for id, losses := range lossCounts(st) {
		assert.LessOrEqual(t, losses, 2, "entrant %d", id)
	}

	placements := PlacementBands(st)
	assert.Equal(t, 1, placements[1])
	assert.Len(t, placements, 8, "every entrant ends with a placement")
}

func TestDoubleEliminationWithByes(t *testing.T) {
	st, strat := buildState(t, models.FormatDoubleElimination, 5, models.BracketConfig{})

	// Upper-round byes walk over at build time. A lower-bracket match holding
	// a forwarded bye next to a loser_of slot is not settled: it must wait for
	// the real loser instead of completing as a walkover.
	for _, uid := range []string{"UB_R1_M1", "UB_R1_M3", "UB_R1_M4"} {
		assert.Equal(t, models.MatchCompleted, st.Match(uid).Status, uid)
	}
	lb1 := st.Match("LB_R1_M1")
	require.NotNil(t, lb1)
	assert.True(t, lb1.Slot1.IsBye())
	assert.Equal(t, models.SlotLoserOf, lb1.Slot2.Kind)
	assert.Equal(t, models.MatchPending, lb1.Status,
		"bye next to an unresolved loser_of slot must not walk over")
	assert.Equal(t, models.MatchPending, st.Match("GF_M1").Status)

	played := playOut(t, st, strat)
	assert.Equal(t, 8, played)

	// The loser of the only real round-one match drops into the lower bracket
	// and plays on rather than vanishing into a pre-completed walkover.
	lb2 := st.Match("LB_R2_M1")
	require.NotNil(t, lb2)
	assert.Equal(t, 5, lb2.Slot1.EntrantID)
	assert.Equal(t, models.MatchCompleted, lb2.Status)

	de := strat.(*DoubleElimination)
	champ := de.Champion(st)
	require.NotNil(t, champ)
	assert.Equal(t, 1, champ.ID)

	for id, losses := range lossCounts(st) {
		assert.LessOrEqual(t, losses, 2, "entrant %d", id)
	}
}

func TestDoubleEliminationTwoEntrants(t *testing.T) {
	st, strat := buildState(t, models.FormatDoubleElimination, 2, models.BracketConfig{})

	// No lower bracket: the upper final's loser drops straight into the grand
	// final for their second chance.
	assert.Nil(t, findStage(st, models.StageLowerBracket))
	gf := st.Match("GF_M1")
	require.NotNil(t, gf)
	assert.Equal(t, models.SlotLoserOf, gf.Slot2.Kind)
	assert.Equal(t, "UB_R1_M1", gf.Slot2.MatchUID)

	play(t, st, strat, "UB_R1_M1", 2, 0)
	require.Equal(t, models.MatchReady, gf.Status)
	assert.Equal(t, 1, gf.Slot1.EntrantID)
	assert.Equal(t, 2, gf.Slot2.EntrantID)
}
