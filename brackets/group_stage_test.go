package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/bracket-engine/models"
)

func TestGroupStageSnakeSeeding(t *testing.T) {
	assert.Equal(t, [][]int{{0, 3, 4, 7}, {1, 2, 5, 6}}, snakeGroups(8, 2))
	assert.Equal(t, [][]int{{0, 5, 6}, {1, 4, 7}, {2, 3}}, snakeGroups(8, 3))
}

func TestGroupStageBuild(t *testing.T) {
	st, _ := buildState(t, models.FormatGroupStage, 8, models.BracketConfig{GroupCount: 2})

	require.Len(t, st.Stages, 2)
	assert.Equal(t, "Group A", st.Stages[0].Name)
	assert.Equal(t, "Group B", st.Stages[1].Name)
	for _, stage := range st.Stages {
		assert.Equal(t, models.StageGroup, stage.Tag)
		assert.Equal(t, 3, stage.Rounds)
		assert.Len(t, st.StageMatches(stage.ID), 6)
	}

	// Snake seeding balances strength: seeds 1, 4, 5, 8 land in group A.
	groupA := make(map[int]bool)
	for _, m := range st.StageMatches(st.Stages[0].ID) {
		groupA[m.Slot1.EntrantID] = true
		groupA[m.Slot2.EntrantID] = true
	}
	assert.Equal(t, map[int]bool{1: true, 4: true, 5: true, 8: true}, groupA)
}

func TestGroupStageRejectsUndersizedField(t *testing.T) {
	st := NewState(&models.Bracket{
		TournamentID: 1,
		Format:       models.FormatGroupStage,
		Entrants:     testEntrants(3),
		Config:       models.BracketConfig{GroupCount: 2}.Normalized(),
	})
	err := NewGroupStage().Build(st)
	assert.ErrorIs(t, err, ErrInvalidEntrantCount)
}

func TestGroupStagePromoteRequiresFinishedGroups(t *testing.T) {
	st, strat := buildState(t, models.FormatGroupStage, 8, models.BracketConfig{GroupCount: 2})
	gs := strat.(*GroupStage)

	_, err := gs.Promote(st)
	assert.ErrorIs(t, err, ErrRoundNotComplete)
}

func TestGroupStagePromoteBuildsPlayoffs(t *testing.T) {
	st, strat := buildState(t, models.FormatGroupStage, 8, models.BracketConfig{GroupCount: 2, AdvancePerGroup: 2})
	gs := strat.(*GroupStage)

	playOut(t, st, strat)
	created, err := gs.Promote(st)
	require.NoError(t, err)
	require.Len(t, created, 3, "four qualifiers make a 3-match knockout")

	require.Len(t, st.Stages, 3)
	playoff := st.Stages[2]
	assert.Equal(t, models.StagePlayoff, playoff.Tag)

	// Group winners are seeded above runners-up and same-group qualifiers
	// cannot meet in the first playoff round.
	m1 := st.Match("PO_R1_M1")
	require.NotNil(t, m1)
	assert.Equal(t, 1, m1.Slot1.EntrantID, "group A winner")
	assert.Equal(t, 3, m1.Slot2.EntrantID, "group B runner-up")

	m2 := st.Match("PO_R1_M2")
	require.NotNil(t, m2)
	assert.Equal(t, 2, m2.Slot1.EntrantID, "group B winner")
	assert.Equal(t, 4, m2.Slot2.EntrantID, "group A runner-up")
}

func TestGroupStagePromoteTwiceFails(t *testing.T) {
	st, strat := buildState(t, models.FormatGroupStage, 8, models.BracketConfig{GroupCount: 2})
	gs := strat.(*GroupStage)

	playOut(t, st, strat)
	_, err := gs.Promote(st)
	require.NoError(t, err)

	_, err = gs.Promote(st)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestGroupStagePlayoffPlayThrough(t *testing.T) {
	st, strat := buildState(t, models.FormatGroupStage, 8, models.BracketConfig{GroupCount: 2})
	gs := strat.(*GroupStage)

	playOut(t, st, strat)
	_, err := gs.Promote(st)
	require.NoError(t, err)

	// Advance dispatches playoff matches through the knockout strategy.
	played := playOut(t, st, strat)
	assert.Equal(t, 3, played)

	final := st.Match("PO_R2_M1")
	require.NotNil(t, final)
	require.Equal(t, models.MatchCompleted, final.Status)
	require.NotNil(t, final.WinnerID)
	assert.Equal(t, 1, *final.WinnerID)

	// Placements cover the playoff field only; group-phase losses do not
	// eliminate anyone.
	placements := PlacementBands(st)
	assert.Equal(t, map[int]int{1: 1, 2: 2, 3: 3, 4: 3}, placements)

	st.RefreshStageStatuses()
	for _, stage := range st.Stages {
		assert.Equal(t, models.StageCompleted, stage.Status, stage.Name)
	}
}

func TestGroupStageDoubleEliminationPlayoffs(t *testing.T) {
	st, strat := buildState(t, models.FormatGroupStage, 8, models.BracketConfig{
		GroupCount:    2,
		PlayoffFormat: models.FormatDoubleElimination,
	})
	gs := strat.(*GroupStage)

	playOut(t, st, strat)
	created, err := gs.Promote(st)
	require.NoError(t, err)
	assert.Len(t, created, 7, "4-entrant double elimination incl. the reset match")

	require.NotNil(t, findStage(st, models.StageUpperBracket))
	require.NotNil(t, findStage(st, models.StageGrandFinal))

	played := playOut(t, st, strat)
	assert.Equal(t, 6, played)
	assert.Equal(t, models.MatchCancelled, st.Match("GF_M2").Status)
}
