package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/bracket-engine/models"
)

func swissStage(t *testing.T, st *State) *models.BracketStage {
	t.Helper()
	stage := findStage(st, models.StageSwiss)
	require.NotNil(t, stage)
	return stage
}

// roundPairs collects the entrant pairings of one round, byes excluded.
func roundPairs(st *State, stageID, round int) [][2]int {
	var pairs [][2]int
	for _, m := range st.StageMatches(stageID) {
		if m.Round != round || m.Bye() {
			continue
		}
		pairs = append(pairs, pairKey(m.Slot1.EntrantID, m.Slot2.EntrantID))
	}
	return pairs
}

func TestSwissBuildFoldPairing(t *testing.T) {
	st, _ := buildState(t, models.FormatSwiss, 8, models.BracketConfig{})

	stage := swissStage(t, st)
	assert.Equal(t, 3, stage.Rounds, "default round count is ceil(log2 n)")

	pairs := roundPairs(st, stage.ID, 1)
	assert.Equal(t, [][2]int{{1, 5}, {2, 6}, {3, 7}, {4, 8}}, pairs)
	assert.Len(t, st.Matches, 4)
}

func TestSwissBuildAdjacentPairing(t *testing.T) {
	st, _ := buildState(t, models.FormatSwiss, 4, models.BracketConfig{SwissPairing: models.PairAdjacent})

	pairs := roundPairs(st, swissStage(t, st).ID, 1)
	assert.Equal(t, [][2]int{{1, 2}, {3, 4}}, pairs)
}

func TestSwissBuildSeedMirrorPairing(t *testing.T) {
	st, _ := buildState(t, models.FormatSwiss, 4, models.BracketConfig{SwissPairing: models.PairSeedMirror})
	assert.Equal(t, [][2]int{{1, 4}, {2, 3}}, roundPairs(st, swissStage(t, st).ID, 1))

	odd, _ := buildState(t, models.FormatSwiss, 5, models.BracketConfig{SwissPairing: models.PairSeedMirror})
	assert.Equal(t, [][2]int{{1, 5}, {2, 4}}, roundPairs(odd, swissStage(t, odd).ID, 1))
	bye := odd.Match(swissUID(1, 3))
	require.NotNil(t, bye)
	require.NotNil(t, bye.WinnerID)
	assert.Equal(t, 3, *bye.WinnerID, "the middle seed sits out an odd mirror field")
}

func TestSwissBuildRandomPairingIsReproducible(t *testing.T) {
	cfg := models.BracketConfig{SwissPairing: models.PairRandom, RandomSeed: 7}
	a, _ := buildState(t, models.FormatSwiss, 8, cfg)
	b, _ := buildState(t, models.FormatSwiss, 8, cfg)

	assert.Equal(t,
		roundPairs(a, swissStage(t, a).ID, 1),
		roundPairs(b, swissStage(t, b).ID, 1))
}

func TestSwissBuildOddFieldGetsBye(t *testing.T) {
	st, _ := buildState(t, models.FormatSwiss, 5, models.BracketConfig{})

	stage := swissStage(t, st)
	require.Len(t, st.Matches, 3)

	bye := st.Match(swissUID(1, 3))
	require.NotNil(t, bye)
	assert.True(t, bye.Bye())
	assert.Equal(t, models.MatchCompleted, bye.Status)
	require.NotNil(t, bye.WinnerID)
	assert.Equal(t, 5, *bye.WinnerID, "the last unpaired entrant sits out round 1")

	assert.Equal(t, [][2]int{{1, 3}, {2, 4}}, roundPairs(st, stage.ID, 1))
}

func TestSwissNextRoundRequiresCompletedRound(t *testing.T) {
	st, strat := buildState(t, models.FormatSwiss, 8, models.BracketConfig{})
	sw := strat.(*Swiss)

	_, err := sw.NextRound(st)
	assert.ErrorIs(t, err, ErrRoundNotComplete)

	play(t, st, strat, swissUID(1, 1), 2, 0)
	_, err = sw.NextRound(st)
	assert.ErrorIs(t, err, ErrRoundNotComplete)
}

func TestSwissNextRoundPairsByRecord(t *testing.T) {
	st, strat := buildState(t, models.FormatSwiss, 8, models.BracketConfig{})
	sw := strat.(*Swiss)
	stage := swissStage(t, st)

	// Round 1: 1v5 2v6 3v7 4v8, top half wins.
	for i := 1; i <= 4; i++ {
		play(t, st, strat, swissUID(1, i), 2, 0)
	}

	created, err := sw.NextRound(st)
	require.NoError(t, err)
	require.Len(t, created, 4)

	// Winners meet winners, losers meet losers.
	assert.Equal(t, [][2]int{{1, 2}, {3, 4}, {5, 6}, {7, 8}}, roundPairs(st, stage.ID, 2))
	for _, m := range created {
		assert.Equal(t, models.MatchReady, m.Status)
	}
}

func TestSwissNeverRematchesWhenAvoidable(t *testing.T) {
	st, strat := buildState(t, models.FormatSwiss, 8, models.BracketConfig{})
	sw := strat.(*Swiss)
	stage := swissStage(t, st)

	for round := 1; round <= 3; round++ {
		for _, m := range st.StageMatches(stage.ID) {
			if m.Round == round && m.Status == models.MatchReady {
				s1, s2 := lowIDScores(m)
				require.NoError(t, st.ApplyResult(m, s1, s2))
			}
		}
		if round < 3 {
			_, err := sw.NextRound(st)
			require.NoError(t, err)
		}
	}

	seen := make(map[[2]int]int)
	for round := 1; round <= 3; round++ {
		for _, p := range roundPairs(st, stage.ID, round) {
			seen[p]++
		}
	}
	assert.Len(t, seen, 12, "3 rounds of 4 matches, all distinct pairings")
	for p, count := range seen {
		assert.Equal(t, 1, count, "pair %v", p)
	}
}

func TestSwissByeRotatesThroughTheField(t *testing.T) {
	st, strat := buildState(t, models.FormatSwiss, 5, models.BracketConfig{})
	sw := strat.(*Swiss)
	stage := swissStage(t, st)
	require.Equal(t, 3, stage.Rounds)

	byeRecipients := make(map[int]int)
	for round := 1; round <= 3; round++ {
		for _, m := range st.StageMatches(stage.ID) {
			if m.Round != round {
				continue
			}
			if m.Bye() {
				require.NotNil(t, m.WinnerID)
				byeRecipients[*m.WinnerID]++
				continue
			}
			if m.Status == models.MatchReady {
				s1, s2 := lowIDScores(m)
				require.NoError(t, st.ApplyResult(m, s1, s2))
			}
		}
		if round < 3 {
			_, err := sw.NextRound(st)
			require.NoError(t, err)
		}
	}

	assert.Len(t, byeRecipients, 3, "nobody sits out twice before everyone sat out once")
	for id, count := range byeRecipients {
		assert.Equal(t, 1, count, "entrant %d", id)
	}
}

func TestSwissFinalizesAfterConfiguredRounds(t *testing.T) {
	st, strat := buildState(t, models.FormatSwiss, 4, models.BracketConfig{SwissRounds: 2})
	sw := strat.(*Swiss)
	stage := swissStage(t, st)
	require.Equal(t, 2, stage.Rounds)

	play(t, st, strat, swissUID(1, 1), 2, 0)
	play(t, st, strat, swissUID(1, 2), 2, 0)
	created, err := sw.NextRound(st)
	require.NoError(t, err)
	require.Len(t, created, 2)

	for _, m := range created {
		s1, s2 := lowIDScores(m)
		require.NoError(t, st.ApplyResult(m, s1, s2))
	}

	created, err = sw.NextRound(st)
	require.NoError(t, err)
	assert.Empty(t, created, "reaching the round count finalizes instead of pairing")
	assert.Equal(t, models.StageCompleted, stage.Status)
}

func TestSwissFourEntrantTwoRoundScenario(t *testing.T) {
	cfg := models.BracketConfig{SwissRounds: 2, SwissPairing: models.PairSeedMirror}
	st, strat := buildState(t, models.FormatSwiss, 4, cfg)
	sw := strat.(*Swiss)
	stage := swissStage(t, st)

	assert.Equal(t, [][2]int{{1, 4}, {2, 3}}, roundPairs(st, stage.ID, 1))

	play(t, st, strat, swissUID(1, 1), 2, 0) // 1 over 4
	play(t, st, strat, swissUID(1, 2), 2, 1) // 2 over 3

	created, err := sw.NextRound(st)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, [][2]int{{1, 2}, {3, 4}}, roundPairs(st, stage.ID, 2),
		"round 2 pairs equal records without rematching")

	play(t, st, strat, swissUID(2, 1), 2, 1) // 1 over 2
	play(t, st, strat, swissUID(2, 2), 2, 0) // 3 over 4

	created, err = sw.NextRound(st)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Equal(t, models.StageCompleted, stage.Status)

	table := ComputeStageStandings(st, stage.ID)
	require.Len(t, table, 4)
	for i, want := range []int{1, 2, 3, 4} {
		assert.Equal(t, want, table[i].EntrantID)
	}
	assert.Equal(t, 2, table[0].Wins)
	assert.Equal(t, 0, table[3].Wins)
}

func TestSwissStandings(t *testing.T) {
	st, strat := buildState(t, models.FormatSwiss, 4, models.BracketConfig{SwissRounds: 2})
	sw := strat.(*Swiss)
	stage := swissStage(t, st)

	// Round 1 (fold): 1v3, 2v4.
	play(t, st, strat, swissUID(1, 1), 2, 1)
	play(t, st, strat, swissUID(1, 2), 0, 2)
	_, err := sw.NextRound(st)
	require.NoError(t, err)

	// Round 2: 1v4, 2v3. Let 4 upset 1.
	assert.Equal(t, [][2]int{{1, 4}, {2, 3}}, roundPairs(st, stage.ID, 2))
	play(t, st, strat, swissUID(2, 1), 1, 2)
	play(t, st, strat, swissUID(2, 2), 2, 0)

	table := ComputeStageStandings(st, stage.ID)
	require.Len(t, table, 4)

	// 4 finishes 2-0; 1 and 2 tie at 1-1 with equal Buchholz and map
	// difference, so the original seed breaks the tie.
	assert.Equal(t, 4, table[0].EntrantID)
	assert.Equal(t, 2, table[0].Wins)
	assert.Equal(t, 1, table[1].EntrantID)
	assert.Equal(t, 2, table[2].EntrantID)
	assert.Equal(t, 3, table[3].EntrantID)
}
