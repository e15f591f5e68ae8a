package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dosada05/bracket-engine/models"
)

func testEntrants(n int) []models.Entrant {
	out := make([]models.Entrant, n)
	for i := range out {
		out[i] = models.Entrant{
			ID:     i + 1,
			Name:   fmt.Sprintf("Team %d", i+1),
			Seed:   i + 1,
			Rating: 2000 - 25*i,
		}
	}
	return out
}

func buildState(t *testing.T, format models.Format, n int, cfg models.BracketConfig) (*State, Strategy) {
	t.Helper()
	st := NewState(&models.Bracket{
		TournamentID: 1,
		Format:       format,
		Entrants:     testEntrants(n),
		Config:       cfg,
	})
	strat, err := ForFormat(format)
	require.NoError(t, err)
	require.NoError(t, strat.Build(st))
	return st, strat
}

func nextReady(st *State) *models.Match {
	for _, m := range st.Matches {
		if m.Status == models.MatchReady {
			return m
		}
	}
	return nil
}

// lowIDScores returns a decisive score where the lower entrant id wins.
func lowIDScores(m *models.Match) (int, int) {
	w := m.WinScore()
	if m.Slot1.EntrantID < m.Slot2.EntrantID {
		return w, 0
	}
	return 0, w
}

// playOut plays every ready match to completion, lower entrant id winning,
// and returns how many matches needed a submitted score.
func playOut(t *testing.T, st *State, strat Strategy) int {
	t.Helper()
	played := 0
	for {
		m := nextReady(st)
		if m == nil {
			return played
		}
		s1, s2 := lowIDScores(m)
		require.NoError(t, st.ApplyResult(m, s1, s2))
		_, err := strat.Advance(st, m)
		require.NoError(t, err)
		played++
	}
}

// play completes one match by UID and runs the strategy's advancement.
func play(t *testing.T, st *State, strat Strategy, uid string, s1, s2 int) {
	t.Helper()
	m := st.Match(uid)
	require.NotNil(t, m, "match %s not found", uid)
	require.NoError(t, st.ApplyResult(m, s1, s2))
	_, err := strat.Advance(st, m)
	require.NoError(t, err)
}

func lossCounts(st *State) map[int]int {
	losses := make(map[int]int)
	for _, m := range st.Matches {
		if m.Status == models.MatchCompleted && m.LoserID != nil {
			losses[*m.LoserID]++
		}
	}
	return losses
}
