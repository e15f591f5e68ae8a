package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/bracket-engine/models"
)

func TestGetBracketBeforeGeneration(t *testing.T) {
	env := newServiceEnv()

	view, err := env.query.GetBracket(context.Background(), 42)
	require.NoError(t, err, "reads never fail just because no bracket exists")
	assert.Equal(t, 42, view.TournamentID)
	assert.False(t, view.Generated)
	assert.Empty(t, view.Stages)

	standings, err := env.query.GetStandings(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, standings.Tables)
}

func TestGetMatch(t *testing.T) {
	env := newServiceEnv()
	ctx := context.Background()
	_, err := env.svc.Generate(ctx, 1, GenerateBracketParams{
		Format:   "single_elimination",
		Entrants: inlineEntrants(4),
	})
	require.NoError(t, err)

	m, err := env.query.GetMatch(ctx, 1, "SE_R1_M1")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Slot1.EntrantID)

	_, err = env.query.GetMatch(ctx, 1, "SE_R5_M1")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestGetStandingsWithPlacements(t *testing.T) {
	env := newServiceEnv()
	ctx := context.Background()
	_, err := env.svc.Generate(ctx, 1, GenerateBracketParams{
		Format:   "single_elimination",
		Entrants: inlineEntrants(4),
	})
	require.NoError(t, err)
	playAllReady(t, env, 1)

	view, err := env.query.GetStandings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.Tables, 1)

	byID := make(map[int]models.StandingEntry)
	for _, e := range view.Tables[0].Entries {
		byID[e.EntrantID] = e
	}
	assert.Equal(t, "1st", byID[1].Placement)
	assert.Equal(t, "2nd", byID[2].Placement)
	assert.Equal(t, "3rd-4th", byID[3].Placement)
	assert.Equal(t, "3rd-4th", byID[4].Placement)
}

func TestGetStandingsLeagueHasNoPlacements(t *testing.T) {
	env := newServiceEnv()
	ctx := context.Background()
	_, err := env.svc.Generate(ctx, 1, GenerateBracketParams{
		Format:   "round_robin",
		Entrants: inlineEntrants(4),
	})
	require.NoError(t, err)
	playAllReady(t, env, 1)

	view, err := env.query.GetStandings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.Tables, 1)
	for _, e := range view.Tables[0].Entries {
		assert.Empty(t, e.Placement)
	}
	assert.Equal(t, 1, view.Tables[0].Entries[0].EntrantID)
}

func TestOrdinalLabels(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd"}
	for n, want := range cases {
		assert.Equal(t, want, ordinal(n), "n=%d", n)
	}
}

func TestTeamServiceValidation(t *testing.T) {
	env := newServiceEnv()
	svc := NewTeamService(env.teams)
	ctx := context.Background()

	err := svc.Create(ctx, &models.Team{Name: "   "})
	assert.ErrorIs(t, err, ErrValidationFailed)

	team := &models.Team{Name: "  Falcons  ", Rating: 1700}
	require.NoError(t, svc.Create(ctx, team))
	assert.Equal(t, "Falcons", team.Name)
	require.NotZero(t, team.ID)

	got, err := svc.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Falcons", got.Name)

	_, err = svc.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrTeamNotFound)

	err = svc.Delete(ctx, 999)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}
