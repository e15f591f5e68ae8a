package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

// In-memory doubles for the repository layer. They copy on write and on read
// so a mutation only survives when the service persisted it explicitly.

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	return fn(nil)
}

type fakeBracketRepo struct {
	data map[int]*models.Bracket
}

func newFakeBracketRepo() *fakeBracketRepo {
	return &fakeBracketRepo{data: make(map[int]*models.Bracket)}
}

func (r *fakeBracketRepo) Create(ctx context.Context, exec repositories.SQLExecutor, bracket *models.Bracket) error {
	if _, ok := r.data[bracket.TournamentID]; ok {
		return repositories.ErrBracketAlreadyExists
	}
	clone := *bracket
	clone.Entrants = append([]models.Entrant(nil), bracket.Entrants...)
	r.data[bracket.TournamentID] = &clone
	return nil
}

func (r *fakeBracketRepo) GetByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*models.Bracket, error) {
	b, ok := r.data[tournamentID]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	clone := *b
	clone.Entrants = append([]models.Entrant(nil), b.Entrants...)
	return &clone, nil
}

func (r *fakeBracketRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	delete(r.data, tournamentID)
	return nil
}

type fakeStageRepo struct {
	data map[int][]*models.BracketStage
}

func newFakeStageRepo() *fakeStageRepo {
	return &fakeStageRepo{data: make(map[int][]*models.BracketStage)}
}

func (r *fakeStageRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, stages []*models.BracketStage) error {
	for _, s := range stages {
		clone := *s
		r.data[s.TournamentID] = append(r.data[s.TournamentID], &clone)
	}
	return nil
}

func (r *fakeStageRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.BracketStage, error) {
	out := make([]*models.BracketStage, 0, len(r.data[tournamentID]))
	for _, s := range r.data[tournamentID] {
		clone := *s
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

func (r *fakeStageRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, tournamentID, stageID int, status models.StageStatus) error {
	for _, s := range r.data[tournamentID] {
		if s.ID == stageID {
			s.Status = status
			return nil
		}
	}
	return repositories.ErrStageNotFound
}

func (r *fakeStageRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	delete(r.data, tournamentID)
	return nil
}

type fakeMatchRepo struct {
	data  map[int]map[string]*models.Match
	order map[int][]string
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{
		data:  make(map[int]map[string]*models.Match),
		order: make(map[int][]string),
	}
}

func cloneMatch(m *models.Match) *models.Match {
	clone := *m
	if m.WinnerID != nil {
		id := *m.WinnerID
		clone.WinnerID = &id
	}
	if m.LoserID != nil {
		id := *m.LoserID
		clone.LoserID = &id
	}
	if m.WinnerTo != nil {
		t := *m.WinnerTo
		clone.WinnerTo = &t
	}
	if m.LoserTo != nil {
		t := *m.LoserTo
		clone.LoserTo = &t
	}
	return &clone
}

func (r *fakeMatchRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	for _, m := range matches {
		if r.data[m.TournamentID] == nil {
			r.data[m.TournamentID] = make(map[string]*models.Match)
		}
		if _, ok := r.data[m.TournamentID][m.UID]; ok {
			return fmt.Errorf("duplicate match uid %s", m.UID)
		}
		r.data[m.TournamentID][m.UID] = cloneMatch(m)
		r.order[m.TournamentID] = append(r.order[m.TournamentID], m.UID)
	}
	return nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Match, error) {
	out := make([]*models.Match, 0, len(r.order[tournamentID]))
	for _, uid := range r.order[tournamentID] {
		out = append(out, cloneMatch(r.data[tournamentID][uid]))
	}
	return out, nil
}

func (r *fakeMatchRepo) GetByUID(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, uid string) (*models.Match, error) {
	m, ok := r.data[tournamentID][uid]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return cloneMatch(m), nil
}

func (r *fakeMatchRepo) Update(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if _, ok := r.data[match.TournamentID][match.UID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.data[match.TournamentID][match.UID] = cloneMatch(match)
	return nil
}

func (r *fakeMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	delete(r.data, tournamentID)
	delete(r.order, tournamentID)
	return nil
}

type fakeTeamRepo struct {
	data map[int]*models.Team
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	r := &fakeTeamRepo{data: make(map[int]*models.Team)}
	for _, t := range teams {
		r.data[t.ID] = t
	}
	return r
}

func (r *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	team.ID = len(r.data) + 1
	clone := *team
	r.data[team.ID] = &clone
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Team, error) {
	t, ok := r.data[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTeamRepo) ListByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]*models.Team, error) {
	out := make([]*models.Team, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.data[id]; ok {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	if _, ok := r.data[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	clone := *team
	r.data[team.ID] = &clone
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.data[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.data, id)
	return nil
}

// serviceEnv bundles a bracket service wired onto in-memory repositories.
type serviceEnv struct {
	svc      BracketService
	query    BracketQueryService
	tx       *fakeTxManager
	brackets *fakeBracketRepo
	stages   *fakeStageRepo
	matches  *fakeMatchRepo
	teams    *fakeTeamRepo
}

func newServiceEnv(teams ...*models.Team) *serviceEnv {
	env := &serviceEnv{
		tx:       &fakeTxManager{},
		brackets: newFakeBracketRepo(),
		stages:   newFakeStageRepo(),
		matches:  newFakeMatchRepo(),
		teams:    newFakeTeamRepo(teams...),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.svc = NewBracketService(env.tx, env.brackets, env.stages, env.matches, env.teams, nil, logger)
	env.query = NewBracketQueryService(env.brackets, env.stages, env.matches)
	return env
}

func inlineEntrants(n int) []models.Entrant {
	out := make([]models.Entrant, n)
	for i := range out {
		out[i] = models.Entrant{ID: i + 1, Name: fmt.Sprintf("Team %d", i+1), Rating: 1900 - 50*i}
	}
	return out
}
