package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

// GenerateBracketParams carries everything needed to generate a bracket.
// Entrants may be given inline (with manual seeds); otherwise TeamIDs are
// resolved against the team directory in the order given.
type GenerateBracketParams struct {
	Format   string               `json:"format"`
	TeamIDs  []int                `json:"team_ids,omitempty"`
	Entrants []models.Entrant     `json:"entrants,omitempty"`
	Config   models.BracketConfig `json:"config"`
	Force    bool                 `json:"force,omitempty"`
}

type BracketService interface {
	Generate(ctx context.Context, tournamentID int, params GenerateBracketParams) (*BracketView, error)
	StartMatch(ctx context.Context, tournamentID int, uid string) (*models.Match, error)
	SubmitResult(ctx context.Context, tournamentID int, uid string, score1, score2 int) (*BracketView, error)
	CancelMatch(ctx context.Context, tournamentID int, uid string) (*models.Match, error)
	NextSwissRound(ctx context.Context, tournamentID int) ([]*models.Match, error)
	PromotePlayoffs(ctx context.Context, tournamentID int) (*BracketView, error)
}

type bracketService struct {
	txm         TxManager
	bracketRepo repositories.BracketRepository
	stageRepo   repositories.StageRepository
	matchRepo   repositories.MatchRepository
	teamRepo    repositories.TeamRepository
	hub         *brackets.Hub
	logger      *slog.Logger
	locks       *tournamentLocks
}

func NewBracketService(
	txm TxManager,
	bracketRepo repositories.BracketRepository,
	stageRepo repositories.StageRepository,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		txm:         txm,
		bracketRepo: bracketRepo,
		stageRepo:   stageRepo,
		matchRepo:   matchRepo,
		teamRepo:    teamRepo,
		hub:         hub,
		logger:      logger,
		locks:       newTournamentLocks(),
	}
}

// loadState reads the persisted bracket of a tournament back into memory.
func (s *bracketService) loadState(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*brackets.State, error) {
	bracket, err := s.bracketRepo.GetByTournament(ctx, exec, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, fmt.Errorf("%w: tournament %d", ErrBracketNotGenerated, tournamentID)
		}
		return nil, fmt.Errorf("failed to load bracket for tournament %d: %w", tournamentID, err)
	}
	stages, err := s.stageRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stages for tournament %d: %w", tournamentID, err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches for tournament %d: %w", tournamentID, err)
	}
	return brackets.Load(bracket, stages, matches), nil
}

func (s *bracketService) resolveEntrants(ctx context.Context, params GenerateBracketParams) ([]models.Entrant, error) {
	if len(params.Entrants) > 0 {
		return params.Entrants, nil
	}
	if len(params.TeamIDs) < 2 {
		return nil, fmt.Errorf("%w: got %d team ids", ErrEntrantsRequired, len(params.TeamIDs))
	}
	teams, err := s.teamRepo.ListByIDs(ctx, nil, params.TeamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve teams: %w", err)
	}
	byID := make(map[int]*models.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	entrants := make([]models.Entrant, 0, len(params.TeamIDs))
	for _, id := range params.TeamIDs {
		t, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrTeamNotFound, id)
		}
		entrants = append(entrants, models.Entrant{ID: t.ID, Name: t.Name, Rating: t.Rating})
	}
	return entrants, nil
}

func (s *bracketService) Generate(ctx context.Context, tournamentID int, params GenerateBracketParams) (*BracketView, error) {
	format, err := models.ParseFormat(params.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := params.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	entrants, err := s.resolveEntrants(ctx, params)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.acquire(tournamentID)
	defer unlock()

	config := params.Config.Normalized()
	if _, err := s.bracketRepo.GetByTournament(ctx, nil, tournamentID); err == nil {
		if !params.Force {
			return nil, fmt.Errorf("%w: tournament %d", ErrBracketAlreadyGenerated, tournamentID)
		}
		s.logger.WarnContext(ctx, "regenerating bracket, existing matches and results will be destroyed",
			"tournament_id", tournamentID)
	} else if !errors.Is(err, repositories.ErrBracketNotFound) {
		return nil, fmt.Errorf("failed to check existing bracket: %w", err)
	}

	seeded, err := brackets.Seed(entrants, config.Seeding, config.RandomSeed)
	if err != nil {
		return nil, err
	}
	bracket := &models.Bracket{
		TournamentID: tournamentID,
		Format:       format,
		Entrants:     seeded,
		Config:       config,
	}
	strategy, err := brackets.ForFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	st := brackets.NewState(bracket)
	if err := strategy.Build(st); err != nil {
		return nil, err
	}
	st.RefreshStageStatuses()

	err = s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
		if params.Force {
			if err := s.matchRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
				return err
			}
			if err := s.stageRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
				return err
			}
			if err := s.bracketRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
				return err
			}
		}
		if err := s.bracketRepo.Create(ctx, tx, bracket); err != nil {
			if errors.Is(err, repositories.ErrBracketAlreadyExists) {
				return fmt.Errorf("%w: tournament %d", ErrBracketAlreadyGenerated, tournamentID)
			}
			return err
		}
		if err := s.stageRepo.BatchCreate(ctx, tx, st.Stages); err != nil {
			return err
		}
		return s.matchRepo.BatchCreate(ctx, tx, st.Matches)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "bracket generated",
		"tournament_id", tournamentID, "format", format,
		"entrants", len(seeded), "matches", len(st.Matches))

	view := buildBracketView(st)
	s.broadcast(tournamentID, brackets.EventBracketGenerated, view)
	return view, nil
}

func (s *bracketService) StartMatch(ctx context.Context, tournamentID int, uid string) (*models.Match, error) {
	unlock := s.locks.acquire(tournamentID)
	defer unlock()

	st, err := s.loadState(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	m := st.Match(uid)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, uid)
	}
	if m.Status == models.MatchLive {
		return m, nil
	}
	if !m.CanTransitionTo(models.MatchLive) {
		return nil, fmt.Errorf("%w: match %s is %s", brackets.ErrIllegalTransition, uid, m.Status)
	}
	m.Status = models.MatchLive

	err = s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
		return s.matchRepo.Update(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(tournamentID, brackets.EventMatchUpdated, m)
	return m, nil
}

func (s *bracketService) SubmitResult(ctx context.Context, tournamentID int, uid string, score1, score2 int) (*BracketView, error) {
	unlock := s.locks.acquire(tournamentID)
	defer unlock()

	st, err := s.loadState(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	m := st.Match(uid)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, uid)
	}

	// Replays of an already-applied result are acknowledged without effect.
	if m.Status == models.MatchCompleted && m.Score1 == score1 && m.Score2 == score2 {
		s.logger.DebugContext(ctx, "duplicate result delivery ignored",
			"tournament_id", tournamentID, "match_uid", uid)
		return buildBracketView(st), nil
	}

	if err := st.ApplyResult(m, score1, score2); err != nil {
		return nil, err
	}
	strategy, err := brackets.ForFormat(st.Format)
	if err != nil {
		return nil, err
	}
	touched, err := strategy.Advance(st, m)
	if err != nil {
		return nil, err
	}
	st.RefreshStageStatuses()

	err = s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
		if err := s.matchRepo.Update(ctx, tx, m); err != nil {
			return err
		}
		for _, t := range touched {
			if t.UID == m.UID {
				continue
			}
			if err := s.matchRepo.Update(ctx, tx, t); err != nil {
				return err
			}
		}
		return s.persistStageStatuses(ctx, tx, st)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "match result applied",
		"tournament_id", tournamentID, "match_uid", uid,
		"score", fmt.Sprintf("%d-%d", score1, score2), "advanced", len(touched))

	view := buildBracketView(st)
	s.broadcast(tournamentID, brackets.EventBracketUpdated, view)
	return view, nil
}

func (s *bracketService) CancelMatch(ctx context.Context, tournamentID int, uid string) (*models.Match, error) {
	unlock := s.locks.acquire(tournamentID)
	defer unlock()

	st, err := s.loadState(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	m := st.Match(uid)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, uid)
	}
	if m.Status == models.MatchCancelled {
		return m, nil
	}
	if !m.CanTransitionTo(models.MatchCancelled) {
		return nil, fmt.Errorf("%w: match %s is %s", brackets.ErrIllegalTransition, uid, m.Status)
	}
	m.Status = models.MatchCancelled
	st.RefreshStageStatuses()

	err = s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
		if err := s.matchRepo.Update(ctx, tx, m); err != nil {
			return err
		}
		return s.persistStageStatuses(ctx, tx, st)
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(tournamentID, brackets.EventMatchUpdated, m)
	return m, nil
}

func (s *bracketService) NextSwissRound(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	unlock := s.locks.acquire(tournamentID)
	defer unlock()

	st, err := s.loadState(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	strategy, err := brackets.ForFormat(st.Format)
	if err != nil {
		return nil, err
	}
	generator, ok := strategy.(brackets.RoundGenerator)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no incremental rounds", ErrFormatMismatch, st.Format)
	}
	created, err := generator.NextRound(st)
	if err != nil {
		return nil, err
	}
	st.RefreshStageStatuses()

	err = s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
		if err := s.matchRepo.BatchCreate(ctx, tx, created); err != nil {
			return err
		}
		return s.persistStageStatuses(ctx, tx, st)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "swiss round paired",
		"tournament_id", tournamentID, "matches", len(created))
	s.broadcast(tournamentID, brackets.EventBracketUpdated, buildBracketView(st))
	return created, nil
}

func (s *bracketService) PromotePlayoffs(ctx context.Context, tournamentID int) (*BracketView, error) {
	unlock := s.locks.acquire(tournamentID)
	defer unlock()

	st, err := s.loadState(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	strategy, err := brackets.ForFormat(st.Format)
	if err != nil {
		return nil, err
	}
	promoter, ok := strategy.(brackets.Promoter)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no promotion step", ErrFormatMismatch, st.Format)
	}

	stagesBefore := len(st.Stages)
	created, err := promoter.Promote(st)
	if err != nil {
		return nil, err
	}
	newStages := st.Stages[stagesBefore:]

	err = s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
		if err := s.stageRepo.BatchCreate(ctx, tx, newStages); err != nil {
			return err
		}
		if err := s.matchRepo.BatchCreate(ctx, tx, created); err != nil {
			return err
		}
		return s.persistStageStatuses(ctx, tx, st)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "playoffs created from group results",
		"tournament_id", tournamentID, "stages", len(newStages), "matches", len(created))

	view := buildBracketView(st)
	s.broadcast(tournamentID, brackets.EventBracketUpdated, view)
	return view, nil
}

func (s *bracketService) persistStageStatuses(ctx context.Context, tx repositories.SQLExecutor, st *brackets.State) error {
	for _, stage := range st.Stages {
		if err := s.stageRepo.UpdateStatus(ctx, tx, st.TournamentID, stage.ID, stage.Status); err != nil {
			return err
		}
	}
	return nil
}

func (s *bracketService) broadcast(tournamentID int, event string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(brackets.RoomID(tournamentID), event, payload)
}
