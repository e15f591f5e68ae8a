package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

// BracketQueryService is the read side: projections over the persisted
// bracket with no mutation and no per-tournament locking.
type BracketQueryService interface {
	GetBracket(ctx context.Context, tournamentID int) (*BracketView, error)
	GetMatch(ctx context.Context, tournamentID int, uid string) (*models.Match, error)
	GetStandings(ctx context.Context, tournamentID int) (*StandingsView, error)
}

type bracketQueryService struct {
	bracketRepo repositories.BracketRepository
	stageRepo   repositories.StageRepository
	matchRepo   repositories.MatchRepository
}

func NewBracketQueryService(
	bracketRepo repositories.BracketRepository,
	stageRepo repositories.StageRepository,
	matchRepo repositories.MatchRepository,
) BracketQueryService {
	return &bracketQueryService{
		bracketRepo: bracketRepo,
		stageRepo:   stageRepo,
		matchRepo:   matchRepo,
	}
}

// load fetches the bracket, stages and matches of a tournament in parallel.
// A missing bracket is reported as (nil, nil) so callers can project an
// empty view instead of an error.
func (s *bracketQueryService) load(ctx context.Context, tournamentID int) (*brackets.State, error) {
	var (
		bracket *models.Bracket
		stages  []*models.BracketStage
		matches []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.bracketRepo.GetByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return err
		}
		bracket = b
		return nil
	})
	g.Go(func() error {
		list, err := s.stageRepo.ListByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return err
		}
		stages = list
		return nil
	})
	g.Go(func() error {
		list, err := s.matchRepo.ListByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return err
		}
		matches = list
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load bracket data for tournament %d: %w", tournamentID, err)
	}
	return brackets.Load(bracket, stages, matches), nil
}

func (s *bracketQueryService) GetBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	st, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return &BracketView{TournamentID: tournamentID}, nil
	}
	return buildBracketView(st), nil
}

func (s *bracketQueryService) GetMatch(ctx context.Context, tournamentID int, uid string) (*models.Match, error) {
	m, err := s.matchRepo.GetByUID(ctx, nil, tournamentID, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, uid)
		}
		return nil, err
	}
	return m, nil
}

func (s *bracketQueryService) GetStandings(ctx context.Context, tournamentID int) (*StandingsView, error) {
	st, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return &StandingsView{TournamentID: tournamentID}, nil
	}
	return buildStandingsView(st), nil
}
