package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

// TeamService manages the entrant directory.
type TeamService interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id int) error
}

type teamService struct {
	teamRepo repositories.TeamRepository
}

func NewTeamService(teamRepo repositories.TeamRepository) TeamService {
	return &teamService{teamRepo: teamRepo}
}

func (s *teamService) Create(ctx context.Context, team *models.Team) error {
	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		return fmt.Errorf("%w: team name is required", ErrValidationFailed)
	}
	return s.teamRepo.Create(ctx, nil, team)
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrTeamNotFound, id)
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) Update(ctx context.Context, team *models.Team) error {
	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		return fmt.Errorf("%w: team name is required", ErrValidationFailed)
	}
	if err := s.teamRepo.Update(ctx, nil, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return fmt.Errorf("%w: id %d", ErrTeamNotFound, team.ID)
		}
		return err
	}
	return nil
}

func (s *teamService) Delete(ctx context.Context, id int) error {
	if err := s.teamRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return fmt.Errorf("%w: id %d", ErrTeamNotFound, id)
		}
		return err
	}
	return nil
}
