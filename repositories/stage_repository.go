package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

var ErrStageNotFound = errors.New("bracket stage not found")

// StageRepository persists the stages of a tournament bracket. Stage ids are
// assigned by the generator and are unique per tournament, not globally.
type StageRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, stages []*models.BracketStage) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.BracketStage, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, tournamentID, stageID int, status models.StageStatus) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStageRepository) BatchCreate(ctx context.Context, exec SQLExecutor, stages []*models.BracketStage) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO bracket_stages (tournament_id, id, tag, name, ordinal, status, rounds)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, stage := range stages {
		if _, err := executor.ExecContext(ctx, query,
			stage.TournamentID, stage.ID, stage.Tag, stage.Name, stage.Ordinal, stage.Status, stage.Rounds,
		); err != nil {
			return fmt.Errorf("failed to insert stage %d (%s): %w", stage.ID, stage.Name, err)
		}
	}
	return nil
}

func (r *postgresStageRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.BracketStage, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT tournament_id, id, tag, name, ordinal, status, rounds
		FROM bracket_stages
		WHERE tournament_id = $1
		ORDER BY ordinal`
	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stages := make([]*models.BracketStage, 0)
	for rows.Next() {
		var s models.BracketStage
		if err := rows.Scan(&s.TournamentID, &s.ID, &s.Tag, &s.Name, &s.Ordinal, &s.Status, &s.Rounds); err != nil {
			return nil, err
		}
		stages = append(stages, &s)
	}
	return stages, rows.Err()
}

func (r *postgresStageRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, tournamentID, stageID int, status models.StageStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE bracket_stages SET status = $1 WHERE tournament_id = $2 AND id = $3`
	result, err := executor.ExecContext(ctx, query, status, tournamentID, stageID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStageNotFound)
}

func (r *postgresStageRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM bracket_stages WHERE tournament_id = $1`, tournamentID)
	return err
}
