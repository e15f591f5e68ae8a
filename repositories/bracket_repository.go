package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

var (
	ErrBracketNotFound      = errors.New("bracket not found")
	ErrBracketAlreadyExists = errors.New("bracket already exists for tournament")
)

// BracketRepository persists the generation record of a tournament: format,
// frozen entrant list and generation config. Entrants and config are stored
// as JSONB since they are only ever read back whole.
type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Bracket, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	executor := r.getExecutor(exec)

	entrants, err := json.Marshal(bracket.Entrants)
	if err != nil {
		return fmt.Errorf("failed to marshal entrants: %w", err)
	}
	config, err := json.Marshal(bracket.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	query := `
		INSERT INTO brackets (tournament_id, format, entrants, config, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (tournament_id) DO NOTHING`
	result, err := executor.ExecContext(ctx, query, bracket.TournamentID, bracket.Format, entrants, config)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return ErrBracketAlreadyExists
	}
	return nil
}

func (r *postgresBracketRepository) GetByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Bracket, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT tournament_id, format, entrants, config
		FROM brackets
		WHERE tournament_id = $1`

	var (
		bracket  models.Bracket
		format   string
		entrants []byte
		config   []byte
	)
	err := executor.QueryRowContext(ctx, query, tournamentID).
		Scan(&bracket.TournamentID, &format, &entrants, &config)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}

	bracket.Format, err = models.ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("stored bracket for tournament %d: %w", tournamentID, err)
	}
	if err := json.Unmarshal(entrants, &bracket.Entrants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entrants: %w", err)
	}
	if err := json.Unmarshal(config, &bracket.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &bracket, nil
}

func (r *postgresBracketRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM brackets WHERE tournament_id = $1`, tournamentID)
	return err
}
