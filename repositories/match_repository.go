package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchRepository persists the bracket match graph. Matches are keyed by
// (tournament_id, uid); slots and advancement pointers are flattened into
// nullable columns so the graph can be rebuilt without joins.
type MatchRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error)
	GetByUID(ctx context.Context, exec SQLExecutor, tournamentID int, uid string) (*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	tournament_id, uid, stage_id, stage, round, ordinal,
	slot1_kind, slot1_entrant_id, slot1_match_uid,
	slot2_kind, slot2_entrant_id, slot2_match_uid,
	best_of, status, score1, score2, winner_id, loser_id,
	winner_to_uid, winner_to_slot, loser_to_uid, loser_to_slot,
	created_at, updated_at`

func slotColumns(s models.Slot) (kind string, entrantID sql.NullInt64, matchUID sql.NullString) {
	kind = string(s.Kind)
	if s.Kind == models.SlotEntrant {
		entrantID = sql.NullInt64{Int64: int64(s.EntrantID), Valid: true}
	}
	if s.Kind == models.SlotWinnerOf || s.Kind == models.SlotLoserOf {
		matchUID = sql.NullString{String: s.MatchUID, Valid: true}
	}
	return kind, entrantID, matchUID
}

func slotFromColumns(kind string, entrantID sql.NullInt64, matchUID sql.NullString) models.Slot {
	s := models.Slot{Kind: models.SlotKind(kind)}
	if entrantID.Valid {
		s.EntrantID = int(entrantID.Int64)
	}
	if matchUID.Valid {
		s.MatchUID = matchUID.String
	}
	return s
}

func targetColumns(t *models.Target) (uid sql.NullString, slot sql.NullInt64) {
	if t == nil {
		return uid, slot
	}
	return sql.NullString{String: t.MatchUID, Valid: true}, sql.NullInt64{Int64: int64(t.Slot), Valid: true}
}

func targetFromColumns(uid sql.NullString, slot sql.NullInt64) *models.Target {
	if !uid.Valid {
		return nil
	}
	return &models.Target{MatchUID: uid.String, Slot: int(slot.Int64)}
}

func (r *postgresMatchRepository) BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO bracket_matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, NOW(), NOW())`
	for _, m := range matches {
		s1Kind, s1Entrant, s1Match := slotColumns(m.Slot1)
		s2Kind, s2Entrant, s2Match := slotColumns(m.Slot2)
		wtUID, wtSlot := targetColumns(m.WinnerTo)
		ltUID, ltSlot := targetColumns(m.LoserTo)
		if _, err := executor.ExecContext(ctx, query,
			m.TournamentID, m.UID, m.StageID, m.Stage, m.Round, m.Order,
			s1Kind, s1Entrant, s1Match,
			s2Kind, s2Entrant, s2Match,
			m.BestOf, m.Status, m.Score1, m.Score2, m.WinnerID, m.LoserID,
			wtUID, wtSlot, ltUID, ltSlot,
		); err != nil {
			return fmt.Errorf("failed to insert match %s: %w", m.UID, err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	var s1Kind, s2Kind string
	var s1Entrant, s2Entrant sql.NullInt64
	var s1Match, s2Match sql.NullString
	var winnerToUID, loserToUID sql.NullString
	var winnerToSlot, loserToSlot sql.NullInt64
	err := rowScanner.Scan(
		&m.TournamentID, &m.UID, &m.StageID, &m.Stage, &m.Round, &m.Order,
		&s1Kind, &s1Entrant, &s1Match,
		&s2Kind, &s2Entrant, &s2Match,
		&m.BestOf, &m.Status, &m.Score1, &m.Score2, &m.WinnerID, &m.LoserID,
		&winnerToUID, &winnerToSlot, &loserToUID, &loserToSlot,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	m.Slot1 = slotFromColumns(s1Kind, s1Entrant, s1Match)
	m.Slot2 = slotFromColumns(s2Kind, s2Entrant, s2Match)
	m.WinnerTo = targetFromColumns(winnerToUID, winnerToSlot)
	m.LoserTo = targetFromColumns(loserToUID, loserToSlot)
	return &m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + matchColumns + `
		FROM bracket_matches
		WHERE tournament_id = $1
		ORDER BY stage_id, round, ordinal`
	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := r.scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) GetByUID(ctx context.Context, exec SQLExecutor, tournamentID int, uid string) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + matchColumns + `
		FROM bracket_matches
		WHERE tournament_id = $1 AND uid = $2`
	return r.scanMatch(executor.QueryRowContext(ctx, query, tournamentID, uid))
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	s1Kind, s1Entrant, s1Match := slotColumns(match.Slot1)
	s2Kind, s2Entrant, s2Match := slotColumns(match.Slot2)
	query := `
		UPDATE bracket_matches SET
			slot1_kind = $1, slot1_entrant_id = $2, slot1_match_uid = $3,
			slot2_kind = $4, slot2_entrant_id = $5, slot2_match_uid = $6,
			status = $7, score1 = $8, score2 = $9, winner_id = $10, loser_id = $11,
			updated_at = NOW()
		WHERE tournament_id = $12 AND uid = $13`
	result, err := executor.ExecContext(ctx, query,
		s1Kind, s1Entrant, s1Match,
		s2Kind, s2Entrant, s2Match,
		match.Status, match.Score1, match.Score2, match.WinnerID, match.LoserID,
		match.TournamentID, match.UID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM bracket_matches WHERE tournament_id = $1`, tournamentID)
	return err
}
