package models

import "time"

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchReady     MatchStatus = "ready"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
)

// StageTag classifies the phase a match belongs to.
type StageTag string

const (
	StageSwiss        StageTag = "swiss"
	StageUpperBracket StageTag = "upper_bracket"
	StageLowerBracket StageTag = "lower_bracket"
	StageGrandFinal   StageTag = "grand_final"
	StageRoundRobin   StageTag = "round_robin"
	StageGroup        StageTag = "group"
	StagePlayoff      StageTag = "playoff"
)

type SlotKind string

const (
	SlotEntrant  SlotKind = "entrant"
	SlotWinnerOf SlotKind = "winner_of"
	SlotLoserOf  SlotKind = "loser_of"
	SlotBye      SlotKind = "bye"
)

// Slot is one side of a match: a concrete entrant, a placeholder for the
// winner or loser of another match, or a bye. Placeholders are substituted by
// an explicit resolution pass, never by mutating foreign keys in place.
type Slot struct {
	Kind      SlotKind `json:"kind"`
	EntrantID int      `json:"entrant_id,omitempty"`
	MatchUID  string   `json:"match_uid,omitempty"`
}

func EntrantSlot(entrantID int) Slot { return Slot{Kind: SlotEntrant, EntrantID: entrantID} }
func WinnerOf(matchUID string) Slot  { return Slot{Kind: SlotWinnerOf, MatchUID: matchUID} }
func LoserOf(matchUID string) Slot   { return Slot{Kind: SlotLoserOf, MatchUID: matchUID} }
func ByeSlot() Slot                  { return Slot{Kind: SlotBye} }

// Resolved reports whether the slot holds a concrete entrant.
func (s Slot) Resolved() bool { return s.Kind == SlotEntrant }

// Placeholder reports whether the slot still awaits another match's result.
func (s Slot) Placeholder() bool { return s.Kind == SlotWinnerOf || s.Kind == SlotLoserOf }

func (s Slot) IsBye() bool { return s.Kind == SlotBye }

// Target points at the match (and side) a winner or loser advances to.
type Target struct {
	MatchUID string `json:"match_uid"`
	Slot     int    `json:"slot"` // 1 or 2
}

// Match is one node of the bracket graph. UID is unique within a tournament.
type Match struct {
	UID          string      `json:"uid" db:"uid"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Stage        StageTag    `json:"stage" db:"stage"`
	StageID      int         `json:"stage_id" db:"stage_id"`
	Round        int         `json:"round" db:"round"`
	Order        int         `json:"order" db:"ordinal"`
	Slot1        Slot        `json:"slot1"`
	Slot2        Slot        `json:"slot2"`
	BestOf       int         `json:"best_of" db:"best_of"`
	Status       MatchStatus `json:"status" db:"status"`
	Score1       int         `json:"score1" db:"score1"`
	Score2       int         `json:"score2" db:"score2"`
	WinnerID     *int        `json:"winner_id,omitempty" db:"winner_id"`
	LoserID      *int        `json:"loser_id,omitempty" db:"loser_id"`
	WinnerTo     *Target     `json:"winner_to,omitempty"`
	LoserTo      *Target     `json:"loser_to,omitempty"`
	CreatedAt    time.Time   `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at,omitempty" db:"updated_at"`
}

// WinScore is the number of map wins that decides the match.
func (m *Match) WinScore() int { return m.BestOf/2 + 1 }

// Bye reports whether the match involves a bye side and therefore was
// completed at generation time without being played.
func (m *Match) Bye() bool { return m.Slot1.IsBye() || m.Slot2.IsBye() }

// BothResolved reports whether both sides are concrete entrants.
func (m *Match) BothResolved() bool { return m.Slot1.Resolved() && m.Slot2.Resolved() }

// Terminal reports whether no further transition is legal.
func (m *Match) Terminal() bool {
	return m.Status == MatchCompleted || m.Status == MatchCancelled
}

// CanTransitionTo enforces the forward-only status machine:
// pending -> ready -> live -> completed, plus pending/ready -> cancelled.
func (m *Match) CanTransitionTo(next MatchStatus) bool {
	switch next {
	case MatchReady:
		return m.Status == MatchPending
	case MatchLive:
		return m.Status == MatchReady
	case MatchCompleted:
		return m.Status == MatchReady || m.Status == MatchLive
	case MatchCancelled:
		return m.Status == MatchPending || m.Status == MatchReady
	}
	return false
}
