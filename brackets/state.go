package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/bracket-engine/models"
)

// State is the in-memory match graph of one tournament. Strategies build and
// advance it; the bracket service owns loading it from and persisting it back
// to storage. All mutation goes through State methods so that placeholder
// substitution stays an explicit, idempotent pass.
type State struct {
	TournamentID int
	Format       models.Format
	Config       models.BracketConfig
	Entrants     []models.Entrant

	Stages  []*models.BracketStage
	Matches []*models.Match

	byUID    map[string]*models.Match
	byStage  map[int][]*models.Match
	entrants map[int]*models.Entrant
}

// NewState wraps a generation record into an empty state, ready for a
// strategy's Build.
func NewState(b *models.Bracket) *State {
	st := &State{
		TournamentID: b.TournamentID,
		Format:       b.Format,
		Config:       b.Config.Normalized(),
		Entrants:     b.Entrants,
		byUID:        make(map[string]*models.Match),
		byStage:      make(map[int][]*models.Match),
		entrants:     make(map[int]*models.Entrant, len(b.Entrants)),
	}
	for i := range st.Entrants {
		st.entrants[st.Entrants[i].ID] = &st.Entrants[i]
	}
	return st
}

// Load rebuilds a state from persisted stages and matches.
func Load(b *models.Bracket, stages []*models.BracketStage, matches []*models.Match) *State {
	st := NewState(b)
	st.Stages = stages
	for _, m := range matches {
		st.AddMatch(m)
	}
	return st
}

func (s *State) AddStage(tag models.StageTag, name string, rounds int) *models.BracketStage {
	stage := &models.BracketStage{
		ID:           len(s.Stages) + 1,
		TournamentID: s.TournamentID,
		Tag:          tag,
		Name:         name,
		Ordinal:      len(s.Stages) + 1,
		Status:       models.StageNotStarted,
		Rounds:       rounds,
	}
	s.Stages = append(s.Stages, stage)
	return stage
}

func (s *State) AddMatch(m *models.Match) {
	m.TournamentID = s.TournamentID
	s.Matches = append(s.Matches, m)
	s.byUID[m.UID] = m
	s.byStage[m.StageID] = append(s.byStage[m.StageID], m)
}

func (s *State) Match(uid string) *models.Match { return s.byUID[uid] }

func (s *State) Entrant(id int) *models.Entrant { return s.entrants[id] }

func (s *State) Stage(id int) *models.BracketStage {
	for _, st := range s.Stages {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// StageMatches returns the matches of a stage ordered by round, then order.
func (s *State) StageMatches(stageID int) []*models.Match {
	matches := append([]*models.Match(nil), s.byStage[stageID]...)
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Round != matches[j].Round {
			return matches[i].Round < matches[j].Round
		}
		return matches[i].Order < matches[j].Order
	})
	return matches
}

// CurrentRound is the highest round for which the stage has matches.
func (s *State) CurrentRound(stageID int) int {
	round := 0
	for _, m := range s.byStage[stageID] {
		if m.Round > round {
			round = m.Round
		}
	}
	return round
}

// RoundDone reports whether every match of the round is terminal. Cancelled
// matches count as done: they will never complete and their reconciliation is
// an explicit admin concern.
func (s *State) RoundDone(stageID, round int) bool {
	found := false
	for _, m := range s.byStage[stageID] {
		if m.Round != round {
			continue
		}
		found = true
		if !m.Terminal() {
			return false
		}
	}
	return found
}

// ApplyResult validates and records a score on a match, completing it. The
// match must be ready or live with both slots resolved, and exactly one side
// must have reached the best-of win score.
func (s *State) ApplyResult(m *models.Match, score1, score2 int) error {
	if m.Status != models.MatchReady && m.Status != models.MatchLive {
		return fmt.Errorf("%w: match %s is %s", ErrIllegalTransition, m.UID, m.Status)
	}
	if !m.BothResolved() {
		return fmt.Errorf("%w: match %s", ErrUnresolvedSlot, m.UID)
	}
	if score1 < 0 || score2 < 0 {
		return fmt.Errorf("%w: negative score", ErrInvalidScore)
	}
	win := m.WinScore()
	high, low := score1, score2
	if score2 > score1 {
		high, low = score2, score1
	}
	if high != win || low >= win {
		return fmt.Errorf("%w: %d-%d in a best-of-%d", ErrInvalidScore, score1, score2, m.BestOf)
	}

	winnerID, loserID := m.Slot1.EntrantID, m.Slot2.EntrantID
	if score2 > score1 {
		winnerID, loserID = loserID, winnerID
	}
	m.Score1, m.Score2 = score1, score2
	m.WinnerID, m.LoserID = &winnerID, &loserID
	m.Status = models.MatchCompleted
	return nil
}

// resolveInto substitutes a concrete entrant into an advancement target. It
// is a no-op when the slot already holds the same entrant, and fails when it
// holds a different one (double-processing guard).
func (s *State) resolveInto(t *models.Target, slot models.Slot) ([]*models.Match, error) {
	target := s.Match(t.MatchUID)
	if target == nil {
		return nil, fmt.Errorf("%w: match %s", ErrDanglingAdvancement, t.MatchUID)
	}
	var dst *models.Slot
	switch t.Slot {
	case 1:
		dst = &target.Slot1
	case 2:
		dst = &target.Slot2
	default:
		return nil, fmt.Errorf("%w: match %s slot %d", ErrDanglingAdvancement, t.MatchUID, t.Slot)
	}

	if *dst == slot {
		return nil, nil
	}
	if dst.Resolved() {
		return nil, fmt.Errorf("%w: slot %d of match %s already resolved to entrant %d",
			ErrIllegalTransition, t.Slot, target.UID, dst.EntrantID)
	}
	*dst = slot

	mutated := []*models.Match{target}
	if target.BothResolved() && target.Status == models.MatchPending {
		target.Status = models.MatchReady
	}
	return mutated, nil
}

// ResolveTargets pushes a completed match's winner and loser into the matches
// they advance to. A bye match has no loser: a LoserOf placeholder on such a
// match resolves to a bye. A bye-vs-bye match has no winner either and
// forwards a bye on both pointers.
func (s *State) ResolveTargets(m *models.Match) ([]*models.Match, error) {
	if m.Status != models.MatchCompleted {
		return nil, fmt.Errorf("%w: cannot advance %s match %s", ErrIllegalTransition, m.Status, m.UID)
	}
	var mutated []*models.Match
	if m.WinnerTo != nil {
		slot := models.ByeSlot()
		if m.WinnerID != nil {
			slot = models.EntrantSlot(*m.WinnerID)
		}
		changed, err := s.resolveInto(m.WinnerTo, slot)
		if err != nil {
			return nil, err
		}
		mutated = append(mutated, changed...)
	}
	if m.LoserTo != nil {
		slot := models.ByeSlot()
		if m.LoserID != nil {
			slot = models.EntrantSlot(*m.LoserID)
		}
		changed, err := s.resolveInto(m.LoserTo, slot)
		if err != nil {
			return nil, err
		}
		mutated = append(mutated, changed...)
	}
	return mutated, nil
}

// completeAsBye finishes a match that has no playable opposition. The winner
// advances with a zero-effort scoreline; a bye-vs-bye match completes with no
// winner at all.
func (s *State) completeAsBye(m *models.Match) {
	if m.Slot1.Resolved() {
		id := m.Slot1.EntrantID
		m.WinnerID = &id
	} else if m.Slot2.Resolved() {
		id := m.Slot2.EntrantID
		m.WinnerID = &id
	}
	m.Score1, m.Score2 = 0, 0
	m.Status = models.MatchCompleted
}

// CascadeByes settles every consequence of bye matches: completed byes
// forward their winner (or a further bye), and matches left with a bye side
// complete in turn. Runs to a fixpoint; returns every match it touched.
func (s *State) CascadeByes() ([]*models.Match, error) {
	var mutated []*models.Match
	for {
		changed := false
		for _, m := range s.Matches {
			if m.Terminal() {
				if m.Status == models.MatchCompleted && (m.Bye() || m.WinnerID == nil) {
					// Forward bye winners; resolveInto makes this idempotent.
					advanced, err := s.ResolveTargets(m)
					if err != nil {
						return nil, err
					}
					if len(advanced) > 0 {
						mutated = append(mutated, advanced...)
						changed = true
					}
				}
				continue
			}
			if m.Bye() && !m.Slot1.Placeholder() && !m.Slot2.Placeholder() {
				// A bye paired with a winner_of/loser_of slot is not settled
				// yet: the placeholder must resolve before the walkover.
				s.completeAsBye(m)
				mutated = append(mutated, m)
				changed = true
			} else if m.BothResolved() && m.Status == models.MatchPending {
				m.Status = models.MatchReady
				mutated = append(mutated, m)
				changed = true
			}
		}
		if !changed {
			return dedupeMatches(mutated), nil
		}
	}
}

// Validate checks referential closure over the freshly built graph: every
// advancement pointer must land on an existing match whose slot points back
// at the source. A violation is a generation bug and fatal for the bracket.
func (s *State) Validate() error {
	for _, m := range s.Matches {
		if err := s.validateTarget(m, m.WinnerTo, models.SlotWinnerOf); err != nil {
			return err
		}
		if err := s.validateTarget(m, m.LoserTo, models.SlotLoserOf); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) validateTarget(m *models.Match, t *models.Target, kind models.SlotKind) error {
	if t == nil {
		return nil
	}
	target := s.Match(t.MatchUID)
	if target == nil {
		return fmt.Errorf("%w: %s -> missing match %s", ErrDanglingAdvancement, m.UID, t.MatchUID)
	}
	var slot models.Slot
	switch t.Slot {
	case 1:
		slot = target.Slot1
	case 2:
		slot = target.Slot2
	default:
		return fmt.Errorf("%w: %s -> match %s slot %d", ErrDanglingAdvancement, m.UID, t.MatchUID, t.Slot)
	}
	if slot.Kind != kind || slot.MatchUID != m.UID {
		return fmt.Errorf("%w: %s -> match %s slot %d does not point back",
			ErrDanglingAdvancement, m.UID, t.MatchUID, t.Slot)
	}
	return nil
}

// RefreshStageStatuses recomputes each stage's aggregate status from its
// matches. A stage with a declared round plan (Swiss) only completes once the
// final planned round exists and is done.
func (s *State) RefreshStageStatuses() {
	for _, stage := range s.Stages {
		matches := s.byStage[stage.ID]
		if len(matches) == 0 {
			stage.Status = models.StageNotStarted
			continue
		}
		allDone, anyTouched := true, false
		for _, m := range matches {
			if !m.Terminal() {
				allDone = false
			}
			if m.Status != models.MatchPending && m.Status != models.MatchReady {
				anyTouched = true
			}
		}
		switch {
		case allDone && (stage.Rounds == 0 || s.CurrentRound(stage.ID) >= stage.Rounds):
			stage.Status = models.StageCompleted
		case anyTouched:
			stage.Status = models.StageInProgress
		default:
			stage.Status = models.StageNotStarted
		}
	}
}

func dedupeMatches(matches []*models.Match) []*models.Match {
	seen := make(map[string]bool, len(matches))
	out := matches[:0]
	for _, m := range matches {
		if !seen[m.UID] {
			seen[m.UID] = true
			out = append(out, m)
		}
	}
	return out
}
