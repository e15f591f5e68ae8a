package brackets

import (
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

// GroupStage distributes entrants into round robin groups by snake seeding,
// then promotes the top finishers of each group into a knockout playoff. The
// playoff is created only at the explicit promotion step, once every group has
// finished.
type GroupStage struct{}

func NewGroupStage() *GroupStage { return &GroupStage{} }

func (f *GroupStage) Format() models.Format { return models.FormatGroupStage }

func groupName(i int) string { return fmt.Sprintf("Group %c", 'A'+i) }

func groupUIDPrefix(i int) string { return fmt.Sprintf("G%c", 'A'+i) }

func (f *GroupStage) Build(st *State) error {
	groups := st.Config.GroupCount
	if len(st.Entrants) < 2*groups {
		return fmt.Errorf("%w: %d groups need at least %d entrants, got %d",
			ErrInvalidEntrantCount, groups, 2*groups, len(st.Entrants))
	}

	for g, members := range snakeGroups(len(st.Entrants), groups) {
		schedule := roundRobinSchedule(len(members), st.Config.DoubleRoundRobin)
		stage := st.AddStage(models.StageGroup, groupName(g), len(schedule))
		prefix := groupUIDPrefix(g)
		for r, pairs := range schedule {
			for i, p := range pairs {
				st.AddMatch(&models.Match{
					UID:     fmt.Sprintf("%s_R%d_M%d", prefix, r+1, i+1),
					Stage:   models.StageGroup,
					StageID: stage.ID,
					Round:   r + 1,
					Order:   i + 1,
					Slot1:   models.EntrantSlot(st.Entrants[members[p[0]]].ID),
					Slot2:   models.EntrantSlot(st.Entrants[members[p[1]]].ID),
					BestOf:  st.Config.BestOf,
					Status:  models.MatchPending,
				})
			}
		}
	}

	if err := st.Validate(); err != nil {
		return err
	}
	_, err := st.CascadeByes()
	return err
}

// Advance dispatches on match stage: group matches need no structural
// reaction, playoff matches advance through the configured playoff format.
func (f *GroupStage) Advance(st *State, completed *models.Match) ([]*models.Match, error) {
	if completed.Stage == models.StageGroup {
		return nil, nil
	}
	inner, err := f.playoffStrategy(st)
	if err != nil {
		return nil, err
	}
	return inner.Advance(st, completed)
}

// Promote closes the group phase and builds the playoff bracket from the top
// AdvancePerGroup finishers of each group. Group winners are seeded ahead of
// runners-up, each rank band in group order, which keeps same-group qualifiers
// apart in the first playoff round.
func (f *GroupStage) Promote(st *State) ([]*models.Match, error) {
	for _, stage := range st.Stages {
		if stage.Tag != models.StageGroup {
			return nil, fmt.Errorf("%w: playoffs already created", ErrIllegalTransition)
		}
		for r := 1; r <= stage.Rounds; r++ {
			if !st.RoundDone(stage.ID, r) {
				return nil, fmt.Errorf("%w: %s round %d", ErrRoundNotComplete, stage.Name, r)
			}
		}
	}

	perGroup := make([][]models.StandingEntry, 0, len(st.Stages))
	for _, stage := range st.Stages {
		perGroup = append(perGroup, ComputeStageStandings(st, stage.ID))
	}

	var qualifiers []models.Entrant
	for rank := 0; rank < st.Config.AdvancePerGroup; rank++ {
		for _, table := range perGroup {
			if rank >= len(table) {
				return nil, fmt.Errorf("%w: group too small to advance %d",
					ErrInvalidEntrantCount, st.Config.AdvancePerGroup)
			}
			e := *st.Entrant(table[rank].EntrantID)
			e.Seed = len(qualifiers) + 1
			qualifiers = append(qualifiers, e)
		}
	}

	inner, err := f.playoffStrategy(st)
	if err != nil {
		return nil, err
	}
	sub := NewState(&models.Bracket{
		TournamentID: st.TournamentID,
		Format:       st.Config.PlayoffFormat,
		Entrants:     qualifiers,
		Config:       st.Config,
	})
	if err := inner.Build(sub); err != nil {
		return nil, err
	}

	// Graft the playoff graph onto the main state, remapping stage ids.
	stageIDs := make(map[int]int, len(sub.Stages))
	for _, stage := range sub.Stages {
		grafted := st.AddStage(stage.Tag, stage.Name, stage.Rounds)
		stageIDs[stage.ID] = grafted.ID
	}
	created := make([]*models.Match, 0, len(sub.Matches))
	for _, m := range sub.Matches {
		m.StageID = stageIDs[m.StageID]
		st.AddMatch(m)
		created = append(created, m)
	}
	st.RefreshStageStatuses()
	return created, nil
}

func (f *GroupStage) playoffStrategy(st *State) (Strategy, error) {
	if st.Config.PlayoffFormat == models.FormatSingleElimination {
		return &SingleElimination{uidPrefix: "PO", stageTag: models.StagePlayoff, stageName: "Playoffs"}, nil
	}
	return ForFormat(st.Config.PlayoffFormat)
}

// snakeGroups deals seed-ordered entrant indices into groups boustrophedon:
// left to right, then right to left, so seed strength balances out.
func snakeGroups(n, groups int) [][]int {
	out := make([][]int, groups)
	for i := 0; i < n; i++ {
		row := i / groups
		col := i % groups
		if row%2 == 1 {
			col = groups - 1 - col
		}
		out[col] = append(out[col], i)
	}
	return out
}
