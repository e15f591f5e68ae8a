package brackets

import (
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

// RoundRobin schedules every entrant against every other entrant exactly once
// (twice with home and away legs when configured), using the circle method:
// one entrant stays fixed while the rest rotate one position per round. The
// full schedule exists at build time and no match creates further matches.
type RoundRobin struct {
	uidPrefix string
	stageTag  models.StageTag
	stageName string
}

func NewRoundRobin() *RoundRobin {
	return &RoundRobin{uidPrefix: "RR", stageTag: models.StageRoundRobin, stageName: "Round Robin"}
}

func (f *RoundRobin) Format() models.Format { return models.FormatRoundRobin }

func (f *RoundRobin) Build(st *State) error {
	if len(st.Entrants) < 2 {
		return fmt.Errorf("%w: need at least 2, got %d", ErrInvalidEntrantCount, len(st.Entrants))
	}

	schedule := roundRobinSchedule(len(st.Entrants), st.Config.DoubleRoundRobin)
	stage := st.AddStage(f.stageTag, f.stageName, len(schedule))
	f.addScheduled(st, stage, schedule)

	if err := st.Validate(); err != nil {
		return err
	}
	_, err := st.CascadeByes()
	return err
}

func (f *RoundRobin) addScheduled(st *State, stage *models.BracketStage, schedule [][][2]int) {
	for r, pairs := range schedule {
		for i, p := range pairs {
			st.AddMatch(&models.Match{
				UID:     fmt.Sprintf("%s_R%d_M%d", f.uidPrefix, r+1, i+1),
				Stage:   stage.Tag,
				StageID: stage.ID,
				Round:   r + 1,
				Order:   i + 1,
				Slot1:   models.EntrantSlot(st.Entrants[p[0]].ID),
				Slot2:   models.EntrantSlot(st.Entrants[p[1]].ID),
				BestOf:  st.Config.BestOf,
				Status:  models.MatchPending,
			})
		}
	}
}

// Advance is a no-op: the schedule is fixed and completion is read off the
// standings, not off advancement pointers.
func (f *RoundRobin) Advance(st *State, completed *models.Match) ([]*models.Match, error) {
	return nil, nil
}

// roundRobinSchedule returns rounds of entrant-index pairs via the circle
// method. With an odd field a phantom index is rotated in and its pairings
// dropped, so each entrant sits out exactly one round. The double flag appends
// a mirrored second leg with home and away swapped.
func roundRobinSchedule(n int, double bool) [][][2]int {
	size := n
	if size%2 != 0 {
		size++
	}
	circle := make([]int, size)
	for i := range circle {
		circle[i] = i
	}

	rounds := make([][][2]int, 0, size-1)
	for r := 0; r < size-1; r++ {
		var pairs [][2]int
		for i := 0; i < size/2; i++ {
			a, b := circle[i], circle[size-1-i]
			if a >= n || b >= n {
				continue
			}
			// Alternate sides so the fixed entrant does not always sit first.
			if r%2 == 1 {
				a, b = b, a
			}
			pairs = append(pairs, [2]int{a, b})
		}
		rounds = append(rounds, pairs)

		// Rotate all but the first position.
		last := circle[size-1]
		copy(circle[2:], circle[1:size-1])
		circle[1] = last
	}

	if double {
		second := make([][][2]int, len(rounds))
		for r, pairs := range rounds {
			mirrored := make([][2]int, len(pairs))
			for i, p := range pairs {
				mirrored[i] = [2]int{p[1], p[0]}
			}
			second[r] = mirrored
		}
		rounds = append(rounds, second...)
	}
	return rounds
}
