package brackets

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/Dosada05/bracket-engine/models"
)

// Swiss runs a fixed, pre-declared number of rounds. Only round 1 exists at
// build time; each further round is paired from the standings once the
// previous round has finished, avoiding rematches whenever any alternative
// pairing exists and rotating the bye so nobody sits out twice before
// everyone has sat out once.
type Swiss struct{}

func NewSwiss() *Swiss { return &Swiss{} }

func (f *Swiss) Format() models.Format { return models.FormatSwiss }

func swissUID(round, order int) string { return fmt.Sprintf("SW_R%d_M%d", round, order) }

func (f *Swiss) Build(st *State) error {
	n := len(st.Entrants)
	if n < 2 {
		return fmt.Errorf("%w: need at least 2, got %d", ErrInvalidEntrantCount, n)
	}

	rounds := st.Config.SwissRounds
	if rounds <= 0 {
		rounds = int(math.Ceil(math.Log2(float64(n))))
	}
	stage := st.AddStage(models.StageSwiss, "Swiss Stage", rounds)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if st.Config.SwissPairing == models.PairRandom {
		rng := rand.New(rand.NewSource(st.Config.RandomSeed))
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	var pairs [][2]int
	sitOut := -1
	half := n / 2
	switch st.Config.SwissPairing {
	case models.PairAdjacent:
		for i := 0; i+1 < n; i += 2 {
			pairs = append(pairs, [2]int{order[i], order[i+1]})
		}
		if n%2 != 0 {
			sitOut = order[n-1]
		}
	case models.PairSeedMirror:
		// Knockout-style: top seed against bottom seed, 1 vs n and so on. The
		// middle entrant sits out an odd field.
		for i := 0; i < half; i++ {
			pairs = append(pairs, [2]int{order[i], order[n-1-i]})
		}
		if n%2 != 0 {
			sitOut = order[half]
		}
	default:
		// Fold (also used after a random shuffle): top half against bottom
		// half in order, 1 vs n/2+1 and so on.
		for i := 0; i < half; i++ {
			pairs = append(pairs, [2]int{order[i], order[i+half]})
		}
		if n%2 != 0 {
			sitOut = order[n-1]
		}
	}

	for i, p := range pairs {
		st.AddMatch(&models.Match{
			UID:     swissUID(1, i+1),
			Stage:   models.StageSwiss,
			StageID: stage.ID,
			Round:   1,
			Order:   i + 1,
			Slot1:   models.EntrantSlot(st.Entrants[p[0]].ID),
			Slot2:   models.EntrantSlot(st.Entrants[p[1]].ID),
			BestOf:  st.Config.BestOf,
			Status:  models.MatchPending,
		})
	}
	if sitOut >= 0 {
		// Odd field: the unpaired entrant gets a round-1 bye.
		st.AddMatch(&models.Match{
			UID:     swissUID(1, len(pairs)+1),
			Stage:   models.StageSwiss,
			StageID: stage.ID,
			Round:   1,
			Order:   len(pairs) + 1,
			Slot1:   models.EntrantSlot(st.Entrants[sitOut].ID),
			Slot2:   models.ByeSlot(),
			BestOf:  st.Config.BestOf,
			Status:  models.MatchPending,
		})
	}

	if err := st.Validate(); err != nil {
		return err
	}
	_, err := st.CascadeByes()
	return err
}

// Advance is deliberately a no-op for Swiss: pairing the next round is a
// round-level operation (NextRound), not a per-match one.
func (f *Swiss) Advance(st *State, completed *models.Match) ([]*models.Match, error) {
	return nil, nil
}

// NextRound pairs the next Swiss round from the current standings, or
// finalizes the stage (returning no matches) once the configured round count
// has been played.
func (f *Swiss) NextRound(st *State) ([]*models.Match, error) {
	stage := findStage(st, models.StageSwiss)
	if stage == nil {
		return nil, fmt.Errorf("%w: no swiss stage", ErrIllegalTransition)
	}
	round := st.CurrentRound(stage.ID)
	if !st.RoundDone(stage.ID, round) {
		return nil, fmt.Errorf("%w: swiss round %d", ErrRoundNotComplete, round)
	}
	if round >= stage.Rounds {
		st.RefreshStageStatuses()
		return nil, nil
	}

	rec := swissRecords(st, stage.ID)

	// Standings order: wins, then Buchholz, then original seed.
	ordered := make([]models.Entrant, len(st.Entrants))
	copy(ordered, st.Entrants)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := rec[ordered[i].ID], rec[ordered[j].ID]
		if a.wins != b.wins {
			return a.wins > b.wins
		}
		if a.buchholz != b.buchholz {
			return a.buchholz > b.buchholz
		}
		return ordered[i].Seed < ordered[j].Seed
	})

	var created []*models.Match
	nextRound := round + 1
	order := 1

	if len(ordered)%2 != 0 {
		byeIdx := pickBye(ordered, rec)
		bye := ordered[byeIdx]
		ordered = append(ordered[:byeIdx], ordered[byeIdx+1:]...)
		created = append(created, &models.Match{
			UID:     swissUID(nextRound, order),
			Stage:   models.StageSwiss,
			StageID: stage.ID,
			Round:   nextRound,
			Order:   order,
			Slot1:   models.EntrantSlot(bye.ID),
			Slot2:   models.ByeSlot(),
			BestOf:  st.Config.BestOf,
			Status:  models.MatchPending,
		})
		order++
	}

	ids := make([]int, len(ordered))
	for i, e := range ordered {
		ids[i] = e.ID
	}
	faced := facedPairs(st, stage.ID)
	pairs, ok := pairAvoidingRematches(ids, faced)
	if !ok {
		// No rematch-free perfect pairing exists; fall back to pairing in
		// standings order and accept the forced rematches.
		pairs = pairs[:0]
		for i := 0; i+1 < len(ids); i += 2 {
			pairs = append(pairs, [2]int{ids[i], ids[i+1]})
		}
	}

	for _, p := range pairs {
		created = append(created, &models.Match{
			UID:     swissUID(nextRound, order),
			Stage:   models.StageSwiss,
			StageID: stage.ID,
			Round:   nextRound,
			Order:   order,
			Slot1:   models.EntrantSlot(p[0]),
			Slot2:   models.EntrantSlot(p[1]),
			BestOf:  st.Config.BestOf,
			Status:  models.MatchPending,
		})
		order++
	}

	for _, m := range created {
		st.AddMatch(m)
	}
	if _, err := st.CascadeByes(); err != nil {
		return nil, err
	}
	return created, nil
}

type swissRecord struct {
	wins, losses int
	buchholz     int
	byes         int
	opponents    []int
}

func swissRecords(st *State, stageID int) map[int]*swissRecord {
	rec := make(map[int]*swissRecord, len(st.Entrants))
	for _, e := range st.Entrants {
		rec[e.ID] = &swissRecord{}
	}
	for _, m := range st.StageMatches(stageID) {
		if m.Status != models.MatchCompleted {
			continue
		}
		if m.Bye() {
			if m.WinnerID != nil {
				r := rec[*m.WinnerID]
				r.wins++
				r.byes++
			}
			continue
		}
		if m.WinnerID == nil || m.LoserID == nil {
			continue
		}
		rec[*m.WinnerID].wins++
		rec[*m.LoserID].losses++
		rec[*m.WinnerID].opponents = append(rec[*m.WinnerID].opponents, *m.LoserID)
		rec[*m.LoserID].opponents = append(rec[*m.LoserID].opponents, *m.WinnerID)
	}
	for _, r := range rec {
		for _, opp := range r.opponents {
			r.buchholz += rec[opp].wins
		}
	}
	return rec
}

// pickBye selects the lowest-standing entrant with the fewest byes so far, so
// the bye rotates before anyone sits out twice.
func pickBye(ordered []models.Entrant, rec map[int]*swissRecord) int {
	minByes := rec[ordered[0].ID].byes
	for _, e := range ordered[1:] {
		if b := rec[e.ID].byes; b < minByes {
			minByes = b
		}
	}
	for i := len(ordered) - 1; i >= 0; i-- {
		if rec[ordered[i].ID].byes == minByes {
			return i
		}
	}
	return len(ordered) - 1
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func facedPairs(st *State, stageID int) map[[2]int]bool {
	faced := make(map[[2]int]bool)
	for _, m := range st.byStage[stageID] {
		if m.Slot1.Resolved() && m.Slot2.Resolved() {
			faced[pairKey(m.Slot1.EntrantID, m.Slot2.EntrantID)] = true
		}
	}
	return faced
}

// pairAvoidingRematches pairs the standings-ordered entrant ids without
// repeating any previous pairing, backtracking through alternatives. Because
// the input is ordered by record, the first workable opponent for each
// entrant is the closest-record one.
func pairAvoidingRematches(ids []int, faced map[[2]int]bool) ([][2]int, bool) {
	if len(ids) == 0 {
		return nil, true
	}
	first, rest := ids[0], ids[1:]
	for j, opp := range rest {
		if faced[pairKey(first, opp)] {
			continue
		}
		remaining := make([]int, 0, len(rest)-1)
		remaining = append(remaining, rest[:j]...)
		remaining = append(remaining, rest[j+1:]...)
		tail, ok := pairAvoidingRematches(remaining, faced)
		if ok {
			return append([][2]int{{first, opp}}, tail...), true
		}
	}
	return nil, false
}

func findStage(st *State, tag models.StageTag) *models.BracketStage {
	for _, stage := range st.Stages {
		if stage.Tag == tag {
			return stage
		}
	}
	return nil
}
