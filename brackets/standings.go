package brackets

import (
	"sort"

	"github.com/Dosada05/bracket-engine/models"
)

// ComputeStageStandings tabulates one stage's completed matches into a ranked
// table. Byes count as wins without map credit. Ties break by Buchholz (sum
// of opponents' wins, Swiss stages only), then map difference, then original
// seed, so the order is total and deterministic. Buchholz and Sonneborn-Berger
// are tabulated for every stage but rank entrants only under Swiss.
func ComputeStageStandings(st *State, stageID int) []models.StandingEntry {
	type tally struct {
		entry     models.StandingEntry
		opponents []int
		beaten    []int
	}
	rows := make(map[int]*tally)
	row := func(id int) *tally {
		t, ok := rows[id]
		if !ok {
			e := st.Entrant(id)
			t = &tally{entry: models.StandingEntry{EntrantID: id}}
			if e != nil {
				t.entry.Name = e.Name
				t.entry.Seed = e.Seed
			}
			rows[id] = t
		}
		return t
	}

	for _, m := range st.byStage[stageID] {
		if m.Slot1.Resolved() {
			row(m.Slot1.EntrantID)
		}
		if m.Slot2.Resolved() {
			row(m.Slot2.EntrantID)
		}
		if m.Status != models.MatchCompleted || m.WinnerID == nil {
			continue
		}
		w := row(*m.WinnerID)
		w.entry.Wins++
		w.entry.Points++
		if m.LoserID == nil {
			continue
		}
		l := row(*m.LoserID)
		l.entry.Losses++
		w.opponents = append(w.opponents, *m.LoserID)
		w.beaten = append(w.beaten, *m.LoserID)
		l.opponents = append(l.opponents, *m.WinnerID)

		ws, ls := m.Score1, m.Score2
		if *m.WinnerID == m.Slot2.EntrantID {
			ws, ls = m.Score2, m.Score1
		}
		w.entry.MapsWon += ws
		w.entry.MapsLost += ls
		l.entry.MapsWon += ls
		l.entry.MapsLost += ws
	}

	for _, t := range rows {
		for _, opp := range t.opponents {
			t.entry.Buchholz += rows[opp].entry.Wins
		}
		for _, opp := range t.beaten {
			t.entry.SonnebornBerger += rows[opp].entry.Wins
		}
		t.entry.MapDifference = t.entry.MapsWon - t.entry.MapsLost
	}

	stage := st.Stage(stageID)
	buchholzRanks := stage != nil && stage.Tag == models.StageSwiss

	table := make([]models.StandingEntry, 0, len(rows))
	for _, t := range rows {
		table = append(table, t.entry)
	}
	sort.SliceStable(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if buchholzRanks && a.Buchholz != b.Buchholz {
			return a.Buchholz > b.Buchholz
		}
		if a.MapDifference != b.MapDifference {
			return a.MapDifference > b.MapDifference
		}
		return a.Seed < b.Seed
	})
	for i := range table {
		table[i].Rank = i + 1
	}
	return table
}

// PlacementBands assigns final placements to entrants knocked out of an
// elimination bracket. A loss eliminates when it has nowhere to drop to, or
// drops into a cancelled match (the skipped grand final reset). Entrants
// knocked out at the same depth share a placement; survivors stay at 0 until
// the bracket finishes, when the last one standing takes first place.
func PlacementBands(st *State) map[int]int {
	type depth struct{ ordinal, round int }
	eliminatedAt := make(map[int]depth)
	participants := make(map[int]bool)
	done := true

	elimination := func(tag models.StageTag) bool {
		switch tag {
		case models.StagePlayoff, models.StageUpperBracket, models.StageLowerBracket, models.StageGrandFinal:
			return true
		}
		return false
	}

	for _, m := range st.Matches {
		if !elimination(m.Stage) {
			continue
		}
		if m.Slot1.Resolved() {
			participants[m.Slot1.EntrantID] = true
		}
		if m.Slot2.Resolved() {
			participants[m.Slot2.EntrantID] = true
		}
		if !m.Terminal() {
			done = false
		}
		if m.Status != models.MatchCompleted || m.LoserID == nil {
			continue
		}
		fatal := m.LoserTo == nil
		if !fatal {
			if next := st.Match(m.LoserTo.MatchUID); next != nil && next.Status == models.MatchCancelled {
				fatal = true
			}
		}
		if !fatal {
			continue
		}
		stage := st.Stage(m.StageID)
		eliminatedAt[*m.LoserID] = depth{ordinal: stage.Ordinal, round: m.Round}
	}

	byDepth := make(map[depth][]int)
	for id, d := range eliminatedAt {
		byDepth[d] = append(byDepth[d], id)
	}
	depths := make([]depth, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	sort.Slice(depths, func(i, j int) bool {
		if depths[i].ordinal != depths[j].ordinal {
			return depths[i].ordinal > depths[j].ordinal
		}
		return depths[i].round > depths[j].round
	})

	placements := make(map[int]int, len(participants))
	survivors := len(participants) - len(eliminatedAt)
	if done && survivors == 1 {
		for id := range participants {
			if _, out := eliminatedAt[id]; !out {
				placements[id] = 1
			}
		}
	}
	ahead := survivors
	for _, d := range depths {
		for _, id := range byDepth[d] {
			placements[id] = ahead + 1
		}
		ahead += len(byDepth[d])
	}
	return placements
}
