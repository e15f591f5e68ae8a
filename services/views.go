package services

import (
	"fmt"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
)

// StageView is one stage with its matches in bracket order.
type StageView struct {
	models.BracketStage
	Matches []models.Match `json:"matches"`
}

// BracketView is the full projection of a tournament bracket. Generated is
// false (and everything else empty) for tournaments without a bracket yet, so
// reads never fail just because generation has not happened.
type BracketView struct {
	TournamentID int                  `json:"tournament_id"`
	Generated    bool                 `json:"generated"`
	Format       models.Format        `json:"format,omitempty"`
	Config       models.BracketConfig `json:"config,omitempty"`
	Entrants     []models.Entrant     `json:"entrants,omitempty"`
	Stages       []StageView          `json:"stages,omitempty"`
	Champion     *models.Entrant      `json:"champion,omitempty"`
}

// StandingsTable is the ranked table of one stage.
type StandingsTable struct {
	StageID int                    `json:"stage_id"`
	Name    string                 `json:"name"`
	Entries []models.StandingEntry `json:"entries"`
}

type StandingsView struct {
	TournamentID int              `json:"tournament_id"`
	Tables       []StandingsTable `json:"tables"`
}

func buildBracketView(st *brackets.State) *BracketView {
	view := &BracketView{
		TournamentID: st.TournamentID,
		Generated:    true,
		Format:       st.Format,
		Config:       st.Config,
		Entrants:     st.Entrants,
	}
	for _, stage := range st.Stages {
		sv := StageView{BracketStage: *stage}
		for _, m := range st.StageMatches(stage.ID) {
			sv.Matches = append(sv.Matches, *m)
		}
		view.Stages = append(view.Stages, sv)
	}
	view.Champion = championOf(st)
	return view
}

// championOf resolves the tournament winner once it is decided: the last
// survivor of an elimination (or playoff) phase, or the table leader of a
// fully played league format.
func championOf(st *brackets.State) *models.Entrant {
	for _, m := range st.Matches {
		if !m.Terminal() {
			return nil
		}
	}
	switch st.Format {
	case models.FormatSingleElimination, models.FormatDoubleElimination:
		for id, place := range brackets.PlacementBands(st) {
			if place == 1 {
				return st.Entrant(id)
			}
		}
	case models.FormatGroupStage:
		hasPlayoff := false
		for _, stage := range st.Stages {
			if stage.Tag != models.StageGroup {
				hasPlayoff = true
			}
		}
		if !hasPlayoff {
			return nil
		}
		for id, place := range brackets.PlacementBands(st) {
			if place == 1 {
				return st.Entrant(id)
			}
		}
	case models.FormatSwiss, models.FormatRoundRobin:
		for _, stage := range st.Stages {
			if stage.Status != models.StageCompleted {
				return nil
			}
			table := brackets.ComputeStageStandings(st, stage.ID)
			if len(table) > 0 {
				return st.Entrant(table[0].EntrantID)
			}
		}
	}
	return nil
}

func buildStandingsView(st *brackets.State) *StandingsView {
	view := &StandingsView{TournamentID: st.TournamentID}
	placements := map[int]int(nil)
	switch st.Format {
	case models.FormatSingleElimination, models.FormatDoubleElimination, models.FormatGroupStage:
		placements = brackets.PlacementBands(st)
	}
	labels := placementLabels(placements)
	for _, stage := range st.Stages {
		entries := brackets.ComputeStageStandings(st, stage.ID)
		for i := range entries {
			entries[i].Placement = labels[entries[i].EntrantID]
		}
		view.Tables = append(view.Tables, StandingsTable{
			StageID: stage.ID,
			Name:    stage.Name,
			Entries: entries,
		})
	}
	return view
}

// placementLabels renders placement bands as labels: a shared placement
// becomes a range ("3rd-4th"), a unique one a plain ordinal ("1st").
func placementLabels(placements map[int]int) map[int]string {
	bandSize := make(map[int]int, len(placements))
	for _, p := range placements {
		bandSize[p]++
	}
	labels := make(map[int]string, len(placements))
	for id, p := range placements {
		if size := bandSize[p]; size > 1 {
			labels[id] = fmt.Sprintf("%s-%s", ordinal(p), ordinal(p+size-1))
		} else {
			labels[id] = ordinal(p)
		}
	}
	return labels
}

func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
