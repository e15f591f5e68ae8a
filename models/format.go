package models

import "fmt"

// Format identifies a tournament bracket format.
type Format string

const (
	FormatSingleElimination Format = "single_elimination"
	FormatDoubleElimination Format = "double_elimination"
	FormatSwiss             Format = "swiss"
	FormatRoundRobin        Format = "round_robin"
	FormatGroupStage        Format = "group_stage"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatSingleElimination, FormatDoubleElimination, FormatSwiss, FormatRoundRobin, FormatGroupStage:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown tournament format %q", s)
}

type SeedingMethod string

const (
	SeedManual     SeedingMethod = "manual"
	SeedRatingDesc SeedingMethod = "rating_desc"
	SeedRandom     SeedingMethod = "random"
)

// SwissPairingMethod selects how the first Swiss round is paired. Subsequent
// rounds always pair by record.
type SwissPairingMethod string

const (
	PairFold       SwissPairingMethod = "fold"        // 1 vs n/2+1, 2 vs n/2+2, ...
	PairAdjacent   SwissPairingMethod = "adjacent"    // 1 vs 2, 3 vs 4, ...
	PairSeedMirror SwissPairingMethod = "seed_mirror" // 1 vs n, 2 vs n-1, ...
	PairRandom     SwissPairingMethod = "random"
)

// BracketConfig carries per-tournament generation settings. Zero values are
// replaced by defaults in Normalized.
type BracketConfig struct {
	BestOf           int                `json:"best_of,omitempty"`
	Seeding          SeedingMethod      `json:"seeding,omitempty"`
	RandomSeed       int64              `json:"random_seed,omitempty"`
	SwissRounds      int                `json:"swiss_rounds,omitempty"`
	SwissPairing     SwissPairingMethod `json:"swiss_pairing,omitempty"`
	DoubleRoundRobin bool               `json:"double_round_robin,omitempty"`
	GroupCount       int                `json:"group_count,omitempty"`
	AdvancePerGroup  int                `json:"advance_per_group,omitempty"`
	PlayoffFormat    Format             `json:"playoff_format,omitempty"`
}

// Normalized returns a copy with defaults applied. SwissRounds stays zero
// here: the recommended round count depends on the entrant count and is
// resolved at build time.
func (c BracketConfig) Normalized() BracketConfig {
	if c.BestOf <= 0 {
		c.BestOf = 3
	}
	if c.Seeding == "" {
		c.Seeding = SeedManual
	}
	if c.SwissPairing == "" {
		c.SwissPairing = PairFold
	}
	if c.GroupCount <= 0 {
		c.GroupCount = 2
	}
	if c.AdvancePerGroup <= 0 {
		c.AdvancePerGroup = 2
	}
	if c.PlayoffFormat == "" {
		c.PlayoffFormat = FormatSingleElimination
	}
	return c
}

// Validate rejects settings no format can work with.
func (c BracketConfig) Validate() error {
	if c.BestOf > 0 && c.BestOf%2 == 0 {
		return fmt.Errorf("best_of must be odd, got %d", c.BestOf)
	}
	if c.PlayoffFormat != "" &&
		c.PlayoffFormat != FormatSingleElimination && c.PlayoffFormat != FormatDoubleElimination {
		return fmt.Errorf("playoff_format must be an elimination format, got %q", c.PlayoffFormat)
	}
	return nil
}
