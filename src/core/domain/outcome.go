package domain

// EpisodeOutcome is the commissioner-declared real-world result of one
// episode. The same shape feeds both the single-league and the all-leagues
// scoring paths.
type EpisodeOutcome struct {
	TribeRewardWinners       []int64
	IndividualRewardWinner   *int64
	TribeImmunityWinners     []int64
	IndividualImmunityWinner *int64
	TribeImmunitySecond      *int64
	IdolFinders              []int64
	IdolPlayers              []int64
	AdvantageFinders         []int64
	EpisodeTitleSpeaker      *int64
	TitleSpeakerIsHost       bool
	VotedOutPlayers          []int64
	IsMerge                  bool
	IsFinalThree             bool
	FinalThreePlayers        []int64
	WinnerPlayer             *int64
}

// PlayerIDs collects every player id the outcome references, deduplicated,
// in field order. Callers use it to resolve the full id set before any
// ledger write happens.
func (o *EpisodeOutcome) PlayerIDs() []int64 {
	var ids []int64
	seen := make(map[int64]bool)
	one := func(id int64) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	many := func(list []int64) {
		for _, id := range list {
			one(id)
		}
	}
	opt := func(p *int64) {
		if p != nil {
			one(*p)
		}
	}

	many(o.TribeRewardWinners)
	opt(o.IndividualRewardWinner)
	many(o.TribeImmunityWinners)
	opt(o.IndividualImmunityWinner)
	opt(o.TribeImmunitySecond)
	many(o.IdolFinders)
	many(o.IdolPlayers)
	many(o.AdvantageFinders)
	opt(o.EpisodeTitleSpeaker)
	many(o.VotedOutPlayers)
	many(o.FinalThreePlayers)
	opt(o.WinnerPlayer)
	return ids
}

// Validate checks the internal consistency of a declared outcome.
// It performs no lookups; identifier resolution is a repository concern.
func (o *EpisodeOutcome) Validate() error {
	if o.WinnerPlayer != nil && !o.IsFinalThree {
		return NewValidationError("winner_player", "winner cannot be declared without final three")
	}
	if o.IsFinalThree && len(o.FinalThreePlayers) == 0 {
		return NewValidationError("final_three_players", "final three players required when final three is declared")
	}
	if o.TitleSpeakerIsHost && o.EpisodeTitleSpeaker != nil {
		return NewValidationError("episode_title_speaker", "title speaker cannot be both a player and the host")
	}
	return nil
}
