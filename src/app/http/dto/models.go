// Package dto contains request and response payload shapes for the HTTP API.
package dto

import "torchtally/src/core/domain"

// OutcomeRequest is the commissioner's declaration of what happened in an
// episode. Everything the scoring pass derives comes from this one payload.
type OutcomeRequest struct {
	TribeRewardWinners       []int64 `json:"tribe_reward_winners"`
	IndividualRewardWinner   *int64  `json:"individual_reward_winner"`
	TribeImmunityWinners     []int64 `json:"tribe_immunity_winners"`
	IndividualImmunityWinner *int64  `json:"individual_immunity_winner"`
	TribeImmunitySecond      *int64  `json:"tribe_immunity_second"`

	IdolFinders      []int64 `json:"idol_finders"`
	IdolPlayers      []int64 `json:"idol_players"`
	AdvantageFinders []int64 `json:"advantage_finders"`

	EpisodeTitleSpeakerID     *int64 `json:"episode_title_speaker_id"`
	EpisodeTitleSpeakerIsHost bool   `json:"episode_title_speaker_is_host"`

	VotedOutPlayers []int64 `json:"voted_out_players"`

	IsMerge           bool    `json:"is_merge"`
	IsFinalThree      bool    `json:"is_final_three"`
	FinalThreePlayers []int64 `json:"final_three_players"`
	WinnerPlayerID    *int64  `json:"winner_player_id"`
}

// ToDomain converts the request payload to the domain outcome type.
func (r *OutcomeRequest) ToDomain() *domain.EpisodeOutcome {
	return &domain.EpisodeOutcome{
		TribeRewardWinners:       r.TribeRewardWinners,
		IndividualRewardWinner:   r.IndividualRewardWinner,
		TribeImmunityWinners:     r.TribeImmunityWinners,
		IndividualImmunityWinner: r.IndividualImmunityWinner,
		TribeImmunitySecond:      r.TribeImmunitySecond,
		IdolFinders:              r.IdolFinders,
		IdolPlayers:              r.IdolPlayers,
		AdvantageFinders:         r.AdvantageFinders,
		EpisodeTitleSpeaker:      r.EpisodeTitleSpeakerID,
		TitleSpeakerIsHost:       r.EpisodeTitleSpeakerIsHost,
		VotedOutPlayers:          r.VotedOutPlayers,
		IsMerge:                  r.IsMerge,
		IsFinalThree:             r.IsFinalThree,
		FinalThreePlayers:        r.FinalThreePlayers,
		WinnerPlayer:             r.WinnerPlayerID,
	}
}

// AllocationRequest is one line of a team's vote prediction: points staked on
// a single player going home.
type AllocationRequest struct {
	PlayerID int64 `json:"player_id" binding:"required"`
	Points   int   `json:"points" binding:"required"`
}

// PredictionsRequest replaces a team's full allocation for an episode.
type PredictionsRequest struct {
	Allocations []AllocationRequest `json:"allocations" binding:"required"`
}

// TitlePickRequest sets a team's episode title pick. Exactly one of player_id
// or is_host_pick must be provided.
type TitlePickRequest struct {
	PlayerID   *int64 `json:"player_id"`
	IsHostPick bool   `json:"is_host_pick"`
}

// SeasonPredictionGradeRequest grades a pre-season question platform-wide.
type SeasonPredictionGradeRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}
