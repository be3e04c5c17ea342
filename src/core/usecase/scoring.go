package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"torchtally/src/core/domain"
	"torchtally/src/core/ports"
)

// ScoringService applies commissioner-declared episode outcomes: it expands
// an outcome into ledger events, grades predictions and title picks, triggers
// recalculation, and manages episode flags. It also owns the reset and
// cross-league fan-out operations.
type ScoringService struct {
	repo   ports.LeagueRepository
	recalc *Recalculator
	log    *slog.Logger
}

func NewScoringService(repo ports.LeagueRepository, recalc *Recalculator, log *slog.Logger) *ScoringService {
	return &ScoringService{repo: repo, recalc: recalc, log: log}
}

// ScoreResult summarizes one league's scoring pass.
type ScoreResult struct {
	LeagueID          int64 `json:"league_id"`
	EventsWritten     int   `json:"events_written"`
	PredictionsScored int   `json:"predictions_scored"`
	TitlePicksCorrect int   `json:"title_picks_correct"`
}

// LeagueScoreStatus is one league's entry in a fan-out result. Err is set
// when that league's pass failed; the remaining leagues are still attempted.
type LeagueScoreStatus struct {
	LeagueID int64
	Result   *ScoreResult
	Err      error
}

// FanOutResult is the multi-status outcome of scoring an episode across
// every league in a season.
type FanOutResult struct {
	SeasonID           int64
	EpisodeID          int64
	Leagues            []LeagueScoreStatus
	PlayersDeactivated int64
}

// Failed reports how many leagues errored during the fan-out.
func (r *FanOutResult) Failed() int {
	n := 0
	for _, l := range r.Leagues {
		if l.Err != nil {
			n++
		}
	}
	return n
}

// ScoreEpisode records an outcome for a single league: replaces the ledger
// rows for the episode, grades predictions and title picks, recomputes the
// league's standings, applies season-wide side effects once, and flips the
// episode flags.
func (s *ScoringService) ScoreEpisode(ctx context.Context, leagueID, episodeID int64, outcome *domain.EpisodeOutcome) (*ScoreResult, error) {
	if err := outcome.Validate(); err != nil {
		return nil, err
	}
	league, err := s.repo.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	episode, err := s.repo.GetEpisode(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	if episode.SeasonID != league.SeasonID {
		return nil, domain.NewValidationError("episode_id", "episode does not belong to the league's season")
	}
	if err := s.checkOutcomePlayers(ctx, league.SeasonID, outcome); err != nil {
		return nil, err
	}

	result, err := s.scoreLeague(ctx, league, episode, outcome)
	if err != nil {
		return nil, err
	}
	if _, err := s.applySeasonEffects(ctx, league.SeasonID, outcome); err != nil {
		return nil, err
	}
	if err := s.repo.SetEpisodeFlags(ctx, episodeID, true, outcome.IsMerge, outcome.IsFinalThree); err != nil {
		return nil, err
	}
	return result, nil
}

// ScoreEpisodeAllLeagues fans one outcome out to every league in the season.
// Each league resolves its own scoring config, so the same real event can be
// worth different points in different leagues. A failing league does not
// block the others; per-league status is collected and returned, and the
// already-scored leagues stay safe to retry thanks to delete-then-reinsert.
// Season-scoped side effects run exactly once, after the loop.
func (s *ScoringService) ScoreEpisodeAllLeagues(ctx context.Context, seasonID, episodeID int64, outcome *domain.EpisodeOutcome) (*FanOutResult, error) {
	if err := outcome.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetSeason(ctx, seasonID); err != nil {
		return nil, err
	}
	episode, err := s.repo.GetEpisode(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	if episode.SeasonID != seasonID {
		return nil, domain.NewValidationError("episode_id", "episode does not belong to the season")
	}
	if err := s.checkOutcomePlayers(ctx, seasonID, outcome); err != nil {
		return nil, err
	}

	leagues, err := s.repo.ListLeaguesBySeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	out := &FanOutResult{SeasonID: seasonID, EpisodeID: episodeID}
	for _, league := range leagues {
		result, err := s.scoreLeague(ctx, &league, episode, outcome)
		if err != nil {
			s.log.Error("league scoring failed during fan-out",
				"league_id", league.ID,
				"episode_id", episodeID,
				"error", err,
			)
			out.Leagues = append(out.Leagues, LeagueScoreStatus{LeagueID: league.ID, Err: err})
			continue
		}
		out.Leagues = append(out.Leagues, LeagueScoreStatus{LeagueID: league.ID, Result: result})
	}

	deactivated, err := s.applySeasonEffects(ctx, seasonID, outcome)
	if err != nil {
		return out, err
	}
	out.PlayersDeactivated = deactivated

	if err := s.repo.SetEpisodeFlags(ctx, episodeID, true, outcome.IsMerge, outcome.IsFinalThree); err != nil {
		return out, err
	}
	return out, nil
}

// ResetEpisode inverts a scoring action for one (league, episode): the ledger
// rows are deleted, prediction and title-pick earnings zeroed, standings
// recomputed (the recompute walks from episode one forward, so the shrinkage
// cascades into later cumulative totals), and the episode flags cleared.
// Voted-out players are not reactivated and season-prediction grading is not
// reversed; both are caller responsibility.
func (s *ScoringService) ResetEpisode(ctx context.Context, leagueID, episodeID int64) error {
	league, err := s.repo.GetLeague(ctx, leagueID)
	if err != nil {
		return err
	}
	episode, err := s.repo.GetEpisode(ctx, episodeID)
	if err != nil {
		return err
	}
	if episode.SeasonID != league.SeasonID {
		return domain.NewValidationError("episode_id", "episode does not belong to the league's season")
	}

	if err := s.repo.DeleteEpisodeEvents(ctx, leagueID, episodeID); err != nil {
		return err
	}
	if err := s.repo.ZeroPredictionPoints(ctx, leagueID, episodeID); err != nil {
		return err
	}
	if err := s.repo.ZeroTitlePickPoints(ctx, leagueID, episodeID); err != nil {
		return err
	}
	if err := s.recalc.Recalculate(ctx, leagueID, episodeID); err != nil {
		return err
	}
	return s.repo.SetEpisodeFlags(ctx, episodeID, false, false, false)
}

// GradeSeasonPrediction grades a one-time season prediction question against
// the commissioner-declared correct answer, across every league in the
// season. Returns the number of graded rows.
func (s *ScoringService) GradeSeasonPrediction(ctx context.Context, seasonID int64, question, answer string) (int64, error) {
	if question == "" {
		return 0, domain.NewValidationError("question", "question is required")
	}
	if answer == "" {
		return 0, domain.NewValidationError("answer", "answer is required")
	}
	if _, err := s.repo.GetSeason(ctx, seasonID); err != nil {
		return 0, err
	}
	points := domain.ResolvePoints(nil, domain.CategorySeasonPrediction)
	return s.repo.GradeSeasonPredictions(ctx, seasonID, question, answer, points)
}

// scoreLeague runs one league's scoring pass for an episode. Flag updates
// and season-wide side effects stay with the callers; everything here is
// league-scoped and therefore safe to repeat per league in a fan-out.
func (s *ScoringService) scoreLeague(ctx context.Context, league *domain.League, episode *domain.Episode, outcome *domain.EpisodeOutcome) (*ScoreResult, error) {
	events, err := s.buildLeagueEvents(ctx, league, episode, outcome)
	if err != nil {
		return nil, err
	}
	written, err := s.repo.ReplaceEpisodeEvents(ctx, league.ID, episode.ID, events)
	if err != nil {
		return nil, err
	}

	matched, err := s.repo.GradeVotePredictions(ctx, league.ID, episode.ID, outcome.VotedOutPlayers)
	if err != nil {
		return nil, err
	}
	// Each earned prediction is mirrored into the ledger as an auditable
	// event so per-player stat pages agree with the prediction table.
	var audit []domain.ScoringEvent
	for _, p := range matched {
		teamID := p.TeamID
		audit = append(audit, domain.ScoringEvent{
			LeagueID:  league.ID,
			EpisodeID: episode.ID,
			PlayerID:  p.PlayerID,
			TeamID:    &teamID,
			Category:  domain.CategoryVotedOutPrediction,
			Points:    p.PointsEarned,
			Note:      "correct voted-out prediction",
		})
	}
	if len(audit) > 0 {
		if err := s.repo.AppendEvents(ctx, audit); err != nil {
			return nil, err
		}
	}

	titlePoints := domain.ResolvePoints(league.ScoringConfig, domain.CategoryEpisodeTitle)
	correctPicks, err := s.repo.GradeTitlePicks(ctx, league.ID, episode.ID, outcome.EpisodeTitleSpeaker, outcome.TitleSpeakerIsHost, titlePoints)
	if err != nil {
		return nil, err
	}

	if err := s.recalc.Recalculate(ctx, league.ID, episode.ID); err != nil {
		return nil, err
	}

	return &ScoreResult{
		LeagueID:          league.ID,
		EventsWritten:     written + len(audit),
		PredictionsScored: len(matched),
		TitlePicksCorrect: correctPicks,
	}, nil
}

// buildLeagueEvents expands an outcome into this league's ledger events, with
// point values resolved through the league's scoring config and team
// ownership resolved through its draft picks.
func (s *ScoringService) buildLeagueEvents(ctx context.Context, league *domain.League, episode *domain.Episode, outcome *domain.EpisodeOutcome) ([]domain.ScoringEvent, error) {
	var events []domain.ScoringEvent
	add := func(playerID int64, category domain.Category, note string) error {
		teamID, err := s.repo.GetDraftedTeamID(ctx, league.ID, playerID)
		if err != nil {
			return err
		}
		events = append(events, domain.ScoringEvent{
			LeagueID:  league.ID,
			EpisodeID: episode.ID,
			PlayerID:  playerID,
			TeamID:    teamID,
			Category:  category,
			Points:    domain.ResolvePoints(league.ScoringConfig, category),
			Note:      note,
		})
		return nil
	}

	for _, p := range outcome.TribeRewardWinners {
		if err := add(p, domain.CategoryTribeReward, "tribe reward win"); err != nil {
			return nil, err
		}
	}
	if outcome.IndividualRewardWinner != nil {
		if err := add(*outcome.IndividualRewardWinner, domain.CategoryIndividualReward, "individual reward win"); err != nil {
			return nil, err
		}
	}
	for _, p := range outcome.TribeImmunityWinners {
		if err := add(p, domain.CategoryTribeImmunity, "tribe immunity win"); err != nil {
			return nil, err
		}
	}
	if outcome.IndividualImmunityWinner != nil {
		if err := add(*outcome.IndividualImmunityWinner, domain.CategoryIndividualImmunity, "individual immunity win"); err != nil {
			return nil, err
		}
	}
	if outcome.TribeImmunitySecond != nil {
		if err := add(*outcome.TribeImmunitySecond, domain.CategoryImmunitySecond, "second-place immunity"); err != nil {
			return nil, err
		}
	}
	for _, p := range outcome.IdolFinders {
		if err := add(p, domain.CategoryIdolFound, "idol found"); err != nil {
			return nil, err
		}
	}
	for _, p := range outcome.IdolPlayers {
		if err := add(p, domain.CategoryIdolPlayed, "idol played"); err != nil {
			return nil, err
		}
	}
	for _, p := range outcome.AdvantageFinders {
		if err := add(p, domain.CategoryAdvantageFound, "advantage found"); err != nil {
			return nil, err
		}
	}
	if outcome.EpisodeTitleSpeaker != nil {
		if err := add(*outcome.EpisodeTitleSpeaker, domain.CategoryEpisodeTitle, "episode title quote"); err != nil {
			return nil, err
		}
	}

	if outcome.IsMerge {
		// The merge award goes to everyone who made the merge: players
		// still active in the season minus this episode's eliminated.
		active, err := s.repo.ListActivePlayers(ctx, league.SeasonID)
		if err != nil {
			return nil, err
		}
		eliminated := make(map[int64]bool, len(outcome.VotedOutPlayers))
		for _, p := range outcome.VotedOutPlayers {
			eliminated[p] = true
		}
		for _, p := range active {
			if eliminated[p.ID] {
				continue
			}
			if err := add(p.ID, domain.CategoryMadeMerge, "made the merge"); err != nil {
				return nil, err
			}
		}
	}
	if outcome.IsFinalThree {
		for _, p := range outcome.FinalThreePlayers {
			if err := add(p, domain.CategoryFinalThree, "reached the final three"); err != nil {
				return nil, err
			}
		}
	}
	if outcome.WinnerPlayer != nil {
		if err := add(*outcome.WinnerPlayer, domain.CategoryWinner, "sole survivor"); err != nil {
			return nil, err
		}
	}

	return events, nil
}

// applySeasonEffects applies the outcome's season-scoped mutations: marking
// voted-out players inactive and auto-grading the winner season prediction.
// Called exactly once per real-world outcome, never inside a per-league loop.
func (s *ScoringService) applySeasonEffects(ctx context.Context, seasonID int64, outcome *domain.EpisodeOutcome) (int64, error) {
	var deactivated int64
	if len(outcome.VotedOutPlayers) > 0 {
		n, err := s.repo.DeactivatePlayers(ctx, outcome.VotedOutPlayers)
		if err != nil {
			return 0, err
		}
		deactivated = n
	}
	if outcome.WinnerPlayer != nil {
		winner, err := s.repo.GetPlayer(ctx, *outcome.WinnerPlayer)
		if err != nil {
			return deactivated, err
		}
		points := domain.ResolvePoints(nil, domain.CategorySeasonPrediction)
		if _, err := s.repo.GradeSeasonPredictions(ctx, seasonID, domain.SeasonPredictionWinnerQuestion, winner.Name, points); err != nil {
			return deactivated, err
		}
	}
	return deactivated, nil
}

// checkOutcomePlayers verifies that every player the outcome references
// exists and belongs to the season being scored, before any ledger write.
func (s *ScoringService) checkOutcomePlayers(ctx context.Context, seasonID int64, outcome *domain.EpisodeOutcome) error {
	for _, id := range outcome.PlayerIDs() {
		player, err := s.repo.GetPlayer(ctx, id)
		if err != nil {
			return err
		}
		if player.SeasonID != seasonID {
			return domain.NewValidationError("player_id", fmt.Sprintf("player %d does not belong to season %d", id, seasonID))
		}
	}
	return nil
}
