package usecase

import (
	"context"
	"log/slog"
	"time"

	"torchtally/src/core/domain"
	"torchtally/src/core/ports"
)

// PredictionService handles team-facing prediction flows: allocating the
// voted-out budget, submitting title picks, and locking an episode's
// predictions. Editability is gated by the deadline and scored state;
// locking gates visibility and scoring eligibility.
type PredictionService struct {
	repo ports.LeagueRepository
	log  *slog.Logger
}

func NewPredictionService(repo ports.LeagueRepository, log *slog.Logger) *PredictionService {
	return &PredictionService{repo: repo, log: log}
}

// Allocation is one slice of a team's prediction budget.
type Allocation struct {
	PlayerID int64
	Points   int
}

// SubmitPredictions replaces a team's voted-out allocation for an episode.
// A team may split its budget across several players; each slice is scored
// independently when the episode's outcome is declared.
func (s *PredictionService) SubmitPredictions(ctx context.Context, leagueID, episodeID, teamID int64, allocations []Allocation) ([]domain.Prediction, error) {
	if len(allocations) == 0 {
		return nil, domain.NewValidationError("allocations", "at least one allocation required")
	}

	league, episode, err := s.editableEpisode(ctx, leagueID, episodeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTeam(ctx, leagueID, teamID); err != nil {
		return nil, err
	}

	total := 0
	seen := make(map[int64]bool, len(allocations))
	for _, a := range allocations {
		if a.Points <= 0 {
			return nil, domain.NewValidationError("points", "allocated points must be positive")
		}
		if seen[a.PlayerID] {
			return nil, domain.NewValidationError("player_id", "duplicate player in allocation")
		}
		seen[a.PlayerID] = true
		total += a.Points

		player, err := s.repo.GetPlayer(ctx, a.PlayerID)
		if err != nil {
			return nil, err
		}
		if player.SeasonID != league.SeasonID {
			return nil, domain.NewValidationError("player_id", "player does not belong to the league's season")
		}
	}
	if total > domain.PredictionBudget {
		return nil, domain.NewValidationError("points", "allocation exceeds the prediction budget")
	}

	predictions := make([]domain.Prediction, 0, len(allocations))
	for _, a := range allocations {
		predictions = append(predictions, domain.Prediction{
			LeagueID:        leagueID,
			EpisodeID:       episode.ID,
			TeamID:          teamID,
			PlayerID:        a.PlayerID,
			PointsAllocated: a.Points,
		})
	}
	if err := s.repo.ReplaceTeamPredictions(ctx, leagueID, episodeID, teamID, predictions); err != nil {
		return nil, err
	}
	return predictions, nil
}

// SubmitTitlePick records or replaces a team's episode-title bet. Exactly one
// of playerID / isHostPick must be set.
func (s *PredictionService) SubmitTitlePick(ctx context.Context, leagueID, episodeID, teamID int64, playerID *int64, isHostPick bool) (*domain.TitlePick, error) {
	if playerID == nil && !isHostPick {
		return nil, domain.NewValidationError("player_id", "a player or the host pick flag is required")
	}
	if playerID != nil && isHostPick {
		return nil, domain.NewValidationError("player_id", "a pick cannot name a player and the host")
	}

	league, episode, err := s.editableEpisode(ctx, leagueID, episodeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTeam(ctx, leagueID, teamID); err != nil {
		return nil, err
	}
	if playerID != nil {
		player, err := s.repo.GetPlayer(ctx, *playerID)
		if err != nil {
			return nil, err
		}
		if player.SeasonID != league.SeasonID {
			return nil, domain.NewValidationError("player_id", "player does not belong to the league's season")
		}
	}

	pick := domain.TitlePick{
		LeagueID:   leagueID,
		EpisodeID:  episode.ID,
		TeamID:     teamID,
		PlayerID:   playerID,
		IsHostPick: isHostPick,
	}
	if err := s.repo.UpsertTitlePick(ctx, pick); err != nil {
		return nil, err
	}
	return &pick, nil
}

// LockPredictions stamps locked_at on the episode's predictions and title
// picks, making them visible to other teams and eligible for scoring.
func (s *PredictionService) LockPredictions(ctx context.Context, leagueID, episodeID int64) error {
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
	return s.repo.LockPredictions(ctx, leagueID, episodeID, time.Now())
}

// editableEpisode resolves the league and episode and enforces the edit
// gates: a scored episode or a passed deadline rejects changes.
func (s *PredictionService) editableEpisode(ctx context.Context, leagueID, episodeID int64) (*domain.League, *domain.Episode, error) {
	league, err := s.repo.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, nil, err
	}
	episode, err := s.repo.GetEpisode(ctx, episodeID)
	if err != nil {
		return nil, nil, err
	}
	if episode.SeasonID != league.SeasonID {
		return nil, nil, domain.NewValidationError("episode_id", "episode does not belong to the league's season")
	}
	if episode.IsScored {
		return nil, nil, domain.NewConflictError("episode already scored")
	}
	if episode.PredictionDeadline != nil && time.Now().After(*episode.PredictionDeadline) {
		return nil, nil, domain.NewConflictError("prediction deadline has passed")
	}
	return league, episode, nil
}

func (s *PredictionService) checkTeam(ctx context.Context, leagueID, teamID int64) error {
	team, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.LeagueID != leagueID {
		return domain.NewForbiddenError("team does not belong to the league")
	}
	return nil
}
