package usecase

import (
	"context"
	"log/slog"

	"torchtally/src/core/domain"
	"torchtally/src/core/ports"
)

// StandingsService handles standings and stat-page reads. Everything it
// returns comes from the materialized score rows or the ledger; it never
// recomputes.
type StandingsService struct {
	repo ports.LeagueRepository
	log  *slog.Logger
}

func NewStandingsService(repo ports.LeagueRepository, log *slog.Logger) *StandingsService {
	return &StandingsService{repo: repo, log: log}
}

// Standings returns the league's current leaderboard.
func (s *StandingsService) Standings(ctx context.Context, leagueID int64) ([]ports.LeagueStanding, error) {
	if _, err := s.repo.GetLeague(ctx, leagueID); err != nil {
		return nil, err
	}
	return s.repo.GetLeagueStandings(ctx, leagueID)
}

// EpisodeLeaderboard returns one episode's score rows in rank order.
func (s *StandingsService) EpisodeLeaderboard(ctx context.Context, leagueID, episodeID int64) ([]domain.EpisodeTeamScore, error) {
	if _, err := s.repo.GetLeague(ctx, leagueID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetEpisode(ctx, episodeID); err != nil {
		return nil, err
	}
	return s.repo.ListEpisodeScores(ctx, leagueID, episodeID)
}

// TeamEpisodeScore returns a single team's breakdown for one episode.
func (s *StandingsService) TeamEpisodeScore(ctx context.Context, leagueID, episodeID, teamID int64) (*domain.EpisodeTeamScore, error) {
	return s.repo.GetEpisodeScore(ctx, leagueID, episodeID, teamID)
}

// History returns every score row for a league, ordered by episode then team.
func (s *StandingsService) History(ctx context.Context, leagueID int64) ([]domain.EpisodeTeamScore, error) {
	if _, err := s.repo.GetLeague(ctx, leagueID); err != nil {
		return nil, err
	}
	return s.repo.ListLeagueScores(ctx, leagueID)
}

// PlayerEvents returns a player's full event log across every league in the
// season, the source for cast-wide stat pages. Undrafted awards appear here
// even though they score for no team.
func (s *StandingsService) PlayerEvents(ctx context.Context, seasonID, playerID int64) ([]domain.ScoringEvent, error) {
	player, err := s.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player.SeasonID != seasonID {
		return nil, domain.NewValidationError("player_id", "player does not belong to the season")
	}
	return s.repo.ListPlayerEvents(ctx, seasonID, playerID)
}
