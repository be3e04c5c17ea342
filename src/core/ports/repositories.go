// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra/repo. This ensures the core has no dependency on infrastructure.
package ports

import (
	"context"
	"time"

	"torchtally/src/core/domain"
)

// Repository is the base interface for all repositories.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// LeagueStanding is one row of a league's current leaderboard: the team with
// its latest cumulative total and rank.
type LeagueStanding struct {
	Team            domain.Team `json:"team"`
	EpisodeID       int64       `json:"episode_id"`
	EpisodeNumber   int         `json:"episode_number"`
	CumulativeTotal int         `json:"cumulative_total"`
	Rank            int         `json:"rank"`
}

// LeagueRepository is a composite repository covering the scoring engine's
// persistence surface: the event ledger, predictions, and the materialized
// score rows, plus the season/league reference data the engine reads.
type LeagueRepository interface {
	Repository

	// Seasons & episodes
	GetSeason(ctx context.Context, seasonID int64) (*domain.Season, error)
	GetEpisode(ctx context.Context, episodeID int64) (*domain.Episode, error)
	// ListScoredEpisodes returns the season's scored episodes in
	// episode_number order. includeEpisodeID is always included even if its
	// is_scored flag has not been flipped yet; pass 0 to list scored
	// episodes only.
	ListScoredEpisodes(ctx context.Context, seasonID, includeEpisodeID int64) ([]domain.Episode, error)
	SetEpisodeFlags(ctx context.Context, episodeID int64, isScored, isMerge, isFinale bool) error

	// Players
	GetPlayer(ctx context.Context, playerID int64) (*domain.Player, error)
	ListActivePlayers(ctx context.Context, seasonID int64) ([]domain.Player, error)
	// DeactivatePlayers marks the given players voted out. Season-wide:
	// every league drafting the season observes the change.
	DeactivatePlayers(ctx context.Context, playerIDs []int64) (int64, error)

	// Leagues & teams
	GetLeague(ctx context.Context, leagueID int64) (*domain.League, error)
	ListLeaguesBySeason(ctx context.Context, seasonID int64) ([]domain.League, error)
	ListTeams(ctx context.Context, leagueID int64) ([]domain.Team, error)
	GetTeam(ctx context.Context, teamID int64) (*domain.Team, error)
	// GetDraftedTeamID resolves the team owning a player in a league.
	// Returns nil (not an error) when the player is undrafted there.
	GetDraftedTeamID(ctx context.Context, leagueID, playerID int64) (*int64, error)

	// Scoring event ledger
	// ReplaceEpisodeEvents deletes then reinserts the full event set for
	// (league, episode). Never patch the ledger incrementally; full
	// replacement is what keeps recalculation idempotent.
	ReplaceEpisodeEvents(ctx context.Context, leagueID, episodeID int64, events []domain.ScoringEvent) (int, error)
	AppendEvents(ctx context.Context, events []domain.ScoringEvent) error
	DeleteEpisodeEvents(ctx context.Context, leagueID, episodeID int64) error
	ListTeamEpisodeEvents(ctx context.Context, leagueID, episodeID, teamID int64) ([]domain.ScoringEvent, error)
	ListPlayerEvents(ctx context.Context, seasonID, playerID int64) ([]domain.ScoringEvent, error)

	// Predictions
	// ReplaceTeamPredictions swaps a team's full allocation for an episode.
	ReplaceTeamPredictions(ctx context.Context, leagueID, episodeID, teamID int64, predictions []domain.Prediction) error
	ListTeamPredictions(ctx context.Context, leagueID, episodeID, teamID int64) ([]domain.Prediction, error)
	LockPredictions(ctx context.Context, leagueID, episodeID int64, lockedAt time.Time) error
	// GradeVotePredictions sets points_earned on every locked prediction for
	// (league, episode): allocated points when the predicted player is in
	// votedOut, zero otherwise. Returns the predictions that earned points.
	GradeVotePredictions(ctx context.Context, leagueID, episodeID int64, votedOut []int64) ([]domain.Prediction, error)
	ZeroPredictionPoints(ctx context.Context, leagueID, episodeID int64) error

	// Title picks
	UpsertTitlePick(ctx context.Context, pick domain.TitlePick) error
	GetTitlePick(ctx context.Context, leagueID, episodeID, teamID int64) (*domain.TitlePick, error)
	// GradeTitlePicks marks each locked pick correct or incorrect against the
	// declared speaker (or the host sentinel) and assigns points to correct
	// picks. Returns the number of correct picks.
	GradeTitlePicks(ctx context.Context, leagueID, episodeID int64, speakerID *int64, speakerIsHost bool, points int) (int, error)
	ZeroTitlePickPoints(ctx context.Context, leagueID, episodeID int64) error

	// Season predictions
	// GradeSeasonPredictions grades every league's answers to a question in
	// one pass; the question has a single true answer platform-wide.
	GradeSeasonPredictions(ctx context.Context, seasonID int64, question, answer string, points int) (int64, error)

	// Episode team scores
	UpsertEpisodeScore(ctx context.Context, score domain.EpisodeTeamScore) error
	GetEpisodeScore(ctx context.Context, leagueID, episodeID, teamID int64) (*domain.EpisodeTeamScore, error)
	// ListEpisodeScores returns the episode's rows ordered by
	// cumulative_total DESC, team_id ASC - the rank order.
	ListEpisodeScores(ctx context.Context, leagueID, episodeID int64) ([]domain.EpisodeTeamScore, error)
	UpdateScoreRank(ctx context.Context, leagueID, episodeID, teamID int64, rank int) error
	ListLeagueScores(ctx context.Context, leagueID int64) ([]domain.EpisodeTeamScore, error)
	GetLeagueStandings(ctx context.Context, leagueID int64) ([]LeagueStanding, error)
}
