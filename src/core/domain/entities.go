package domain

import "time"

// DraftType determines how a league assigns castaways to teams.
type DraftType string

const (
	DraftSnake   DraftType = "SNAKE"
	DraftAuction DraftType = "AUCTION"
)

// Season represents a real-world competition instance.
type Season struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Episode is one real-world event unit within a season. It can be scored at
// most once at a time, and reset and re-scored. IsScored is the lock gate for
// downstream prediction locking.
type Episode struct {
	ID                 int64      `json:"id"`
	SeasonID           int64      `json:"season_id"`
	EpisodeNumber      int        `json:"episode_number"`
	IsScored           bool       `json:"is_scored"`
	IsMerge            bool       `json:"is_merge"`
	IsFinale           bool       `json:"is_finale"`
	PredictionDeadline *time.Time `json:"prediction_deadline,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Player represents a castaway. IsActive flips to false once the player is
// voted out; this is season-wide state shared by every league.
type Player struct {
	ID        int64     `json:"id"`
	SeasonID  int64     `json:"season_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// League is a fantasy competition instance bound to one season.
// ScoringConfig is a sparse override map; absent categories fall back to the
// platform default table.
type League struct {
	ID            int64            `json:"id"`
	SeasonID      int64            `json:"season_id"`
	Name          string           `json:"name"`
	DraftType     DraftType        `json:"draft_type"`
	ScoringConfig map[Category]int `json:"scoring_config,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Team is a drafted fantasy roster within a league.
type Team struct {
	ID        int64     `json:"id"`
	LeagueID  int64     `json:"league_id"`
	Name      string    `json:"name"`
	OwnerName *string   `json:"owner_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DraftPick links a player to the team that drafted them.
// Unique per (league, player).
type DraftPick struct {
	LeagueID  int64     `json:"league_id"`
	TeamID    int64     `json:"team_id"`
	PlayerID  int64     `json:"player_id"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoringEvent is the atomic fact in the ledger: a point award to a player
// within a league and episode. TeamID is resolved from the draft pick at
// write time; undrafted players keep a nil TeamID and the event contributes
// to no team's score.
type ScoringEvent struct {
	ID        int64     `json:"id"`
	LeagueID  int64     `json:"league_id"`
	EpisodeID int64     `json:"episode_id"`
	PlayerID  int64     `json:"player_id"`
	TeamID    *int64    `json:"team_id,omitempty"`
	Category  Category  `json:"category"`
	Points    int       `json:"points"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Prediction is a team's pre-episode allocation bet on which player will be
// voted out. LockedAt gates visibility to other teams and eligibility for
// scoring; editability is gated separately by the deadline and scored state.
type Prediction struct {
	LeagueID        int64      `json:"league_id"`
	EpisodeID       int64      `json:"episode_id"`
	TeamID          int64      `json:"team_id"`
	PlayerID        int64      `json:"player_id"`
	PointsAllocated int        `json:"points_allocated"`
	PointsEarned    int        `json:"points_earned"`
	LockedAt        *time.Time `json:"locked_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TitlePick is a team's single-valued bet on who will be credited as the
// source of the episode's title quote. IsHostPick marks a bet that the quote
// belongs to the host rather than a castaway.
type TitlePick struct {
	LeagueID     int64      `json:"league_id"`
	EpisodeID    int64      `json:"episode_id"`
	TeamID       int64      `json:"team_id"`
	PlayerID     *int64     `json:"player_id,omitempty"`
	IsHostPick   bool       `json:"is_host_pick"`
	PointsEarned int        `json:"points_earned"`
	LockedAt     *time.Time `json:"locked_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SeasonPrediction is a one-time pre-season bet, graded platform-wide since
// the underlying question has a single true answer across every league.
type SeasonPrediction struct {
	ID           int64     `json:"id"`
	SeasonID     int64     `json:"season_id"`
	LeagueID     int64     `json:"league_id"`
	TeamID       int64     `json:"team_id"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	IsCorrect    *bool     `json:"is_correct,omitempty"`
	PointsEarned int       `json:"points_earned"`
	CreatedAt    time.Time `json:"created_at"`
}

// EpisodeTeamScore is the materialized aggregate, one row per
// (league, episode, team). It is entirely derived from the ledger and the
// prediction tables and is recomputed in full on every recalculation, never
// hand-edited.
type EpisodeTeamScore struct {
	LeagueID         int64     `json:"league_id"`
	EpisodeID        int64     `json:"episode_id"`
	TeamID           int64     `json:"team_id"`
	ChallengePoints  int       `json:"challenge_points"`
	MilestonePoints  int       `json:"milestone_points"`
	PredictionPoints int       `json:"prediction_points"`
	TotalPoints      int       `json:"total_points"`
	CumulativeTotal  int       `json:"cumulative_total"`
	Rank             int       `json:"rank"`
	UpdatedAt        time.Time `json:"updated_at"`
}
