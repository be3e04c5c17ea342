// Package repo contains repository implementations (adapters) for data persistence.
// It implements the interfaces defined in core/ports using PostgreSQL via pgx.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"torchtally/src/core/domain"
	"torchtally/src/core/ports"
)

// PostgresRepository implements ports.LeagueRepository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-backed repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var _ ports.LeagueRepository = (*PostgresRepository)(nil)

// Health checks database connectivity.
func (r *PostgresRepository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// ---- Seasons & episodes ----

func (r *PostgresRepository) GetSeason(ctx context.Context, seasonID int64) (*domain.Season, error) {
	const q = `
		SELECT id, name, created_at
		FROM seasons
		WHERE id = $1`

	var s domain.Season
	err := r.pool.QueryRow(ctx, q, seasonID).Scan(&s.ID, &s.Name, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("season")
		}
		return nil, fmt.Errorf("failed to get season: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) GetEpisode(ctx context.Context, episodeID int64) (*domain.Episode, error) {
	const q = `
		SELECT id, season_id, episode_number, is_scored, is_merge, is_finale,
		       prediction_deadline, created_at
		FROM episodes
		WHERE id = $1`

	var e domain.Episode
	err := r.pool.QueryRow(ctx, q, episodeID).Scan(
		&e.ID, &e.SeasonID, &e.EpisodeNumber, &e.IsScored, &e.IsMerge,
		&e.IsFinale, &e.PredictionDeadline, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("episode")
		}
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}
	return &e, nil
}

func (r *PostgresRepository) ListScoredEpisodes(ctx context.Context, seasonID, includeEpisodeID int64) ([]domain.Episode, error) {
	const q = `
		SELECT id, season_id, episode_number, is_scored, is_merge, is_finale,
		       prediction_deadline, created_at
		FROM episodes
		WHERE season_id = $1 AND (is_scored OR id = $2)
		ORDER BY episode_number ASC`

	rows, err := r.pool.Query(ctx, q, seasonID, includeEpisodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scored episodes: %w", err)
	}
	defer rows.Close()

	var episodes []domain.Episode
	for rows.Next() {
		var e domain.Episode
		if err := rows.Scan(
			&e.ID, &e.SeasonID, &e.EpisodeNumber, &e.IsScored, &e.IsMerge,
			&e.IsFinale, &e.PredictionDeadline, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

func (r *PostgresRepository) SetEpisodeFlags(ctx context.Context, episodeID int64, isScored, isMerge, isFinale bool) error {
	const q = `
		UPDATE episodes
		SET is_scored = $2, is_merge = $3, is_finale = $4
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, q, episodeID, isScored, isMerge, isFinale)
	if err != nil {
		return fmt.Errorf("failed to update episode flags: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("episode")
	}
	return nil
}

// ---- Players ----

func (r *PostgresRepository) GetPlayer(ctx context.Context, playerID int64) (*domain.Player, error) {
	const q = `
		SELECT id, season_id, name, is_active, created_at
		FROM players
		WHERE id = $1`

	var p domain.Player
	err := r.pool.QueryRow(ctx, q, playerID).Scan(&p.ID, &p.SeasonID, &p.Name, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("player")
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) ListActivePlayers(ctx context.Context, seasonID int64) ([]domain.Player, error) {
	const q = `
		SELECT id, season_id, name, is_active, created_at
		FROM players
		WHERE season_id = $1 AND is_active
		ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, q, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.SeasonID, &p.Name, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *PostgresRepository) DeactivatePlayers(ctx context.Context, playerIDs []int64) (int64, error) {
	if len(playerIDs) == 0 {
		return 0, nil
	}

	const q = `
		UPDATE players
		SET is_active = FALSE
		WHERE id = ANY($1) AND is_active`

	tag, err := r.pool.Exec(ctx, q, playerIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate players: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ---- Leagues & teams ----

func (r *PostgresRepository) GetLeague(ctx context.Context, leagueID int64) (*domain.League, error) {
	const q = `
		SELECT id, season_id, name, draft_type, scoring_config, created_at
		FROM leagues
		WHERE id = $1`

	l, err := scanLeague(r.pool.QueryRow(ctx, q, leagueID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("league")
		}
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) ListLeaguesBySeason(ctx context.Context, seasonID int64) ([]domain.League, error) {
	const q = `
		SELECT id, season_id, name, draft_type, scoring_config, created_at
		FROM leagues
		WHERE season_id = $1
		ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, q, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	defer rows.Close()

	var leagues []domain.League
	for rows.Next() {
		l, err := scanLeague(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan league: %w", err)
		}
		leagues = append(leagues, *l)
	}
	return leagues, rows.Err()
}

// scanLeague scans a league row, decoding the scoring_config jsonb column.
func scanLeague(row pgx.Row) (*domain.League, error) {
	var (
		l   domain.League
		cfg []byte
	)
	if err := row.Scan(&l.ID, &l.SeasonID, &l.Name, &l.DraftType, &cfg, &l.CreatedAt); err != nil {
		return nil, err
	}
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &l.ScoringConfig); err != nil {
			return nil, fmt.Errorf("failed to decode scoring config: %w", err)
		}
	}
	return &l, nil
}

func (r *PostgresRepository) ListTeams(ctx context.Context, leagueID int64) ([]domain.Team, error) {
	const q = `
		SELECT id, league_id, name, owner_name, created_at
		FROM teams
		WHERE league_id = $1
		ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, q, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.LeagueID, &t.Name, &t.OwnerName, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *PostgresRepository) GetTeam(ctx context.Context, teamID int64) (*domain.Team, error) {
	const q = `
		SELECT id, league_id, name, owner_name, created_at
		FROM teams
		WHERE id = $1`

	var t domain.Team
	err := r.pool.QueryRow(ctx, q, teamID).Scan(&t.ID, &t.LeagueID, &t.Name, &t.OwnerName, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("team")
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &t, nil
}

func (r *PostgresRepository) GetDraftedTeamID(ctx context.Context, leagueID, playerID int64) (*int64, error) {
	const q = `
		SELECT team_id
		FROM draft_picks
		WHERE league_id = $1 AND player_id = $2`

	var teamID int64
	err := r.pool.QueryRow(ctx, q, leagueID, playerID).Scan(&teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // undrafted in this league
		}
		return nil, fmt.Errorf("failed to resolve drafted team: %w", err)
	}
	return &teamID, nil
}

// ---- Scoring event ledger ----

func (r *PostgresRepository) ReplaceEpisodeEvents(ctx context.Context, leagueID, episodeID int64, events []domain.ScoringEvent) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const del = `
		DELETE FROM scoring_events
		WHERE league_id = $1 AND episode_id = $2`

	if _, err := tx.Exec(ctx, del, leagueID, episodeID); err != nil {
		return 0, fmt.Errorf("failed to delete episode events: %w", err)
	}

	if err := insertEvents(ctx, tx, events); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(events), nil
}

func (r *PostgresRepository) AppendEvents(ctx context.Context, events []domain.ScoringEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertEvents(ctx, tx, events); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertEvents(ctx context.Context, tx pgx.Tx, events []domain.ScoringEvent) error {
	const ins = `
		INSERT INTO scoring_events (league_id, episode_id, player_id, team_id, category, points, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, e := range events {
		_, err := tx.Exec(ctx, ins, e.LeagueID, e.EpisodeID, e.PlayerID, e.TeamID, e.Category, e.Points, e.Note)
		if err != nil {
			return fmt.Errorf("failed to insert scoring event: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) DeleteEpisodeEvents(ctx context.Context, leagueID, episodeID int64) error {
	const q = `
		DELETE FROM scoring_events
		WHERE league_id = $1 AND episode_id = $2`

	if _, err := r.pool.Exec(ctx, q, leagueID, episodeID); err != nil {
		return fmt.Errorf("failed to delete episode events: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListTeamEpisodeEvents(ctx context.Context, leagueID, episodeID, teamID int64) ([]domain.ScoringEvent, error) {
	const q = `
		SELECT id, league_id, episode_id, player_id, team_id, category, points, note, created_at
		FROM scoring_events
		WHERE league_id = $1 AND episode_id = $2 AND team_id = $3
		ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, q, leagueID, episodeID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *PostgresRepository) ListPlayerEvents(ctx context.Context, seasonID, playerID int64) ([]domain.ScoringEvent, error) {
	const q = `
		SELECT se.id, se.league_id, se.episode_id, se.player_id, se.team_id,
		       se.category, se.points, se.note, se.created_at
		FROM scoring_events se
		JOIN leagues l ON l.id = se.league_id
		WHERE l.season_id = $1 AND se.player_id = $2
		ORDER BY se.id ASC`

	rows, err := r.pool.Query(ctx, q, seasonID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]domain.ScoringEvent, error) {
	var events []domain.ScoringEvent
	for rows.Next() {
		var e domain.ScoringEvent
		if err := rows.Scan(
			&e.ID, &e.LeagueID, &e.EpisodeID, &e.PlayerID, &e.TeamID,
			&e.Category, &e.Points, &e.Note, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scoring event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ---- Predictions ----

func (r *PostgresRepository) ReplaceTeamPredictions(ctx context.Context, leagueID, episodeID, teamID int64, predictions []domain.Prediction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const del = `
		DELETE FROM predictions
		WHERE league_id = $1 AND episode_id = $2 AND team_id = $3`

	if _, err := tx.Exec(ctx, del, leagueID, episodeID, teamID); err != nil {
		return fmt.Errorf("failed to delete team predictions: %w", err)
	}

	const ins = `
		INSERT INTO predictions (league_id, episode_id, team_id, player_id, points_allocated)
		VALUES ($1, $2, $3, $4, $5)`

	for _, p := range predictions {
		_, err := tx.Exec(ctx, ins, leagueID, episodeID, teamID, p.PlayerID, p.PointsAllocated)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.NewAlreadyExistsError("prediction")
			}
			return fmt.Errorf("failed to insert prediction: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListTeamPredictions(ctx context.Context, leagueID, episodeID, teamID int64) ([]domain.Prediction, error) {
	const q = `
		SELECT league_id, episode_id, team_id, player_id, points_allocated,
		       points_earned, locked_at, created_at, updated_at
		FROM predictions
		WHERE league_id = $1 AND episode_id = $2 AND team_id = $3
		ORDER BY player_id ASC`

	rows, err := r.pool.Query(ctx, q, leagueID, episodeID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team predictions: %w", err)
	}
	defer rows.Close()

	return scanPredictions(rows)
}

func (r *PostgresRepository) LockPredictions(ctx context.Context, leagueID, episodeID int64, lockedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const lockPredictions = `
		UPDATE predictions
		SET locked_at = $3, updated_at = now()
		WHERE league_id = $1 AND episode_id = $2 AND locked_at IS NULL`

	if _, err := tx.Exec(ctx, lockPredictions, leagueID, episodeID, lockedAt); err != nil {
		return fmt.Errorf("failed to lock predictions: %w", err)
	}

	const lockPicks = `
		UPDATE title_picks
		SET locked_at = $3, updated_at = now()
		WHERE league_id = $1 AND episode_id = $2 AND locked_at IS NULL`

	if _, err := tx.Exec(ctx, lockPicks, leagueID, episodeID, lockedAt); err != nil {
		return fmt.Errorf("failed to lock title picks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GradeVotePredictions(ctx context.Context, leagueID, episodeID int64, votedOut []int64) ([]domain.Prediction, error) {
	// Unlocked predictions never earn points; grading overwrites any previous
	// grade so re-scoring stays idempotent.
	const q = `
		UPDATE predictions
		SET points_earned = CASE
			WHEN locked_at IS NOT NULL AND player_id = ANY($3) THEN points_allocated
			ELSE 0
		END,
		updated_at = now()
		WHERE league_id = $1 AND episode_id = $2
		RETURNING league_id, episode_id, team_id, player_id, points_allocated,
		          points_earned, locked_at, created_at, updated_at`

	rows, err := r.pool.Query(ctx, q, leagueID, episodeID, votedOut)
	if err != nil {
		return nil, fmt.Errorf("failed to grade predictions: %w", err)
	}
	defer rows.Close()

	graded, err := scanPredictions(rows)
	if err != nil {
		return nil, err
	}

	var earned []domain.Prediction
	for _, p := range graded {
		if p.PointsEarned > 0 {
			earned = append(earned, p)
		}
	}
	return earned, nil
}

func (r *PostgresRepository) ZeroPredictionPoints(ctx context.Context, leagueID, episodeID int64) error {
	const q = `
		UPDATE predictions
		SET points_earned = 0, updated_at = now()
		WHERE league_id = $1 AND episode_id = $2`

	if _, err := r.pool.Exec(ctx, q, leagueID, episodeID); err != nil {
		return fmt.Errorf("failed to zero prediction points: %w", err)
	}
	return nil
}

func scanPredictions(rows pgx.Rows) ([]domain.Prediction, error) {
	var predictions []domain.Prediction
	for rows.Next() {
		var p domain.Prediction
		if err := rows.Scan(
			&p.LeagueID, &p.EpisodeID, &p.TeamID, &p.PlayerID, &p.PointsAllocated,
			&p.PointsEarned, &p.LockedAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// ---- Title picks ----

func (r *PostgresRepository) UpsertTitlePick(ctx context.Context, pick domain.TitlePick) error {
	const q = `
		INSERT INTO title_picks (league_id, episode_id, team_id, player_id, is_host_pick)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (league_id, episode_id, team_id)
		DO UPDATE SET player_id = EXCLUDED.player_id,
		              is_host_pick = EXCLUDED.is_host_pick,
		              updated_at = now()`

	_, err := r.pool.Exec(ctx, q, pick.LeagueID, pick.EpisodeID, pick.TeamID, pick.PlayerID, pick.IsHostPick)
	if err != nil {
		return fmt.Errorf("failed to upsert title pick: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetTitlePick(ctx context.Context, leagueID, episodeID, teamID int64) (*domain.TitlePick, error) {
	const q = `
		SELECT league_id, episode_id, team_id, player_id, is_host_pick,
		       points_earned, locked_at, created_at, updated_at
		FROM title_picks
		WHERE league_id = $1 AND episode_id = $2 AND team_id = $3`

	var p domain.TitlePick
	err := r.pool.QueryRow(ctx, q, leagueID, episodeID, teamID).Scan(
		&p.LeagueID, &p.EpisodeID, &p.TeamID, &p.PlayerID, &p.IsHostPick,
		&p.PointsEarned, &p.LockedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no pick submitted
		}
		return nil, fmt.Errorf("failed to get title pick: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) GradeTitlePicks(ctx context.Context, leagueID, episodeID int64, speakerID *int64, speakerIsHost bool, points int) (int, error) {
	const q = `
		UPDATE title_picks
		SET points_earned = CASE
			WHEN locked_at IS NOT NULL
			     AND ((is_host_pick AND $4) OR (NOT is_host_pick AND player_id = $3))
			THEN $5
			ELSE 0
		END,
		updated_at = now()
		WHERE league_id = $1 AND episode_id = $2
		RETURNING points_earned`

	rows, err := r.pool.Query(ctx, q, leagueID, episodeID, speakerID, speakerIsHost, points)
	if err != nil {
		return 0, fmt.Errorf("failed to grade title picks: %w", err)
	}
	defer rows.Close()

	correct := 0
	for rows.Next() {
		var earned int
		if err := rows.Scan(&earned); err != nil {
			return 0, fmt.Errorf("failed to scan title pick grade: %w", err)
		}
		if earned > 0 {
			correct++
		}
	}
	return correct, rows.Err()
}

func (r *PostgresRepository) ZeroTitlePickPoints(ctx context.Context, leagueID, episodeID int64) error {
	const q = `
		UPDATE title_picks
		SET points_earned = 0, updated_at = now()
		WHERE league_id = $1 AND episode_id = $2`

	if _, err := r.pool.Exec(ctx, q, leagueID, episodeID); err != nil {
		return fmt.Errorf("failed to zero title pick points: %w", err)
	}
	return nil
}

// ---- Season predictions ----

func (r *PostgresRepository) GradeSeasonPredictions(ctx context.Context, seasonID int64, question, answer string, points int) (int64, error) {
	const q = `
		UPDATE season_predictions
		SET is_correct = (LOWER(answer) = LOWER($3)),
		    points_earned = CASE WHEN LOWER(answer) = LOWER($3) THEN $4 ELSE 0 END
		WHERE season_id = $1 AND question = $2
		RETURNING is_correct`

	rows, err := r.pool.Query(ctx, q, seasonID, question, answer, points)
	if err != nil {
		return 0, fmt.Errorf("failed to grade season predictions: %w", err)
	}
	defer rows.Close()

	var correct int64
	for rows.Next() {
		var isCorrect bool
		if err := rows.Scan(&isCorrect); err != nil {
			return 0, fmt.Errorf("failed to scan season prediction grade: %w", err)
		}
		if isCorrect {
			correct++
		}
	}
	return correct, rows.Err()
}

// ---- Episode team scores ----

func (r *PostgresRepository) UpsertEpisodeScore(ctx context.Context, score domain.EpisodeTeamScore) error {
	const q = `
		INSERT INTO episode_team_scores (
			league_id, episode_id, team_id,
			challenge_points, milestone_points, prediction_points,
			total_points, cumulative_total
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (league_id, episode_id, team_id)
		DO UPDATE SET challenge_points = EXCLUDED.challenge_points,
		              milestone_points = EXCLUDED.milestone_points,
		              prediction_points = EXCLUDED.prediction_points,
		              total_points = EXCLUDED.total_points,
		              cumulative_total = EXCLUDED.cumulative_total,
		              updated_at = now()`

	_, err := r.pool.Exec(ctx, q,
		score.LeagueID, score.EpisodeID, score.TeamID,
		score.ChallengePoints, score.MilestonePoints, score.PredictionPoints,
		score.TotalPoints, score.CumulativeTotal,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert episode score: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetEpisodeScore(ctx context.Context, leagueID, episodeID, teamID int64) (*domain.EpisodeTeamScore, error) {
	const q = `
		SELECT league_id, episode_id, team_id, challenge_points, milestone_points,
		       prediction_points, total_points, cumulative_total, rank, updated_at
		FROM episode_team_scores
		WHERE league_id = $1 AND episode_id = $2 AND team_id = $3`

	var s domain.EpisodeTeamScore
	err := r.pool.QueryRow(ctx, q, leagueID, episodeID, teamID).Scan(
		&s.LeagueID, &s.EpisodeID, &s.TeamID, &s.ChallengePoints, &s.MilestonePoints,
		&s.PredictionPoints, &s.TotalPoints, &s.CumulativeTotal, &s.Rank, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("episode score")
		}
		return nil, fmt.Errorf("failed to get episode score: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) ListEpisodeScores(ctx context.Context, leagueID, episodeID int64) ([]domain.EpisodeTeamScore, error) {
	const q = `
		SELECT league_id, episode_id, team_id, challenge_points, milestone_points,
		       prediction_points, total_points, cumulative_total, rank, updated_at
		FROM episode_team_scores
		WHERE league_id = $1 AND episode_id = $2
		ORDER BY cumulative_total DESC, team_id ASC`

	rows, err := r.pool.Query(ctx, q, leagueID, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list episode scores: %w", err)
	}
	defer rows.Close()

	return scanScores(rows)
}

func (r *PostgresRepository) UpdateScoreRank(ctx context.Context, leagueID, episodeID, teamID int64, rank int) error {
	const q = `
		UPDATE episode_team_scores
		SET rank = $4
		WHERE league_id = $1 AND episode_id = $2 AND team_id = $3`

	if _, err := r.pool.Exec(ctx, q, leagueID, episodeID, teamID, rank); err != nil {
		return fmt.Errorf("failed to update score rank: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListLeagueScores(ctx context.Context, leagueID int64) ([]domain.EpisodeTeamScore, error) {
	const q = `
		SELECT s.league_id, s.episode_id, s.team_id, s.challenge_points, s.milestone_points,
		       s.prediction_points, s.total_points, s.cumulative_total, s.rank, s.updated_at
		FROM episode_team_scores s
		JOIN episodes e ON e.id = s.episode_id
		WHERE s.league_id = $1
		ORDER BY e.episode_number ASC, s.team_id ASC`

	rows, err := r.pool.Query(ctx, q, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list league scores: %w", err)
	}
	defer rows.Close()

	return scanScores(rows)
}

func scanScores(rows pgx.Rows) ([]domain.EpisodeTeamScore, error) {
	var scores []domain.EpisodeTeamScore
	for rows.Next() {
		var s domain.EpisodeTeamScore
		if err := rows.Scan(
			&s.LeagueID, &s.EpisodeID, &s.TeamID, &s.ChallengePoints, &s.MilestonePoints,
			&s.PredictionPoints, &s.TotalPoints, &s.CumulativeTotal, &s.Rank, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan episode score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *PostgresRepository) GetLeagueStandings(ctx context.Context, leagueID int64) ([]ports.LeagueStanding, error) {
	const q = `
		SELECT t.id, t.league_id, t.name, t.owner_name, t.created_at,
		       e.id, e.episode_number, s.cumulative_total, s.rank
		FROM episode_team_scores s
		JOIN teams t ON t.id = s.team_id
		JOIN episodes e ON e.id = s.episode_id
		WHERE s.league_id = $1
		  AND s.episode_id = (
			SELECT s2.episode_id
			FROM episode_team_scores s2
			JOIN episodes e2 ON e2.id = s2.episode_id
			WHERE s2.league_id = $1
			ORDER BY e2.episode_number DESC
			LIMIT 1
		  )
		ORDER BY s.rank ASC, t.id ASC`

	rows, err := r.pool.Query(ctx, q, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to get league standings: %w", err)
	}
	defer rows.Close()

	var standings []ports.LeagueStanding
	for rows.Next() {
		var st ports.LeagueStanding
		if err := rows.Scan(
			&st.Team.ID, &st.Team.LeagueID, &st.Team.Name, &st.Team.OwnerName, &st.Team.CreatedAt,
			&st.EpisodeID, &st.EpisodeNumber, &st.CumulativeTotal, &st.Rank,
		); err != nil {
			return nil, fmt.Errorf("failed to scan league standing: %w", err)
		}
		standings = append(standings, st)
	}
	return standings, rows.Err()
}
