package usecase

import (
	"context"
	"log/slog"

	"torchtally/src/core/domain"
	"torchtally/src/core/ports"
)

// Recalculator recomputes every EpisodeTeamScore row for a league from first
// principles. All values are pure aggregates over the ledger and prediction
// tables, never incremented, so running it twice with an unchanged ledger is
// a no-op. No transaction wraps the recompute; a mid-loop failure leaves
// earlier upserts committed and the caller re-invokes to converge.
type Recalculator struct {
	repo ports.LeagueRepository
	log  *slog.Logger
}

func NewRecalculator(repo ports.LeagueRepository, log *slog.Logger) *Recalculator {
	return &Recalculator{repo: repo, log: log}
}

// Recalculate walks the league's scored episodes in episode_number order
// (always including targetEpisodeID, whose is_scored flag may not have
// flipped yet), recomputes each team's subtotals, episode total, and running
// cumulative, upserts the score rows, and finally assigns ranks for the
// target episode by cumulative_total DESC with team id as the tie-break.
func (r *Recalculator) Recalculate(ctx context.Context, leagueID, targetEpisodeID int64) error {
	league, err := r.repo.GetLeague(ctx, leagueID)
	if err != nil {
		return err
	}

	episodes, err := r.repo.ListScoredEpisodes(ctx, league.SeasonID, targetEpisodeID)
	if err != nil {
		return err
	}
	teams, err := r.repo.ListTeams(ctx, leagueID)
	if err != nil {
		return err
	}

	for _, team := range teams {
		cumulative := 0
		for _, ep := range episodes {
			score, err := r.computeEpisode(ctx, leagueID, ep.ID, team.ID)
			if err != nil {
				return err
			}
			cumulative += score.TotalPoints
			score.CumulativeTotal = cumulative
			if err := r.repo.UpsertEpisodeScore(ctx, *score); err != nil {
				return err
			}
		}
	}

	if targetEpisodeID == 0 {
		return nil
	}
	return r.assignRanks(ctx, leagueID, targetEpisodeID)
}

// computeEpisode builds one team's score row for one episode. Challenge and
// milestone subtotals come from classified ledger events; the prediction
// subtotal comes from Prediction.points_earned plus the title pick, never
// from the voted_out_prediction audit events (counting those too would
// double-score). Unclassified categories flow into the episode total only.
func (r *Recalculator) computeEpisode(ctx context.Context, leagueID, episodeID, teamID int64) (*domain.EpisodeTeamScore, error) {
	events, err := r.repo.ListTeamEpisodeEvents(ctx, leagueID, episodeID, teamID)
	if err != nil {
		return nil, err
	}

	var challenge, milestone, unclassified int
	for _, ev := range events {
		switch domain.Classify(ev.Category) {
		case domain.BucketChallenge:
			challenge += ev.Points
		case domain.BucketMilestone:
			milestone += ev.Points
		case domain.BucketPrediction:
			// Audit events; the prediction tables are the source of truth.
		default:
			unclassified += ev.Points
		}
	}

	predictions, err := r.repo.ListTeamPredictions(ctx, leagueID, episodeID, teamID)
	if err != nil {
		return nil, err
	}
	prediction := 0
	for _, p := range predictions {
		prediction += p.PointsEarned
	}
	pick, err := r.repo.GetTitlePick(ctx, leagueID, episodeID, teamID)
	if err != nil {
		return nil, err
	}
	if pick != nil {
		prediction += pick.PointsEarned
	}

	return &domain.EpisodeTeamScore{
		LeagueID:         leagueID,
		EpisodeID:        episodeID,
		TeamID:           teamID,
		ChallengePoints:  challenge,
		MilestonePoints:  milestone,
		PredictionPoints: prediction,
		TotalPoints:      challenge + milestone + prediction + unclassified,
	}, nil
}

func (r *Recalculator) assignRanks(ctx context.Context, leagueID, episodeID int64) error {
	rows, err := r.repo.ListEpisodeScores(ctx, leagueID, episodeID)
	if err != nil {
		return err
	}
	for i, row := range rows {
		if err := r.repo.UpdateScoreRank(ctx, leagueID, episodeID, row.TeamID, i+1); err != nil {
			return err
		}
	}
	return nil
}
