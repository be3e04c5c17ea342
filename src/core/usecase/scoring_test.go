package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torchtally/src/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func int64Ptr(v int64) *int64 { return &v }

// fixture builds a season with two episodes, one league of two teams, and a
// four-castaway draft:
//
//	team 1: Alice (100), Bob (101)
//	team 2: Carol (102), Dan (103)
func fixture() *fakeRepo {
	f := newFakeRepo()
	f.addSeason(1, "Season 48")
	f.addEpisode(10, 1, 1)
	f.addEpisode(11, 1, 2)
	f.addPlayer(100, 1, "Alice")
	f.addPlayer(101, 1, "Bob")
	f.addPlayer(102, 1, "Carol")
	f.addPlayer(103, 1, "Dan")
	f.addLeague(1, 1, "Office League", nil)
	f.addTeam(1, 1, "Torchbearers")
	f.addTeam(2, 1, "Snuffed")
	f.draft(1, 1, 100)
	f.draft(1, 1, 101)
	f.draft(1, 2, 102)
	f.draft(1, 2, 103)
	return f
}

func newScoringService(f *fakeRepo) *ScoringService {
	log := testLogger()
	return NewScoringService(f, NewRecalculator(f, log), log)
}

// lockTeamPrediction seeds an already-locked allocation directly in storage.
func lockTeamPrediction(f *fakeRepo, leagueID, episodeID, teamID, playerID int64, points int) {
	now := time.Now()
	cp := domain.Prediction{
		LeagueID:        leagueID,
		EpisodeID:       episodeID,
		TeamID:          teamID,
		PlayerID:        playerID,
		PointsAllocated: points,
		LockedAt:        &now,
	}
	f.predictions = append(f.predictions, &cp)
}

func TestScoreEpisode_GradesChallengesAndPredictions(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	svc := newScoringService(f)

	// Team 1 splits its budget: 6 on Carol, 4 on Dan.
	lockTeamPrediction(f, 1, 10, 1, 102, 6)
	lockTeamPrediction(f, 1, 10, 1, 103, 4)

	outcome := &domain.EpisodeOutcome{
		IndividualImmunityWinner: int64Ptr(100), // Alice, team 1
		VotedOutPlayers:          []int64{102},  // Carol goes home
	}

	result, err := svc.ScoreEpisode(ctx, 1, 10, outcome)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.LeagueID)
	assert.Equal(t, 2, result.EventsWritten) // immunity + prediction audit
	assert.Equal(t, 1, result.PredictionsScored)

	score, err := f.GetEpisodeScore(ctx, 1, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, score.ChallengePoints, "individual immunity default")
	assert.Equal(t, 6, score.PredictionPoints, "only the Carol slice pays out")
	assert.Equal(t, 9, score.TotalPoints)
	assert.Equal(t, 9, score.CumulativeTotal)
	assert.Equal(t, 1, score.Rank)

	other, err := f.GetEpisodeScore(ctx, 1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, other.TotalPoints)
	assert.Equal(t, 2, other.Rank)

	carol, err := f.GetPlayer(ctx, 102)
	require.NoError(t, err)
	assert.False(t, carol.IsActive, "voted-out player must be deactivated")

	episode, err := f.GetEpisode(ctx, 10)
	require.NoError(t, err)
	assert.True(t, episode.IsScored)
}

func TestScoreEpisode_TwoTeamSnakeLeague(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	f.addSeason(1, "Season 48")
	f.addEpisode(10, 1, 1)
	f.addPlayer(100, 1, "PlayerX")
	f.addPlayer(101, 1, "PlayerY")
	f.addLeague(1, 1, "League L", nil)
	f.addTeam(1, 1, "T1")
	f.addTeam(2, 1, "T2")
	f.draft(1, 1, 100)
	f.draft(1, 2, 101)
	svc := newScoringService(f)

	// T1 bets everything on PlayerY going home; T2 bets on PlayerX.
	lockTeamPrediction(f, 1, 10, 1, 101, 10)
	lockTeamPrediction(f, 1, 10, 2, 100, 10)

	outcome := &domain.EpisodeOutcome{
		TribeImmunityWinners: []int64{100},
		VotedOutPlayers:      []int64{101},
	}
	_, err := svc.ScoreEpisode(ctx, 1, 10, outcome)
	require.NoError(t, err)

	t1, err := f.GetEpisodeScore(ctx, 1, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, t1.ChallengePoints)
	assert.Equal(t, 10, t1.PredictionPoints)
	assert.Equal(t, 11, t1.TotalPoints)
	assert.Equal(t, 1, t1.Rank)

	t2, err := f.GetEpisodeScore(ctx, 1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, t2.ChallengePoints)
	assert.Equal(t, 0, t2.PredictionPoints)
	assert.Equal(t, 0, t2.TotalPoints)
	assert.Equal(t, 2, t2.Rank)
}

func TestScoreEpisode_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	svc := newScoringService(f)
	lockTeamPrediction(f, 1, 10, 1, 102, 6)

	outcome := &domain.EpisodeOutcome{
		IndividualImmunityWinner: int64Ptr(100),
		VotedOutPlayers:          []int64{102},
	}

	first, err := svc.ScoreEpisode(ctx, 1, 10, outcome)
	require.NoError(t, err)
	second, err := svc.ScoreEpisode(ctx, 1, 10, outcome)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// The ledger must hold exactly one scoring pass worth of rows.
	assert.Len(t, f.events, 2)

	score, err := f.GetEpisodeScore(ctx, 1, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, score.TotalPoints)
	assert.Equal(t, 9, score.CumulativeTotal)
}

func TestScoreEpisode_UndraftedPlayerScoresNoTeam(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	f.addPlayer(104, 1, "Eve") // never drafted
	svc := newScoringService(f)

	outcome := &domain.EpisodeOutcome{IndividualRewardWinner: int64Ptr(104)}

	result, err := svc.ScoreEpisode(ctx, 1, 10, outcome)
	require.NoError(t, err)
	assert.Equal(t, 1, result.EventsWritten)

	require.Len(t, f.events, 1)
	assert.Nil(t, f.events[0].TeamID)

	// The award is visible on the player's stat line...
	events, err := f.ListPlayerEvents(ctx, 1, 104)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].Points)

	// ...but contributes to no team.
	for _, teamID := range []int64{1, 2} {
		score, err := f.GetEpisodeScore(ctx, 1, 10, teamID)
		require.NoError(t, err)
		assert.Equal(t, 0, score.TotalPoints)
	}
}

func TestScoreEpisode_MergeAwardsRemainingPlayers(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	svc := newScoringService(f)

	outcome := &domain.EpisodeOutcome{
		IsMerge:         true,
		VotedOutPlayers: []int64{103}, // Dan leaves at the merge vote
	}

	_, err := svc.ScoreEpisode(ctx, 1, 10, outcome)
	require.NoError(t, err)

	// Alice, Bob, and Carol made the merge; Dan did not.
	score1, err := f.GetEpisodeScore(ctx, 1, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, score1.MilestonePoints)

	score2, err := f.GetEpisodeScore(ctx, 1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, score2.MilestonePoints)

	episode, err := f.GetEpisode(ctx, 10)
	require.NoError(t, err)
	assert.True(t, episode.IsMerge)
}

func TestScoreEpisode_TitlePickHostSentinel(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	svc := newScoringService(f)

	now := time.Now()
	f.titlePicks = append(f.titlePicks,
		&domain.TitlePick{LeagueID: 1, EpisodeID: 10, TeamID: 1, IsHostPick: true, LockedAt: &now},
		&domain.TitlePick{LeagueID: 1, EpisodeID: 10, TeamID: 2, PlayerID: int64Ptr(100), LockedAt: &now},
	)

	outcome := &domain.EpisodeOutcome{TitleSpeakerIsHost: true}

	result, err := svc.ScoreEpisode(ctx, 1, 10, outcome)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TitlePicksCorrect)

	score1, err := f.GetEpisodeScore(ctx, 1, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, score1.PredictionPoints, "host pick pays the episode title value")

	score2, err := f.GetEpisodeScore(ctx, 1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, score2.PredictionPoints)
}

func TestScoreEpisode_OnlyLockedPredictionsEarn(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	svc := newScoringService(f)

	lockTeamPrediction(f, 1, 10, 1, 102, 10)
	// Team 2's identical bet is never locked.
	cp := domain.Prediction{LeagueID: 1, EpisodeID: 10, TeamID: 2, PlayerID: 102, PointsAllocated: 10}
	f.predictions = append(f.predictions, &cp)

	outcome := &domain.EpisodeOutcome{VotedOutPlayers: []int64{102}}
	result, err := svc.ScoreEpisode(ctx, 1, 10, outcome)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PredictionsScored)

	score1, err := f.GetEpisodeScore(ctx, 1, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, score1.PredictionPoints)

	score2, err := f.GetEpisodeScore(ctx, 1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, score2.PredictionPoints)
}

func TestScoreEpisode_WinnerGradesSeasonPredictions(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	svc := newScoringService(f)

	f.seasonPreds = append(f.seasonPreds,
		&domain.SeasonPrediction{ID: 1, SeasonID: 1, LeagueID: 1, TeamID: 1, Question: domain.SeasonPredictionWinnerQuestion, Answer: "alice"},
		&domain.SeasonPrediction{ID: 2, SeasonID: 1, LeagueID: 1, TeamID: 2, Question: domain.SeasonPredictionWinnerQuestion, Answer: "Dan"},
	)

	outcome := &domain.EpisodeOutcome{
		IsFinalThree:      true,
		FinalThreePlayers: []int64{100, 101, 102},
		WinnerPlayer:      int64Ptr(100), // Alice
		VotedOutPlayers:   []int64{101, 102},
	}

	_, err := svc.ScoreEpisode(ctx, 1, 11, outcome)
	require.NoError(t, err)

	// Answer matching is case-insensitive and graded platform-wide.
	require.NotNil(t, f.seasonPreds[0].IsCorrect)
	assert.True(t, *f.seasonPreds[0].IsCorrect)
	assert.Equal(t, 5, f.seasonPreds[0].PointsEarned)

	require.NotNil(t, f.seasonPreds[1].IsCorrect)
	assert.False(t, *f.seasonPreds[1].IsCorrect)
	assert.Equal(t, 0, f.seasonPreds[1].PointsEarned)
}

func TestScoreEpisode_SeasonMismatchRejected(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	f.addSeason(2, "Season 49")
	f.addEpisode(20, 2, 1)
	svc := newScoringService(f)

	_, err := svc.ScoreEpisode(ctx, 1, 20, &domain.EpisodeOutcome{})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestScoreEpisode_UnknownVotedOutPlayerRejected(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	svc := newScoringService(f)

	_, err := svc.ScoreEpisode(ctx, 1, 10, &domain.EpisodeOutcome{VotedOutPlayers: []int64{999}})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	// Nothing may have been written.
	assert.Empty(t, f.events)
}

func TestScoreEpisode_UnresolvedOutcomePlayersRejected(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	f.addSeason(2, "Season 49")
	f.addPlayer(200, 2, "Stranger")
	svc := newScoringService(f)

	t.Run("unknown tribe reward winner", func(t *testing.T) {
		_, err := svc.ScoreEpisode(ctx, 1, 10, &domain.EpisodeOutcome{TribeRewardWinners: []int64{999}})
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
		assert.Empty(t, f.events)
	})

	t.Run("unknown idol finder", func(t *testing.T) {
		_, err := svc.ScoreEpisode(ctx, 1, 10, &domain.EpisodeOutcome{IdolFinders: []int64{999}})
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
		assert.Empty(t, f.events)
	})

	t.Run("title speaker from another season", func(t *testing.T) {
		_, err := svc.ScoreEpisode(ctx, 1, 10, &domain.EpisodeOutcome{EpisodeTitleSpeaker: int64Ptr(200)})
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		assert.Empty(t, f.events)
	})

	t.Run("fan-out rejects before any league is touched", func(t *testing.T) {
		_, err := svc.ScoreEpisodeAllLeagues(ctx, 1, 10, &domain.EpisodeOutcome{AdvantageFinders: []int64{999}})
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
		assert.Empty(t, f.events)
	})
}

func TestScoreEpisodeAllLeagues_ConfigIsolation(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	f.addLeague(2, 1, "Rival League", map[domain.Category]int{domain.CategoryIndividualImmunity: 5})
	f.addTeam(3, 2, "Outsiders")
	f.draft(2, 3, 100)
	svc := newScoringService(f)

	outcome := &domain.EpisodeOutcome{IndividualImmunityWinner: int64Ptr(100)}

	result, err := svc.ScoreEpisodeAllLeagues(ctx, 1, 10, outcome)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Failed())
	assert.Len(t, result.Leagues, 2)

	// Same real event, different value per league config.
	score1, err := f.GetEpisodeScore(ctx, 1, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, score1.TotalPoints)

	score3, err := f.GetEpisodeScore(ctx, 2, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, score3.TotalPoints)
}

func TestScoreEpisodeAllLeagues_ContinuesPastFailingLeague(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	f.addLeague(2, 1, "Rival League", nil)
	f.addTeam(3, 2, "Outsiders")
	f.draft(2, 3, 100)
	f.failReplaceForLeague = 1
	svc := newScoringService(f)

	outcome := &domain.EpisodeOutcome{
		IndividualImmunityWinner: int64Ptr(100),
		VotedOutPlayers:          []int64{103},
	}

	result, err := svc.ScoreEpisodeAllLeagues(ctx, 1, 10, outcome)
	require.NoError(t, err)
	require.Len(t, result.Leagues, 2)
	assert.Equal(t, 1, result.Failed())

	var failed, succeeded *LeagueScoreStatus
	for i := range result.Leagues {
		if result.Leagues[i].Err != nil {
			failed = &result.Leagues[i]
		} else {
			succeeded = &result.Leagues[i]
		}
	}
	require.NotNil(t, failed)
	require.NotNil(t, succeeded)
	assert.Equal(t, int64(1), failed.LeagueID)
	assert.Equal(t, int64(2), succeeded.LeagueID)

	// The healthy league's scores landed.
	score3, err := f.GetEpisodeScore(ctx, 2, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, score3.TotalPoints)

	// Season-wide side effects still applied exactly once.
	assert.Equal(t, int64(1), result.PlayersDeactivated)
	dan, err := f.GetPlayer(ctx, 103)
	require.NoError(t, err)
	assert.False(t, dan.IsActive)
}

func TestResetEpisode_ReversesScoring(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	svc := newScoringService(f)
	lockTeamPrediction(f, 1, 10, 1, 102, 6)

	outcome := &domain.EpisodeOutcome{
		IndividualImmunityWinner: int64Ptr(100),
		VotedOutPlayers:          []int64{102},
	}
	_, err := svc.ScoreEpisode(ctx, 1, 10, outcome)
	require.NoError(t, err)

	require.NoError(t, svc.ResetEpisode(ctx, 1, 10))

	assert.Empty(t, f.events)

	score, err := f.GetEpisodeScore(ctx, 1, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, score.TotalPoints)
	assert.Equal(t, 0, score.CumulativeTotal)
	assert.Equal(t, 0, score.PredictionPoints)

	episode, err := f.GetEpisode(ctx, 10)
	require.NoError(t, err)
	assert.False(t, episode.IsScored)

	// Reset does not resurrect voted-out players.
	carol, err := f.GetPlayer(ctx, 102)
	require.NoError(t, err)
	assert.False(t, carol.IsActive)
}

func TestResetEpisode_CascadesIntoCumulatives(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	svc := newScoringService(f)

	ep1 := &domain.EpisodeOutcome{IndividualImmunityWinner: int64Ptr(100)}
	ep2 := &domain.EpisodeOutcome{IndividualRewardWinner: int64Ptr(100)}

	_, err := svc.ScoreEpisode(ctx, 1, 10, ep1)
	require.NoError(t, err)
	_, err = svc.ScoreEpisode(ctx, 1, 11, ep2)
	require.NoError(t, err)

	before, err := f.GetEpisodeScore(ctx, 1, 11, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, before.CumulativeTotal) // 3 + 2

	require.NoError(t, svc.ResetEpisode(ctx, 1, 11))

	// Episode one is untouched, episode two collapses to the prior running total.
	first, err := f.GetEpisodeScore(ctx, 1, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, first.CumulativeTotal)

	second, err := f.GetEpisodeScore(ctx, 1, 11, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, second.TotalPoints)
	assert.Equal(t, 3, second.CumulativeTotal)
}

func TestGradeSeasonPrediction(t *testing.T) {
	ctx := context.Background()
	f := fixture()
	svc := newScoringService(f)

	f.seasonPreds = append(f.seasonPreds,
		&domain.SeasonPrediction{ID: 1, SeasonID: 1, LeagueID: 1, TeamID: 1, Question: "first_boot", Answer: "DAN"},
		&domain.SeasonPrediction{ID: 2, SeasonID: 1, LeagueID: 1, TeamID: 2, Question: "first_boot", Answer: "Carol"},
	)

	correct, err := svc.GradeSeasonPrediction(ctx, 1, "first_boot", "dan")
	require.NoError(t, err)
	assert.Equal(t, int64(1), correct)
	assert.Equal(t, 5, f.seasonPreds[0].PointsEarned)
	assert.Equal(t, 0, f.seasonPreds[1].PointsEarned)

	_, err = svc.GradeSeasonPrediction(ctx, 1, "", "dan")
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}
