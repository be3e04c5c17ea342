package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"torchtally/src/core/domain"
	"torchtally/src/core/ports"
)

// fakeRepo is an in-memory ports.LeagueRepository mirroring the SQL adapter's
// semantics closely enough to exercise the scoring engine end to end.
type fakeRepo struct {
	seasons  map[int64]*domain.Season
	episodes map[int64]*domain.Episode
	players  map[int64]*domain.Player
	leagues  map[int64]*domain.League
	teams    map[int64]*domain.Team
	drafts   map[int64]map[int64]int64 // league -> player -> team

	events      []domain.ScoringEvent
	nextEventID int64

	predictions []*domain.Prediction
	titlePicks  []*domain.TitlePick
	seasonPreds []*domain.SeasonPrediction
	scores      map[[3]int64]*domain.EpisodeTeamScore

	// failReplaceForLeague makes ReplaceEpisodeEvents fail for one league,
	// to exercise the fan-out's continue-on-error path.
	failReplaceForLeague int64
}

var _ ports.LeagueRepository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		seasons:  make(map[int64]*domain.Season),
		episodes: make(map[int64]*domain.Episode),
		players:  make(map[int64]*domain.Player),
		leagues:  make(map[int64]*domain.League),
		teams:    make(map[int64]*domain.Team),
		drafts:   make(map[int64]map[int64]int64),
		scores:   make(map[[3]int64]*domain.EpisodeTeamScore),
	}
}

func (f *fakeRepo) addSeason(id int64, name string) {
	f.seasons[id] = &domain.Season{ID: id, Name: name}
}

func (f *fakeRepo) addEpisode(id, seasonID int64, number int) *domain.Episode {
	e := &domain.Episode{ID: id, SeasonID: seasonID, EpisodeNumber: number}
	f.episodes[id] = e
	return e
}

func (f *fakeRepo) addPlayer(id, seasonID int64, name string) {
	f.players[id] = &domain.Player{ID: id, SeasonID: seasonID, Name: name, IsActive: true}
}

func (f *fakeRepo) addLeague(id, seasonID int64, name string, config map[domain.Category]int) {
	f.leagues[id] = &domain.League{ID: id, SeasonID: seasonID, Name: name, DraftType: domain.DraftSnake, ScoringConfig: config}
}

func (f *fakeRepo) addTeam(id, leagueID int64, name string) {
	f.teams[id] = &domain.Team{ID: id, LeagueID: leagueID, Name: name}
}

func (f *fakeRepo) draft(leagueID, teamID, playerID int64) {
	if f.drafts[leagueID] == nil {
		f.drafts[leagueID] = make(map[int64]int64)
	}
	f.drafts[leagueID][playerID] = teamID
}

func (f *fakeRepo) Health(ctx context.Context) error { return nil }

func (f *fakeRepo) GetSeason(ctx context.Context, seasonID int64) (*domain.Season, error) {
	s, ok := f.seasons[seasonID]
	if !ok {
		return nil, domain.NewNotFoundError("season")
	}
	out := *s
	return &out, nil
}

func (f *fakeRepo) GetEpisode(ctx context.Context, episodeID int64) (*domain.Episode, error) {
	e, ok := f.episodes[episodeID]
	if !ok {
		return nil, domain.NewNotFoundError("episode")
	}
	out := *e
	return &out, nil
}

func (f *fakeRepo) ListScoredEpisodes(ctx context.Context, seasonID, includeEpisodeID int64) ([]domain.Episode, error) {
	var out []domain.Episode
	for _, e := range f.episodes {
		if e.SeasonID == seasonID && (e.IsScored || e.ID == includeEpisodeID) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EpisodeNumber < out[j].EpisodeNumber })
	return out, nil
}

func (f *fakeRepo) SetEpisodeFlags(ctx context.Context, episodeID int64, isScored, isMerge, isFinale bool) error {
	e, ok := f.episodes[episodeID]
	if !ok {
		return domain.NewNotFoundError("episode")
	}
	e.IsScored, e.IsMerge, e.IsFinale = isScored, isMerge, isFinale
	return nil
}

func (f *fakeRepo) GetPlayer(ctx context.Context, playerID int64) (*domain.Player, error) {
	p, ok := f.players[playerID]
	if !ok {
		return nil, domain.NewNotFoundError("player")
	}
	out := *p
	return &out, nil
}

func (f *fakeRepo) ListActivePlayers(ctx context.Context, seasonID int64) ([]domain.Player, error) {
	var out []domain.Player
	for _, p := range f.players {
		if p.SeasonID == seasonID && p.IsActive {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) DeactivatePlayers(ctx context.Context, playerIDs []int64) (int64, error) {
	var n int64
	for _, id := range playerIDs {
		if p, ok := f.players[id]; ok && p.IsActive {
			p.IsActive = false
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) GetLeague(ctx context.Context, leagueID int64) (*domain.League, error) {
	l, ok := f.leagues[leagueID]
	if !ok {
		return nil, domain.NewNotFoundError("league")
	}
	out := *l
	return &out, nil
}

func (f *fakeRepo) ListLeaguesBySeason(ctx context.Context, seasonID int64) ([]domain.League, error) {
	var out []domain.League
	for _, l := range f.leagues {
		if l.SeasonID == seasonID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) ListTeams(ctx context.Context, leagueID int64) ([]domain.Team, error) {
	var out []domain.Team
	for _, t := range f.teams {
		if t.LeagueID == leagueID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) GetTeam(ctx context.Context, teamID int64) (*domain.Team, error) {
	t, ok := f.teams[teamID]
	if !ok {
		return nil, domain.NewNotFoundError("team")
	}
	out := *t
	return &out, nil
}

func (f *fakeRepo) GetDraftedTeamID(ctx context.Context, leagueID, playerID int64) (*int64, error) {
	if teamID, ok := f.drafts[leagueID][playerID]; ok {
		return &teamID, nil
	}
	return nil, nil
}

func (f *fakeRepo) ReplaceEpisodeEvents(ctx context.Context, leagueID, episodeID int64, events []domain.ScoringEvent) (int, error) {
	if f.failReplaceForLeague != 0 && leagueID == f.failReplaceForLeague {
		return 0, fmt.Errorf("simulated storage failure for league %d", leagueID)
	}
	if err := f.DeleteEpisodeEvents(ctx, leagueID, episodeID); err != nil {
		return 0, err
	}
	if err := f.AppendEvents(ctx, events); err != nil {
		return 0, err
	}
	return len(events), nil
}

func (f *fakeRepo) AppendEvents(ctx context.Context, events []domain.ScoringEvent) error {
	for _, e := range events {
		f.nextEventID++
		e.ID = f.nextEventID
		f.events = append(f.events, e)
	}
	return nil
}

func (f *fakeRepo) DeleteEpisodeEvents(ctx context.Context, leagueID, episodeID int64) error {
	kept := f.events[:0]
	for _, e := range f.events {
		if e.LeagueID == leagueID && e.EpisodeID == episodeID {
			continue
		}
		kept = append(kept, e)
	}
	f.events = kept
	return nil
}

func (f *fakeRepo) ListTeamEpisodeEvents(ctx context.Context, leagueID, episodeID, teamID int64) ([]domain.ScoringEvent, error) {
	var out []domain.ScoringEvent
	for _, e := range f.events {
		if e.LeagueID == leagueID && e.EpisodeID == episodeID && e.TeamID != nil && *e.TeamID == teamID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListPlayerEvents(ctx context.Context, seasonID, playerID int64) ([]domain.ScoringEvent, error) {
	var out []domain.ScoringEvent
	for _, e := range f.events {
		if e.PlayerID != playerID {
			continue
		}
		if l, ok := f.leagues[e.LeagueID]; ok && l.SeasonID == seasonID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) ReplaceTeamPredictions(ctx context.Context, leagueID, episodeID, teamID int64, predictions []domain.Prediction) error {
	kept := f.predictions[:0]
	for _, p := range f.predictions {
		if p.LeagueID == leagueID && p.EpisodeID == episodeID && p.TeamID == teamID {
			continue
		}
		kept = append(kept, p)
	}
	f.predictions = kept
	for _, p := range predictions {
		cp := p
		f.predictions = append(f.predictions, &cp)
	}
	return nil
}

func (f *fakeRepo) ListTeamPredictions(ctx context.Context, leagueID, episodeID, teamID int64) ([]domain.Prediction, error) {
	var out []domain.Prediction
	for _, p := range f.predictions {
		if p.LeagueID == leagueID && p.EpisodeID == episodeID && p.TeamID == teamID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (f *fakeRepo) LockPredictions(ctx context.Context, leagueID, episodeID int64, lockedAt time.Time) error {
	for _, p := range f.predictions {
		if p.LeagueID == leagueID && p.EpisodeID == episodeID && p.LockedAt == nil {
			at := lockedAt
			p.LockedAt = &at
		}
	}
	for _, p := range f.titlePicks {
		if p.LeagueID == leagueID && p.EpisodeID == episodeID && p.LockedAt == nil {
			at := lockedAt
			p.LockedAt = &at
		}
	}
	return nil
}

func (f *fakeRepo) GradeVotePredictions(ctx context.Context, leagueID, episodeID int64, votedOut []int64) ([]domain.Prediction, error) {
	out := make(map[int64]bool, len(votedOut))
	for _, id := range votedOut {
		out[id] = true
	}
	var earned []domain.Prediction
	for _, p := range f.predictions {
		if p.LeagueID != leagueID || p.EpisodeID != episodeID {
			continue
		}
		if p.LockedAt != nil && out[p.PlayerID] {
			p.PointsEarned = p.PointsAllocated
			earned = append(earned, *p)
		} else {
			p.PointsEarned = 0
		}
	}
	return earned, nil
}

func (f *fakeRepo) ZeroPredictionPoints(ctx context.Context, leagueID, episodeID int64) error {
	for _, p := range f.predictions {
		if p.LeagueID == leagueID && p.EpisodeID == episodeID {
			p.PointsEarned = 0
		}
	}
	return nil
}

func (f *fakeRepo) UpsertTitlePick(ctx context.Context, pick domain.TitlePick) error {
	for _, p := range f.titlePicks {
		if p.LeagueID == pick.LeagueID && p.EpisodeID == pick.EpisodeID && p.TeamID == pick.TeamID {
			p.PlayerID = pick.PlayerID
			p.IsHostPick = pick.IsHostPick
			return nil
		}
	}
	cp := pick
	f.titlePicks = append(f.titlePicks, &cp)
	return nil
}

func (f *fakeRepo) GetTitlePick(ctx context.Context, leagueID, episodeID, teamID int64) (*domain.TitlePick, error) {
	for _, p := range f.titlePicks {
		if p.LeagueID == leagueID && p.EpisodeID == episodeID && p.TeamID == teamID {
			out := *p
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GradeTitlePicks(ctx context.Context, leagueID, episodeID int64, speakerID *int64, speakerIsHost bool, points int) (int, error) {
	correct := 0
	for _, p := range f.titlePicks {
		if p.LeagueID != leagueID || p.EpisodeID != episodeID {
			continue
		}
		hit := false
		if p.LockedAt != nil {
			if p.IsHostPick {
				hit = speakerIsHost
			} else if p.PlayerID != nil && speakerID != nil {
				hit = *p.PlayerID == *speakerID
			}
		}
		if hit {
			p.PointsEarned = points
			correct++
		} else {
			p.PointsEarned = 0
		}
	}
	return correct, nil
}

func (f *fakeRepo) ZeroTitlePickPoints(ctx context.Context, leagueID, episodeID int64) error {
	for _, p := range f.titlePicks {
		if p.LeagueID == leagueID && p.EpisodeID == episodeID {
			p.PointsEarned = 0
		}
	}
	return nil
}

func (f *fakeRepo) GradeSeasonPredictions(ctx context.Context, seasonID int64, question, answer string, points int) (int64, error) {
	var correct int64
	for _, sp := range f.seasonPreds {
		if sp.SeasonID != seasonID || sp.Question != question {
			continue
		}
		hit := strings.EqualFold(sp.Answer, answer)
		sp.IsCorrect = &hit
		if hit {
			sp.PointsEarned = points
			correct++
		} else {
			sp.PointsEarned = 0
		}
	}
	return correct, nil
}

func (f *fakeRepo) UpsertEpisodeScore(ctx context.Context, score domain.EpisodeTeamScore) error {
	key := [3]int64{score.LeagueID, score.EpisodeID, score.TeamID}
	if existing, ok := f.scores[key]; ok {
		score.Rank = existing.Rank
	}
	cp := score
	f.scores[key] = &cp
	return nil
}

func (f *fakeRepo) GetEpisodeScore(ctx context.Context, leagueID, episodeID, teamID int64) (*domain.EpisodeTeamScore, error) {
	s, ok := f.scores[[3]int64{leagueID, episodeID, teamID}]
	if !ok {
		return nil, domain.NewNotFoundError("episode score")
	}
	out := *s
	return &out, nil
}

func (f *fakeRepo) ListEpisodeScores(ctx context.Context, leagueID, episodeID int64) ([]domain.EpisodeTeamScore, error) {
	var out []domain.EpisodeTeamScore
	for _, s := range f.scores {
		if s.LeagueID == leagueID && s.EpisodeID == episodeID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CumulativeTotal != out[j].CumulativeTotal {
			return out[i].CumulativeTotal > out[j].CumulativeTotal
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

func (f *fakeRepo) UpdateScoreRank(ctx context.Context, leagueID, episodeID, teamID int64, rank int) error {
	if s, ok := f.scores[[3]int64{leagueID, episodeID, teamID}]; ok {
		s.Rank = rank
	}
	return nil
}

func (f *fakeRepo) ListLeagueScores(ctx context.Context, leagueID int64) ([]domain.EpisodeTeamScore, error) {
	var out []domain.EpisodeTeamScore
	for _, s := range f.scores {
		if s.LeagueID == leagueID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ei := f.episodes[out[i].EpisodeID].EpisodeNumber
		ej := f.episodes[out[j].EpisodeID].EpisodeNumber
		if ei != ej {
			return ei < ej
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

func (f *fakeRepo) GetLeagueStandings(ctx context.Context, leagueID int64) ([]ports.LeagueStanding, error) {
	var latest *domain.Episode
	for _, s := range f.scores {
		if s.LeagueID != leagueID {
			continue
		}
		e := f.episodes[s.EpisodeID]
		if latest == nil || e.EpisodeNumber > latest.EpisodeNumber {
			latest = e
		}
	}
	if latest == nil {
		return nil, nil
	}
	var out []ports.LeagueStanding
	for _, s := range f.scores {
		if s.LeagueID != leagueID || s.EpisodeID != latest.ID {
			continue
		}
		out = append(out, ports.LeagueStanding{
			Team:            *f.teams[s.TeamID],
			EpisodeID:       latest.ID,
			EpisodeNumber:   latest.EpisodeNumber,
			CumulativeTotal: s.CumulativeTotal,
			Rank:            s.Rank,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].Team.ID < out[j].Team.ID
	})
	return out, nil
}
