package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"torchtally/src/app/http/response"
	"torchtally/src/app/middleware"
	"torchtally/src/core/usecase"
)

// StandingsHandler handles read-only score and standings endpoints.
type StandingsHandler struct {
	standingsService *usecase.StandingsService
}

func NewStandingsHandler(standingsService *usecase.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: standingsService}
}

// Standings returns the league's current leaderboard.
func (h *StandingsHandler) Standings(c *gin.Context) {
	leagueID, err := strconv.ParseInt(c.Param("league_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid league id", middleware.GetRequestID(c))
		return
	}

	standings, err := h.standingsService.Standings(c.Request.Context(), leagueID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"standings": standings})
}

// EpisodeLeaderboard returns the ranked score rows for one episode.
func (h *StandingsHandler) EpisodeLeaderboard(c *gin.Context) {
	leagueID, err := strconv.ParseInt(c.Param("league_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid league id", middleware.GetRequestID(c))
		return
	}
	episodeID, err := strconv.ParseInt(c.Param("episode_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid episode id", middleware.GetRequestID(c))
		return
	}

	scores, err := h.standingsService.EpisodeLeaderboard(c.Request.Context(), leagueID, episodeID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"scores": scores})
}

// TeamEpisodeScore returns one team's score breakdown for one episode.
func (h *StandingsHandler) TeamEpisodeScore(c *gin.Context) {
	leagueID, episodeID, teamID, ok := parseLeagueEpisodeTeam(c)
	if !ok {
		return
	}

	score, err := h.standingsService.TeamEpisodeScore(c.Request.Context(), leagueID, episodeID, teamID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"score": score})
}

// History returns every score row for a league across all scored episodes.
func (h *StandingsHandler) History(c *gin.Context) {
	leagueID, err := strconv.ParseInt(c.Param("league_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid league id", middleware.GetRequestID(c))
		return
	}

	scores, err := h.standingsService.History(c.Request.Context(), leagueID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"scores": scores})
}

// PlayerEvents returns a castaway's full event history across the season's
// leagues.
func (h *StandingsHandler) PlayerEvents(c *gin.Context) {
	seasonID, err := strconv.ParseInt(c.Param("season_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid season id", middleware.GetRequestID(c))
		return
	}
	playerID, err := strconv.ParseInt(c.Param("player_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid player id", middleware.GetRequestID(c))
		return
	}

	events, err := h.standingsService.PlayerEvents(c.Request.Context(), seasonID, playerID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"events": events})
}
