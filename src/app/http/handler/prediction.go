package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"torchtally/src/app/http/dto"
	"torchtally/src/app/http/response"
	"torchtally/src/app/middleware"
	"torchtally/src/core/usecase"
)

// PredictionHandler handles team prediction endpoints.
type PredictionHandler struct {
	predictionService *usecase.PredictionService
}

func NewPredictionHandler(predictionService *usecase.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService: predictionService}
}

// SubmitPredictions replaces a team's vote prediction allocation for an episode.
func (h *PredictionHandler) SubmitPredictions(c *gin.Context) {
	leagueID, episodeID, teamID, ok := parseLeagueEpisodeTeam(c)
	if !ok {
		return
	}

	var req dto.PredictionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", middleware.GetRequestID(c))
		return
	}

	allocations := make([]usecase.Allocation, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		allocations = append(allocations, usecase.Allocation{PlayerID: a.PlayerID, Points: a.Points})
	}

	predictions, err := h.predictionService.SubmitPredictions(c.Request.Context(), leagueID, episodeID, teamID, allocations)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"predictions": predictions})
}

// SubmitTitlePick sets a team's episode title pick.
func (h *PredictionHandler) SubmitTitlePick(c *gin.Context) {
	leagueID, episodeID, teamID, ok := parseLeagueEpisodeTeam(c)
	if !ok {
		return
	}

	var req dto.TitlePickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", middleware.GetRequestID(c))
		return
	}

	pick, err := h.predictionService.SubmitTitlePick(c.Request.Context(), leagueID, episodeID, teamID, req.PlayerID, req.IsHostPick)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"title_pick": pick})
}

// LockPredictions locks every team's predictions and title picks for an
// episode, typically at air time.
func (h *PredictionHandler) LockPredictions(c *gin.Context) {
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

	if err := h.predictionService.LockPredictions(c.Request.Context(), leagueID, episodeID); err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"league_id": leagueID, "episode_id": episodeID, "locked": true})
}

// parseLeagueEpisodeTeam parses the three path params shared by the per-team
// prediction routes. It writes the 400 response itself on failure.
func parseLeagueEpisodeTeam(c *gin.Context) (leagueID, episodeID, teamID int64, ok bool) {
	var err error
	leagueID, err = strconv.ParseInt(c.Param("league_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid league id", middleware.GetRequestID(c))
		return 0, 0, 0, false
	}
	episodeID, err = strconv.ParseInt(c.Param("episode_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid episode id", middleware.GetRequestID(c))
		return 0, 0, 0, false
	}
	teamID, err = strconv.ParseInt(c.Param("team_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid team id", middleware.GetRequestID(c))
		return 0, 0, 0, false
	}
	return leagueID, episodeID, teamID, true
}
