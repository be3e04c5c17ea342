package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"torchtally/src/app/http/dto"
	"torchtally/src/app/http/response"
	"torchtally/src/app/middleware"
	"torchtally/src/core/usecase"
)

// ScoringHandler handles commissioner scoring endpoints.
type ScoringHandler struct {
	scoringService *usecase.ScoringService
}

func NewScoringHandler(scoringService *usecase.ScoringService) *ScoringHandler {
	return &ScoringHandler{scoringService: scoringService}
}

// ScoreEpisode records an episode outcome for a single league.
func (h *ScoringHandler) ScoreEpisode(c *gin.Context) {
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

	var req dto.OutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", middleware.GetRequestID(c))
		return
	}

	result, err := h.scoringService.ScoreEpisode(c.Request.Context(), leagueID, episodeID, req.ToDomain())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"result": result})
}

// ScoreEpisodeAllLeagues records one outcome across every league in a season.
// A failing league does not stop the remaining leagues; partial failure is
// reported with a 207 and per-league statuses.
func (h *ScoringHandler) ScoreEpisodeAllLeagues(c *gin.Context) {
	seasonID, err := strconv.ParseInt(c.Param("season_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid season id", middleware.GetRequestID(c))
		return
	}
	episodeID, err := strconv.ParseInt(c.Param("episode_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid episode id", middleware.GetRequestID(c))
		return
	}

	var req dto.OutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", middleware.GetRequestID(c))
		return
	}

	result, err := h.scoringService.ScoreEpisodeAllLeagues(c.Request.Context(), seasonID, episodeID, req.ToDomain())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	leagues := make([]gin.H, 0, len(result.Leagues))
	for _, l := range result.Leagues {
		entry := gin.H{"league_id": l.LeagueID}
		if l.Err != nil {
			entry["error"] = l.Err.Error()
		} else {
			entry["result"] = l.Result
		}
		leagues = append(leagues, entry)
	}

	body := gin.H{
		"season_id":           result.SeasonID,
		"episode_id":          result.EpisodeID,
		"leagues":             leagues,
		"failed":              result.Failed(),
		"players_deactivated": result.PlayersDeactivated,
	}
	if result.Failed() > 0 {
		response.MultiStatus(c, body)
		return
	}
	response.OK(c, body)
}

// ResetEpisode wipes an episode's scoring for a league so it can be re-scored.
func (h *ScoringHandler) ResetEpisode(c *gin.Context) {
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

	if err := h.scoringService.ResetEpisode(c.Request.Context(), leagueID, episodeID); err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"league_id": leagueID, "episode_id": episodeID, "reset": true})
}

// GradeSeasonPredictions grades a pre-season question for every league at once.
func (h *ScoringHandler) GradeSeasonPredictions(c *gin.Context) {
	seasonID, err := strconv.ParseInt(c.Param("season_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid season id", middleware.GetRequestID(c))
		return
	}

	var req dto.SeasonPredictionGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", middleware.GetRequestID(c))
		return
	}

	correct, err := h.scoringService.GradeSeasonPrediction(c.Request.Context(), seasonID, req.Question, req.Answer)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"season_id": seasonID, "question": req.Question, "correct": correct})
}
