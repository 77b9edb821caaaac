package handler

import (
	"net/http"

	sharedModels "edu-game-server/shared/models"
	"edu-game-server/shared/utils"

	"github.com/labstack/echo/v4"
)

func (h *GameHandler) registerPlayer(c echo.Context) error {
	var req RegisterPlayerRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return h.handleServiceError(c, err)
	}
	player, err := h.progress.RegisterPlayer(c.Request().Context(), req.PlayerID, req.DisplayName)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, DataResponse{Success: true, Data: player})
}

func (h *GameHandler) upsertProgress(c echo.Context) error {
	var req ProgressRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return h.handleServiceError(c, err)
	}
	merged, err := h.progress.UpsertProgress(c.Request().Context(), req.PlayerID, req.toReport())
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ProgressResponse{Success: true, ProgressPercentage: merged.ProgressPercentage, Data: merged})
}

func (h *GameHandler) getProgress(c echo.Context) error {
	merged, err := h.progress.GetProgress(c.Request().Context(), c.QueryParam("player_id"))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, DataResponse{Success: true, Data: merged})
}

func (h *GameHandler) completeQuest(c echo.Context) error {
	var req QuestCompleteRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return h.handleServiceError(c, err)
	}
	fact, err := h.progress.CompleteQuest(c.Request().Context(), req.PlayerID, req.QuestID, sharedModels.QuestReport{
		ScoreEarned: req.ScoreEarned,
		CoinsEarned: req.CoinsEarned,
		Completed:   req.Completed,
	})
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, DataResponse{Success: true, Data: fact})
}

func (h *GameHandler) listQuests(c echo.Context) error {
	facts, err := h.progress.ListQuestCompletions(c.Request().Context(), c.QueryParam("player_id"))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	if facts == nil {
		facts = []sharedModels.QuestCompletion{}
	}
	return c.JSON(http.StatusOK, DataResponse{Success: true, Data: facts})
}

func (h *GameHandler) getLeaderboard(c echo.Context) error {
	limit := utils.ParseLimit(c.QueryParam("limit"), utils.DefaultPageLimit, utils.MaxPageLimit)
	entries, err := h.progress.GetLeaderboard(c.Request().Context(), limit)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, DataResponse{Success: true, Data: entries})
}
