package handler

import (
	"net/http"

	sharedModels "edu-game-server/shared/models"
	"edu-game-server/shared/utils"

	"github.com/labstack/echo/v4"
)

// orderArchivedFirst - значение query-параметра order.
const orderArchivedFirst = "archived_first"

func (h *GameHandler) listSections(c echo.Context) error {
	opts := sharedModels.ListSectionsOptions{
		IncludeArchived: utils.ParseBool(c.QueryParam("include_archived")),
		ArchivedFirst:   c.QueryParam("order") == orderArchivedFirst,
	}
	views, err := h.sections.ListSections(c.Request().Context(), c.QueryParam("teacher_id"), opts)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	if views == nil {
		views = []sharedModels.SectionView{}
	}
	return c.JSON(http.StatusOK, SectionsResponse{Success: true, Sections: views})
}

func (h *GameHandler) createSection(c echo.Context) error {
	var req SectionRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return h.handleServiceError(c, err)
	}
	if err := h.sections.CreateSection(c.Request().Context(), req.TeacherID, req.Section); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, sharedModels.SuccessResponse{Success: true})
}

func (h *GameHandler) archiveSection(c echo.Context) error {
	var req SectionRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return h.handleServiceError(c, err)
	}
	res, err := h.sections.ArchiveSection(c.Request().Context(), req.TeacherID, req.Section)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ArchiveResponse{
		Success:          true,
		StudentsArchived: res.StudentsArchived,
		SectionArchived:  res.SectionArchived,
		Warnings:         warningsOf(res.Writes),
	})
}

func (h *GameHandler) restoreSection(c echo.Context) error {
	var req SectionRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return h.handleServiceError(c, err)
	}
	res, err := h.sections.RestoreSection(c.Request().Context(), req.TeacherID, req.Section)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, RestoreResponse{
		Success:          true,
		StudentsRestored: res.StudentsRestored,
		Warnings:         warningsOf(res.Writes),
	})
}

func (h *GameHandler) enrollStudent(c echo.Context) error {
	var req EnrollRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return h.handleServiceError(c, err)
	}
	count, err := h.sections.EnrollStudent(c.Request().Context(), req.TeacherID, req.Section, req.PlayerID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, EnrollResponse{Success: true, StudentCount: count})
}
