package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"edu-game-server/internal/service"
	sharedMiddleware "edu-game-server/shared/middleware"
	sharedModels "edu-game-server/shared/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ScopeSectionsArchive - scope межсервисного токена для архивации и восстановления секций.
const ScopeSectionsArchive = "sections:archive"

// GameHandler обрабатывает HTTP запросы прогресса и секций.
type GameHandler struct {
	progress service.ProgressService
	sections service.SectionService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewGameHandler создает новый GameHandler.
func NewGameHandler(progress service.ProgressService, sections service.SectionService, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		progress: progress,
		sections: sections,
		validate: validator.New(),
		logger:   logger.Named("GameHandler"),
	}
}

// RegisterRoutes регистрирует маршруты /api. mw применяется ко всей группе (межсервисная авторизация).
func (h *GameHandler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	api := e.Group("/api", mw...)
	{
		api.POST("/players", h.registerPlayer)
		api.POST("/progress", h.upsertProgress)
		api.GET("/progress", h.getProgress)
		api.POST("/quests/complete", h.completeQuest)
		api.GET("/quests", h.listQuests)
		api.GET("/leaderboard", h.getLeaderboard)
	}
	sections := api.Group("/sections")
	requireArchive := sharedMiddleware.RequireScope(ScopeSectionsArchive, h.logger)
	{
		sections.GET("", h.listSections)
		sections.POST("", h.createSection)
		sections.POST("/archive", h.archiveSection, requireArchive)
		sections.POST("/restore", h.restoreSection, requireArchive)
		sections.POST("/enroll", h.enrollStudent)
	}
}

// bindAndValidate разбирает JSON тело и проверяет теги validate. Ошибки оборачиваются в ErrValidation.
func (h *GameHandler) bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid request body", sharedModels.ErrValidation)
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", sharedModels.ErrValidation, err.Error())
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+" "+fe.Tag())
		}
		return fmt.Errorf("%w: %s", sharedModels.ErrValidation, strings.Join(fields, ", "))
	}
	return nil
}

func (h *GameHandler) handleServiceError(c echo.Context, err error) error {
	var statusCode int
	message := err.Error()

	switch {
	case errors.Is(err, sharedModels.ErrValidation):
		statusCode = http.StatusBadRequest
	case errors.Is(err, sharedModels.ErrNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, sharedModels.ErrPermissionDenied):
		statusCode = http.StatusForbidden
	case errors.Is(err, context.DeadlineExceeded):
		statusCode = http.StatusServiceUnavailable
		message = "storage timeout"
	case errors.Is(err, sharedModels.ErrStorage):
		statusCode = http.StatusInternalServerError
		message = "storage error"
	default:
		statusCode = http.StatusInternalServerError
		message = "internal server error"
	}

	if statusCode >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.Path()), zap.Int("status", statusCode), zap.Error(err))
	} else {
		h.logger.Debug("Request rejected", zap.String("path", c.Path()), zap.Int("status", statusCode), zap.Error(err))
	}
	return c.JSON(statusCode, sharedModels.NewErrorResponse(message))
}

// warningsOf returns per-store messages of a partial reconciliation.
func warningsOf(writes sharedModels.MultiStoreWriteResult) []string {
	var partial *sharedModels.PartialReconciliationError
	if errors.As(writes.Warning(), &partial) {
		return partial.Messages()
	}
	return nil
}
