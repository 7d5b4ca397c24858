package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/OpenGescom/compta_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exerciseHandler handles HTTP requests related to fiscal exercises.
type exerciseHandler struct {
	exerciseService portssvc.ExerciseSvcFacade
	entryService    portssvc.EntrySvcFacade
}

func newExerciseHandler(es portssvc.ExerciseSvcFacade, ens portssvc.EntrySvcFacade) *exerciseHandler {
	return &exerciseHandler{exerciseService: es, entryService: ens}
}

// registerExerciseRoutes registers routes related to fiscal exercises. The
// FEC export lives here because it is scoped to one exercise, even though
// the entry service produces it.
func registerExerciseRoutes(rg *gin.RouterGroup, exerciseService portssvc.ExerciseSvcFacade, entryService portssvc.EntrySvcFacade) {
	h := newExerciseHandler(exerciseService, entryService)

	exercises := rg.Group("/exercises")
	{
		exercises.POST("", h.createExercise)
		exercises.GET("", h.listExercises)
		exercises.GET("/:exerciseID", h.getExercise)
		exercises.POST("/:exerciseID/close", h.closeExercise)
		exercises.POST("/:exerciseID/archive", h.archiveExercise)
		exercises.POST("/:exerciseID/totals", h.recomputeTotals)
		exercises.GET("/:exerciseID/fec", h.exportFEC)
	}
}

// createExercise godoc
// @Summary Open a new fiscal exercise
// @Description Opens a fiscal exercise; its date range must not overlap an existing one
// @Tags exercises
// @Accept  json
// @Produce  json
// @Param   exercise body dto.CreateExerciseRequest true "Exercise details"
// @Success 201 {object} dto.ExerciseResponse
// @Failure 400 {object} map[string]string "Invalid dates or overlapping range"
// @Security BearerAuth
// @Router /exercises [post]
func (h *exerciseHandler) createExercise(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createExercise", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger.With(slog.Int("year", req.Year)), err, "Failed to create exercise")
		return
	}

	logger.Info("Fiscal exercise opened", slog.String("exercise_id", exercise.ExerciseID), slog.Int("year", exercise.Year))
	c.JSON(http.StatusCreated, dto.ToExerciseResponse(exercise))
}

// getExercise godoc
// @Summary Get a fiscal exercise by ID
// @Tags exercises
// @Produce  json
// @Param   exerciseID path string true "Exercise ID"
// @Success 200 {object} dto.ExerciseResponse
// @Failure 404 {object} map[string]string "Exercise not found"
// @Security BearerAuth
// @Router /exercises/{exerciseID} [get]
func (h *exerciseHandler) getExercise(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	exerciseID := c.Param("exerciseID")

	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), exerciseID)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("exercise_id", exerciseID)), err, "Failed to retrieve exercise")
		return
	}
	c.JSON(http.StatusOK, dto.ToExerciseResponse(exercise))
}

// listExercises godoc
// @Summary List all fiscal exercises
// @Tags exercises
// @Produce  json
// @Success 200 {array} dto.ExerciseResponse
// @Security BearerAuth
// @Router /exercises [get]
func (h *exerciseHandler) listExercises(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	exercises, err := h.exerciseService.ListExercises(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list exercises")
		return
	}

	responses := make([]dto.ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = dto.ToExerciseResponse(&exercises[i])
	}
	c.JSON(http.StatusOK, responses)
}

// closeExercise godoc
// @Summary Close a fiscal exercise
// @Description Freezes totals and transitions OPEN to CLOSED. Refused while unbalanced entries remain.
// @Tags exercises
// @Produce  json
// @Param   exerciseID path string true "Exercise ID"
// @Success 200 {object} dto.ExerciseResponse
// @Failure 400 {object} map[string]string "Exercise contains unbalanced entries"
// @Failure 409 {object} map[string]string "Exercise is not open"
// @Security BearerAuth
// @Router /exercises/{exerciseID}/close [post]
func (h *exerciseHandler) closeExercise(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	exerciseID := c.Param("exerciseID")

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	exercise, err := h.exerciseService.CloseExercise(c.Request.Context(), exerciseID, userID)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("exercise_id", exerciseID)), err, "Failed to close exercise")
		return
	}

	logger.Info("Fiscal exercise closed", slog.String("exercise_id", exerciseID))
	c.JSON(http.StatusOK, dto.ToExerciseResponse(exercise))
}

// archiveExercise godoc
// @Summary Archive a closed fiscal exercise
// @Tags exercises
// @Produce  json
// @Param   exerciseID path string true "Exercise ID"
// @Success 204 "Exercise archived"
// @Failure 409 {object} map[string]string "Exercise is not closed"
// @Security BearerAuth
// @Router /exercises/{exerciseID}/archive [post]
func (h *exerciseHandler) archiveExercise(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	exerciseID := c.Param("exerciseID")

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.exerciseService.ArchiveExercise(c.Request.Context(), exerciseID, userID); err != nil {
		respondServiceError(c, logger.With(slog.String("exercise_id", exerciseID)), err, "Failed to archive exercise")
		return
	}

	logger.Info("Fiscal exercise archived", slog.String("exercise_id", exerciseID))
	c.Status(http.StatusNoContent)
}

// recomputeTotals godoc
// @Summary Recompute the running totals of an open exercise
// @Tags exercises
// @Produce  json
// @Param   exerciseID path string true "Exercise ID"
// @Success 200 {object} domain.ExerciseTotals
// @Failure 404 {object} map[string]string "Exercise not found"
// @Security BearerAuth
// @Router /exercises/{exerciseID}/totals [post]
func (h *exerciseHandler) recomputeTotals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	exerciseID := c.Param("exerciseID")

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	totals, err := h.exerciseService.RecomputeTotals(c.Request.Context(), exerciseID, userID)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("exercise_id", exerciseID)), err, "Failed to recompute totals")
		return
	}
	c.JSON(http.StatusOK, totals)
}

// exportFEC godoc
// @Summary Export an exercise as FEC rows
// @Description Produces the statutory flat export of every entry line in the exercise
// @Tags exercises
// @Produce  json
// @Param   exerciseID path string true "Exercise ID"
// @Success 200 {object} dto.FECExportResponse
// @Failure 404 {object} map[string]string "Exercise not found"
// @Security BearerAuth
// @Router /exercises/{exerciseID}/fec [get]
func (h *exerciseHandler) exportFEC(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	exerciseID := c.Param("exerciseID")

	export, err := h.entryService.ExportFEC(c.Request.Context(), exerciseID)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("exercise_id", exerciseID)), err, "Failed to export exercise")
		return
	}

	logger.Info("Exercise exported", slog.String("exercise_id", exerciseID), slog.Int("rows", len(export.Rows)))
	c.JSON(http.StatusOK, export)
}
