package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/OpenGescom/compta_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// entryHandler handles HTTP requests related to ledger entries.
type entryHandler struct {
	entryService portssvc.EntrySvcFacade
}

func newEntryHandler(es portssvc.EntrySvcFacade) *entryHandler {
	return &entryHandler{entryService: es}
}

// registerEntryRoutes registers routes related to ledger entries.
func registerEntryRoutes(rg *gin.RouterGroup, entryService portssvc.EntrySvcFacade) {
	h := newEntryHandler(entryService)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.postEntry)
		entries.GET("/:entryID", h.getEntry)
		entries.POST("/:entryID/lines", h.addLine)
		entries.POST("/:entryID/validate", h.validateEntry)
		entries.POST("/lines/reconcile", h.reconcileLines)
		entries.POST("/lines/unreconcile", h.unreconcileLines)
	}
}

// postEntry godoc
// @Summary Post a new ledger entry
// @Description Posts an entry to a journal. The entry number is issued by the journal; drafts may be unbalanced.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.PostEntryRequest true "Entry details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid lines or date outside the exercise"
// @Failure 409 {object} map[string]string "Exercise is not open"
// @Security BearerAuth
// @Router /entries [post]
func (h *entryHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for postEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.PostEntry(c.Request.Context(), req, userID, c.ClientIP())
	if err != nil {
		respondServiceError(c, logger.With(slog.String("journal_code", req.JournalCode)), err, "Failed to post entry")
		return
	}

	logger.Info("Entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// getEntry godoc
// @Summary Get a ledger entry with its lines
// @Tags entries
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /entries/{entryID} [get]
func (h *entryHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	entry, err := h.entryService.GetEntry(c.Request.Context(), entryID)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("entry_id", entryID)), err, "Failed to retrieve entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// addLine godoc
// @Summary Append a line to a draft entry
// @Description Appends one line to an entry that has not been validated yet
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   line body dto.EntryLineRequest true "Line details"
// @Success 200 {object} dto.EntryResponse
// @Failure 409 {object} map[string]string "Entry is validated and locked"
// @Security BearerAuth
// @Router /entries/{entryID}/lines [post]
func (h *entryHandler) addLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	var req dto.EntryLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for addLine", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.AddLine(c.Request.Context(), entryID, req, userID)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("entry_id", entryID)), err, "Failed to add line")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// validateEntry godoc
// @Summary Validate a ledger entry
// @Description Locks a balanced entry permanently. Validated entries can never be modified again.
// @Tags entries
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Entry is not balanced"
// @Failure 409 {object} map[string]string "Entry is already validated"
// @Security BearerAuth
// @Router /entries/{entryID}/validate [post]
func (h *entryHandler) validateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.ValidateEntry(c.Request.Context(), entryID, userID)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("entry_id", entryID)), err, "Failed to validate entry")
		return
	}

	logger.Info("Entry validated", slog.String("entry_id", entryID), slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// reconcileLines godoc
// @Summary Reconcile a set of entry lines
// @Description Marks lines with a shared lettrage code. The set must net to zero and target reconcilable accounts.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   request body dto.ReconcileRequest true "Line IDs and lettrage code"
// @Success 204 "Lines reconciled"
// @Failure 400 {object} map[string]string "Lines do not net to zero or account is not reconcilable"
// @Security BearerAuth
// @Router /entries/lines/reconcile [post]
func (h *entryHandler) reconcileLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for reconcileLines", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.entryService.ReconcileLines(c.Request.Context(), req, userID); err != nil {
		respondServiceError(c, logger.With(slog.String("lettrage_code", req.Code)), err, "Failed to reconcile lines")
		return
	}

	logger.Info("Lines reconciled", slog.String("lettrage_code", req.Code), slog.Int("count", len(req.LineIDs)))
	c.Status(http.StatusNoContent)
}

// unreconcileLines godoc
// @Summary Clear the lettrage marker from a set of lines
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   request body dto.UnreconcileRequest true "Line IDs"
// @Success 204 "Lettrage cleared"
// @Failure 404 {object} map[string]string "One or more lines not found"
// @Security BearerAuth
// @Router /entries/lines/unreconcile [post]
func (h *entryHandler) unreconcileLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UnreconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for unreconcileLines", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.entryService.UnreconcileLines(c.Request.Context(), req.LineIDs, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to clear lettrage")
		return
	}
	c.Status(http.StatusNoContent)
}
