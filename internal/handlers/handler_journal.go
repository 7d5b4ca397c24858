package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/OpenGescom/compta_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journals.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: js}
}

// registerJournalRoutes registers routes related to journals.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.createJournal)
		journals.GET("", h.listJournals)
		journals.GET("/:code", h.getJournal)
		journals.POST("/:code/next-number", h.nextEntryNumber)
	}
}

// createJournal godoc
// @Summary Register a new journal
// @Description Registers a new journal as a numbering authority for entries
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal body dto.CreateJournalRequest true "Journal details"
// @Success 201 {object} dto.JournalResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 409 {object} map[string]string "Journal code already registered"
// @Security BearerAuth
// @Router /journals [post]
func (h *journalHandler) createJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	journal, err := h.journalService.RegisterJournal(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("journal_code", req.Code)), err, "Failed to register journal")
		return
	}

	logger.Info("Journal registered", slog.String("journal_code", journal.Code))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(journal))
}

// getJournal godoc
// @Summary Get a journal by code
// @Tags journals
// @Produce  json
// @Param   code path string true "Journal code"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} map[string]string "Journal not found"
// @Security BearerAuth
// @Router /journals/{code} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	journal, err := h.journalService.GetJournal(c.Request.Context(), code)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("journal_code", code)), err, "Failed to retrieve journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// listJournals godoc
// @Summary List all journals
// @Tags journals
// @Produce  json
// @Success 200 {array} dto.JournalResponse
// @Security BearerAuth
// @Router /journals [get]
func (h *journalHandler) listJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	journals, err := h.journalService.ListJournals(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list journals")
		return
	}

	responses := make([]dto.JournalResponse, len(journals))
	for i := range journals {
		responses[i] = dto.ToJournalResponse(&journals[i])
	}
	c.JSON(http.StatusOK, responses)
}

type nextNumberRequest struct {
	Date time.Time `json:"date"`
}

// nextEntryNumber godoc
// @Summary Issue the next entry number of a journal
// @Description Issues and formats the next sequence number. Issued numbers are consumed even if discarded.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   code path string true "Journal code"
// @Param   request body nextNumberRequest false "Entry date, defaults to now"
// @Success 200 {object} dto.NextNumberResponse
// @Failure 400 {object} map[string]string "Sequence control disabled on this journal"
// @Failure 404 {object} map[string]string "Journal not found"
// @Security BearerAuth
// @Router /journals/{code}/next-number [post]
func (h *journalHandler) nextEntryNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	var req nextNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.journalService.NextEntryNumber(c.Request.Context(), code, req.Date, userID)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("journal_code", code)), err, "Failed to issue entry number")
		return
	}

	logger.Info("Entry number issued",
		slog.String("journal_code", resp.JournalCode),
		slog.String("entry_number", resp.EntryNumber))
	c.JSON(http.StatusOK, resp)
}
