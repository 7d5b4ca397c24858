package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/OpenGescom/compta_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// auditHandler handles HTTP requests related to the audit trail.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

func newAuditHandler(as portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{auditService: as}
}

// registerAuditRoutes registers routes related to the audit trail. The trail
// is append-only; no update or delete routes exist.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditHandler(auditService)

	audit := rg.Group("/audit")
	{
		audit.POST("", h.recordAction)
		audit.GET("/chain/verify", h.verifyChain)
		audit.GET("/:entityType/:entityID", h.listByEntity)
	}
}

// recordAction godoc
// @Summary Append an action to the audit trail
// @Description Records one user action. DELETE, ADMIN_UPDATE and BULK_UPDATE require a justification.
// @Tags audit
// @Accept  json
// @Produce  json
// @Param   request body dto.RecordAuditRequest true "Action details"
// @Success 201 {object} dto.AuditRecordResponse
// @Failure 400 {object} map[string]string "Missing justification or invalid input"
// @Security BearerAuth
// @Router /audit [post]
func (h *auditHandler) recordAction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for recordAction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	record, err := h.auditService.RecordAction(c.Request.Context(), req, userID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, logger.With(slog.String("entity_id", req.EntityID)), err, "Failed to record action")
		return
	}

	logger.Info("Audit action recorded",
		slog.String("record_id", record.RecordID),
		slog.String("action", string(record.Action)),
		slog.Int64("position", record.Position))
	c.JSON(http.StatusCreated, dto.ToAuditRecordResponse(record))
}

// listByEntity godoc
// @Summary List the audit trail of one entity
// @Tags audit
// @Produce  json
// @Param   entityType path string true "Entity type"
// @Param   entityID path string true "Entity ID"
// @Success 200 {array} dto.AuditRecordResponse
// @Security BearerAuth
// @Router /audit/{entityType}/{entityID} [get]
func (h *auditHandler) listByEntity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityType := c.Param("entityType")
	entityID := c.Param("entityID")

	records, err := h.auditService.ListByEntity(c.Request.Context(), entityType, entityID)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("entity_id", entityID)), err, "Failed to list audit records")
		return
	}

	responses := make([]dto.AuditRecordResponse, len(records))
	for i := range records {
		responses[i] = dto.ToAuditRecordResponse(&records[i])
	}
	c.JSON(http.StatusOK, responses)
}

// verifyChain godoc
// @Summary Verify the whole audit chain
// @Description Recomputes every record hash and checks the links in position order
// @Tags audit
// @Produce  json
// @Success 200 {object} dto.ChainReport
// @Failure 500 {object} map[string]string "Chain is broken"
// @Security BearerAuth
// @Router /audit/chain/verify [get]
func (h *auditHandler) verifyChain(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.auditService.VerifyChain(c.Request.Context())
	if err != nil {
		if report != nil {
			logger.Error("Audit chain broken",
				slog.String("broken_at", report.BrokenAt),
				slog.Int64("broken_position", report.BrokenPosition))
			c.JSON(http.StatusInternalServerError, report)
			return
		}
		respondServiceError(c, logger, err, "Failed to verify audit chain")
		return
	}
	c.JSON(http.StatusOK, report)
}
