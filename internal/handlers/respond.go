package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/OpenGescom/compta_ledger/internal/apperrors"
	portsrepo "github.com/OpenGescom/compta_ledger/internal/core/ports/repositories"
	"github.com/OpenGescom/compta_ledger/internal/core/services"
	"github.com/gin-gonic/gin"
)

// statusForError maps service and repository sentinels to an HTTP status.
// Handlers use it for their common fall-through branch after dealing with
// the cases they care about explicitly.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, services.ErrEntryLocked),
		errors.Is(err, services.ErrExerciseClosed),
		errors.Is(err, services.ErrExerciseAlreadyClosed),
		errors.Is(err, services.ErrExerciseNotClosed),
		errors.Is(err, portsrepo.ErrExerciseNotOpen),
		errors.Is(err, portsrepo.ErrExerciseNotClosed),
		errors.Is(err, portsrepo.ErrEntryValidated):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, services.ErrEntryUnbalanced),
		errors.Is(err, services.ErrUnbalancedExercise),
		errors.Is(err, services.ErrDateOutsideExercise),
		errors.Is(err, services.ErrLettrageUnbalanced),
		errors.Is(err, services.ErrAccountNotReconcilable),
		errors.Is(err, services.ErrAccountInactive),
		errors.Is(err, services.ErrAmountNotPositive),
		errors.Is(err, services.ErrSequenceControlDisabled),
		errors.Is(err, services.ErrJustificationRequired),
		errors.Is(err, portsrepo.ErrExerciseUnbalanced):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrIntegrity),
		errors.Is(err, services.ErrChainBroken),
		errors.Is(err, services.ErrAuditChainBroken):
		// A broken chain is a server-side integrity failure, never the
		// caller's fault.
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError logs and writes the mapped error response. Internal
// errors hide the cause behind the fallback message.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	logger.Warn(fallback, slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}
