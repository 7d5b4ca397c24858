package handlers

import (
	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators installs the binding tags used by the request
// DTOs. Must run before the first request is bound.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("journalcode", func(fl validator.FieldLevel) bool {
		_, err := domain.NormalizeJournalCode(fl.Field().String())
		return err == nil
	})
}
