package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/middleware"
	"github.com/OpenGescom/compta_ledger/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// authHandler issues development bearer tokens. Real token issuance lives
// outside the ledger service; this endpoint exists only for local use and is
// not registered in production.
type authHandler struct {
	cfg *config.Config
}

func newAuthHandler(cfg *config.Config) *authHandler {
	return &authHandler{cfg: cfg}
}

// registerAuthRoutes registers the development token endpoint.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		return
	}
	h := newAuthHandler(cfg)
	r.POST("/auth/token", h.issueToken)
}

type tokenRequest struct {
	UserID string `json:"userID" binding:"required"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// issueToken godoc
// @Summary Issue a development bearer token
// @Description Signs a JWT for the given user ID. Available outside production only.
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   request body tokenRequest true "User ID to attribute"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Router /auth/token [post]
func (h *authHandler) issueToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	now := time.Now().UTC()
	expiresAt := now.Add(h.cfg.JWTExpiryDuration)
	claims := jwt.RegisteredClaims{
		Subject:   req.UserID,
		Issuer:    h.cfg.JWTIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		logger.Error("Failed to sign token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	logger.Info("Development token issued", slog.String("user_id", req.UserID))
	c.JSON(http.StatusOK, tokenResponse{Token: signed, ExpiresAt: expiresAt})
}
