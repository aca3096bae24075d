package handler

import (
	"net/http"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/middleware"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// GetMe returns the signed-in user and profile (requires AuthMiddleware).
func GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
		return
	}
	profile, ok := middleware.CurrentProfile(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"created_at": user.CreatedAt,
		},
		"profile": gin.H{
			"nombre_completo":      profile.NombreCompleto,
			"nombre_negocio":       profile.NombreNegocio,
			"numero_cedula":        profile.NumeroCedula,
			"plan":                 profile.Plan,
			"onboarding_completed": profile.OnboardingCompleted,
			"is_active":            profile.IsActive,
		},
	})
}
