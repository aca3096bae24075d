package handler

import (
	"net/http"
	"strings"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/middleware"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/plan"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type updateProfileReq struct {
	NombreCompleto string `json:"nombre_completo" binding:"required,max=120"`
	NombreNegocio  string `json:"nombre_negocio" binding:"max=120"`
	Plan           string `json:"plan"`
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// GetProfile returns the profile plus the plan quota, for the profile page.
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := middleware.CurrentProfile(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
			return
		}

		var accounts []models.BankAccount
		if err := db.Where("user_id = ?", profile.UserID).
			Order("created_at ASC").
			Find(&accounts).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error consultando cuentas")
			return
		}

		util.Success(c, util.Response{
			"profile": gin.H{
				"nombre_completo":      profile.NombreCompleto,
				"nombre_negocio":       profile.NombreNegocio,
				"numero_cedula":        profile.NumeroCedula,
				"plan":                 profile.Plan,
				"limite_mensual":       plan.MonthlyLimit(profile.Plan),
				"onboarding_completed": profile.OnboardingCompleted,
			},
			"cuentas": accounts,
		})
	}
}

// UpdateProfile edits the business-facing fields. The cédula is immutable.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := middleware.CurrentProfile(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
			return
		}

		var req updateProfileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Datos incompletos")
			return
		}

		updates := map[string]interface{}{
			"nombre_completo": strings.TrimSpace(req.NombreCompleto),
			"nombre_negocio":  strings.TrimSpace(req.NombreNegocio),
		}
		if req.Plan != "" {
			switch req.Plan {
			case models.PlanBasico, models.PlanProfesional, models.PlanNegocios:
				updates["plan"] = req.Plan
			default:
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Plan desconocido")
				return
			}
		}

		if err := db.Model(profile).Updates(updates).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No pudimos actualizar el perfil")
			return
		}

		util.Success(c, util.Response{"message": "Perfil actualizado"})
	}
}

// ChangePassword updates the current user's password.
func ChangePassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
			return
		}

		var req changePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Datos incompletos")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "La contraseña actual no es correcta")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No pudimos procesar la contraseña")
			return
		}

		if err := db.Model(user).Update("password_hash", string(hash)).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No pudimos actualizar la contraseña")
			return
		}

		util.Success(c, util.Response{"message": "Contraseña actualizada, inicia sesión de nuevo"})
	}
}
