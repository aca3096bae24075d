package handler

import (
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/middleware"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/session"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/tour"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler implements sign-up, sign-in, sign-out and the auth-state stream.
type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	Store      *session.Store
	Log        *zap.Logger
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, ttlHours, bcryptCost int, store *session.Store, log *zap.Logger) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = 12
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		DB:         db,
		JWTSecret:  jwtSecret,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
		Store:      store,
		Log:        log,
	}
}

// ---------- registro ----------

type registerReq struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	NombreCompleto  string `json:"nombre_completo" binding:"required,max=120"`
	NombreNegocio   string `json:"nombre_negocio" binding:"max=120"`
	NumeroCedula    string `json:"numero_cedula" binding:"required"`
	Plan            string `json:"plan"`
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Datos incompletos")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.NumeroCedula = strings.TrimSpace(req.NumeroCedula)

	if !emailRe.MatchString(req.Email) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Correo inválido")
		return
	}
	if len(req.Password) < 8 || len(req.Password) > 64 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "La contraseña debe tener entre 8 y 64 caracteres")
		return
	}
	// validation errors block locally; no DB work happens for these
	if req.Password != req.ConfirmPassword {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Las contraseñas no coinciden")
		return
	}
	if err := util.ValidateCedula(req.NumeroCedula); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Número de cédula inválido")
		return
	}

	planName := req.Plan
	switch planName {
	case models.PlanBasico, models.PlanProfesional, models.PlanNegocios:
	case "":
		planName = models.PlanBasico
	default:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Plan desconocido")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No pudimos procesar la contraseña")
		return
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Profile: models.Profile{
			NombreCompleto: strings.TrimSpace(req.NombreCompleto),
			NombreNegocio:  strings.TrimSpace(req.NombreNegocio),
			NumeroCedula:   req.NumeroCedula,
			Plan:           planName,
			OnboardingStep: tour.StepWelcome.String(),
		},
	}

	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, mapConstraintError(err))
		return
	}

	util.Success(c, util.Response{
		"message": "Registro exitoso. Te avisaremos cuando tu cuenta esté activa.",
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"plan":  user.Profile.Plan,
		},
	})
}

// mapConstraintError turns storage rejections into user-facing Spanish
// messages by matching on the driver's error text. Unmatched errors fall
// back to a generic message.
func mapConstraintError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return "Este correo ya está registrado"
	case strings.Contains(msg, "profiles.numero_cedula"):
		return "Ya existe una cuenta con esta cédula"
	case strings.Contains(msg, "UNIQUE constraint"):
		return "Ya existe un registro con estos datos"
	default:
		return "No pudimos crear la cuenta, intenta de nuevo"
	}
}

// ---------- inicio de sesión ----------

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Datos incompletos")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	var user models.User
	if err := h.DB.Where("LOWER(email) = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Correo o contraseña incorrectos")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error consultando usuario")
		}
		return
	}

	now := time.Now()

	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Cuenta bloqueada temporalmente, intenta más tarde")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		// wrong password: after 5 straight failures lock for 10 minutes
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= 5 {
			lockUntil := now.Add(10 * time.Minute)
			user.LockedUntil = &lockUntil
			user.FailedLoginAttempts = 0
		}
		_ = h.DB.Save(&user).Error
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Correo o contraseña incorrectos")
		return
	}

	var profile models.Profile
	if err := h.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error consultando perfil")
		return
	}

	// inactive account: explicit denial, no session issued
	if !profile.IsActive {
		util.Error(c, http.StatusForbidden, util.CodeInactive, "Tu cuenta aún no está activa. Contáctanos para activarla.")
		return
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginIP = c.ClientIP()
	user.LastLoginAt = &now
	_ = h.DB.Save(&user).Error

	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(h.TokenTTL),
	}
	if err := h.DB.Create(&sess).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No pudimos iniciar sesión, intenta de nuevo")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, sess.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No pudimos iniciar sesión, intenta de nuevo")
		return
	}

	h.Store.Publish(session.Event{Kind: session.SignedIn, UserID: user.ID, SessionID: sess.ID})

	util.Success(c, util.Response{
		"token": token,
		"user": gin.H{
			"id":                   user.ID,
			"email":                user.Email,
			"nombre_completo":      profile.NombreCompleto,
			"nombre_negocio":       profile.NombreNegocio,
			"plan":                 profile.Plan,
			"onboarding_completed": profile.OnboardingCompleted,
		},
	})
}

// Logout revokes the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
		return
	}

	if v, exists := c.Get("currentSession"); exists {
		if sess, ok := v.(*models.Session); ok && sess != nil {
			if err := h.DB.Model(sess).Update("revoked", true).Error; err != nil {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No pudimos cerrar la sesión")
				return
			}
			h.Store.Publish(session.Event{Kind: session.SignedOut, UserID: user.ID, SessionID: sess.ID})
		}
	}

	util.Success(c, util.Response{"message": "Sesión cerrada"})
}

// Events streams auth-state changes to the client as server-sent events.
func (h *AuthHandler) Events(c *gin.Context) {
	events, cancel := h.Store.Subscribe()
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("auth", ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
