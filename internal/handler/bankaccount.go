package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/middleware"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/tour"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BankAccountHandler manages the user's collection accounts. Creating the
// first account during onboarding is the real action the bank-account tour
// step waits for, so a successful create feeds the tour engine.
type BankAccountHandler struct {
	DB   *gorm.DB
	Tour *tour.Engine
	Log  *zap.Logger
}

func NewBankAccountHandler(db *gorm.DB, engine *tour.Engine, log *zap.Logger) *BankAccountHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BankAccountHandler{DB: db, Tour: engine, Log: log}
}

type bankAccountReq struct {
	NombreCuenta string `json:"nombre_cuenta" binding:"required,max=80"`
	NumeroCuenta string `json:"numero_cuenta" binding:"required,max=64"`
	Titular      string `json:"titular" binding:"required,max=120"`
}

// List returns the user's accounts.
func (h *BankAccountHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
		return
	}

	var accounts []models.BankAccount
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error consultando cuentas")
		return
	}

	util.Success(c, util.Response{"cuentas": accounts})
}

// Create registers an account and, when the tour is waiting on this exact
// action, advances it.
func (h *BankAccountHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
		return
	}

	var req bankAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Datos incompletos")
		return
	}

	account := models.BankAccount{
		ID:           uuid.New(),
		UserID:       user.ID,
		NombreCuenta: strings.TrimSpace(req.NombreCuenta),
		NumeroCuenta: strings.TrimSpace(req.NumeroCuenta),
		Titular:      strings.TrimSpace(req.Titular),
	}
	if err := h.DB.Create(&account).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No pudimos guardar la cuenta")
		return
	}

	tourStep := ""
	if h.Tour != nil {
		next, err := h.Tour.Fire(user.ID, tour.TriggerActionCompleted)
		var invalid *tour.ErrInvalidTransition
		switch {
		case err == nil:
			tourStep = next.String()
		case errors.As(err, &invalid):
			// tour not at the bank-account step, nothing to do
		default:
			h.Log.Warn("avance del tour tras crear cuenta fallo",
				zap.Uint("user_id", user.ID), zap.Error(err))
			tourStep = next.String()
		}
	}

	resp := util.Response{"cuenta": account}
	if tourStep != "" {
		resp["tour_step"] = tourStep
	}
	util.Success(c, resp)
}

// Delete removes one of the user's accounts.
func (h *BankAccountHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID inválido")
		return
	}

	if err := h.DB.
		Where("id = ? AND user_id = ?", id, user.ID).
		Delete(&models.BankAccount{}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No pudimos eliminar la cuenta")
		return
	}

	util.Success(c, util.Response{"message": "Cuenta eliminada"})
}
