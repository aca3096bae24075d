package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/config"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/middleware"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/tour"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OnboardingHandler exposes the guided tour: current position, the three
// user-driven triggers, and the wait-for-target poll.
type OnboardingHandler struct {
	DB     *gorm.DB
	Engine *tour.Engine
	Cfg    config.TourConfig
	Log    *zap.Logger
}

func NewOnboardingHandler(db *gorm.DB, engine *tour.Engine, cfg config.TourConfig, log *zap.Logger) *OnboardingHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OnboardingHandler{DB: db, Engine: engine, Cfg: cfg, Log: log}
}

func stepPayload(step tour.Step, completed bool) util.Response {
	info, _ := tour.InfoFor(step)
	return util.Response{
		"step":      step.String(),
		"completed": completed,
		"route":     info.Route,
		"target":    info.Target,
		"waits_for": info.WaitsFor,
		"titulo":    info.Titulo,
		"contenido": info.Contenido,
	}
}

// GetState returns where the tour currently stands for this user.
func (h *OnboardingHandler) GetState(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
		return
	}

	step, completed, err := h.Engine.State(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error consultando el tour")
		return
	}

	util.Success(c, stepPayload(step, completed))
}

func (h *OnboardingHandler) fire(c *gin.Context, tr tour.Trigger) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
		return
	}

	next, err := h.Engine.Fire(user.ID, tr)
	var invalid *tour.ErrInvalidTransition
	switch {
	case errors.As(err, &invalid):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Este paso no acepta esa acción")
		return
	case err != nil && next != "":
		// the tour moved locally but persistence failed: finish anyway and
		// tell the user their progress wasn't saved
		resp := stepPayload(next, next == tour.StepCompleted)
		resp["warning"] = "No pudimos guardar tu avance, pero puedes continuar"
		util.Success(c, resp)
		return
	case err != nil:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error consultando el tour")
		return
	}

	util.Success(c, stepPayload(next, next == tour.StepCompleted))
}

// Advance acknowledges the current tooltip.
func (h *OnboardingHandler) Advance(c *gin.Context) { h.fire(c, tour.TriggerAdvance) }

// Skip ends the tour early and persists completion.
func (h *OnboardingHandler) Skip(c *gin.Context) { h.fire(c, tour.TriggerSkip) }

// Restart re-enters the sequence from the first step; the persisted
// completion flag is left alone until the user reaches the end again.
func (h *OnboardingHandler) Restart(c *gin.Context) { h.fire(c, tour.TriggerRestart) }

// AwaitTarget polls until the data behind the current step's spotlight target
// exists, bounded by the configured timeout. A timeout is a normal answer
// (ready=false), not an error.
func (h *OnboardingHandler) AwaitTarget(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
		return
	}

	step, _, err := h.Engine.State(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error consultando el tour")
		return
	}

	info, _ := tour.InfoFor(step)
	if info.WaitsFor == "" {
		util.Success(c, util.Response{"step": step.String(), "ready": true})
		return
	}

	interval := time.Duration(h.Cfg.PollIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	timeout := time.Duration(h.Cfg.PollTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	probe := func() bool {
		var count int64
		if err := h.DB.Model(&models.Comprobante{}).
			Where("user_id = ?", user.ID).
			Count(&count).Error; err != nil {
			h.Log.Warn("sondeo del objetivo del tour fallo", zap.Error(err))
			return false
		}
		return count > 0
	}

	ready := tour.Await(ctx, interval, probe) == nil
	util.Success(c, util.Response{"step": step.String(), "ready": ready})
}
