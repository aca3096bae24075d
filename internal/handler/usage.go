package handler

import (
	"net/http"
	"time"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/middleware"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/plan"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UsageHandler reports current-month consumption against the plan quota.
type UsageHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewUsageHandler(db *gorm.DB, log *zap.Logger) *UsageHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UsageHandler{DB: db, Log: log}
}

// GetUsage runs two independent count queries over the current month: one
// unfiltered, one restricted to valid comprobantes. The two counts are not a
// transactional snapshot; under concurrent writes the derived invalid count
// can drift, which is accepted. On any query error the whole report degrades
// to zeros with no user-facing error.
func (h *UsageHandler) GetUsage(c *gin.Context) {
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

	first, last := plan.MonthBounds(time.Now())

	var total, validos int64
	err := h.DB.Model(&models.Comprobante{}).
		Where("user_id = ? AND fecha >= ? AND fecha <= ?", user.ID, first, last).
		Count(&total).Error
	if err == nil {
		err = h.DB.Model(&models.Comprobante{}).
			Where("user_id = ? AND fecha >= ? AND fecha <= ? AND es_valido = ?", user.ID, first, last, true).
			Count(&validos).Error
	}
	if err != nil {
		h.Log.Error("consulta de uso fallo, reportando cero",
			zap.Uint("user_id", user.ID),
			zap.Error(err))
		total, validos = 0, 0
	}

	util.Success(c, util.Response{
		"usage": plan.BuildUsage(profile.Plan, int(total), int(validos)),
		"mes":   first[:7],
	})
}
