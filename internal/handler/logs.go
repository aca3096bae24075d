package handler

import (
	"net/http"
	"strconv"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/middleware"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListLogs returns the user's recent API activity from the audit trail.
func ListLogs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		var logs []models.AuditLog
		if err := db.Where("user_id = ?", user.ID).
			Order("created_at DESC").
			Limit(limit).
			Find(&logs).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error consultando actividad")
			return
		}

		util.Success(c, util.Response{"logs": logs})
	}
}
