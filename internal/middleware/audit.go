package middleware

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
)

// AuditMiddleware records each authenticated API call to the diagnostic
// channel and the audit table. Failures to write the trail never fail the
// request itself.
func AuditMiddleware(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()

		var userID uint
		if user, ok := CurrentUser(c); ok {
			userID = user.ID
		}
		if userID == 0 {
			return
		}

		entry := models.AuditLog{
			UserID:    &userID,
			Path:      c.Request.URL.Path,
			Method:    c.Request.Method,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := db.Create(&entry).Error; err != nil {
			log.Warn("audit log write failed", zap.Error(err))
		}

		log.Info("api",
			zap.Uint("user_id", userID),
			zap.String("method", entry.Method),
			zap.String("path", entry.Path),
			zap.Int("status", entry.Status))
	}
}
