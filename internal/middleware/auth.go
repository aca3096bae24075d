package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/session"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware validates the JWT and, if its session is still live, puts
// the current user and profile into the gin context. An inactive profile is
// fatal for the session: it is revoked on the spot and the request is denied
// with a message distinct from ordinary auth failures.
func AuthMiddleware(jwtSecret string, db *gorm.DB, store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) query param ?token=xxx (downloads can't set headers)
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		// 3) cookie yq_token
		if tokenStr == "" {
			if cookie, err := c.Cookie("yq_token"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Sesión expirada, inicia sesión de nuevo")
			c.Abort()
			return
		}

		var sess models.Session
		if err := db.First(&sess, "id = ?", claims.SessionID).Error; err != nil ||
			sess.Revoked || sess.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Sesión expirada, inicia sesión de nuevo")
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Usuario no existe")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error consultando usuario")
			}
			c.Abort()
			return
		}

		var profile models.Profile
		if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error consultando perfil")
			c.Abort()
			return
		}

		if !profile.IsActive {
			_ = db.Model(&sess).Update("revoked", true).Error
			if store != nil {
				store.Publish(session.Event{Kind: session.SignedOut, UserID: user.ID, SessionID: sess.ID})
			}
			util.Error(c, http.StatusForbidden, util.CodeInactive, "Tu cuenta aún no está activa. Contáctanos para activarla.")
			c.Abort()
			return
		}

		c.Set("currentUser", &user)
		c.Set("currentProfile", &profile)
		c.Set("currentSession", &sess)
		c.Next()
	}
}

// CurrentUser pulls the authenticated user out of the gin context.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// CurrentProfile pulls the authenticated user's profile out of the gin context.
func CurrentProfile(c *gin.Context) (*models.Profile, bool) {
	v, ok := c.Get("currentProfile")
	if !ok {
		return nil, false
	}
	profile, ok := v.(*models.Profile)
	return profile, ok && profile != nil
}
