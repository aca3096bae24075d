package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/config"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/database"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/router"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/session"
)

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		JWT:      config.JWTConfig{Secret: "test-secret", ExpireHours: 1},
		Security: config.SecurityConfig{BcryptCost: 4},
		Tour:     config.TourConfig{PollIntervalMs: 5, PollTimeoutMs: 50},
	}

	return router.SetupRouter(cfg, db, session.NewStore(), zap.NewNop()), db
}

func nowFecha() string {
	return time.Now().Format("2006-01-02")
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerBody(email, cedula string) map[string]interface{} {
	return map[string]interface{}{
		"email":            email,
		"password":         "clave-segura-1",
		"confirm_password": "clave-segura-1",
		"nombre_completo":  "Tienda La Esquina",
		"nombre_negocio":   "La Esquina",
		"numero_cedula":    cedula,
		"plan":             "basico",
	}
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Code int                    `json:"code"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func loginToken(t *testing.T, r *gin.Engine, db *gorm.DB, email, cedula string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", registerBody(email, cedula))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// accounts start inactive; activation happens outside the API
	require.NoError(t, db.Model(&models.Profile{}).
		Where("numero_cedula = ?", cedula).
		Update("is_active", true).Error)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "clave-segura-1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token, _ := decodeData(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterPasswordMismatchNeverHitsStorage(t *testing.T) {
	r, db := newTestServer(t)

	body := registerBody("x@example.com", "1020304050")
	body["confirm_password"] = "otra-clave"
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRegisterDuplicateCedulaMessage(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", registerBody("a@example.com", "1020304050"))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "", registerBody("b@example.com", "1020304050"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cédula")
}

func TestLoginInactiveAccountIsDeniedDistinctly(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", registerBody("c@example.com", "2030405060"))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "c@example.com",
		"password": "clave-segura-1",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "activa")
}

func comprobanteBody(banco, fecha, valor string, valido bool) map[string]interface{} {
	return map[string]interface{}{
		"banco_emisor":        banco,
		"fecha":               fecha,
		"valor_transferencia": valor,
		"nombre_beneficiario": "Juan Pérez",
		"es_valido":           valido,
	}
}

func TestComprobanteListFiltersAndStats(t *testing.T) {
	r, db := newTestServer(t)
	token := loginToken(t, r, db, "d@example.com", "3040506070")

	seed := []map[string]interface{}{
		comprobanteBody("Nequi", "2024-01-05", "1000", true),
		comprobanteBody("BBVA", "2024-01-10", "2000", false),
		comprobanteBody("Nequi", "2024-02-01", "3000", true),
	}
	for _, b := range seed {
		w := doJSON(t, r, http.MethodPost, "/api/comprobantes", token, b)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodGet, "/api/comprobantes?status=valid", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)

	items := data["items"].([]interface{})
	assert.Len(t, items, 2)

	stats := data["stats"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["total"])
	assert.Equal(t, float64(2), stats["validos"])
	assert.Equal(t, "Nequi", stats["banco_mas_usado"])

	// search composes with status
	w = doJSON(t, r, http.MethodGet, "/api/comprobantes?status=valid&search=bbva", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Len(t, data["items"].([]interface{}), 0)

	// date range is inclusive
	w = doJSON(t, r, http.MethodGet, "/api/comprobantes?from=2024-01-05&to=2024-01-10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Len(t, data["items"].([]interface{}), 2)
}

func TestUsageEndpointDerivesInvalid(t *testing.T) {
	r, db := newTestServer(t)
	token := loginToken(t, r, db, "e@example.com", "4050607080")

	// two in the current month, one valid
	now := nowFecha()
	for i, valido := range []bool{true, false} {
		w := doJSON(t, r, http.MethodPost, "/api/comprobantes", token,
			comprobanteBody("Nequi", now, fmt.Sprintf("%d", 1000*(i+1)), valido))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/usage", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	usage := decodeData(t, w)["usage"].(map[string]interface{})
	assert.Equal(t, float64(2), usage["total"])
	assert.Equal(t, float64(1), usage["validos"])
	assert.Equal(t, float64(1), usage["invalidos"])
	assert.Equal(t, float64(150), usage["limite"])
}

func TestOnboardingBankAccountStepAdvancesOnCreate(t *testing.T) {
	r, db := newTestServer(t)
	token := loginToken(t, r, db, "f@example.com", "5060708090")

	// welcome -> profile_link -> bank_account
	for i := 0; i < 2; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/onboarding/advance", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	// the tooltip alone cannot move past the form step
	w := doJSON(t, r, http.MethodPost, "/api/onboarding/advance", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// submitting the real form does
	w = doJSON(t, r, http.MethodPost, "/api/accounts", token, map[string]interface{}{
		"nombre_cuenta": "Cuenta principal",
		"numero_cuenta": "123-456-789",
		"titular":       "Tienda La Esquina",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "video", decodeData(t, w)["tour_step"])

	w = doJSON(t, r, http.MethodGet, "/api/onboarding", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "video", decodeData(t, w)["step"])
}

func TestOnboardingSkipPersistsCompletion(t *testing.T) {
	r, db := newTestServer(t)
	token := loginToken(t, r, db, "g@example.com", "6070809010")

	w := doJSON(t, r, http.MethodPost, "/api/onboarding/skip", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile models.Profile
	require.NoError(t, db.Joins("JOIN users ON users.id = profiles.user_id").
		Where("users.email = ?", "g@example.com").
		First(&profile).Error)
	assert.True(t, profile.OnboardingCompleted)
	assert.Equal(t, "completed", profile.OnboardingStep)

	// restart re-enters without clearing the flag
	w = doJSON(t, r, http.MethodPost, "/api/onboarding/restart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "welcome", decodeData(t, w)["step"])
}
