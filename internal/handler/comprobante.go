package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/filter"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/middleware"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ComprobanteHandler serves the dashboard's receipt list. Filtering and the
// statistics are recomputed in memory over the user's full set on every
// request, mirroring how the dashboard recomputes on every input change.
type ComprobanteHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewComprobanteHandler(db *gorm.DB, log *zap.Logger) *ComprobanteHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ComprobanteHandler{DB: db, Log: log}
}

type comprobanteResp struct {
	ID                 string          `json:"id"`
	BancoEmisor        string          `json:"banco_emisor"`
	TipoComprobante    string          `json:"tipo_comprobante,omitempty"`
	NumeroComprobante  string          `json:"numero_comprobante,omitempty"`
	NumeroReferencia   string          `json:"numero_referencia,omitempty"`
	Fecha              string          `json:"fecha"`
	Hora               string          `json:"hora,omitempty"`
	ValorTransferencia decimal.Decimal `json:"valor_transferencia"`
	Moneda             string          `json:"moneda"`
	NombreBeneficiario string          `json:"nombre_beneficiario,omitempty"`
	CuentaOrigen       string          `json:"cuenta_origen,omitempty"`
	CuentaDestino      string          `json:"cuenta_destino,omitempty"`
	EstadoTransaccion  string          `json:"estado_transaccion,omitempty"`
	Descripcion        string          `json:"descripcion,omitempty"`
	EsValido           bool            `json:"es_valido"`
	ImagenURL          string          `json:"imagen_url,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

func toComprobanteResp(c *models.Comprobante) comprobanteResp {
	return comprobanteResp{
		ID:                 c.ID.String(),
		BancoEmisor:        c.BancoEmisor,
		TipoComprobante:    c.TipoComprobante,
		NumeroComprobante:  c.NumeroComprobante,
		NumeroReferencia:   c.NumeroReferencia,
		Fecha:              c.Fecha,
		Hora:               c.Hora,
		ValorTransferencia: c.ValorTransferencia,
		Moneda:             c.Moneda,
		NombreBeneficiario: c.NombreBeneficiario,
		CuentaOrigen:       c.CuentaOrigen,
		CuentaDestino:      c.CuentaDestino,
		EstadoTransaccion:  c.EstadoTransaccion,
		Descripcion:        c.Descripcion,
		EsValido:           c.EsValido,
		ImagenURL:          c.ImagenURL,
		CreatedAt:          c.CreatedAt,
	}
}

// parseFilterState builds the filter selection from query params. Returns a
// user-facing message when a date doesn't parse (client-side validation
// equivalent: nothing is queried).
func parseFilterState(c *gin.Context) (filter.State, string) {
	st := filter.State{
		SearchTerm: c.Query("search"),
		Status:     filter.StatusAll,
	}

	switch c.Query("status") {
	case "valid":
		st.Status = filter.StatusValid
	case "invalid":
		st.Status = filter.StatusInvalid
	}

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return st, "Fecha inicial inválida, usa el formato YYYY-MM-DD"
		}
		r := filter.DateRange{From: from}
		if toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return st, "Fecha final inválida, usa el formato YYYY-MM-DD"
			}
			r.To = to
		}
		st.Range = &r
	}
	return st, ""
}

// fetchAll loads the user's entire comprobante set, newest first. The
// dashboard always works off the full list and filters in memory.
func (h *ComprobanteHandler) fetchAll(userID uint) ([]models.Comprobante, error) {
	var list []models.Comprobante
	err := h.DB.Where("user_id = ?", userID).
		Order("fecha DESC, created_at DESC").
		Find(&list).Error
	return list, err
}

// List returns the filtered list plus statistics over that same filtered set.
func (h *ComprobanteHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
		return
	}

	st, invalid := parseFilterState(c)
	if invalid != "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, invalid)
		return
	}

	all, err := h.fetchAll(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error consultando comprobantes")
		return
	}

	filtered := filter.Apply(all, st, h.Log)
	stats := filter.Compute(filtered)

	items := make([]comprobanteResp, 0, len(filtered))
	for i := range filtered {
		items = append(items, toComprobanteResp(&filtered[i]))
	}

	util.Success(c, util.Response{
		"items": items,
		"stats": stats,
		"total": len(all),
	})
}

// ---------- registrar comprobante ----------

type comprobanteReq struct {
	BancoEmisor        string `json:"banco_emisor" binding:"required,max=80"`
	TipoComprobante    string `json:"tipo_comprobante" binding:"max=40"`
	NumeroComprobante  string `json:"numero_comprobante" binding:"max=64"`
	NumeroReferencia   string `json:"numero_referencia" binding:"max=64"`
	Fecha              string `json:"fecha" binding:"required"`
	Hora               string `json:"hora" binding:"max=8"`
	ValorTransferencia string `json:"valor_transferencia" binding:"required"`
	Moneda             string `json:"moneda" binding:"max=8"`
	NombreBeneficiario string `json:"nombre_beneficiario" binding:"max=120"`
	CuentaOrigen       string `json:"cuenta_origen" binding:"max=64"`
	CuentaDestino      string `json:"cuenta_destino" binding:"max=64"`
	EstadoTransaccion  string `json:"estado_transaccion" binding:"max=40"`
	Descripcion        string `json:"descripcion" binding:"max=1000"`
	EsValido           bool   `json:"es_valido"`
	ImagenURL          string `json:"imagen_url" binding:"max=512"`
	ImagenNombre       string `json:"imagen_nombre" binding:"max=255"`
	ImagenRuta         string `json:"imagen_ruta" binding:"max=512"`
	ImagenSize         int64  `json:"imagen_size"`
}

func (r *comprobanteReq) validate() (decimal.Decimal, string) {
	if err := util.ValidateFecha(r.Fecha); err != nil {
		return decimal.Zero, "Fecha inválida, usa el formato YYYY-MM-DD"
	}
	valor, err := decimal.NewFromString(strings.TrimSpace(r.ValorTransferencia))
	if err != nil {
		return decimal.Zero, "Valor de transferencia inválido"
	}
	if err := util.ValidateValor(valor); err != nil {
		return decimal.Zero, "Valor de transferencia inválido"
	}
	return valor, ""
}

// Create registers a comprobante. EsValido arrives from the upstream
// validation pipeline; it is stored as-is, never computed here.
func (h *ComprobanteHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
		return
	}

	var req comprobanteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Datos incompletos")
		return
	}

	valor, invalid := req.validate()
	if invalid != "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, invalid)
		return
	}

	moneda := req.Moneda
	if moneda == "" {
		moneda = "COP"
	}

	comp := models.Comprobante{
		ID:                 uuid.New(),
		UserID:             user.ID,
		BancoEmisor:        strings.TrimSpace(req.BancoEmisor),
		TipoComprobante:    req.TipoComprobante,
		NumeroComprobante:  req.NumeroComprobante,
		NumeroReferencia:   req.NumeroReferencia,
		Fecha:              req.Fecha,
		Hora:               req.Hora,
		ValorTransferencia: valor,
		Moneda:             moneda,
		NombreBeneficiario: req.NombreBeneficiario,
		CuentaOrigen:       req.CuentaOrigen,
		CuentaDestino:      req.CuentaDestino,
		EstadoTransaccion:  req.EstadoTransaccion,
		Descripcion:        req.Descripcion,
		EsValido:           req.EsValido,
		ImagenURL:          req.ImagenURL,
		ImagenNombre:       req.ImagenNombre,
		ImagenRuta:         req.ImagenRuta,
		ImagenSize:         req.ImagenSize,
	}

	if err := h.DB.Create(&comp).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No pudimos guardar el comprobante")
		return
	}

	util.Success(c, util.Response{"comprobante": toComprobanteResp(&comp)})
}

// Update replaces a comprobante's editable fields. Clients re-fetch the list
// afterwards; nothing is patched optimistically.
func (h *ComprobanteHandler) Update(c *gin.Context) {
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

	var req comprobanteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Datos incompletos")
		return
	}

	valor, invalid := req.validate()
	if invalid != "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, invalid)
		return
	}

	var comp models.Comprobante
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&comp).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Comprobante no existe")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error consultando comprobante")
		}
		return
	}

	comp.BancoEmisor = strings.TrimSpace(req.BancoEmisor)
	comp.TipoComprobante = req.TipoComprobante
	comp.NumeroComprobante = req.NumeroComprobante
	comp.NumeroReferencia = req.NumeroReferencia
	comp.Fecha = req.Fecha
	comp.Hora = req.Hora
	comp.ValorTransferencia = valor
	if req.Moneda != "" {
		comp.Moneda = req.Moneda
	}
	comp.NombreBeneficiario = req.NombreBeneficiario
	comp.CuentaOrigen = req.CuentaOrigen
	comp.CuentaDestino = req.CuentaDestino
	comp.EstadoTransaccion = req.EstadoTransaccion
	comp.Descripcion = req.Descripcion
	comp.EsValido = req.EsValido

	if err := h.DB.Save(&comp).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No pudimos guardar el comprobante")
		return
	}

	util.Success(c, util.Response{"comprobante": toComprobanteResp(&comp)})
}

// Delete removes one of the user's own comprobantes.
func (h *ComprobanteHandler) Delete(c *gin.Context) {
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
		Delete(&models.Comprobante{}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No pudimos eliminar el comprobante")
		return
	}

	util.Success(c, util.Response{"message": "Comprobante eliminado"})
}
