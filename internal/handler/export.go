package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/export"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/filter"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/middleware"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExportHandler streams the XLSX workbook for the user's (dashboard-filtered)
// comprobantes. The export date range composes on top of the dashboard
// filters, it does not replace them.
type ExportHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewExportHandler(db *gorm.DB, log *zap.Logger) *ExportHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExportHandler{DB: db, Log: log}
}

// ExportXLSX accepts the dashboard filter params (search/status/from/to) plus
// export_from/export_to/filename for the export-specific narrowing.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
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

	opts := export.Options{Filename: c.Query("filename")}
	if fromStr := c.Query("export_from"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Fecha de exportación inválida, usa el formato YYYY-MM-DD")
			return
		}
		r := filter.DateRange{From: from}
		if toStr := c.Query("export_to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Fecha de exportación inválida, usa el formato YYYY-MM-DD")
				return
			}
			r.To = to
		}
		opts.Range = &r
	}

	comprobantes := NewComprobanteHandler(h.DB, h.Log)
	all, err := comprobantes.fetchAll(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error consultando comprobantes")
		return
	}
	filtered := filter.Apply(all, st, h.Log)

	f, result, err := export.BuildXLSX(filtered, opts, time.Now(), h.Log)
	if err != nil {
		h.Log.Error("exportacion fallo", zap.Uint("user_id", user.ID), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No pudimos generar el archivo")
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("X-Export-Records", fmt.Sprintf("%d", result.Records))
	c.Header("X-Export-Total", result.TotalValue.String())

	if err := f.Write(c.Writer); err != nil {
		h.Log.Error("escritura de exportacion fallo", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}
