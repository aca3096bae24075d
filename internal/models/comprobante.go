package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Comprobante is a bank-transfer receipt claim. EsValido is written by an
// external validation pipeline and is only ever read here.
type Comprobante struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uint      `gorm:"index;not null"`

	BancoEmisor        string `gorm:"size:80;not null"`
	TipoComprobante    string `gorm:"size:40"`
	NumeroComprobante  string `gorm:"size:64;index"`
	NumeroReferencia   string `gorm:"size:64;index"`
	Fecha              string `gorm:"size:10;index;not null"` // YYYY-MM-DD as delivered upstream
	Hora               string `gorm:"size:8"`
	ValorTransferencia decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Moneda             string          `gorm:"size:8;default:COP"`
	NombreBeneficiario string          `gorm:"size:120"`
	CuentaOrigen       string          `gorm:"size:64"`
	CuentaDestino      string          `gorm:"size:64"`
	EstadoTransaccion  string          `gorm:"size:40"`
	Descripcion        string          `gorm:"type:text"`
	EsValido           bool            `gorm:"index;not null;default:false"`

	ImagenURL    string `gorm:"size:512"`
	ImagenNombre string `gorm:"size:255"`
	ImagenRuta   string `gorm:"size:512"`
	ImagenSize   int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FechaDia parses Fecha as a calendar day. Records whose date does not parse
// are excluded from filtering and export rather than aborting aggregation.
func (c *Comprobante) FechaDia() (time.Time, error) {
	return time.Parse("2006-01-02", c.Fecha)
}
