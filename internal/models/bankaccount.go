package models

import (
	"time"

	"github.com/google/uuid"
)

// BankAccount is a user-owned collection account used to match incoming
// payments against the merchant.
type BankAccount struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uint      `gorm:"index;not null"`
	NombreCuenta string    `gorm:"size:80;not null"`
	NumeroCuenta string    `gorm:"size:64;not null"`
	Titular      string    `gorm:"size:120;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
