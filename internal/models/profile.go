package models

import "time"

// Plan identifiers. The quota attached to each lives in the plan package.
const (
	PlanBasico      = "basico"
	PlanProfesional = "profesional"
	PlanNegocios    = "negocios"
)

// Profile holds the business-facing data of a user: who they are, which
// subscription plan they chose, and where they stand in onboarding.
// IsActive gates dashboard access; it is flipped by account-activation
// processes outside this service.
type Profile struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"uniqueIndex;not null"`
	NombreCompleto string `gorm:"size:120;not null"`
	NombreNegocio  string `gorm:"size:120"`
	NumeroCedula   string `gorm:"size:32;uniqueIndex;not null"`
	Plan           string `gorm:"size:16;not null;default:basico"`

	OnboardingCompleted bool   `gorm:"not null;default:false"`
	OnboardingStep      string `gorm:"size:32;not null;default:welcome"`
	IsActive            bool   `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
