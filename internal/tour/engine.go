package tour

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
)

// Engine applies triggers to a user's persisted tour position.
type Engine struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewEngine(db *gorm.DB, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{db: db, log: log}
}

// State returns the user's current step and completion flag.
func (e *Engine) State(userID uint) (Step, bool, error) {
	var profile models.Profile
	if err := e.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return "", false, fmt.Errorf("load profile: %w", err)
	}
	step := Step(profile.OnboardingStep)
	if !step.IsValid() {
		step = StepWelcome
	}
	return step, profile.OnboardingCompleted, nil
}

// Fire applies a trigger and persists the outcome. The returned step is the
// position the tour actually moved to: when only persistence fails, the new
// step is still returned together with the error so callers can finish the
// tour locally and surface the warning.
func (e *Engine) Fire(userID uint, tr Trigger) (Step, error) {
	cur, _, err := e.State(userID)
	if err != nil {
		return "", err
	}

	next, err := Next(cur, tr)
	if err != nil {
		return cur, err
	}

	updates := map[string]interface{}{"onboarding_step": string(next)}
	if next == StepCompleted {
		updates["onboarding_completed"] = true
	}

	if err := e.db.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(updates).Error; err != nil {
		e.log.Error("persistencia del paso de onboarding fallo",
			zap.Uint("user_id", userID),
			zap.String("step", next.String()),
			zap.Error(err))
		return next, fmt.Errorf("persist tour step: %w", err)
	}

	return next, nil
}
