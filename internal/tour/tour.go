// Package tour drives the first-use guided sequence as a single state
// machine with an explicit transition table. Every surface that moves the
// tour goes through Next, so two callers can never disagree on the order.
package tour

import "fmt"

// Step is a stop in the onboarding sequence.
type Step string

const (
	StepWelcome        Step = "welcome"
	StepProfileLink    Step = "profile_link"
	StepBankAccount    Step = "bank_account"
	StepVideo          Step = "video"
	StepDashboardStats Step = "dashboard_stats"
	StepDashboardTable Step = "dashboard_table"
	StepFinale         Step = "finale"
	StepCompleted      Step = "completed"
)

// sequence is the fixed linear order; forward movement never skips a step
// except through an explicit Skip.
var sequence = []Step{
	StepWelcome,
	StepProfileLink,
	StepBankAccount,
	StepVideo,
	StepDashboardStats,
	StepDashboardTable,
	StepFinale,
	StepCompleted,
}

// IsValid checks whether s names a known step.
func (s Step) IsValid() bool {
	for _, st := range sequence {
		if st == s {
			return true
		}
	}
	return false
}

func (s Step) String() string { return string(s) }

// Trigger is an event that may move the sequence forward.
type Trigger string

const (
	// TriggerAdvance is the tooltip's "next" acknowledgement.
	TriggerAdvance Trigger = "advance"
	// TriggerActionCompleted fires when the user performs the real action a
	// step demands (submitting the bank-account form), not merely views it.
	TriggerActionCompleted Trigger = "action_completed"
	// TriggerSkip abandons the tour from any step.
	TriggerSkip Trigger = "skip"
	// TriggerRestart re-enters the sequence from the top, even when already
	// completed; the persisted completion flag is left alone until the user
	// reaches the end again.
	TriggerRestart Trigger = "restart"
)

// Info describes how a step presents itself and what moves it forward.
type Info struct {
	Route     string  // page the step's target lives on; empty means stay put
	Target    string  // data attribute the front end anchors the spotlight to
	WaitsFor  string  // non-empty: target appears asynchronously, poll for it
	AdvanceOn Trigger // trigger that moves to the next step
	Titulo    string
	Contenido string
}

var stepInfo = map[Step]Info{
	StepWelcome: {
		AdvanceOn: TriggerAdvance,
		Titulo:    "¡Bienvenido a Ya Quedó!",
		Contenido: "Te mostraremos cómo validar tus comprobantes en minutos.",
	},
	StepProfileLink: {
		Target:    "sidebar-perfil",
		AdvanceOn: TriggerAdvance,
		Titulo:    "Tu perfil",
		Contenido: "Aquí configuras tu negocio y tus cuentas de recaudo.",
	},
	StepBankAccount: {
		Route:     "/perfil",
		Target:    "form-cuenta",
		AdvanceOn: TriggerActionCompleted,
		Titulo:    "Agrega una cuenta",
		Contenido: "Registra la cuenta donde recibes los pagos. Este paso requiere guardar el formulario.",
	},
	StepVideo: {
		AdvanceOn: TriggerAdvance,
		Titulo:    "Video tutorial",
		Contenido: "Un recorrido de dos minutos por la validación de pagos.",
	},
	StepDashboardStats: {
		Route:     "/dashboard",
		Target:    "panel-estadisticas",
		WaitsFor:  "panel-estadisticas",
		AdvanceOn: TriggerAdvance,
		Titulo:    "Tus estadísticas",
		Contenido: "Totales, válidos y el banco más usado, siempre sobre lo filtrado.",
	},
	StepDashboardTable: {
		Target:    "tabla-comprobantes",
		WaitsFor:  "tabla-comprobantes",
		AdvanceOn: TriggerAdvance,
		Titulo:    "Tus comprobantes",
		Contenido: "Busca, filtra por estado y por fechas, y exporta a Excel.",
	},
	StepFinale: {
		AdvanceOn: TriggerAdvance,
		Titulo:    "¡Listo!",
		Contenido: "Ya quedó. Puedes repetir este recorrido desde el menú de ayuda.",
	},
	StepCompleted: {},
}

// InfoFor returns the presentation metadata of a step.
func InfoFor(s Step) (Info, bool) {
	info, ok := stepInfo[s]
	return info, ok
}

// ErrInvalidTransition reports a trigger that the current step does not accept.
type ErrInvalidTransition struct {
	From    Step
	Trigger Trigger
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("tour: trigger %q not accepted at step %q", e.Trigger, e.From)
}

// Next resolves (current step, trigger) through the transition table.
func Next(s Step, tr Trigger) (Step, error) {
	if !s.IsValid() {
		s = StepWelcome
	}

	switch tr {
	case TriggerRestart:
		return StepWelcome, nil
	case TriggerSkip:
		if s == StepCompleted {
			return "", &ErrInvalidTransition{From: s, Trigger: tr}
		}
		return StepCompleted, nil
	}

	info, ok := stepInfo[s]
	if !ok || info.AdvanceOn != tr {
		return "", &ErrInvalidTransition{From: s, Trigger: tr}
	}

	for i, st := range sequence {
		if st == s {
			return sequence[i+1], nil
		}
	}
	return "", &ErrInvalidTransition{From: s, Trigger: tr}
}
