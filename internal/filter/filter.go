// Package filter implements the dashboard's in-memory filtering and
// statistics over comprobante lists. Everything here is a pure function of
// (list, state); callers re-run it whenever either input changes.
package filter

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
)

// Status selects by validity flag.
type Status string

const (
	StatusAll     Status = "all"
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
)

// DateRange is an inclusive calendar-day interval. A zero To means the range
// covers the single day From.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Bounds returns the normalized [from, to] day pair.
func (r DateRange) Bounds() (time.Time, time.Time) {
	from := dayOf(r.From)
	to := dayOf(r.To)
	if r.To.IsZero() {
		to = from
	}
	return from, to
}

// State is the ephemeral filter selection: free-text search, validity status
// and an optional date interval. It is never persisted.
type State struct {
	SearchTerm string
	Status     Status
	Range      *DateRange
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Apply returns the subset of list matching every active predicate. The input
// slice is never mutated. Records whose fecha does not parse are excluded and
// logged; they must not abort the whole view.
func Apply(list []models.Comprobante, st State, log *zap.Logger) []models.Comprobante {
	if log == nil {
		log = zap.NewNop()
	}

	out := make([]models.Comprobante, 0, len(list))
	for i := range list {
		c := &list[i]
		if !matchesStatus(c, st.Status) {
			continue
		}
		if !matchesSearch(c, st.SearchTerm) {
			continue
		}
		if st.Range != nil && !InRange(c, *st.Range, log) {
			continue
		}
		out = append(out, *c)
	}
	return out
}

// InRange reports whether the comprobante's fecha falls within the inclusive
// day interval. Unparseable dates are excluded and logged.
func InRange(c *models.Comprobante, r DateRange, log *zap.Logger) bool {
	if log == nil {
		log = zap.NewNop()
	}
	day, err := c.FechaDia()
	if err != nil {
		log.Error("comprobante con fecha invalida excluido del filtro",
			zap.String("comprobante_id", c.ID.String()),
			zap.String("fecha", c.Fecha),
			zap.Error(err))
		return false
	}
	day = dayOf(day)
	from, to := r.Bounds()
	return !day.Before(from) && !day.After(to)
}

func matchesStatus(c *models.Comprobante, st Status) bool {
	switch st {
	case StatusValid:
		return c.EsValido
	case StatusInvalid:
		return !c.EsValido
	default:
		return true
	}
}

// matchesSearch does a case-insensitive substring match against beneficiary,
// issuing bank, receipt number and reference. Empty fields simply don't match.
func matchesSearch(c *models.Comprobante, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{
		c.NombreBeneficiario,
		c.BancoEmisor,
		c.NumeroComprobante,
		c.NumeroReferencia,
	} {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// BancoNA is reported as the most-used bank of an empty set.
const BancoNA = "N/A"

// Stats are the dashboard aggregates, always recomputed over the filtered set.
type Stats struct {
	Total         int             `json:"total"`
	Validos       int             `json:"validos"`
	Invalidos     int             `json:"invalidos"`
	MontoValido   decimal.Decimal `json:"monto_valido"`
	BancoMasUsado string          `json:"banco_mas_usado"`
}

// Compute aggregates over the given (already filtered) list. Only valid
// comprobantes contribute to the monetary total. Most-used bank ties break to
// the first bank encountered in list order.
func Compute(list []models.Comprobante) Stats {
	s := Stats{
		MontoValido:   decimal.Zero,
		BancoMasUsado: BancoNA,
	}

	counts := make(map[string]int)
	var order []string

	for i := range list {
		c := &list[i]
		s.Total++
		if c.EsValido {
			s.Validos++
			s.MontoValido = s.MontoValido.Add(c.ValorTransferencia)
		} else {
			s.Invalidos++
		}

		if _, seen := counts[c.BancoEmisor]; !seen {
			order = append(order, c.BancoEmisor)
		}
		counts[c.BancoEmisor]++
	}

	best := 0
	for _, banco := range order {
		if counts[banco] > best {
			best = counts[banco]
			s.BancoMasUsado = banco
		}
	}
	return s
}
