package filter

import "time"

// Preset is a quick date-range shortcut on the dashboard.
type Preset string

const (
	PresetHoy         Preset = "hoy"
	PresetEstaSemana  Preset = "esta_semana"
	PresetEsteMes     Preset = "este_mes"
	PresetMesAnterior Preset = "mes_anterior"
)

// PresetRange resolves a preset to a concrete inclusive day interval at the
// given instant. Weeks start on Monday.
func PresetRange(p Preset, now time.Time) (DateRange, bool) {
	today := dayOf(now)
	switch p {
	case PresetHoy:
		return DateRange{From: today, To: today}, true
	case PresetEstaSemana:
		wd := int(today.Weekday())
		if wd == 0 { // Sunday
			wd = 7
		}
		monday := today.AddDate(0, 0, -(wd - 1))
		return DateRange{From: monday, To: monday.AddDate(0, 0, 6)}, true
	case PresetEsteMes:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return DateRange{From: first, To: first.AddDate(0, 1, -1)}, true
	case PresetMesAnterior:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		return DateRange{From: first, To: first.AddDate(0, 1, -1)}, true
	}
	return DateRange{}, false
}

// TogglePreset applies the preset's range to the state. Re-applying the
// preset that is already active clears the date filter entirely.
func (s State) TogglePreset(p Preset, now time.Time) State {
	r, ok := PresetRange(p, now)
	if !ok {
		return s
	}
	if s.Range != nil {
		curFrom, curTo := s.Range.Bounds()
		newFrom, newTo := r.Bounds()
		if curFrom.Equal(newFrom) && curTo.Equal(newTo) {
			s.Range = nil
			return s
		}
	}
	s.Range = &r
	return s
}
