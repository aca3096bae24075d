package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, 2024-06-12 15:30 UTC.
var nowFixed = time.Date(2024, time.June, 12, 15, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPresetRanges(t *testing.T) {
	tests := []struct {
		preset Preset
		from   time.Time
		to     time.Time
	}{
		{PresetHoy, day(2024, time.June, 12), day(2024, time.June, 12)},
		{PresetEstaSemana, day(2024, time.June, 10), day(2024, time.June, 16)},
		{PresetEsteMes, day(2024, time.June, 1), day(2024, time.June, 30)},
		{PresetMesAnterior, day(2024, time.May, 1), day(2024, time.May, 31)},
	}

	for _, tc := range tests {
		r, ok := PresetRange(tc.preset, nowFixed)
		require.True(t, ok, "preset %s", tc.preset)
		from, to := r.Bounds()
		assert.Equal(t, tc.from, from, "preset %s from", tc.preset)
		assert.Equal(t, tc.to, to, "preset %s to", tc.preset)
	}
}

func TestPresetWeekStartsMondayAcrossSunday(t *testing.T) {
	// Sunday belongs to the week that began the previous Monday
	sunday := time.Date(2024, time.June, 16, 9, 0, 0, 0, time.UTC)
	r, ok := PresetRange(PresetEstaSemana, sunday)
	require.True(t, ok)
	from, to := r.Bounds()
	assert.Equal(t, day(2024, time.June, 10), from)
	assert.Equal(t, day(2024, time.June, 16), to)
}

func TestPresetPreviousMonthAcrossYearBoundary(t *testing.T) {
	january := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	r, ok := PresetRange(PresetMesAnterior, january)
	require.True(t, ok)
	from, to := r.Bounds()
	assert.Equal(t, day(2023, time.December, 1), from)
	assert.Equal(t, day(2023, time.December, 31), to)
}

func TestTogglePresetClearsOnReuse(t *testing.T) {
	st := State{Status: StatusAll}

	st = st.TogglePreset(PresetEsteMes, nowFixed)
	require.NotNil(t, st.Range)

	// re-clicking the active preset clears the date filter entirely
	st = st.TogglePreset(PresetEsteMes, nowFixed)
	assert.Nil(t, st.Range)
}

func TestTogglePresetSwitchesBetweenPresets(t *testing.T) {
	st := State{Status: StatusAll}

	st = st.TogglePreset(PresetEsteMes, nowFixed)
	require.NotNil(t, st.Range)

	st = st.TogglePreset(PresetHoy, nowFixed)
	require.NotNil(t, st.Range, "switching presets replaces, not clears")
	from, to := st.Range.Bounds()
	assert.Equal(t, day(2024, time.June, 12), from)
	assert.Equal(t, day(2024, time.June, 12), to)
}

func TestUnknownPresetLeavesStateAlone(t *testing.T) {
	st := State{Status: StatusAll}
	st = st.TogglePreset(Preset("trimestre"), nowFixed)
	assert.Nil(t, st.Range)
}
